package doctree

import "strings"

// Document is a parsed PDF: positioned text lines per page plus detected table regions.
type Document struct {
	Name      string  // Base filename
	PageCount int     // Pages in the file, including any beyond the parse limit
	Pages     []*Page // Parsed pages in order
}

// Page holds the text lines of one page, top to bottom.
type Page struct {
	Index  int // 0-based
	Width  float64
	Height float64
	Lines  []Line
	Tables []Box
}

// Line is one visual row of text.
type Line struct {
	Text  string
	Spans []Span
	X0    float64
	Top   float64 // Distance from the top edge of the page
}

// Span is a run of glyphs sharing a font and size within a line.
type Span struct {
	Text string
	Font string
	Size float64
}

// Box is an axis-aligned region in top-origin page coordinates.
type Box struct {
	X0, Top, X1, Bottom float64
}

// Contains reports whether the point lies inside the box, edges included.
func (b Box) Contains(x, top float64) bool {
	return x >= b.X0 && x <= b.X1 && top >= b.Top && top <= b.Bottom
}

// Text returns the page text, one line per row.
func (p *Page) Text() string {
	var sb strings.Builder
	for i, ln := range p.Lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(ln.Text)
	}
	return sb.String()
}

// FullText concatenates the text of every parsed page.
func (d *Document) FullText() string {
	var sb strings.Builder
	for i, p := range d.Pages {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(p.Text())
	}
	return sb.String()
}

// TextRun is a styled line ready for heading classification.
type TextRun struct {
	Text     string
	Page     int // 0-based
	FontSize float64
	IsBold   bool
	IsItalic bool
	X0       float64
	Top      float64
}

// Section is a heading and the body text that follows it.
type Section struct {
	Title      string
	PageNumber int // 1-based page of the heading
	EndPage    int
	Text       string
}

// Chunk is a sentence window from a section, tagged with its provenance.
type Chunk struct {
	Document     string
	SectionTitle string
	PageNumber   int
	Text         string
}
