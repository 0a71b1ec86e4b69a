// Package pdftest writes small, valid PDFs for tests: Type1 fonts with
// explicit glyph widths, positioned text, and ruled rectangles.
package pdftest

import (
	"strconv"
	"strings"
)

// Font resource names available on every page.
const (
	Regular = "F1" // Helvetica
	Bold    = "F2" // Helvetica-Bold
	Italic  = "F3" // Helvetica-Oblique
)

// PageHeight is the MediaBox height of generated pages (US Letter).
const PageHeight = 792.0

// Text is a string drawn at a baseline position.
type Text struct {
	Str  string
	Font string
	Size float64
	X, Y float64
}

// Rect is a filled rectangle in PDF user space.
type Rect struct {
	X, Y, W, H float64
}

// Page is the content of one page.
type Page struct {
	Texts []Text
	Rects []Rect
}

// Line is a row of text for Column layouts.
type Line struct {
	Str  string
	Font string
	Size float64
}

// Column lays lines out top to bottom starting at baseline y, advancing
// 1.6 × font size per line.
func Column(x, y float64, lines ...Line) []Text {
	out := make([]Text, 0, len(lines))
	for _, ln := range lines {
		font := ln.Font
		if font == "" {
			font = Regular
		}
		out = append(out, Text{Str: ln.Str, Font: font, Size: ln.Size, X: x, Y: y})
		y -= ln.Size * 1.6
	}
	return out
}

// Grid returns the ruling rectangles of a rows × cols table whose top-left
// corner is at (x, y) in PDF user space.
func Grid(x, y, cellW, cellH float64, rows, cols int) []Rect {
	var out []Rect
	w := cellW * float64(cols)
	h := cellH * float64(rows)
	for r := 0; r <= rows; r++ {
		out = append(out, Rect{X: x, Y: y - float64(r)*cellH, W: w, H: 0.5})
	}
	for c := 0; c <= cols; c++ {
		out = append(out, Rect{X: x + float64(c)*cellW, Y: y - h, W: 0.5, H: h})
	}
	return out
}

// Build assembles the pages into a complete PDF file.
func Build(pages ...Page) []byte {
	if len(pages) == 0 {
		pages = []Page{{}}
	}

	// 1 catalog, 2 pages, 3-5 fonts, then a page and content object per page.
	nObjs := 5 + 2*len(pages)
	offsets := make([]int, nObjs+1)

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	obj := func(n int, body string) {
		offsets[n] = b.Len()
		b.WriteString(strconv.Itoa(n))
		b.WriteString(" 0 obj\n")
		b.WriteString(body)
		b.WriteString("\nendobj\n")
	}

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = strconv.Itoa(6+2*i) + " 0 R"
	}
	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	obj(2, "<< /Type /Pages /Kids ["+strings.Join(kids, " ")+"] /Count "+strconv.Itoa(len(pages))+" >>")
	obj(3, fontDict("Helvetica"))
	obj(4, fontDict("Helvetica-Bold"))
	obj(5, fontDict("Helvetica-Oblique"))

	for i, p := range pages {
		pageNum := 6 + 2*i
		contentNum := pageNum + 1
		obj(pageNum, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents "+
			strconv.Itoa(contentNum)+" 0 R /Resources << /Font << /F1 3 0 R /F2 4 0 R /F3 5 0 R >> >> >>")
		stream := contentStream(p)
		obj(contentNum, "<< /Length "+strconv.Itoa(len(stream))+" >>\nstream\n"+stream+"\nendstream")
	}

	xref := b.Len()
	b.WriteString("xref\n0 " + strconv.Itoa(nObjs+1) + "\n")
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= nObjs; i++ {
		off := strconv.Itoa(offsets[i])
		b.WriteString(strings.Repeat("0", 10-len(off)) + off + " 00000 n \n")
	}
	b.WriteString("trailer\n<< /Size " + strconv.Itoa(nObjs+1) + " /Root 1 0 R >>\nstartxref\n")
	b.WriteString(strconv.Itoa(xref))
	b.WriteString("\n%%EOF\n")
	return []byte(b.String())
}

func fontDict(base string) string {
	widths := strings.TrimSpace(strings.Repeat("500 ", 126-32+1))
	return "<< /Type /Font /Subtype /Type1 /BaseFont /" + base +
		" /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>"
}

func contentStream(p Page) string {
	var b strings.Builder
	for _, r := range p.Rects {
		b.WriteString(num(r.X) + " " + num(r.Y) + " " + num(r.W) + " " + num(r.H) + " re f\n")
	}
	for _, t := range p.Texts {
		font := t.Font
		if font == "" {
			font = Regular
		}
		b.WriteString("BT /" + font + " " + num(t.Size) + " Tf " + num(t.X) + " " + num(t.Y) + " Td (" + escape(t.Str) + ") Tj ET\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "(", `\(`)
	return strings.ReplaceAll(s, ")", `\)`)
}
