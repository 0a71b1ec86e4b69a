package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dgallion1/pdfinsight/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// PDFParser reads page content with ledongthuc/pdf and rebuilds text lines,
// fonts and table regions from positioned glyphs.
type PDFParser struct {
	MaxPages int // 0 means every page
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return p.ParseBytes(data, filename)
}

// ParseBytes parses an in-memory PDF. The reader panics on some malformed
// content streams; those surface as errors.
func (p *PDFParser) ParseBytes(data []byte, filename string) (doc *doctree.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("read pdf %s: %v", filename, r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", filename, err)
	}

	total := reader.NumPage()
	limit := total
	if p.MaxPages > 0 && limit > p.MaxPages {
		limit = p.MaxPages
	}

	doc = &doctree.Document{Name: filename, PageCount: total}
	for i := 1; i <= limit; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, &doctree.Page{Index: i - 1, Width: defaultPageWidth, Height: defaultPageHeight})
			continue
		}
		width, height := mediaBox(page)
		content := page.Content()
		doc.Pages = append(doc.Pages, &doctree.Page{
			Index:  i - 1,
			Width:  width,
			Height: height,
			Lines:  buildLines(content.Text, height),
			Tables: detectTables(content.Rect, width, height),
		})
	}
	return doc, nil
}

// mediaBox returns the page size, following inherited MediaBox entries.
func mediaBox(page pdflib.Page) (float64, float64) {
	box := page.V.Key("MediaBox")
	for parent := page.V.Key("Parent"); box.IsNull() && !parent.IsNull(); parent = parent.Key("Parent") {
		box = parent.Key("MediaBox")
	}
	if box.Len() < 4 {
		return defaultPageWidth, defaultPageHeight
	}
	w := box.Index(2).Float64() - box.Index(0).Float64()
	h := box.Index(3).Float64() - box.Index(1).Float64()
	if w <= 0 || h <= 0 {
		return defaultPageWidth, defaultPageHeight
	}
	return w, h
}
