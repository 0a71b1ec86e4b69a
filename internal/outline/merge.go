package outline

import (
	"math"
	"strings"

	"github.com/dgallion1/pdfinsight/internal/doctree"
	"github.com/dgallion1/pdfinsight/internal/textnorm"
)

// SizeTolerance is the font-size slack, in points, for merging and band matching.
const SizeTolerance = 0.5

// defaultRunSize is used for lines that carry no span metadata.
const defaultRunSize = 10.0

func near(value, target float64) bool {
	return math.Abs(value-target) <= SizeTolerance
}

// Runs turns parsed lines into styled text runs in document order. The
// first span of a line decides its size and style; blank and garbage lines
// are dropped.
func Runs(doc *doctree.Document) []doctree.TextRun {
	var runs []doctree.TextRun
	for _, page := range doc.Pages {
		for _, ln := range page.Lines {
			text := strings.TrimSpace(ln.Text)
			if text == "" || textnorm.IsGarbage(text) {
				continue
			}
			size, font := defaultRunSize, ""
			if len(ln.Spans) > 0 {
				size = math.Round(ln.Spans[0].Size*10) / 10
				font = ln.Spans[0].Font
			}
			bold, italic := textnorm.DetectStyle(font)
			runs = append(runs, doctree.TextRun{
				Text:     text,
				Page:     page.Index,
				FontSize: size,
				IsBold:   bold,
				IsItalic: italic,
				X0:       ln.X0,
				Top:      ln.Top,
			})
		}
	}
	return runs
}

// Merge folds consecutive runs on the same page with near-equal size and
// identical style into one line, joining text with a single space. The
// merged line keeps the position of its first run.
func Merge(runs []doctree.TextRun) []doctree.TextRun {
	if len(runs) == 0 {
		return nil
	}
	merged := make([]doctree.TextRun, 0, len(runs))
	current := runs[0]
	for _, r := range runs[1:] {
		if r.Page == current.Page && near(r.FontSize, current.FontSize) &&
			r.IsBold == current.IsBold && r.IsItalic == current.IsItalic {
			current.Text += " " + r.Text
			continue
		}
		merged = append(merged, current)
		current = r
	}
	return append(merged, current)
}
