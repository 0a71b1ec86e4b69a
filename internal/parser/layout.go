package parser

import (
	"math"
	"sort"
	"strings"

	"github.com/dgallion1/pdfinsight/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

const (
	// rowTolerance is the maximum baseline drift (points) within one row.
	rowTolerance = 3.0
	// wordGapRatio × font size is the horizontal gap that starts a new word.
	wordGapRatio = 0.3
	// fallbackAdvance estimates glyph width when the font carries no widths.
	fallbackAdvance = 0.6
)

// buildLines groups glyphs into rows by baseline, orders rows top to bottom
// and glyphs left to right, and splits each row into font/size spans.
func buildLines(texts []pdflib.Text, pageHeight float64) []doctree.Line {
	glyphs := make([]pdflib.Text, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		glyphs = append(glyphs, t)
	}
	if len(glyphs) == 0 {
		return nil
	}

	sort.SliceStable(glyphs, func(i, j int) bool {
		return glyphs[i].Y > glyphs[j].Y
	})

	var rows [][]pdflib.Text
	rowY := glyphs[0].Y
	current := []pdflib.Text{glyphs[0]}
	for _, g := range glyphs[1:] {
		if math.Abs(rowY-g.Y) > rowTolerance {
			rows = append(rows, current)
			current = nil
			rowY = g.Y
		}
		current = append(current, g)
	}
	rows = append(rows, current)

	lines := make([]doctree.Line, 0, len(rows))
	for _, row := range rows {
		if ln, ok := rowToLine(row, pageHeight); ok {
			lines = append(lines, ln)
		}
	}
	return lines
}

func rowToLine(row []pdflib.Text, pageHeight float64) (doctree.Line, bool) {
	sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

	var (
		text     strings.Builder
		spans    []doctree.Span
		cur      *doctree.Span
		prev     pdflib.Text
		prevEnd  float64
		baseline = row[0].Y
		maxSize  float64
	)
	for i, g := range row {
		// Overprinted glyphs (fake bold) repeat at the same position.
		if i > 0 && g.W > 0 && g.S == prev.S && math.Abs(g.X-prev.X) < 0.5 {
			continue
		}
		space := i > 0 && g.X-prevEnd > wordGapRatio*g.FontSize
		if space {
			text.WriteByte(' ')
		}
		if cur == nil || cur.Font != g.Font || math.Abs(cur.Size-g.FontSize) > 0.01 {
			if cur != nil {
				spans = append(spans, *cur)
			}
			cur = &doctree.Span{Font: g.Font, Size: g.FontSize}
		} else if space {
			cur.Text += " "
		}
		cur.Text += g.S
		text.WriteString(g.S)

		if g.Y > baseline {
			baseline = g.Y
		}
		if g.FontSize > maxSize {
			maxSize = g.FontSize
		}
		advance := g.W
		if advance <= 0 {
			advance = fallbackAdvance * g.FontSize
		}
		prevEnd = g.X + advance
		prev = g
	}
	if cur != nil {
		spans = append(spans, *cur)
	}

	s := strings.TrimSpace(text.String())
	if s == "" {
		return doctree.Line{}, false
	}
	return doctree.Line{
		Text:  s,
		Spans: spans,
		X0:    row[0].X,
		Top:   pageHeight - (baseline + maxSize),
	}, true
}
