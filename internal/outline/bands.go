package outline

import (
	"sort"

	"github.com/dgallion1/pdfinsight/internal/doctree"
)

// Level is an outline heading level.
type Level string

const (
	H1 Level = "H1"
	H2 Level = "H2"
	H3 Level = "H3"
)

// Bands are the font sizes that mark the title and each heading level.
type Bands struct {
	Title, H1, H2, H3 float64
}

// FallbackBands apply when a document shows fewer than four distinct sizes.
var FallbackBands = Bands{Title: 14, H1: 12, H2: 11, H3: 10}

// ComputeBands takes the four largest distinct font sizes among the lines.
func ComputeBands(lines []doctree.TextRun) Bands {
	seen := make(map[float64]bool)
	var sizes []float64
	for _, ln := range lines {
		if !seen[ln.FontSize] {
			seen[ln.FontSize] = true
			sizes = append(sizes, ln.FontSize)
		}
	}
	if len(sizes) < 4 {
		return FallbackBands
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))
	return Bands{Title: sizes[0], H1: sizes[1], H2: sizes[2], H3: sizes[3]}
}

// Level matches a size to a heading band, checking H1 first.
func (b Bands) Level(size float64) (Level, bool) {
	switch {
	case near(size, b.H1):
		return H1, true
	case near(size, b.H2):
		return H2, true
	case near(size, b.H3):
		return H3, true
	}
	return "", false
}
