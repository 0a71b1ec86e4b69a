// Package sections splits a parsed document into heading-delimited sections
// for relevance search.
package sections

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/pdfinsight/internal/doctree"
	"github.com/dgallion1/pdfinsight/internal/textnorm"
)

const (
	// DefaultMaxPages caps how many pages are scanned per document.
	DefaultMaxPages = 30

	minTitleLen    = 7
	maxTitleLen    = 100
	headingMinSize = 12.0
	minBodyLen     = 70
)

var headingShapeRe = regexp.MustCompile(`^[A-Z0-9][\p{L}\p{N}_\s\-:,()&']+$`)

var genericTitles = map[string]bool{
	"instructions": true,
	"ingredients":  true,
	"notes":        true,
	"preparation":  true,
	"method":       true,
}

// Line is the view of a text line the extractor works on.
type Line struct {
	Text    string
	Page    int // 1-based
	MaxSize float64
	Bold    bool
}

// IsHeading reports whether a line looks like a section heading: 7 to 99
// characters, bold or larger than 12pt, starting with an uppercase letter
// or digit, free of sentence punctuation, not a figure caption and not a
// generic recipe-style label.
func IsHeading(ln Line) bool {
	n := utf8.RuneCountInString(ln.Text)
	if n < minTitleLen || n >= maxTitleLen {
		return false
	}
	if !ln.Bold && ln.MaxSize <= headingMinSize {
		return false
	}
	if !headingShapeRe.MatchString(ln.Text) {
		return false
	}
	lower := strings.TrimSpace(strings.TrimRight(strings.ToLower(ln.Text), ":"))
	return !strings.HasPrefix(lower, "figure") && !genericTitles[lower]
}

// state is either no open section (open == nil) or one section being filled.
type state struct {
	open *doctree.Section
}

// step feeds one line to the state machine. It returns the next state and
// the section closed by this line, if any.
func step(s state, ln Line) (state, *doctree.Section) {
	if IsHeading(ln) {
		closed := s.open
		if closed != nil {
			closed.EndPage = ln.Page
		}
		return state{open: &doctree.Section{Title: ln.Text, PageNumber: ln.Page}}, closed
	}
	if s.open == nil {
		return s, nil
	}
	next := *s.open
	next.Text += ln.Text + " "
	return state{open: &next}, nil
}

// finish closes any open section at the last page scanned.
func finish(s state, lastPage int) *doctree.Section {
	if s.open == nil {
		return nil
	}
	closed := *s.open
	closed.EndPage = lastPage
	return &closed
}

// Lines flattens the first maxPages pages into extractor lines, skipping
// blank and garbage lines. maxPages <= 0 means every parsed page.
func Lines(doc *doctree.Document, maxPages int) []Line {
	var out []Line
	for i, page := range doc.Pages {
		if maxPages > 0 && i >= maxPages {
			break
		}
		for _, ln := range page.Lines {
			text := strings.TrimSpace(ln.Text)
			if text == "" || textnorm.IsGarbage(text) {
				continue
			}
			l := Line{Text: text, Page: page.Index + 1}
			for _, sp := range ln.Spans {
				if sp.Size > l.MaxSize {
					l.MaxSize = sp.Size
				}
				if bold, _ := textnorm.DetectStyle(sp.Font); bold {
					l.Bold = true
				}
			}
			out = append(out, l)
		}
	}
	return out
}

// Extract returns the document's sections in order, dropping those whose
// body is 70 characters or shorter.
func Extract(doc *doctree.Document, maxPages int) []doctree.Section {
	lines := Lines(doc, maxPages)

	var (
		st       state
		all      []doctree.Section
		lastPage int
	)
	for _, ln := range lines {
		var closed *doctree.Section
		st, closed = step(st, ln)
		if closed != nil {
			all = append(all, *closed)
		}
		lastPage = ln.Page
	}
	if closed := finish(st, lastPage); closed != nil {
		all = append(all, *closed)
	}

	kept := all[:0]
	for _, s := range all {
		if utf8.RuneCountInString(s.Text) > minBodyLen {
			kept = append(kept, s)
		}
	}
	return kept
}
