// Package outline recovers a document's title and heading hierarchy from
// font sizes, styles and positions.
package outline

import (
	"strings"

	"github.com/dgallion1/pdfinsight/internal/doctree"
)

// Entry is one heading in the outline.
type Entry struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// Result is the extracted title and flat outline.
type Result struct {
	Title   string  `json:"title"`
	Outline []Entry `json:"outline"`
}

// Extractor assembles outlines. It holds no per-document state and is safe
// for concurrent use.
type Extractor struct {
	Detector  LanguageDetector
	Rules     []Rule
	Overrides []Override
	Blacklist []string
}

// NewExtractor returns an Extractor with the default heading rules.
func NewExtractor(detector LanguageDetector, overrides Overrides) *Extractor {
	return &Extractor{
		Detector:  detector,
		Rules:     DefaultRules,
		Overrides: overrides.Rules(),
		Blacklist: DefaultBlacklist,
	}
}

// Extract classifies every merged line of the document in order, joins the
// title candidates, then applies the override rules.
func (e *Extractor) Extract(doc *doctree.Document) Result {
	res := Result{Outline: []Entry{}}

	runs := Runs(doc)
	if len(runs) == 0 {
		return res
	}
	lines := Merge(runs)

	fullText := doc.FullText()
	lang := UnknownLanguage
	if e.Detector != nil {
		lang = e.Detector.Detect(fullText)
	}
	ctx := &Context{
		Bands:     ComputeBands(lines),
		Tables:    tablesByPage(doc),
		Language:  lang,
		Blacklist: newBlacklist(e.Blacklist),
	}

	var title []string
	for _, ln := range lines {
		d := Classify(ln, ctx, e.Rules)
		switch d.Kind {
		case KindTitle:
			title = append(title, d.Text)
		case KindHeading:
			res.Outline = append(res.Outline, Entry{Level: d.Level, Text: d.Text, Page: ln.Page})
		}
	}
	res.Title = strings.TrimSpace(strings.Join(title, " "))

	facts := Facts{Filename: doc.Name, FullText: fullText, DocType: ClassifyDocument(fullText)}
	for _, o := range e.Overrides {
		if o.When(&res, facts) {
			o.Apply(&res, facts)
		}
	}
	return res
}

func tablesByPage(doc *doctree.Document) map[int][]doctree.Box {
	m := make(map[int][]doctree.Box)
	for _, p := range doc.Pages {
		if len(p.Tables) > 0 {
			m[p.Index] = p.Tables
		}
	}
	return m
}
