package chunker

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Splitter breaks text into sentences.
type Splitter interface {
	Split(text string) []string
}

// PunktSplitter uses the English punkt model, which knows common
// abbreviations and initials.
type PunktSplitter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewPunktSplitter loads the bundled English training data.
func NewPunktSplitter() (*PunktSplitter, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load punkt model: %w", err)
	}
	return &PunktSplitter{tokenizer: tok}, nil
}

func (p *PunktSplitter) Split(text string) []string {
	sents := p.tokenizer.Tokenize(text)
	out := make([]string, 0, len(sents))
	for _, s := range sents {
		out = append(out, s.Text)
	}
	return out
}

// BasicSplitter ends a sentence at '.', '!' or '?' followed by a space.
type BasicSplitter struct{}

func (BasicSplitter) Split(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// NewSplitter returns the splitter for a configured name: "punkt" or "basic".
func NewSplitter(name string) (Splitter, error) {
	switch name {
	case "", "punkt":
		return NewPunktSplitter()
	case "basic":
		return BasicSplitter{}, nil
	default:
		return nil, fmt.Errorf("unknown sentence splitter %q", name)
	}
}
