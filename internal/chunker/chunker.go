package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/pdfinsight/internal/doctree"
	"github.com/dgallion1/pdfinsight/internal/textnorm"
)

// Config controls chunking behavior.
type Config struct {
	Window        int // Sentences per chunk.
	MinSentence   int // Sentences of this many characters or fewer are dropped.
	MinChunk      int // Windows of this many characters or fewer are dropped.
	MaxPerSection int // Maximum unique chunks kept per section.
	MaxChars      int // Chunk text is truncated to this many characters.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Window:        4,
		MinSentence:   20,
		MinChunk:      40,
		MaxPerSection: 10,
		MaxChars:      textnorm.DefaultMaxLen,
	}
}

// Chunker cuts section text into overlapping sentence windows.
type Chunker struct {
	cfg      Config
	splitter Splitter
}

// New returns a Chunker. Zero config fields take their defaults.
func New(cfg Config, splitter Splitter) *Chunker {
	def := DefaultConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.MinSentence <= 0 {
		cfg.MinSentence = def.MinSentence
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = def.MinChunk
	}
	if cfg.MaxPerSection <= 0 {
		cfg.MaxPerSection = def.MaxPerSection
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = def.MaxChars
	}
	if splitter == nil {
		splitter = BasicSplitter{}
	}
	return &Chunker{cfg: cfg, splitter: splitter}
}

// Config returns the effective configuration.
func (c *Chunker) Config() Config {
	return c.cfg
}

// Windows splits text into sentences, drops short ones, and slides a
// window of cfg.Window sentences one sentence at a time. The last window
// is the one that reaches the final sentence. Duplicates are removed
// keeping first occurrence, and at most cfg.MaxPerSection are returned.
func (c *Chunker) Windows(text string) []string {
	var sents []string
	for _, s := range c.splitter.Split(text) {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) > c.cfg.MinSentence {
			sents = append(sents, s)
		}
	}

	var windows []string
	for i := range sents {
		end := min(i+c.cfg.Window, len(sents))
		w := strings.Join(sents[i:end], " ")
		if utf8.RuneCountInString(w) > c.cfg.MinChunk {
			windows = append(windows, w)
		}
		if i+c.cfg.Window >= len(sents) {
			break
		}
	}

	seen := make(map[string]bool, len(windows))
	var uniq []string
	for _, w := range windows {
		if seen[w] || len(uniq) >= c.cfg.MaxPerSection {
			continue
		}
		seen[w] = true
		uniq = append(uniq, w)
	}
	return uniq
}

// ChunkSection returns the cleaned chunks of one section, tagged with the
// document name, section title and page.
func (c *Chunker) ChunkSection(document string, sec doctree.Section) []doctree.Chunk {
	windows := c.Windows(sec.Text)
	chunks := make([]doctree.Chunk, 0, len(windows))
	for _, w := range windows {
		chunks = append(chunks, doctree.Chunk{
			Document:     document,
			SectionTitle: sec.Title,
			PageNumber:   sec.PageNumber,
			Text:         textnorm.Clean(w, c.cfg.MaxChars),
		})
	}
	return chunks
}
