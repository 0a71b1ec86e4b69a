// Package rank scores chunks against a query and assembles the two result
// shapes: snippets for free-text search and ranked sections for a
// persona and task.
package rank

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/dgallion1/pdfinsight/internal/doctree"
	"github.com/dgallion1/pdfinsight/internal/embed"
	"github.com/dgallion1/pdfinsight/internal/textnorm"
)

const (
	TopK      = 5
	Threshold = 0.30
)

// Scored is a chunk with its cosine similarity to the query, rounded to
// 4 decimals.
type Scored struct {
	doctree.Chunk
	Similarity float64
}

// Score embeds the query and every chunk in one batch and returns the
// chunks with their similarity, in input order.
func Score(ctx context.Context, e embed.Embedder, query string, chunks []doctree.Chunk) ([]Scored, error) {
	texts := make([]string, 0, len(chunks)+1)
	texts = append(texts, query)
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}

	vecs, err := e.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d texts: %w", len(texts), err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(texts))
	}

	scored := make([]Scored, len(chunks))
	for i, c := range chunks {
		scored[i] = Scored{Chunk: c, Similarity: Round(embed.Cosine(vecs[0], vecs[i+1]), 4)}
	}
	return scored, nil
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// byScoreDesc sorts by similarity, highest first, keeping input order on ties.
func byScoreDesc(s []Scored) {
	slices.SortStableFunc(s, func(a, b Scored) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})
}

// Snippet is one search hit.
type Snippet struct {
	Document   string `json:"document"`
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// SnippetResult is the response of a free-text search.
type SnippetResult struct {
	Snippets []Snippet `json:"snippets"`
}

// Snippets keeps the TopK highest-scoring chunks whose similarity is above
// Threshold.
func Snippets(scored []Scored) SnippetResult {
	sorted := slices.Clone(scored)
	byScoreDesc(sorted)

	res := SnippetResult{Snippets: []Snippet{}}
	for _, s := range sorted[:min(TopK, len(sorted))] {
		if s.Similarity > Threshold {
			res.Snippets = append(res.Snippets, Snippet{
				Document:   s.Document,
				PageNumber: s.PageNumber,
				Text:       s.Text,
			})
		}
	}
	return res
}

type sectionKey struct {
	document string
	title    string
	page     int
}

// BestPerSection keeps the highest-scoring chunk of each (document,
// section title, page). On equal scores the first chunk seen is kept.
// Sections come back in the order they were first seen.
func BestPerSection(scored []Scored) []Scored {
	index := make(map[sectionKey]int)
	var best []Scored
	for _, s := range scored {
		k := sectionKey{s.Document, s.SectionTitle, s.PageNumber}
		i, ok := index[k]
		if !ok {
			index[k] = len(best)
			best = append(best, s)
			continue
		}
		if s.Similarity > best[i].Similarity {
			best[i] = s
		}
	}
	return best
}

// ExtractedSection is a ranked section.
type ExtractedSection struct {
	Document        string  `json:"document"`
	SectionTitle    string  `json:"section_title"`
	ImportanceRank  int     `json:"importance_rank"`
	PageNumber      int     `json:"page_number"`
	SimilarityScore float64 `json:"similarity_score"`
}

// Subsection is the refined text of a ranked section's best chunk.
type Subsection struct {
	Document        string  `json:"document"`
	RefinedText     string  `json:"refined_text"`
	PageNumber      int     `json:"page_number"`
	SimilarityScore float64 `json:"similarity_score"`
}

// Metadata describes a persona ranking request.
type Metadata struct {
	InputDocuments        []string `json:"input_documents"`
	Persona               string   `json:"persona"`
	JobToBeDone           string   `json:"job_to_be_done"`
	ProcessingTimestamp   string   `json:"processing_timestamp"`
	TotalChunksProcessed  int      `json:"total_chunks_processed"`
	ProcessingTimeSeconds float64  `json:"processing_time_seconds"`
	RequestID             string   `json:"request_id,omitempty"`
}

// SectionResult is the response of a persona ranking. ExtractedSections
// and SubsectionAnalysis are parallel: entry i of both describe the same
// chunk.
type SectionResult struct {
	Metadata           Metadata           `json:"metadata"`
	ExtractedSections  []ExtractedSection `json:"extracted_sections"`
	SubsectionAnalysis []Subsection       `json:"subsection_analysis"`
}

// Sections reduces to the best chunk per section, then ranks the TopK.
// Metadata is left for the caller to fill.
func Sections(scored []Scored) SectionResult {
	top := BestPerSection(scored)
	byScoreDesc(top)
	top = top[:min(TopK, len(top))]

	res := SectionResult{
		ExtractedSections:  make([]ExtractedSection, 0, len(top)),
		SubsectionAnalysis: make([]Subsection, 0, len(top)),
	}
	for i, s := range top {
		res.ExtractedSections = append(res.ExtractedSections, ExtractedSection{
			Document:        s.Document,
			SectionTitle:    s.SectionTitle,
			ImportanceRank:  i + 1,
			PageNumber:      s.PageNumber,
			SimilarityScore: s.Similarity,
		})
		res.SubsectionAnalysis = append(res.SubsectionAnalysis, Subsection{
			Document:        s.Document,
			RefinedText:     textnorm.StripBulletPrefix(s.Text),
			PageNumber:      s.PageNumber,
			SimilarityScore: s.Similarity,
		})
	}
	return res
}
