package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/pdfinsight/internal/chunker"
	"github.com/dgallion1/pdfinsight/internal/doctree"
	"github.com/dgallion1/pdfinsight/internal/embed"
	"github.com/dgallion1/pdfinsight/internal/outline"
	"github.com/dgallion1/pdfinsight/internal/parser"
	"github.com/dgallion1/pdfinsight/internal/rank"
	"github.com/dgallion1/pdfinsight/internal/sections"
)

// SectionCandidateLimit bounds persona ranking input: a document stops
// contributing sections once the corpus holds more than
// SectionCandidateLimit × chunks-per-section records.
const SectionCandidateLimit = 60

// timestampLayout matches the microsecond ISO-8601 form clients expect.
const timestampLayout = "2006-01-02T15:04:05.000000"

// Options bounds per-request work.
type Options struct {
	MaxPages        int // Pages read per document for search and ranking
	OutlineMaxPages int // Pages read for outlines; 0 means all
}

// Service runs the three document operations. It holds only read-only
// collaborators and is safe for concurrent use.
type Service struct {
	embedder embed.Embedder
	chunker  *chunker.Chunker
	outliner *outline.Extractor
	opts     Options
	log      *slog.Logger
	now      func() time.Time
}

func NewService(e embed.Embedder, ch *chunker.Chunker, ox *outline.Extractor, opts Options, log *slog.Logger) *Service {
	if opts.MaxPages <= 0 {
		opts.MaxPages = sections.DefaultMaxPages
	}
	return &Service{
		embedder: e,
		chunker:  ch,
		outliner: ox,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// Model returns the embedding model name.
func (s *Service) Model() string {
	return s.embedder.Model()
}

// ChunkerConfig returns the chunker configuration.
func (s *Service) ChunkerConfig() chunker.Config {
	return s.chunker.Config()
}

// Options returns the page limits in effect.
func (s *Service) Options() Options {
	return s.opts
}

// FindSimilarSnippets returns up to five chunks relevant to query. Files
// without a .pdf extension are ignored.
func (s *Service) FindSimilarSnippets(ctx context.Context, query string, docs []parser.Source) (rank.SnippetResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return rank.SnippetResult{}, invalidInput("", "request", "query text is empty")
	}

	var pdfs []parser.Source
	for _, d := range docs {
		if !parser.IsSupportedExtension(d.Name) {
			s.log.Debug("ignoring non-pdf upload", "document", d.Name)
			continue
		}
		pdfs = append(pdfs, d)
	}
	if len(pdfs) == 0 {
		return rank.SnippetResult{}, invalidInput("", "request", "no valid PDF files provided")
	}

	corp, err := s.collect(ctx, pdfs, 0)
	if err != nil {
		return rank.SnippetResult{}, err
	}
	if len(corp.chunks) == 0 {
		if len(corp.failures) > 0 {
			return rank.SnippetResult{}, &StageError{Kind: ErrEmptyCorpus, Stage: "chunk", Err: errors.Join(corp.failures...)}
		}
		return rank.SnippetResult{Snippets: []rank.Snippet{}}, nil
	}

	scored, err := rank.Score(ctx, s.embedder, query, corp.chunks)
	if err != nil {
		return rank.SnippetResult{}, fmt.Errorf("score chunks: %w", err)
	}
	return rank.Snippets(scored), nil
}

// RankSectionsForPersona ranks the sections of docs against a persona and
// the job they need done. Every file must be a PDF.
func (s *Service) RankSectionsForPersona(ctx context.Context, persona, job string, docs []parser.Source) (rank.SectionResult, error) {
	start := s.now()
	persona, job = strings.TrimSpace(persona), strings.TrimSpace(job)
	if persona == "" || job == "" {
		return rank.SectionResult{}, invalidInput("", "request", "persona and job cannot be empty")
	}
	if len(docs) == 0 {
		return rank.SectionResult{}, invalidInput("", "request", "no files provided")
	}
	for _, d := range docs {
		if !parser.IsSupportedExtension(d.Name) {
			return rank.SectionResult{}, invalidInput(d.Name, "request", "invalid file type, only PDF allowed")
		}
	}

	limit := SectionCandidateLimit * s.chunker.Config().MaxPerSection
	corp, err := s.collect(ctx, docs, limit)
	if err != nil {
		return rank.SectionResult{}, err
	}
	if len(corp.chunks) == 0 {
		return rank.SectionResult{}, &StageError{Kind: ErrEmptyCorpus, Stage: "chunk", Err: errors.Join(corp.failures...)}
	}

	query := persona + ". Task: " + job
	scored, err := rank.Score(ctx, s.embedder, query, corp.chunks)
	if err != nil {
		return rank.SectionResult{}, fmt.Errorf("score chunks: %w", err)
	}

	res := rank.Sections(scored)
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	now := s.now()
	res.Metadata = rank.Metadata{
		InputDocuments:        names,
		Persona:               persona,
		JobToBeDone:           job,
		ProcessingTimestamp:   now.Format(timestampLayout),
		TotalChunksProcessed:  len(corp.chunks),
		ProcessingTimeSeconds: rank.Round(now.Sub(start).Seconds(), 2),
		RequestID:             uuid.NewString(),
	}
	return res, nil
}

// ExtractOutline returns the title and heading outline of one PDF.
func (s *Service) ExtractOutline(ctx context.Context, doc parser.Source) (outline.Result, error) {
	if err := ctx.Err(); err != nil {
		return outline.Result{}, err
	}
	if !parser.IsSupportedExtension(doc.Name) {
		return outline.Result{}, invalidInput(doc.Name, "request", "invalid file type, only PDF allowed")
	}
	parsed, err := s.parse(doc, s.opts.OutlineMaxPages)
	if err != nil {
		return outline.Result{}, err
	}
	res := s.outliner.Extract(parsed)
	s.log.Debug("outline extracted", "document", doc.Name, "title", res.Title, "headings", len(res.Outline))
	return res, nil
}

type corpus struct {
	chunks   []doctree.Chunk
	parsed   int
	failures []error
}

// collect parses, sections and chunks each document in order. A document
// that fails to parse is logged and skipped. When limit > 0 a document
// stops adding sections once the corpus exceeds limit chunks. If every
// document fails, the result is an InvalidInput error.
func (s *Service) collect(ctx context.Context, docs []parser.Source, limit int) (corpus, error) {
	var corp corpus
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return corpus{}, err
		}
		log := s.log.With("document", d.Name)

		parsed, err := s.parse(d, s.opts.MaxPages)
		if err != nil {
			log.Warn("skipping document", "error", err)
			corp.failures = append(corp.failures, err)
			continue
		}
		corp.parsed++

		secs := sections.Extract(parsed, s.opts.MaxPages)
		before := len(corp.chunks)
		for _, sec := range secs {
			corp.chunks = append(corp.chunks, s.chunker.ChunkSection(d.Name, sec)...)
			if limit > 0 && len(corp.chunks) > limit {
				break
			}
		}
		log.Debug("document chunked", "sections", len(secs), "chunks", len(corp.chunks)-before)
	}
	if corp.parsed == 0 {
		return corpus{}, &StageError{Kind: ErrInvalidInput, Stage: "parse", Err: errors.Join(corp.failures...)}
	}
	return corp, nil
}

// parse validates the bytes with pdfcpu, then rebuilds positioned text.
func (s *Service) parse(doc parser.Source, maxPages int) (*doctree.Document, error) {
	if _, err := parser.Validate(doc.Data); err != nil {
		return nil, &StageError{Kind: ErrParse, File: doc.Name, Stage: "validate", Err: err}
	}
	p, err := parser.ForFile(doc.Name, maxPages)
	if err != nil {
		return nil, &StageError{Kind: ErrInvalidInput, File: doc.Name, Stage: "parse", Err: err}
	}
	parsed, err := p.Parse(bytes.NewReader(doc.Data), doc.Name)
	if err != nil {
		return nil, &StageError{Kind: ErrParse, File: doc.Name, Stage: "parse", Err: err}
	}
	return parsed, nil
}

// EncodedFile is a base64 upload.
type EncodedFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// DecodeAll decodes every file. A single malformed payload fails the whole
// batch.
func DecodeAll(files []EncodedFile) ([]parser.Source, error) {
	out := make([]parser.Source, 0, len(files))
	for _, f := range files {
		name := f.Filename
		if name == "" {
			name = "document.pdf"
		}
		src, err := parser.DecodeBase64(name, f.Content)
		if err != nil {
			return nil, &StageError{Kind: ErrDecode, File: name, Stage: "decode", Err: err}
		}
		out = append(out, src)
	}
	return out, nil
}
