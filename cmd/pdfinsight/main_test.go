package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/pdfinsight/internal/config"
	"github.com/dgallion1/pdfinsight/internal/outline"
	"github.com/dgallion1/pdfinsight/internal/rank"
)

func TestListPDFs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755))

	paths, err := listPDFs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.PDF"), filepath.Join(dir, "b.pdf")}, paths)
}

func TestReadSources(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(p, []byte("%PDF"), 0o644))

	srcs, err := readSources([]string{p})
	require.NoError(t, err)
	require.Len(t, srcs, 1)
	assert.Equal(t, "report.pdf", srcs[0].Name)
	assert.Equal(t, []byte("%PDF"), srcs[0].Data)

	_, err = readSources([]string{filepath.Join(dir, "missing.pdf")})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(config.Config{LogLevel: "warn", LogFormat: "json"}, &buf)
	log.Info("hidden")
	log.Warn("shown", "k", 1)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)

	buf.Reset()
	log = newLogger(config.Config{LogLevel: "bogus", LogFormat: "text"}, &buf)
	log.Debug("hidden")
	log.Info("shown")
	assert.Equal(t, 1, strings.Count(buf.String(), "msg=shown"))
}

func TestRenderOutline(t *testing.T) {
	var buf bytes.Buffer
	renderOutline(&buf, "study.pdf", outline.Result{
		Title: "Field Study Report",
		Outline: []outline.Entry{
			{Level: outline.H1, Text: "Introduction", Page: 0},
			{Level: outline.H2, Text: "Sampling", Page: 1},
		},
	})
	out := buf.String()
	assert.Contains(t, out, "Field Study Report")
	assert.Contains(t, out, "H1 Introduction")
	assert.Contains(t, out, "H2 Sampling")
	assert.Contains(t, out, "p.1")

	buf.Reset()
	renderOutline(&buf, "empty.pdf", outline.Result{Outline: []outline.Entry{}})
	assert.Contains(t, buf.String(), "(untitled)")
	assert.Contains(t, buf.String(), "no headings found")
}

func TestRenderSections(t *testing.T) {
	var buf bytes.Buffer
	renderSections(&buf, rank.SectionResult{
		Metadata: rank.Metadata{
			InputDocuments:       []string{"a.pdf", "b.pdf"},
			Persona:              "Analyst",
			JobToBeDone:          "Summarize methods",
			TotalChunksProcessed: 7,
		},
		ExtractedSections: []rank.ExtractedSection{
			{Document: "a.pdf", SectionTitle: "Methods", ImportanceRank: 1, PageNumber: 2, SimilarityScore: 0.8123},
		},
		SubsectionAnalysis: []rank.Subsection{
			{Document: "a.pdf", RefinedText: "Samples were filtered.", PageNumber: 2, SimilarityScore: 0.8123},
		},
	})
	out := buf.String()
	assert.Contains(t, out, "1. Methods")
	assert.Contains(t, out, "a.pdf p.2")
	assert.Contains(t, out, "0.8123")
	assert.Contains(t, out, "Samples were filtered.")
	assert.Contains(t, out, "7 chunks from a.pdf, b.pdf")
}
