package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dgallion1/pdfinsight/internal/outline"
	"github.com/dgallion1/pdfinsight/internal/rank"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headingStyles = map[outline.Level]lipgloss.Style{
		outline.H1: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4")),
		outline.H2: lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4")).PaddingLeft(2),
		outline.H3: lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0")).PaddingLeft(4),
	}

	metaStyle  = lipgloss.NewStyle().Faint(true)
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD93D"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
)

func renderOutline(w io.Writer, name string, res outline.Result) {
	title := res.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintln(w, titleStyle.Render(title)+" "+metaStyle.Render(name))
	if len(res.Outline) == 0 {
		fmt.Fprintln(w, metaStyle.Render("no headings found"))
		return
	}
	for _, e := range res.Outline {
		fmt.Fprintf(w, "%s %s\n", headingStyles[e.Level].Render(string(e.Level)+" "+e.Text), metaStyle.Render(fmt.Sprintf("p.%d", e.Page)))
	}
}

func renderSnippets(w io.Writer, query string, res rank.SnippetResult) {
	fmt.Fprintln(w, titleStyle.Render(query))
	if len(res.Snippets) == 0 {
		fmt.Fprintln(w, metaStyle.Render("no snippets above the relevance threshold"))
		return
	}
	for i, s := range res.Snippets {
		fmt.Fprintf(w, "\n%d. %s\n%s\n", i+1, metaStyle.Render(fmt.Sprintf("%s p.%d", s.Document, s.PageNumber)), s.Text)
	}
}

func renderSections(w io.Writer, res rank.SectionResult) {
	md := res.Metadata
	fmt.Fprintln(w, titleStyle.Render(md.Persona))
	fmt.Fprintln(w, md.JobToBeDone)
	fmt.Fprintln(w, metaStyle.Render(fmt.Sprintf("%d chunks from %s in %.2fs",
		md.TotalChunksProcessed, strings.Join(md.InputDocuments, ", "), md.ProcessingTimeSeconds)))

	for i, sec := range res.ExtractedSections {
		fmt.Fprintf(w, "\n%s %s %s\n",
			headingStyles[outline.H1].Render(fmt.Sprintf("%d. %s", sec.ImportanceRank, sec.SectionTitle)),
			metaStyle.Render(fmt.Sprintf("%s p.%d", sec.Document, sec.PageNumber)),
			scoreStyle.Render(fmt.Sprintf("%.4f", sec.SimilarityScore)))
		if i < len(res.SubsectionAnalysis) {
			fmt.Fprintln(w, res.SubsectionAnalysis[i].RefinedText)
		}
	}
}

func renderFailure(w io.Writer, name string, err error) {
	fmt.Fprintln(w, errorStyle.Render("failed: "+name)+" "+err.Error())
}
