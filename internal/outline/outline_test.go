package outline

import (
	"testing"

	"github.com/dgallion1/pdfinsight/internal/doctree"
	"github.com/dgallion1/pdfinsight/internal/parser"
	"github.com/dgallion1/pdfinsight/internal/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, name string, pages ...pdftest.Page) *doctree.Document {
	t.Helper()
	doc, err := (&parser.PDFParser{}).ParseBytes(pdftest.Build(pages...), name)
	require.NoError(t, err)
	return doc
}

const bodyText = "Centrifuge calibration data were collected over twelve weeks"

func TestExtract_TwoPageReport(t *testing.T) {
	doc := parse(t, "report.pdf",
		pdftest.Page{Texts: pdftest.Column(72, 740,
			pdftest.Line{Str: "Field Study", Size: 20},
			pdftest.Line{Str: "Introduction", Font: pdftest.Bold, Size: 16},
			pdftest.Line{Str: bodyText, Size: 9},
			pdftest.Line{Str: ".......", Size: 9},
			pdftest.Line{Str: "Background", Font: pdftest.Bold, Size: 13},
			pdftest.Line{Str: bodyText, Size: 9},
		)},
		pdftest.Page{Texts: pdftest.Column(72, 740,
			pdftest.Line{Str: "Methods", Font: pdftest.Bold, Size: 16},
			pdftest.Line{Str: bodyText, Size: 9},
			pdftest.Line{Str: "Sampling", Font: pdftest.Italic, Size: 11},
			pdftest.Line{Str: bodyText, Size: 9},
		)},
	)

	res := NewExtractor(FixedLanguage("en"), DefaultOverrides()).Extract(doc)
	assert.Equal(t, "Field Study", res.Title)
	assert.Equal(t, []Entry{
		{Level: H1, Text: "Introduction", Page: 0},
		{Level: H2, Text: "Background", Page: 0},
		{Level: H1, Text: "Methods", Page: 1},
		{Level: H3, Text: "Sampling", Page: 1},
	}, res.Outline)
}

func TestExtract_TableHeadingsIgnored(t *testing.T) {
	texts := pdftest.Column(72, 740,
		pdftest.Line{Str: "Expense Claim", Size: 20},
		pdftest.Line{Str: "Summary", Font: pdftest.Bold, Size: 16},
		pdftest.Line{Str: "Details", Font: pdftest.Bold, Size: 13},
		pdftest.Line{Str: "Notes", Size: 11},
		pdftest.Line{Str: bodyText, Size: 9},
	)
	texts = append(texts, pdftest.Text{Str: "Totals", Font: pdftest.Bold, Size: 16, X: 80, Y: 375})
	doc := parse(t, "claim.pdf", pdftest.Page{
		Texts: texts,
		Rects: pdftest.Grid(72, 400, 100, 20, 3, 2),
	})

	res := NewExtractor(FixedLanguage("en"), DefaultOverrides()).Extract(doc)
	for _, e := range res.Outline {
		assert.NotEqual(t, "Totals", e.Text)
	}
	assert.Contains(t, res.Outline, Entry{Level: H1, Text: "Summary", Page: 0})
}

func TestExtract_FallbackBands(t *testing.T) {
	doc := parse(t, "plain.pdf", pdftest.Page{Texts: pdftest.Column(72, 740,
		pdftest.Line{Str: "Heading Twelve", Font: pdftest.Bold, Size: 12},
		pdftest.Line{Str: "Body at ten points without a full stop", Size: 10},
		pdftest.Line{Str: "Big Banner", Size: 14},
	)})
	res := NewExtractor(FixedLanguage("en"), DefaultOverrides()).Extract(doc)
	assert.Equal(t, "Big Banner", res.Title)
	assert.Equal(t, []Entry{
		{Level: H1, Text: "Heading Twelve", Page: 0},
		{Level: H3, Text: "Body at ten points without a full stop", Page: 0},
	}, res.Outline)
}

func TestExtract_EmptyDocument(t *testing.T) {
	doc := parse(t, "blank.pdf", pdftest.Page{}, pdftest.Page{Texts: pdftest.Column(72, 700,
		pdftest.Line{Str: ".......", Size: 10},
		pdftest.Line{Str: "-----", Size: 10},
	)})
	res := NewExtractor(FixedLanguage("en"), DefaultOverrides()).Extract(doc)
	assert.Equal(t, "", res.Title)
	assert.NotNil(t, res.Outline)
	assert.Empty(t, res.Outline)
}

func TestExtract_TemplateException(t *testing.T) {
	pages := []pdftest.Page{{Texts: pdftest.Column(72, 740,
		pdftest.Line{Str: "Application form for grant of LTC advance", Font: pdftest.Bold, Size: 12},
		pdftest.Line{Str: "Signature of the applicant", Size: 10},
	)}}

	res := NewExtractor(FixedLanguage("en"), DefaultOverrides()).Extract(parse(t, "file01.pdf", pages...))
	assert.Equal(t, "Application form for grant of LTC advance", res.Title)
	assert.Empty(t, res.Outline)

	other := NewExtractor(FixedLanguage("en"), DefaultOverrides()).Extract(parse(t, "file09.pdf", pages...))
	assert.Equal(t, "", other.Title)
	assert.Len(t, other.Outline, 1)
}

func TestExtract_Certificate(t *testing.T) {
	doc := parse(t, "cert.pdf", pdftest.Page{Texts: pdftest.Column(72, 740,
		pdftest.Line{Str: "Jane Doe", Size: 24},
		pdftest.Line{Str: "Launchpad Program", Font: pdftest.Bold, Size: 16},
		pdftest.Line{Str: "has successfully completed the program", Size: 12},
		pdftest.Line{Str: "This certificate recognises participation and appreciation", Size: 10},
	)})
	res := NewExtractor(FixedLanguage("en"), DefaultOverrides()).Extract(doc)
	assert.Equal(t, "Certificate of Participation", res.Title)
	require.NotEmpty(t, res.Outline)
	assert.Equal(t, Entry{Level: H1, Text: "Jane Doe", Page: 0}, res.Outline[0])
}
