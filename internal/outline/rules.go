package outline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/pdfinsight/internal/doctree"
)

// Kind is what a merged line turned out to be.
type Kind int

const (
	KindBody Kind = iota
	KindTitle
	KindHeading
)

// Outcome is a rule's verdict on a candidate line.
type Outcome int

const (
	Next   Outcome = iota // no verdict, evaluate the next rule
	Title                 // collect as part of the document title
	Reject                // body text, not part of the outline
	Accept                // heading at the candidate's level
)

// Candidate is the line under classification. Rules may set Level and
// rewrite Text for the rules that follow.
type Candidate struct {
	Line  doctree.TextRun
	Level Level
	Text  string
}

// Context carries document-level facts shared by every rule.
type Context struct {
	Bands     Bands
	Tables    map[int][]doctree.Box // page index → table boxes
	Language  string
	Blacklist map[string]bool // normalized with blacklistKey
}

// Rule is one step of the heading classifier.
type Rule struct {
	Name  string
	Apply func(c *Candidate, ctx *Context) Outcome
}

// Decision is the classifier's answer for one line.
type Decision struct {
	Kind  Kind
	Level Level
	Text  string
	Rule  string // rule that settled the decision
}

// DefaultBlacklist holds captions that are never headings.
var DefaultBlacklist = []string{
	"bengali – your heart rate",
	"bengali - your heart rate",
}

var declarationKeywords = []string{"i declare", "undertake", "signature", "date"}

var (
	numberedItemRe  = regexp.MustCompile(`^\d+\.\s`)
	outlineNumberRe = regexp.MustCompile(`^\d+(\.\d+)*`)
	sentenceEndRe   = regexp.MustCompile(`[!.]\s*$`)
	dandaRe         = regexp.MustCompile(`।\s*$`)
)

const quoteChars = `'"‘’“”`

// DefaultRules is the heading decision sequence, evaluated in order.
var DefaultRules = []Rule{
	{Name: "title-band", Apply: titleBand},
	{Name: "inside-table", Apply: insideTable},
	{Name: "level-band", Apply: levelBand},
	{Name: "declaration", Apply: declaration},
	{Name: "heading-text", Apply: headingText},
	{Name: "blacklist", Apply: blacklisted},
	{Name: "quotes", Apply: quoted},
	{Name: "latin-punctuation", Apply: latinPunctuation},
	{Name: "latin-case", Apply: latinCase},
}

// Classify runs the rules over a line until one settles it. A line that
// gets through every rule with a level is a heading.
func Classify(line doctree.TextRun, ctx *Context, rules []Rule) Decision {
	c := &Candidate{Line: line, Text: line.Text}
	for _, r := range rules {
		switch r.Apply(c, ctx) {
		case Title:
			return Decision{Kind: KindTitle, Text: line.Text, Rule: r.Name}
		case Reject:
			return Decision{Kind: KindBody, Rule: r.Name}
		case Accept:
			return Decision{Kind: KindHeading, Level: c.Level, Text: c.Text, Rule: r.Name}
		}
	}
	if c.Level == "" {
		return Decision{Kind: KindBody}
	}
	return Decision{Kind: KindHeading, Level: c.Level, Text: c.Text}
}

func titleBand(c *Candidate, ctx *Context) Outcome {
	if c.Line.Page == 0 && near(c.Line.FontSize, ctx.Bands.Title) {
		return Title
	}
	return Next
}

func insideTable(c *Candidate, ctx *Context) Outcome {
	for _, box := range ctx.Tables[c.Line.Page] {
		if box.Contains(c.Line.X0, c.Line.Top) {
			return Reject
		}
	}
	return Next
}

func levelBand(c *Candidate, ctx *Context) Outcome {
	level, ok := ctx.Bands.Level(c.Line.FontSize)
	if !ok {
		return Reject
	}
	c.Level = level
	return Next
}

// IsDeclaration reports signature/declaration lines, unless they are
// numbered list items.
func IsDeclaration(text string) bool {
	lower := strings.ToLower(text)
	if numberedItemRe.MatchString(lower) {
		return false
	}
	for _, kw := range declarationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func declaration(c *Candidate, _ *Context) Outcome {
	if IsDeclaration(c.Text) {
		return Reject
	}
	return Next
}

// HeadingText derives the heading label from a line: the part before the
// first colon, nothing for bullet items, and no trailing danda.
func HeadingText(text string) string {
	switch {
	case strings.Contains(text, ":"):
		text = strings.TrimSpace(text[:strings.Index(text, ":")])
	case strings.HasPrefix(text, "•"), strings.HasPrefix(text, "-"):
		text = ""
	}
	return strings.TrimSpace(dandaRe.ReplaceAllString(text, ""))
}

func headingText(c *Candidate, _ *Context) Outcome {
	c.Text = HeadingText(c.Text)
	if c.Text == "" {
		return Reject
	}
	return Next
}

func blacklistKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func blacklisted(c *Candidate, ctx *Context) Outcome {
	if ctx.Blacklist[blacklistKey(c.Text)] {
		return Reject
	}
	return Next
}

func quoted(c *Candidate, _ *Context) Outcome {
	if strings.ContainsAny(c.Text, quoteChars) {
		return Reject
	}
	return Next
}

func latinPunctuation(c *Candidate, ctx *Context) Outcome {
	if !latinLanguages[ctx.Language] {
		return Next
	}
	if sentenceEndRe.MatchString(c.Text) && !outlineNumberRe.MatchString(c.Text) {
		return Reject
	}
	return Next
}

func latinCase(c *Candidate, ctx *Context) Outcome {
	if !latinLanguages[ctx.Language] {
		return Next
	}
	first, _ := utf8.DecodeRuneInString(c.Text)
	if unicode.IsLower(first) && !strings.HasPrefix(c.Text, "(") {
		return Reject
	}
	return Next
}

func newBlacklist(entries []string) map[string]bool {
	m := make(map[string]bool, len(entries))
	for _, e := range entries {
		m[blacklistKey(e)] = true
	}
	return m
}
