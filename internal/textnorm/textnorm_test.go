package textnorm

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClean_CollapsesWhitespace(t *testing.T) {
	got := Clean("  Hello\t\n  world  ", 0)
	if got != "Hello world" {
		t.Errorf("expected %q, got %q", "Hello world", got)
	}
}

func TestClean_NFKC(t *testing.T) {
	// U+FB01 LATIN SMALL LIGATURE FI decomposes to "fi".
	got := Clean("ﬁnal ｒｅｐｏｒｔ", 0)
	if got != "final report" {
		t.Errorf("expected %q, got %q", "final report", got)
	}
}

func TestClean_Truncates(t *testing.T) {
	got := Clean(strings.Repeat("é", 700), DefaultMaxLen)
	if n := utf8.RuneCountInString(got); n != DefaultMaxLen {
		t.Fatalf("expected %d runes, got %d", DefaultMaxLen, n)
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"  a   b  ",
		"ﬁeld notes\n\nnext",
		strings.Repeat("word ", 300),
	}
	for _, in := range inputs {
		once := Clean(in, DefaultMaxLen)
		twice := Clean(once, DefaultMaxLen)
		if once != twice {
			t.Errorf("not idempotent: %q vs %q", once, twice)
		}
	}
}

func TestStripBulletPrefix(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"• Preheat the oven", "Preheat the oven"},
		{"- • 1. Mix the flour", "Mix the flour"},
		{"2) Stir well", "Stir well"},
		{"* Serve warm", "Serve warm"},
		{"o Fold gently", "Fold gently"},
		{"overview of results", "overview of results"},
		{"Plain sentence", "Plain sentence"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			if got := StripBulletPrefix(c.in); got != c.want {
				t.Errorf("expected %q, got %q", c.want, got)
			}
		})
	}
}

func TestIsGarbage(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{".......", true},
		{". . . . . .", true},
		{"-----", true},
		{"••••••", true},
		{"7", true},
		{"", true},
		{"A", false},
		{"....", false},
		{"Introduction", false},
		{"1.", false},
	}
	for _, c := range cases {
		if got := IsGarbage(c.in); got != c.want {
			t.Errorf("IsGarbage(%q): expected %v, got %v", c.in, c.want, got)
		}
	}
}

func TestDetectStyle(t *testing.T) {
	cases := []struct {
		font         string
		bold, italic bool
	}{
		{"Helvetica", false, false},
		{"Helvetica-Bold", true, false},
		{"ABCDEF+Arial-BoldItalicMT", true, true},
		{"Times-Oblique", false, true},
		{"Roboto-Black", false, false},
		{"SOURCESANS-BOLD", true, false},
		{"", false, false},
		{"Georgia-Italic", false, true},
	}
	for _, c := range cases {
		b, i := DetectStyle(c.font)
		if b != c.bold || i != c.italic {
			t.Errorf("DetectStyle(%q): expected (%v,%v), got (%v,%v)", c.font, c.bold, c.italic, b, i)
		}
	}
}
