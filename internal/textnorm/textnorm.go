// Package textnorm cleans extracted PDF text and classifies font styles.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultMaxLen is the chunk text cap used by the relevance pipeline.
const DefaultMaxLen = 650

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	garbageRe    = regexp.MustCompile(`^[.\-_*•●]{5,}$`)
	bulletRe     = regexp.MustCompile(`^(?:[ \t]*(?:[•●▪◦°º*\-\d.)(]+|o[ \t]))+[ \t]*`)
)

// Clean applies NFKC normalization, collapses whitespace runs to a single
// space, trims, and truncates to maxLen runes. maxLen <= 0 disables truncation.
func Clean(text string, maxLen int) string {
	s := norm.NFKC.String(text)
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
		s = string([]rune(s)[:maxLen])
	}
	return s
}

// StripBulletPrefix removes leading bullet glyphs, dashes, asterisks and
// list numbering such as "1." or "2)". A lone "o" counts as a bullet only
// when followed by a space.
func StripBulletPrefix(text string) string {
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		lines[i] = bulletRe.ReplaceAllString(ln, "")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// IsGarbage reports whether a line is filler: a run of five or more
// leader/bullet glyphs once spaces are removed, or fewer than two
// characters with no letter.
func IsGarbage(text string) bool {
	compact := strings.ReplaceAll(strings.TrimSpace(text), " ", "")
	if garbageRe.MatchString(compact) {
		return true
	}
	if utf8.RuneCountInString(compact) < 2 && !hasLetter(compact) {
		return true
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
