package outline

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// UnknownLanguage is reported when no language can be determined.
const UnknownLanguage = "unknown"

// maxDetectRunes bounds how much document text is sampled for detection.
const maxDetectRunes = 10000

// latinLanguages use case and sentence punctuation the heading rules rely on.
var latinLanguages = map[string]bool{
	"en": true, "fr": true, "de": true, "es": true, "pt": true, "it": true,
}

// LanguageDetector returns an ISO 639-1 code for a document's text.
type LanguageDetector interface {
	Detect(text string) string
}

// FixedLanguage always reports the same language code.
type FixedLanguage string

func (f FixedLanguage) Detect(string) string { return string(f) }

// detectableLanguages are the languages the detector chooses between: the
// Latin allowlist plus the common non-Latin scripts in submitted forms.
var detectableLanguages = []lingua.Language{
	lingua.English, lingua.French, lingua.German,
	lingua.Spanish, lingua.Portuguese, lingua.Italian,
	lingua.Hindi, lingua.Bengali, lingua.Japanese,
	lingua.Chinese, lingua.Arabic, lingua.Russian,
}

// LinguaDetector detects languages with lingua-go. Models are loaded when
// the detector is built and are read-only afterwards, so Detect is safe for
// concurrent use.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

func NewLinguaDetector() *LinguaDetector {
	return &LinguaDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectableLanguages...).
			WithPreloadedLanguageModels().
			Build(),
	}
}

func (d *LinguaDetector) Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return UnknownLanguage
	}
	if r := []rune(text); len(r) > maxDetectRunes {
		text = string(r[:maxDetectRunes])
	}

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return UnknownLanguage
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
