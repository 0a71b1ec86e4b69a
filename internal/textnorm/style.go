package textnorm

import "strings"

// DetectStyle derives bold/italic flags from a font name: "bold" marks
// bold, "italic" or "oblique" marks italic, case-insensitively.
func DetectStyle(fontName string) (bold, italic bool) {
	name := strings.ToLower(fontName)
	return strings.Contains(name, "bold"), strings.Contains(name, "italic") || strings.Contains(name, "oblique")
}
