package parser

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
)

// Source is an uploaded document normalized to raw bytes.
type Source struct {
	Name string
	Data []byte
}

// DecodeBase64 turns a base64 payload (optionally a data: URL) into a Source.
// Raw and encoded uploads of the same file yield identical Data.
func DecodeBase64(name, payload string) (Source, error) {
	s := strings.TrimSpace(payload)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t', ' ':
			return -1
		}
		return r
	}, s)

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if rawErr != nil {
			return Source{}, fmt.Errorf("%w: %s: %v", ErrEncoding, name, err)
		}
	}
	return Source{Name: SanitizeFilename(name), Data: data}, nil
}

// SanitizeFilename strips path components so only a safe base name remains.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
