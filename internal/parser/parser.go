package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pdfinsight/internal/doctree"
)

var (
	// ErrNotPDF is returned for payloads or filenames that are not PDFs.
	ErrNotPDF = errors.New("not a pdf")
	// ErrInvalidPDF is returned when a PDF fails structural validation.
	ErrInvalidPDF = errors.New("invalid pdf")
	// ErrEncoding is returned when a base64 payload cannot be decoded.
	ErrEncoding = errors.New("malformed base64 payload")
)

// Parser converts raw document bytes into a positioned-text Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf": true,
}

// ForFile returns the parser for a filename, or ErrNotPDF.
func ForFile(filename string, maxPages int) (Parser, error) {
	if !IsSupportedExtension(filename) {
		return nil, fmt.Errorf("%w: unsupported file extension %q", ErrNotPDF, filepath.Ext(filename))
	}
	return &PDFParser{MaxPages: maxPages}, nil
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
