package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dgallion1/pdfinsight/internal/parser"
)

// maxFiles bounds the number of files in one multipart request.
const maxFiles = 50

var errTooLarge = errors.New("file too large")

// parseForm limits the request body to room for n files plus form overhead
// and parses it.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request, n int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*n+1024*1024) // extra 1MB for form overhead
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return fmt.Errorf("invalid multipart form: %w", err)
	}
	return nil
}

// readUploads reads every file under field into memory, sanitizing names.
func (s *Server) readUploads(r *http.Request, field string) ([]parser.Source, error) {
	headers := r.MultipartForm.File[field]
	if len(headers) > maxFiles {
		return nil, fmt.Errorf("too many files (%d > %d)", len(headers), maxFiles)
	}
	out := make([]parser.Source, 0, len(headers))
	for _, fh := range headers {
		data, err := s.readUpload(fh)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		out = append(out, parser.Source{Name: parser.SanitizeFilename(fh.Filename), Data: data})
	}
	return out, nil
}

func (s *Server) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: exceeds max size (%d bytes)", errTooLarge, s.cfg.MaxUploadBytes)
	}
	return data, nil
}

// uploadStatus picks the status code for a readUploads failure.
func uploadStatus(err error) int {
	if errors.Is(err, errTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
