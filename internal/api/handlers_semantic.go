package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/pdfinsight/internal/pipeline"
)

func (s *Server) handleFindSimilarSnippets(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, maxFiles); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	docs, err := s.readUploads(r, "files")
	if err != nil {
		jsonError(w, err.Error(), uploadStatus(err))
		return
	}

	res, err := s.svc.FindSimilarSnippets(r.Context(), r.FormValue("query_text"), docs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonOK(w, res)
}

func (s *Server) handleProcessPDFs(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, maxFiles); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	docs, err := s.readUploads(r, "files")
	if err != nil {
		jsonError(w, err.Error(), uploadStatus(err))
		return
	}

	res, err := s.svc.RankSectionsForPersona(r.Context(), r.FormValue("persona"), r.FormValue("job"), docs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonOK(w, res)
}

type processJSONRequest struct {
	Persona string                 `json:"persona"`
	Job     string                 `json:"job"`
	Files   []pipeline.EncodedFile `json:"files"`
}

func (s *Server) handleProcessPDFsJSON(w http.ResponseWriter, r *http.Request) {
	// Base64 inflates payloads by a third.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*maxFiles*4/3+1024*1024)

	var req processJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Files) > maxFiles {
		jsonError(w, "too many files", http.StatusBadRequest)
		return
	}

	docs, err := pipeline.DecodeAll(req.Files)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, d := range docs {
		if int64(len(d.Data)) > s.cfg.MaxUploadBytes {
			jsonError(w, d.Name+": file exceeds max size", http.StatusRequestEntityTooLarge)
			return
		}
	}

	res, err := s.svc.RankSectionsForPersona(r.Context(), req.Persona, req.Job, docs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonOK(w, res)
}
