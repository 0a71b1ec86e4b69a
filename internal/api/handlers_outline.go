package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/pdfinsight/internal/parser"
	"github.com/dgallion1/pdfinsight/internal/pipeline"
)

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 1); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	file.Close()
	data, err := s.readUpload(header)
	if err != nil {
		jsonError(w, err.Error(), uploadStatus(err))
		return
	}

	doc := parser.Source{Name: parser.SanitizeFilename(header.Filename), Data: data}
	res, err := s.svc.ExtractOutline(r.Context(), doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonOK(w, res)
}

func (s *Server) handleOutlineBatch(w http.ResponseWriter, r *http.Request) {
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
	if len(docs) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(docs)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"files":    len(docs),
		"poll_url": fmt.Sprintf("/api/outline/jobs/%s", job.ID),
	})
}

func (s *Server) handleOutlineJob(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	jsonOK(w, job.Snapshot())
}
