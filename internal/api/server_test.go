package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/pdfinsight/internal/chunker"
	"github.com/dgallion1/pdfinsight/internal/config"
	"github.com/dgallion1/pdfinsight/internal/embed"
	"github.com/dgallion1/pdfinsight/internal/outline"
	"github.com/dgallion1/pdfinsight/internal/pdftest"
	"github.com/dgallion1/pdfinsight/internal/pipeline"
)

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	inst := embed.NewInstrumented(embed.NewHashEmbedder(0), embed.NewStats(time.Hour))
	svc := pipeline.NewService(
		inst,
		chunker.New(chunker.DefaultConfig(), chunker.BasicSplitter{}),
		outline.NewExtractor(outline.FixedLanguage("en"), outline.DefaultOverrides()),
		pipeline.Options{MaxPages: 30},
		log,
	)
	cfg := config.Config{
		APIKey:         apiKey,
		MaxUploadBytes: 10 << 20,
		WorkerCount:    1,
		MaxQueueSize:   4,
		JobTTL:         time.Hour,
	}
	orch := pipeline.NewOrchestrator(cfg, svc, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, inst, log, cfg)
}

func studyPDF() []byte {
	return pdftest.Build(
		pdftest.Page{Texts: pdftest.Column(72, 740,
			pdftest.Line{Str: "Field Study Report", Size: 20},
			pdftest.Line{Str: "Introduction", Font: pdftest.Bold, Size: 16},
			pdftest.Line{Str: "The survey covered coastal villages and their fishing economies.", Size: 10},
			pdftest.Line{Str: "Interviews focused on household income and seasonal migration.", Size: 10},
			pdftest.Line{Str: "Prepared by the survey team", Font: pdftest.Italic, Size: 11},
		)},
		pdftest.Page{Texts: pdftest.Column(72, 740,
			pdftest.Line{Str: "Methods", Font: pdftest.Bold, Size: 16},
			pdftest.Line{Str: "Water samples were filtered and measured with a calibrated spectrometer.", Size: 10},
			pdftest.Line{Str: "Each sample was analysed twice to estimate laboratory measurement error.", Size: 10},
		)},
	)
}

func garbagePDF() []byte {
	return pdftest.Build(pdftest.Page{Texts: pdftest.Column(72, 740,
		pdftest.Line{Str: ".......", Size: 10},
		pdftest.Line{Str: "-----", Size: 10},
		pdftest.Line{Str: "*****", Size: 10},
	)})
}

type upload struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestHealthAndInfo(t *testing.T) {
	s := newTestServer(t, "secret")

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "feature-hash", health["model"])

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/info", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var info map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	conf := info["configuration"].(map[string]any)
	assert.Equal(t, float64(4), conf["chunk_sentence_window"])
	assert.Equal(t, float64(60), conf["section_candidate_limit"])
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, "secret")

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/stats/embed", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/embed", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, serve(s, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/stats/embed", nil)
	req.Header.Set("Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, serve(s, req).Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, "secret")

	req := httptest.NewRequest(http.MethodOptions, "/semantic/process-pdfs", nil)
	req.Header.Set("Origin", "https://app.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := serve(s, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.org")
	rec = serve(s, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestProcessPDFs(t *testing.T) {
	s := newTestServer(t, "")
	req := multipartRequest(t, "/semantic/process-pdfs",
		map[string]string{
			"persona": "Laboratory analyst",
			"job":     "Review how water samples were measured with the spectrometer",
		},
		upload{"files", "study.pdf", studyPDF()},
	)
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decode(t, rec)
	assert.True(t, env.Success)
	var data struct {
		Metadata struct {
			InputDocuments []string `json:"input_documents"`
			RequestID      string   `json:"request_id"`
		} `json:"metadata"`
		ExtractedSections []struct {
			SectionTitle   string `json:"section_title"`
			ImportanceRank int    `json:"importance_rank"`
		} `json:"extracted_sections"`
		SubsectionAnalysis []struct {
			RefinedText string `json:"refined_text"`
		} `json:"subsection_analysis"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.ExtractedSections)
	assert.Equal(t, "Methods", data.ExtractedSections[0].SectionTitle)
	assert.Equal(t, 1, data.ExtractedSections[0].ImportanceRank)
	assert.Len(t, data.SubsectionAnalysis, len(data.ExtractedSections))
	assert.Equal(t, []string{"study.pdf"}, data.Metadata.InputDocuments)
	assert.NotEmpty(t, data.Metadata.RequestID)
}

func TestProcessPDFs_Errors(t *testing.T) {
	s := newTestServer(t, "")

	rec := serve(s, multipartRequest(t, "/semantic/process-pdfs",
		map[string]string{"persona": "Analyst", "job": "Check things"},
		upload{"files", "study.pdf", studyPDF()},
		upload{"files", "notes.txt", []byte("hello")},
	))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec).Error, "notes.txt")

	rec = serve(s, multipartRequest(t, "/semantic/process-pdfs",
		map[string]string{"persona": "Analyst", "job": "Check things"},
		upload{"files", "dots.pdf", garbagePDF()},
	))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(s, multipartRequest(t, "/semantic/process-pdfs",
		map[string]string{"persona": "", "job": "Check things"},
		upload{"files", "study.pdf", studyPDF()},
	))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/semantic/process-pdfs", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, serve(s, req).Code)
}

func TestProcessPDFsJSON(t *testing.T) {
	s := newTestServer(t, "")

	body, _ := json.Marshal(map[string]any{
		"persona": "Laboratory analyst",
		"job":     "Review how water samples were measured with the spectrometer",
		"files": []map[string]string{
			{"filename": "study.pdf", "content": base64.StdEncoding.EncodeToString(studyPDF())},
		},
	})
	rec := serve(s, httptest.NewRequest(http.MethodPost, "/semantic/process-pdfs-json", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode(t, rec).Success)

	body, _ = json.Marshal(map[string]any{
		"persona": "Analyst",
		"job":     "Anything",
		"files":   []map[string]string{{"filename": "bad.pdf", "content": "%%%"}},
	})
	rec = serve(s, httptest.NewRequest(http.MethodPost, "/semantic/process-pdfs-json", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec).Error, "bad.pdf")

	rec = serve(s, httptest.NewRequest(http.MethodPost, "/semantic/process-pdfs-json", bytes.NewReader([]byte("not json"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFindSimilarSnippets(t *testing.T) {
	s := newTestServer(t, "")

	rec := serve(s, multipartRequest(t, "/semantic/find-similar-snippets",
		map[string]string{"query_text": "water samples measured with a calibrated spectrometer"},
		upload{"files", "study.pdf", studyPDF()},
		upload{"files", "readme.md", []byte("# ignored")},
	))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var data struct {
		Snippets []struct {
			Document   string `json:"document"`
			PageNumber int    `json:"page_number"`
		} `json:"snippets"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	require.NotEmpty(t, data.Snippets)
	assert.Equal(t, 2, data.Snippets[0].PageNumber)

	rec = serve(s, multipartRequest(t, "/semantic/find-similar-snippets",
		map[string]string{"query_text": "  "},
		upload{"files", "study.pdf", studyPDF()},
	))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOutline(t *testing.T) {
	s := newTestServer(t, "")

	rec := serve(s, multipartRequest(t, "/api/outline", nil, upload{"file", "study.pdf", studyPDF()}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res outline.Result
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &res))
	assert.Equal(t, "Field Study Report", res.Title)
	assert.Contains(t, res.Outline, outline.Entry{Level: outline.H1, Text: "Methods", Page: 1})

	rec = serve(s, multipartRequest(t, "/api/outline", nil, upload{"file", "broken.pdf", []byte("%PDF-1.4 nope")}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(s, multipartRequest(t, "/api/outline", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOutlineBatch(t *testing.T) {
	s := newTestServer(t, "")

	rec := serve(s, multipartRequest(t, "/api/outline/batch", nil,
		upload{"files", "study.pdf", studyPDF()},
		upload{"files", "broken.pdf", []byte("%PDF-1.4 nope")},
	))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var accepted struct {
		JobID   string `json:"job_id"`
		PollURL string `json:"poll_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	assert.Equal(t, fmt.Sprintf("/api/outline/jobs/%s", accepted.JobID), accepted.PollURL)

	var snap pipeline.JobSnapshot
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		rec = serve(s, httptest.NewRequest(http.MethodGet, accepted.PollURL, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &snap))
		if snap.Status != pipeline.StatusQueued && snap.Status != pipeline.StatusExtracting {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, pipeline.StatusPartial, snap.Status)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "study.pdf", snap.Results[0].Filename)
	assert.Len(t, snap.Progress.Errors, 1)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/outline/jobs/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(s, multipartRequest(t, "/api/outline/batch", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmbedStats(t *testing.T) {
	s := newTestServer(t, "")
	serve(s, multipartRequest(t, "/semantic/find-similar-snippets",
		map[string]string{"query_text": "water samples"},
		upload{"files", "study.pdf", studyPDF()},
	))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/stats/embed", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var snap embed.StatsSnapshot
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &snap))
	assert.Equal(t, "feature-hash", snap.Model)
	assert.Equal(t, 1, snap.Calls)

	s.stats = nil
	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/stats/embed", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&pipeline.StageError{Kind: pipeline.ErrInvalidInput}, http.StatusBadRequest},
		{&pipeline.StageError{Kind: pipeline.ErrDecode}, http.StatusBadRequest},
		{&pipeline.StageError{Kind: pipeline.ErrEmptyCorpus}, http.StatusUnprocessableEntity},
		{&pipeline.StageError{Kind: pipeline.ErrParse}, http.StatusUnprocessableEntity},
		{fmt.Errorf("score: %w", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
