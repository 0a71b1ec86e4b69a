package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dgallion1/pdfinsight/internal/config"
	"github.com/dgallion1/pdfinsight/internal/embed"
	"github.com/dgallion1/pdfinsight/internal/pipeline"
)

// Version is reported by /info.
var Version = "dev"

// StatsSource reports embedding call statistics.
type StatsSource interface {
	Snapshot() embed.StatsSnapshot
}

// Server is the HTTP API server for pdfinsight.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	svc          *pipeline.Service
	stats        StatsSource
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(orch *pipeline.Orchestrator, stats StatsSource, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		svc:          orch.Service(),
		stats:        stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:       []string{"Authorization", "Content-Type"},
		MaxAge:               300,
		OptionsSuccessStatus: http.StatusNoContent,
	}))

	// Public endpoints.
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/info", s.handleInfo)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Route("/semantic", func(r chi.Router) {
			r.Post("/find-similar-snippets", s.handleFindSimilarSnippets)
			r.Post("/process-pdfs", s.handleProcessPDFs)
			r.Post("/process-pdfs-json", s.handleProcessPDFsJSON)
		})

		r.Post("/api/outline", s.handleOutline)
		r.Post("/api/outline/batch", s.handleOutlineBatch)
		r.Get("/api/outline/jobs/{jobID}", s.handleOutlineJob)
		r.Get("/api/stats/embed", s.handleEmbedStats)
	})

	s.router = r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "pdfinsight is running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"model":     s.svc.Model(),
		"jobs": map[string]int{
			"queued":  s.orchestrator.QueueDepth(),
			"tracked": s.orchestrator.TrackedJobs(),
		},
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	ch := s.svc.ChunkerConfig()
	writeJSON(w, http.StatusOK, map[string]any{
		"api_version":       Version,
		"model_name":        s.svc.Model(),
		"max_upload_bytes":  s.cfg.MaxUploadBytes,
		"max_pages":         s.svc.Options().MaxPages,
		"supported_formats": []string{"pdf"},
		"configuration": map[string]any{
			"n_top_sections":           5,
			"chunk_sentence_window":    ch.Window,
			"chunks_per_section_limit": ch.MaxPerSection,
			"section_candidate_limit":  pipeline.SectionCandidateLimit,
			"relevance_threshold":      0.30,
		},
		"endpoints": map[string]string{
			"/health":                         "GET - Health check",
			"/info":                           "GET - API information",
			"/semantic/find-similar-snippets": "POST - Snippets relevant to a query (form data)",
			"/semantic/process-pdfs":          "POST - Rank sections for a persona (form data)",
			"/semantic/process-pdfs-json":     "POST - Rank sections for a persona (JSON, base64 files)",
			"/api/outline":                    "POST - Title and heading outline of one PDF",
			"/api/outline/batch":              "POST - Queue outline extraction for many PDFs",
			"/api/outline/jobs/{jobID}":       "GET - Batch outline job status",
			"/api/stats/embed":                "GET - Embedding latency statistics",
		},
	})
}
