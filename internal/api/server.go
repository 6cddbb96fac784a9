package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/copywrite/internal/config"
	"github.com/dgallion1/copywrite/internal/copywriting"
	"github.com/dgallion1/copywrite/internal/pipeline"
	"github.com/dgallion1/copywrite/internal/stats"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for copywrite.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	filter       *copywriting.Filter
	flags        copywriting.Flags
	stats        *stats.Recorder
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. flags are the site-wide
// defaults that requests may narrow.
func NewServer(orch *pipeline.Orchestrator, filter *copywriting.Filter, flags copywriting.Flags, rec *stats.Recorder, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		filter:       filter,
		flags:        flags,
		stats:        rec,
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

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/format", s.handleFormat)
		r.Post("/api/format/file", s.handleFormatFile)

		r.Post("/api/jobs", s.handleSubmitJobs)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/jobs/{jobID}/content", s.handleJobContent)

		r.Get("/api/stats", s.handleStats)
		r.Get("/api/dictionary", s.handleDictionary)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
