package api

import (
	"log/slog"
	"net/http"

	"github.com/dctremblay/pagemill/internal/config"
	"github.com/dctremblay/pagemill/internal/pipeline"
	"github.com/dctremblay/pagemill/internal/transcribe"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for pagemill.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	claude       *transcribe.ClaudeClient
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, claude *transcribe.ClaudeClient, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		claude:       claude,
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

	// Authenticated endpoints. With no key configured, auth is disabled.
	r.Group(func(r chi.Router) {
		if s.cfg.PagemillAPIKey != "" {
			r.Use(AuthMiddleware(s.cfg.PagemillAPIKey, s.log))
		}

		r.Post("/api/books", s.handleSubmitBook)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/stats/recognition", s.handleRecognitionStats)

		r.Get("/api/books", s.handleListBooks)
		r.Get("/api/books/{bookID}/chunks", s.handleBookChunks)
		r.Get("/api/books/{bookID}/export/{format}", s.handleExport)
		r.Delete("/api/books/{bookID}", s.handleDeleteBook)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
