package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jonathan/resume-tailor/internal/events"
	"github.com/jonathan/resume-tailor/internal/genclient"
	"github.com/jonathan/resume-tailor/internal/generator"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/profile"
	"github.com/jonathan/resume-tailor/internal/store"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server

	store      *store.Store
	pipe       *pipeline.Controller
	experience *generator.Experience
	project    *generator.Project
	skills     *generator.Skills
	profile    profile.Source
	sessions   *SessionService
	bus        *events.Bus

	// Per-format export guards; duplicate concurrent exports return 409.
	docxBusy atomic.Bool
	pdfBusy  atomic.Bool
}

// Config holds server configuration
type Config struct {
	Port int
	// JWTSecret enables session validation on all non-health routes when
	// non-empty.
	JWTSecret  string
	SessionTTL time.Duration
}

// Deps are the collaborators the server exposes over HTTP.
type Deps struct {
	Store     *store.Store
	Pipeline  *pipeline.Controller
	GenClient genclient.Client
	Profile   profile.Source
	Bus       *events.Bus
}

// New creates a new server instance
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		store:      deps.Store,
		pipe:       deps.Pipeline,
		experience: generator.NewExperience(deps.Store, deps.Pipeline, deps.GenClient),
		project:    generator.NewProject(deps.Store, deps.Pipeline, deps.GenClient),
		skills:     generator.NewSkills(deps.Store, deps.Pipeline, deps.GenClient),
		profile:    deps.Profile,
		bus:        deps.Bus,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /pipeline", s.handleGetPipeline)
	mux.HandleFunc("POST /pipeline/navigate", s.handleNavigate)
	mux.HandleFunc("PUT /pipeline/fields", s.handleSetFields)
	mux.HandleFunc("POST /pipeline/ingest", s.handleIngestJobURL)

	mux.HandleFunc("POST /steps/{step}/generate", s.handleGenerate)
	mux.HandleFunc("POST /steps/{step}/skip", s.handleSkip)
	mux.HandleFunc("POST /steps/{step}/complete", s.handleComplete)

	mux.HandleFunc("GET /draft", s.handleGetDraft)
	mux.HandleFunc("PUT /draft/experiences/{index}", s.handleUpdateExperience)
	mux.HandleFunc("PUT /draft/projects/{index}", s.handleUpdateProject)
	mux.HandleFunc("POST /draft/skills", s.handleAddSkillCategory)
	mux.HandleFunc("PUT /draft/skills/{category}", s.handleSetCategorySkills)
	mux.HandleFunc("DELETE /draft/skills/{category}", s.handleRemoveSkillCategory)

	mux.HandleFunc("GET /applications", s.handleListApplications)
	mux.HandleFunc("PUT /applications", s.handleSetApplications)

	mux.HandleFunc("POST /profile/refresh", s.handleRefreshProfile)

	mux.HandleFunc("GET /preview", s.handlePreview)
	mux.HandleFunc("GET /export/docx", s.handleExportDOCX)
	mux.HandleFunc("GET /export/pdf", s.handleExportPDF)

	var handler http.Handler = mux
	if cfg.JWTSecret != "" {
		s.sessions = NewSessionService(cfg.JWTSecret, cfg.SessionTTL)
		handler = s.withSession(handler)
	}

	// Health stays outside session validation for probes.
	root := http.NewServeMux()
	root.HandleFunc("GET /health", s.handleHealth)
	root.Handle("/", handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(root)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // generation calls have no client-side timeout
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for requests and blocks until an interrupt or
// SIGTERM triggers a graceful shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Println("Server stopped")
	return nil
}

// Handler returns the server's root handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
