package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/bodycoach/internal/backup"
	"github.com/meltforce/bodycoach/internal/catalog"
	"github.com/meltforce/bodycoach/internal/pose"
	"github.com/meltforce/bodycoach/internal/program"
	"github.com/meltforce/bodycoach/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *storage.Store
	catalog  *catalog.Catalog
	builder  *program.Builder
	analyzer *pose.Analyzer
	backup   *backup.Manager
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured. analyzer may be nil
// when no pose service is configured; photo assessments then degrade to
// self-report only.
func New(store *storage.Store, cat *catalog.Catalog, analyzer *pose.Analyzer, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		catalog:  cat,
		builder:  program.NewBuilder(cat),
		analyzer: analyzer,
		backup:   backup.NewManager(store, log),
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Read endpoints (no auth — tsnet handles access)
	s.router.Get("/api/v1/programs/latest", s.handleLatestProgram)
	s.router.Get("/api/v1/programs/{id}", s.handleGetProgram)
	s.router.Get("/api/v1/programs/{id}/progress", s.handleGetProgress)
	s.router.Get("/api/v1/programs/{id}/next-week", s.handleNextWeek)
	s.router.Get("/api/v1/sessions", s.handleListSessions)
	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Get("/api/v1/exercises/{id}/logs", s.handleExerciseLogs)
	s.router.Get("/api/v1/exercises/{id}/recommendation", s.handleRecommendation)
	s.router.Get("/api/v1/prefs", s.handleGetPrefs)
	s.router.Get("/api/v1/export", s.handleExport)

	// Mutating endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/programs", s.handleCreateProgram)
		r.Post("/api/v1/sessions", s.handleCreateSession)
		r.Put("/api/v1/sessions/{id}", s.handleUpdateSession)
		r.Post("/api/v1/logs", s.handleCreateLog)
		r.Post("/api/v1/assessment", s.handleAssessment)
		r.Post("/api/v1/routine", s.handleRoutine)
		r.Put("/api/v1/prefs", s.handlePutPrefs)
		r.Post("/api/v1/import", s.handleImport)
	})
}
