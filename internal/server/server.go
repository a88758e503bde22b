package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/replog/internal/advisor"
	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/resttimer"
	"github.com/claude/replog/internal/storage"
	"github.com/claude/replog/internal/workout"
	"github.com/go-chi/chi/v5"
)

// defaultUserID scopes all data; there is no multi-user access.
const defaultUserID = 1

// Server holds dependencies for HTTP handlers.
type Server struct {
	db          *storage.DB
	manager     *workout.Manager
	timer       *resttimer.Engine
	advisor     *advisor.Client
	log         *slog.Logger
	apiKey      string
	units       models.UnitSystem
	restSeconds int
	router      chi.Router
}

// Options carries the configuration the handlers thread into the core.
type Options struct {
	APIKey             string
	Units              models.UnitSystem
	DefaultRestSeconds int
}

// New creates a new Server with all routes configured. advisorClient may be
// nil when no advisory service is configured.
func New(db *storage.DB, manager *workout.Manager, timer *resttimer.Engine, advisorClient *advisor.Client, opts Options, log *slog.Logger) *Server {
	s := &Server{
		db:          db,
		manager:     manager,
		timer:       timer,
		advisor:     advisorClient,
		log:         log,
		apiKey:      opts.APIKey,
		units:       opts.Units,
		restSeconds: opts.DefaultRestSeconds,
		router:      chi.NewRouter(),
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

	s.router.Get("/api/v1/health", s.handleHealth)

	// Session lifecycle
	s.router.Route("/api/v1/session", func(r chi.Router) {
		r.Get("/", s.handleActiveSession)
		r.Post("/", s.handleStartSession)
		r.Post("/from-routine/{id}", s.handleStartFromRoutine)
		r.Post("/resume", s.handleResumeSession)
		r.Post("/finish", s.handleFinishSession)
		r.Post("/sets", s.handleAddSet)
		r.Post("/sets/{id}/complete", s.handleCompleteSet)
		r.Delete("/sets/{id}", s.handleDeleteSet)
	})

	// History
	s.router.Get("/api/v1/sessions", s.handleListSessions)
	s.router.Get("/api/v1/sessions/{id}", s.handleGetSession)
	s.router.Delete("/api/v1/sessions/{id}", s.handleDeleteSession)

	// Catalog and routines
	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Post("/api/v1/exercises", s.handleCreateExercise)
	s.router.Get("/api/v1/routines", s.handleListRoutines)
	s.router.Post("/api/v1/routines", s.handleCreateRoutine)
	s.router.Get("/api/v1/routines/{id}", s.handleGetRoutine)
	s.router.Delete("/api/v1/routines/{id}", s.handleDeleteRoutine)
	s.router.Delete("/api/v1/routines/templates/{id}", s.handleDeleteSetTemplate)

	// Rest timer
	s.router.Route("/api/v1/timer", func(r chi.Router) {
		r.Get("/", s.handleTimerState)
		r.Post("/", s.handleTimerStart)
		r.Post("/extend", s.handleTimerExtend)
		r.Post("/cancel", s.handleTimerCancel)
	})

	// Analytics
	s.router.Get("/api/v1/analytics/profile", s.handleProfile)
	s.router.Get("/api/v1/analytics/volume", s.handleVolume)
	s.router.Get("/api/v1/analytics/streak", s.handleStreak)
	s.router.Get("/api/v1/analytics/consistency", s.handleConsistency)
	s.router.Get("/api/v1/analytics/volume-pages", s.handleVolumePages)
	s.router.Get("/api/v1/analytics/progression", s.handleProgression)

	// CSV interchange and advisor (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Get("/api/v1/export", s.handleExportCSV)
		r.Post("/api/v1/import", s.handleImportCSV)
		r.Get("/api/v1/import/logs", s.handleImportLogs)
		r.Post("/api/v1/advisor/routine", s.handleAdvisorRoutine)
		r.Post("/api/v1/advisor/schedule", s.handleAdvisorSchedule)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
