// Package server exposes the application core over HTTP for the view
// layer: a command invoke surface, state reads, and session dispatch.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/stride/internal/bridge"
	"github.com/claude/stride/internal/history"
	"github.com/claude/stride/internal/store"
	"github.com/claude/stride/internal/treadmill"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     *store.Store
	registry  *bridge.Registry
	connector *treadmill.Connector
	history   *history.DB
	log       *slog.Logger
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(st *store.Store, registry *bridge.Registry, connector *treadmill.Connector, hist *history.DB, log *slog.Logger) *Server {
	s := &Server{
		store:     st,
		registry:  registry,
		connector: connector,
		history:   hist,
		log:       log,
		router:    chi.NewRouter(),
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

	s.router.Post("/api/v1/invoke/{command}", s.handleInvoke)
	s.router.Get("/api/v1/state", s.handleState)
	s.router.Post("/api/v1/workouts/start", s.handleStartWorkout)
	s.router.Post("/api/v1/workouts/end", s.handleEndWorkout)
	s.router.Get("/api/v1/treadmill/data", s.handleTreadmillData)
	s.router.Post("/api/v1/treadmill/start", s.handleTreadmillStart)
	s.router.Post("/api/v1/treadmill/stop", s.handleTreadmillStop)
	s.router.Post("/api/v1/treadmill/speed", s.handleTreadmillSpeed)
	s.router.Post("/api/v1/treadmill/incline", s.handleTreadmillIncline)
	s.router.Get("/api/v1/sessions", s.handleSessions)
	s.router.Get("/healthz", s.handleHealth)
}
