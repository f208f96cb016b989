// Package api provides the HTTP API the companion UI talks to: the
// local movie collections, ratings, groups, goals, catalog search, and
// sync control.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/reelmates/reelmates-core/internal/blob"
	"github.com/reelmates/reelmates-core/internal/library"
	"github.com/reelmates/reelmates-core/internal/metadata/tmdb"
	"github.com/reelmates/reelmates-core/internal/service"
	"github.com/reelmates/reelmates-core/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     *blob.Store
	library   *library.Library
	syncSvc   *service.SyncService
	ratingSvc *service.RatingService
	groupSvc  *service.GroupService
	goalSvc   *service.GoalService
	catalog   *tmdb.Client
	validator *validation.Validator
	router    *chi.Mux
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store *blob.Store, lib *library.Library, syncSvc *service.SyncService, ratingSvc *service.RatingService, groupSvc *service.GroupService, goalSvc *service.GoalService, catalog *tmdb.Client, logger *slog.Logger) *Server {
	s := &Server{
		store:     store,
		library:   lib,
		syncSvc:   syncSvc,
		ratingSvc: ratingSvc,
		groupSvc:  groupSvc,
		goalSvc:   goalSvc,
		catalog:   catalog,
		validator: validation.New(),
		router:    chi.NewRouter(),
		logger:    logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         86400,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Movie collections.
		r.Route("/movies", func(r chi.Router) {
			r.Get("/", s.handleListMovies)
			r.Post("/", s.handleAddMovie)
			r.Delete("/{id}", s.handleRemoveMovie)
			r.Post("/{id}/watch", s.handleMarkWatched)
			r.Post("/{id}/backlog", s.handleMoveToBacklog)

			// Ratings.
			r.Put("/{id}/ratings", s.handleUpsertRating)
			r.Delete("/{id}/ratings/{reviewer}", s.handleDeleteRating)
		})

		// Groups.
		r.Route("/groups", func(r chi.Router) {
			r.Get("/", s.handleListGroups)
			r.Post("/", s.handleCreateGroup)
			r.Post("/join", s.handleJoinGroup)
			r.Post("/leave", s.handleLeaveGroup)
			r.Delete("/{id}", s.handleForgetGroup)
		})

		// Goals.
		r.Route("/goals", func(r chi.Router) {
			r.Get("/yearly", s.handleGetYearlyGoals)
			r.Put("/yearly/{year}", s.handleSetYearlyGoal)
			r.Get("/custom", s.handleListCustomGoals)
			r.Post("/custom", s.handleUpsertCustomGoal)
			r.Delete("/custom/{id}", s.handleDeleteCustomGoal)
		})

		// Catalog search.
		r.Get("/catalog/search", s.handleCatalogSearch)
		r.Get("/catalog/movies/{id}", s.handleCatalogMovie)

		// Sync control.
		r.Route("/sync", func(r chi.Router) {
			r.Get("/status", s.handleSyncStatus)
			r.Post("/refresh", s.handleSyncRefresh)
		})
	})
}
