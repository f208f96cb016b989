package api

import (
	"encoding/json/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reelmates/reelmates-core/internal/domain"
	"github.com/reelmates/reelmates-core/internal/http/response"
	"github.com/reelmates/reelmates-core/internal/id"
)

// MovieListResponse contains both collections.
type MovieListResponse struct {
	Watched []domain.Movie `json:"watched"`
	Backlog []domain.Movie `json:"backlog"`
}

// AddMovieRequest contains the fields for tracking a new movie.
type AddMovieRequest struct {
	Title       string          `json:"title" validate:"required,max=512"`
	Year        string          `json:"year" validate:"required,release_year"`
	CatalogID   int64           `json:"catalog_id"`
	PosterPath  string          `json:"poster_path"`
	SuggestedBy string          `json:"suggested_by"`
	Backlog     bool            `json:"backlog"`
	Genres      []domain.Genre  `json:"genres"`
	Location    string          `json:"location"`
	WatchedAt   *time.Time      `json:"watched_at"`
}

// MarkWatchedRequest stamps a backlog movie as watched.
type MarkWatchedRequest struct {
	WatchedAt *time.Time `json:"watched_at"`
	Location  string     `json:"location"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, MovieListResponse{
		Watched: s.library.Watched(),
		Backlog: s.library.Backlog(),
	}, s.logger)
}

func (s *Server) handleAddMovie(w http.ResponseWriter, r *http.Request) {
	var req AddMovieRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	group := s.groupSvc.Active()
	movie := domain.Movie{
		ID:          id.MustGenerate(id.PrefixMovie),
		Title:       req.Title,
		Year:        req.Year,
		CatalogID:   req.CatalogID,
		PosterPath:  req.PosterPath,
		SuggestedBy: req.SuggestedBy,
		Genres:      req.Genres,
		GroupID:     group.ID,
		GroupName:   group.Name,
	}
	if !req.Backlog {
		watchedAt := time.Now().UTC()
		if req.WatchedAt != nil {
			watchedAt = *req.WatchedAt
		}
		movie.WatchedAt = &watchedAt
		movie.Location = req.Location
	}

	if err := s.library.Add(movie, req.Backlog); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, movie, s.logger)
}

func (s *Server) handleRemoveMovie(w http.ResponseWriter, r *http.Request) {
	movieID := chi.URLParam(r, "id")
	if movieID == "" {
		response.BadRequest(w, "Movie ID is required", s.logger)
		return
	}

	if err := s.library.Remove(movieID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

func (s *Server) handleMarkWatched(w http.ResponseWriter, r *http.Request) {
	movieID := chi.URLParam(r, "id")

	var req MarkWatchedRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	watchedAt := time.Now().UTC()
	if req.WatchedAt != nil {
		watchedAt = *req.WatchedAt
	}

	if err := s.library.MarkWatched(movieID, watchedAt, req.Location); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	movie, _, err := s.library.Find(movieID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, movie, s.logger)
}

func (s *Server) handleMoveToBacklog(w http.ResponseWriter, r *http.Request) {
	movieID := chi.URLParam(r, "id")

	if err := s.library.MoveToBacklog(movieID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	movie, _, err := s.library.Find(movieID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, movie, s.logger)
}
