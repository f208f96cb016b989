package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/reelmates/reelmates-core/internal/errors"
	"github.com/reelmates/reelmates-core/internal/http/response"
	"github.com/reelmates/reelmates-core/internal/metadata/tmdb"
)

func (s *Server) handleCatalogSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.BadRequest(w, "Query parameter 'q' is required", s.logger)
		return
	}

	results, err := s.catalog.Search(r.Context(), query)
	if err != nil {
		s.handleCatalogError(w, err)
		return
	}

	response.Success(w, results, s.logger)
}

// CatalogMovieResponse is a movie's catalog record joined with its keywords.
type CatalogMovieResponse struct {
	Details  *tmdb.MovieDetails `json:"details"`
	Keywords []tmdb.Keyword     `json:"keywords"`
}

func (s *Server) handleCatalogMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || movieID <= 0 {
		response.BadRequest(w, "Invalid catalog movie id", s.logger)
		return
	}

	details, err := s.catalog.Details(r.Context(), movieID)
	if err != nil {
		s.handleCatalogError(w, err)
		return
	}

	keywords, err := s.catalog.Keywords(r.Context(), movieID)
	if err != nil {
		// Keywords are decoration. A missing list does not block the record.
		s.logger.Warn("Failed to fetch catalog keywords", "movie_id", movieID, "error", err)
		keywords = nil
	}

	response.Success(w, CatalogMovieResponse{Details: details, Keywords: keywords}, s.logger)
}

func (s *Server) handleCatalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, errors.ErrMissingCredential) {
		// Distinct from a lookup failure: the UI prompts for an API
		// key instead of showing a retry.
		response.Unauthorized(w, "Catalog API key not configured", s.logger)
		return
	}
	response.HandleError(w, err, s.logger)
}
