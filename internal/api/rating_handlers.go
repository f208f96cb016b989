package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reelmates/reelmates-core/internal/domain"
	"github.com/reelmates/reelmates-core/internal/http/response"
)

// UpsertRatingRequest carries one reviewer's scores for a movie.
type UpsertRatingRequest struct {
	Reviewer string  `json:"reviewer" validate:"required,max=128"`
	Story    float64 `json:"story" validate:"gte=0,lte=10"`
	Acting   float64 `json:"acting" validate:"gte=0,lte=10"`
	Visuals  float64 `json:"visuals" validate:"gte=0,lte=10"`
	Overall  float64 `json:"overall" validate:"gte=0,lte=10"`
	Comment  string  `json:"comment" validate:"max=2048"`
}

// RatingResponse reports the movie's merged ratings plus whether the
// remote write stuck. A false Synced means the caller is offline; the
// local copy is kept and uploads on the next opportunity.
type RatingResponse struct {
	Ratings []domain.Rating `json:"ratings"`
	Synced  bool            `json:"synced"`
}

func (s *Server) handleUpsertRating(w http.ResponseWriter, r *http.Request) {
	movieID := chi.URLParam(r, "id")

	var req UpsertRatingRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	rating := domain.Rating{
		Reviewer: req.Reviewer,
		Scores: domain.CriterionScores{
			Story:   req.Story,
			Acting:  req.Acting,
			Visuals: req.Visuals,
			Overall: req.Overall,
		},
		Comment: req.Comment,
	}

	synced := s.ratingSvc.Upsert(r.Context(), movieID, rating)

	movie, _, err := s.library.Find(movieID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, RatingResponse{Ratings: movie.Ratings, Synced: synced}, s.logger)
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	movieID := chi.URLParam(r, "id")
	reviewer := chi.URLParam(r, "reviewer")

	synced := s.ratingSvc.Delete(r.Context(), movieID, reviewer)

	movie, _, err := s.library.Find(movieID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, RatingResponse{Ratings: movie.Ratings, Synced: synced}, s.logger)
}
