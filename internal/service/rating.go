package service

import (
	"context"
	"log/slog"

	"github.com/reelmates/reelmates-core/internal/domain"
	"github.com/reelmates/reelmates-core/internal/library"
	"github.com/reelmates/reelmates-core/internal/remote"
)

// RatingService maintains per-reviewer rating records. Ratings live
// outside the movie document remotely, so concurrent reviewers never
// rewrite each other's work; locally they merge last-write-wins into
// the movie's rating list for immediate UI feedback.
type RatingService struct {
	library *library.Library
	ratings remote.RatingStore
	groups  GroupState
	logger  *slog.Logger
}

// NewRatingService creates a rating service.
func NewRatingService(lib *library.Library, ratings remote.RatingStore, groups GroupState, logger *slog.Logger) *RatingService {
	return &RatingService{
		library: lib,
		ratings: ratings,
		groups:  groups,
		logger:  logger,
	}
}

// Upsert merges the rating into the movie's local list, then persists
// it as an independent remote record. The local mutation is never
// rolled back on remote failure; the divergence repairs on the next
// full pull. Returns whether the remote write succeeded.
func (s *RatingService) Upsert(ctx context.Context, movieID string, r domain.Rating) bool {
	movie, _, err := s.library.Find(movieID)
	if err != nil {
		s.logger.Warn("Rating upsert for unknown movie", "movie_id", movieID)
		return false
	}

	merged := domain.MergeRatings(movie.Ratings, []domain.Rating{r})
	if err := s.library.SetRatings(movieID, merged); err != nil {
		return false
	}

	groupID := s.groups.Active().ID
	if err := s.ratings.SaveRating(ctx, groupID, movieID, r); err != nil {
		s.logger.Warn("Rating upload failed, keeping local copy",
			"movie_id", movieID,
			"reviewer", r.Reviewer,
			"error", err,
		)
		return false
	}
	return true
}

// Delete removes the reviewer's rating locally (case-insensitive) and
// deletes the independent remote record. Returns whether the remote
// delete succeeded.
func (s *RatingService) Delete(ctx context.Context, movieID, reviewer string) bool {
	movie, _, err := s.library.Find(movieID)
	if err != nil {
		return false
	}

	remaining, removed := domain.RemoveRating(movie.Ratings, reviewer)
	if removed {
		if err := s.library.SetRatings(movieID, remaining); err != nil {
			return false
		}
	}

	groupID := s.groups.Active().ID
	if err := s.ratings.DeleteRating(ctx, groupID, movieID, reviewer); err != nil {
		s.logger.Warn("Rating delete failed remotely",
			"movie_id", movieID,
			"reviewer", reviewer,
			"error", err,
		)
		return false
	}
	return true
}
