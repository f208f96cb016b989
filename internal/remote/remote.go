// Package remote defines the shared record store the sync engine talks
// to: movies, per-reviewer ratings, and goals, all partitioned by an
// opaque group id. The engine never assumes multi-record atomicity;
// every record synchronizes independently.
package remote

import (
	"context"

	"github.com/reelmates/reelmates-core/internal/domain"
)

// DefaultScope is the partition used when no group is active. A device
// that has left all groups still syncs against this ungrouped scope.
const DefaultScope = "default"

// MovieRecord pairs a movie with its collection membership flag.
type MovieRecord struct {
	Movie   domain.Movie `json:"movie"`
	Backlog bool         `json:"backlog"`
}

// MovieStore is the remote movie record store.
type MovieStore interface {
	// Fetch returns every movie record in the group's partition.
	Fetch(ctx context.Context, groupID string) ([]MovieRecord, error)
	// Save upserts one movie record. The movie's denormalized GroupID
	// selects the partition.
	Save(ctx context.Context, m domain.Movie, backlog bool) error
	// Delete removes the record with the given movie id.
	Delete(ctx context.Context, movieID string) error
}

// RatingStore holds per-reviewer rating records independently of the
// movie records, so two reviewers rating the same movie concurrently
// never rewrite the whole movie document.
type RatingStore interface {
	FetchRatings(ctx context.Context, groupID string, movieIDs []string) (map[string][]domain.Rating, error)
	SaveRating(ctx context.Context, groupID, movieID string, r domain.Rating) error
	DeleteRating(ctx context.Context, groupID, movieID, reviewer string) error
}

// GoalStore holds the group's yearly targets and the versioned
// custom-goals payload.
type GoalStore interface {
	FetchYearlyGoals(ctx context.Context, groupID string) (domain.YearlyGoals, error)
	SaveYearlyGoal(ctx context.Context, groupID string, year, target int) error
	FetchCustomGoals(ctx context.Context, groupID string) ([]byte, error)
	SaveCustomGoals(ctx context.Context, groupID string, payload []byte) error
}

// Store bundles the three record stores a full engine needs. Both the
// HTTP client and the in-memory fake satisfy it.
type Store interface {
	MovieStore
	RatingStore
	GoalStore
}

// Scope maps an active group id to its partition, folding the detached
// state onto the default scope.
func Scope(groupID string) string {
	if groupID == "" {
		return DefaultScope
	}
	return groupID
}
