package library

import "github.com/reelmates/reelmates-core/internal/domain"

// Result is the outcome of diffing two snapshots of one collection.
type Result struct {
	// Changed holds movies that are new or materially edited. Ratings
	// are excluded from the comparison; they synchronize as independent
	// records.
	Changed []domain.Movie
	// RemovedIDs are tombstones: ids present in the old snapshot but
	// absent from the new one.
	RemovedIDs []string
}

// Diff computes the record-level delta between an old and a new
// snapshot of a collection. Identity is the movie id; equality ignores
// ratings. Diff(x, x) yields an empty result.
func Diff(old, new []domain.Movie) Result {
	oldByID := make(map[string]domain.Movie, len(old))
	for _, m := range old {
		oldByID[m.ID] = m
	}
	newIDs := make(map[string]struct{}, len(new))

	var res Result
	for _, m := range new {
		newIDs[m.ID] = struct{}{}
		prev, ok := oldByID[m.ID]
		if !ok || !prev.EqualIgnoringRatings(m) {
			res.Changed = append(res.Changed, m)
		}
	}
	for _, m := range old {
		if _, ok := newIDs[m.ID]; !ok {
			res.RemovedIDs = append(res.RemovedIDs, m.ID)
		}
	}
	return res
}
