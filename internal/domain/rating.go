package domain

import (
	"slices"

	"github.com/reelmates/reelmates-core/internal/normalize"
)

// CriterionScores is the fixed set of named scores every rating carries.
type CriterionScores struct {
	Story   float64 `json:"story"`
	Acting  float64 `json:"acting"`
	Visuals float64 `json:"visuals"`
	Overall float64 `json:"overall"`
}

// Rating is one reviewer's scores for a movie. Reviewer display names
// are compared case-insensitively; at most one rating per reviewer
// exists on a movie.
type Rating struct {
	Reviewer string          `json:"reviewer"`
	Scores   CriterionScores `json:"scores"`
	Comment  string          `json:"comment,omitempty"`
}

// Key returns the caseless identity key for this rating's reviewer.
func (r Rating) Key() string {
	return normalize.ReviewerKey(r.Reviewer)
}

// MergeRatings folds incoming ratings onto existing ones with
// last-write-wins per reviewer key. An incoming rating from a known
// reviewer replaces the existing entry in place; new reviewers are
// appended in incoming order. The result is a fresh slice; neither
// input is mutated. Merging the same incoming set twice is a no-op.
func MergeRatings(existing, incoming []Rating) []Rating {
	merged := slices.Clone(existing)
	for _, in := range incoming {
		replaced := false
		for i := range merged {
			if merged[i].Key() == in.Key() {
				merged[i] = in
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, in)
		}
	}
	return merged
}

// RemoveRating deletes the rating whose reviewer matches name
// case-insensitively. Reports whether anything was removed.
func RemoveRating(ratings []Rating, name string) ([]Rating, bool) {
	key := normalize.ReviewerKey(name)
	out := ratings[:0:0]
	removed := false
	for _, r := range ratings {
		if r.Key() == key {
			removed = true
			continue
		}
		out = append(out, r)
	}
	return out, removed
}
