package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelmates/reelmates-core/internal/domain"
)

func movie(id, title string) domain.Movie {
	return domain.Movie{ID: id, Title: title, Year: "2009"}
}

func TestDiff_IdenticalSnapshotsAreEmpty(t *testing.T) {
	snapshot := []domain.Movie{movie("U1", "Up"), movie("H1", "Heat")}

	res := Diff(snapshot, snapshot)
	assert.Empty(t, res.Changed)
	assert.Empty(t, res.RemovedIDs)
}

func TestDiff_Added(t *testing.T) {
	old := []domain.Movie{movie("U1", "Up")}
	updated := []domain.Movie{movie("U1", "Up"), movie("H1", "Heat")}

	res := Diff(old, updated)
	require.Len(t, res.Changed, 1)
	assert.Equal(t, "H1", res.Changed[0].ID)
	assert.Empty(t, res.RemovedIDs)
}

func TestDiff_Removed(t *testing.T) {
	old := []domain.Movie{movie("U1", "Up"), movie("H1", "Heat")}
	updated := []domain.Movie{movie("U1", "Up")}

	res := Diff(old, updated)
	assert.Empty(t, res.Changed)
	assert.Equal(t, []string{"H1"}, res.RemovedIDs)
}

func TestDiff_Changed(t *testing.T) {
	old := []domain.Movie{movie("U1", "Up")}
	m := movie("U1", "Up")
	m.Location = "cinema"

	res := Diff(old, []domain.Movie{m})
	require.Len(t, res.Changed, 1)
	assert.Equal(t, "U1", res.Changed[0].ID)
}

func TestDiff_RatingsOnlyChangeExcluded(t *testing.T) {
	old := []domain.Movie{movie("U1", "Up")}
	m := movie("U1", "Up")
	m.Ratings = []domain.Rating{{Reviewer: "Ben", Scores: domain.CriterionScores{Overall: 8}}}

	res := Diff(old, []domain.Movie{m})
	assert.Empty(t, res.Changed, "ratings-only changes do not trigger a movie upload")
	assert.Empty(t, res.RemovedIDs)
}

func TestDiff_MixedDelta(t *testing.T) {
	old := []domain.Movie{movie("A", "Alien"), movie("B", "Brazil"), movie("C", "Casino")}

	edited := movie("B", "Brazil")
	edited.SuggestedBy = "Anna"
	updated := []domain.Movie{movie("A", "Alien"), edited, movie("D", "Dune")}

	res := Diff(old, updated)

	changedIDs := make([]string, 0, len(res.Changed))
	for _, m := range res.Changed {
		changedIDs = append(changedIDs, m.ID)
	}
	assert.ElementsMatch(t, []string{"B", "D"}, changedIDs)
	assert.Equal(t, []string{"C"}, res.RemovedIDs)
}
