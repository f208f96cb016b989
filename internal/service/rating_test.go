package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelmates/reelmates-core/internal/blob"
	"github.com/reelmates/reelmates-core/internal/domain"
	"github.com/reelmates/reelmates-core/internal/library"
	"github.com/reelmates/reelmates-core/internal/remote"
)

func newRatingEnv(t *testing.T) (*library.Library, *remote.Memory, *RatingService, *SyncService) {
	t.Helper()

	store, err := blob.Open(t.TempDir(), discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	lib := library.New(store, discard())
	mem := remote.NewMemory()
	groups := &stubGroups{}
	syncSvc := NewSyncService(lib, mem, mem, groups, discard())
	lib.SetChangeListener(syncSvc)
	return lib, mem, NewRatingService(lib, mem, groups, discard()), syncSvc
}

func TestRatingService_UpsertMergesLocallyAndPushes(t *testing.T) {
	lib, mem, svc, syncSvc := newRatingEnv(t)

	require.NoError(t, lib.Add(domain.Movie{ID: "mov-1", Title: "Heat", Year: "1995"}, false))
	syncSvc.Wait()

	ok := svc.Upsert(context.Background(), "mov-1", domain.Rating{
		Reviewer: "Alice",
		Scores:   domain.CriterionScores{Story: 8, Acting: 9, Visuals: 7, Overall: 8},
	})
	syncSvc.Wait()
	assert.True(t, ok)

	movie, _, err := lib.Find("mov-1")
	require.NoError(t, err)
	require.Len(t, movie.Ratings, 1)
	assert.Equal(t, "Alice", movie.Ratings[0].Reviewer)

	stored, err := mem.FetchRatings(context.Background(), "", []string{"mov-1"})
	require.NoError(t, err)
	require.Len(t, stored["mov-1"], 1)

	// Movie records were uploaded once for the add; the rating travelled
	// as an independent record, not a movie rewrite.
	assert.Equal(t, 1, mem.SaveCalls)
}

func TestRatingService_UpsertReplacesCaselessly(t *testing.T) {
	lib, _, svc, syncSvc := newRatingEnv(t)

	require.NoError(t, lib.Add(domain.Movie{ID: "mov-1", Title: "Heat", Year: "1995"}, false))
	syncSvc.Wait()

	require.True(t, svc.Upsert(context.Background(), "mov-1", domain.Rating{
		Reviewer: "Alice", Scores: domain.CriterionScores{Overall: 6},
	}))
	require.True(t, svc.Upsert(context.Background(), "mov-1", domain.Rating{
		Reviewer: "ALICE", Scores: domain.CriterionScores{Overall: 9},
	}))
	syncSvc.Wait()

	movie, _, err := lib.Find("mov-1")
	require.NoError(t, err)
	require.Len(t, movie.Ratings, 1)
	assert.Equal(t, float64(9), movie.Ratings[0].Scores.Overall)
}

func TestRatingService_UpsertOfflineKeepsLocalCopy(t *testing.T) {
	lib, mem, svc, syncSvc := newRatingEnv(t)

	require.NoError(t, lib.Add(domain.Movie{ID: "mov-1", Title: "Heat", Year: "1995"}, false))
	syncSvc.Wait()

	mem.FailSave = errors.New("remote unavailable")
	ok := svc.Upsert(context.Background(), "mov-1", domain.Rating{
		Reviewer: "Bob", Scores: domain.CriterionScores{Overall: 7},
	})
	syncSvc.Wait()

	assert.False(t, ok)
	movie, _, err := lib.Find("mov-1")
	require.NoError(t, err)
	assert.Len(t, movie.Ratings, 1)
}

func TestRatingService_DeleteRemovesBothSides(t *testing.T) {
	lib, mem, svc, syncSvc := newRatingEnv(t)

	require.NoError(t, lib.Add(domain.Movie{ID: "mov-1", Title: "Heat", Year: "1995"}, false))
	syncSvc.Wait()
	require.True(t, svc.Upsert(context.Background(), "mov-1", domain.Rating{
		Reviewer: "Alice", Scores: domain.CriterionScores{Overall: 8},
	}))

	ok := svc.Delete(context.Background(), "mov-1", "ALICE")
	syncSvc.Wait()
	assert.True(t, ok)

	movie, _, err := lib.Find("mov-1")
	require.NoError(t, err)
	assert.Empty(t, movie.Ratings)

	stored, err := mem.FetchRatings(context.Background(), "", []string{"mov-1"})
	require.NoError(t, err)
	assert.Empty(t, stored["mov-1"])
}

func TestRatingService_UnknownMovie(t *testing.T) {
	_, _, svc, _ := newRatingEnv(t)

	ok := svc.Upsert(context.Background(), "mov-missing", domain.Rating{Reviewer: "Alice"})
	assert.False(t, ok)
	assert.False(t, svc.Delete(context.Background(), "mov-missing", "Alice"))
}
