package library

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelmates/reelmates-core/internal/blob"
	"github.com/reelmates/reelmates-core/internal/domain"
	"github.com/reelmates/reelmates-core/internal/errors"
)

// recordingListener captures change notifications for assertions.
type recordingListener struct {
	mu    sync.Mutex
	calls []listenerCall
}

type listenerCall struct {
	old, updated []domain.Movie
	backlog      bool
}

func (r *recordingListener) CollectionChanged(old, updated []domain.Movie, backlog bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, listenerCall{old: old, updated: updated, backlog: backlog})
}

func (r *recordingListener) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func setupLibrary(t *testing.T) (*Library, *recordingListener, *blob.Store) {
	t.Helper()

	store, err := blob.Open(t.TempDir(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	l := New(store, slog.New(slog.DiscardHandler))
	listener := &recordingListener{}
	l.SetChangeListener(listener)
	return l, listener, store
}

func TestLibrary_AddAndDedupe(t *testing.T) {
	l, listener, _ := setupLibrary(t)

	require.NoError(t, l.Add(domain.Movie{ID: "mov-1", Title: "Up", Year: "2009"}, false))
	assert.Equal(t, 1, listener.count())

	// Same title+year in the other collection is the same film.
	err := l.Add(domain.Movie{ID: "mov-2", Title: "UP", Year: "2009"}, true)
	assert.True(t, errors.Is(err, errors.ErrConflict))
	assert.Len(t, l.Backlog(), 0)
}

func TestLibrary_NoOpWriteIsDropped(t *testing.T) {
	l, listener, _ := setupLibrary(t)

	m := domain.Movie{ID: "mov-1", Title: "Up", Year: "2009"}
	require.NoError(t, l.Add(m, false))
	before := listener.count()

	// Re-assigning an unchanged value must not diff or upload.
	require.NoError(t, l.Update(m))
	assert.Equal(t, before, listener.count())
}

func TestLibrary_MarkWatchedMovesWholeRecord(t *testing.T) {
	l, _, _ := setupLibrary(t)

	m := domain.Movie{ID: "mov-1", Title: "Heat", Year: "1995", SuggestedBy: "Ben"}
	require.NoError(t, l.Add(m, true))

	watchedAt := time.Date(2026, 2, 14, 20, 0, 0, 0, time.UTC)
	require.NoError(t, l.MarkWatched("mov-1", watchedAt, "Anna's place"))

	assert.Empty(t, l.Backlog())
	watched := l.Watched()
	require.Len(t, watched, 1)
	assert.Equal(t, "Ben", watched[0].SuggestedBy)
	assert.Equal(t, "Anna's place", watched[0].Location)
	require.NotNil(t, watched[0].WatchedAt)
	assert.True(t, watched[0].WatchedAt.Equal(watchedAt))

	require.NoError(t, l.MoveToBacklog("mov-1"))
	backlog := l.Backlog()
	require.Len(t, backlog, 1)
	assert.Nil(t, backlog[0].WatchedAt)
	assert.Empty(t, backlog[0].Location)
}

func TestLibrary_ApplyRemoteSuppressesNotifications(t *testing.T) {
	l, listener, _ := setupLibrary(t)

	l.ApplyRemote(
		[]domain.Movie{{ID: "mov-1", Title: "Up", Year: "2009"}},
		[]domain.Movie{{ID: "mov-2", Title: "Heat", Year: "1995"}},
	)

	assert.Equal(t, 0, listener.count(), "a pull must not re-trigger the upload path")
	assert.Len(t, l.Watched(), 1)
	assert.Len(t, l.Backlog(), 1)
}

func TestLibrary_ClearSuppressed(t *testing.T) {
	l, listener, _ := setupLibrary(t)

	require.NoError(t, l.Add(domain.Movie{ID: "mov-1", Title: "Up", Year: "2009"}, false))
	calls := listener.count()

	l.Clear()
	assert.Empty(t, l.Watched())
	assert.Empty(t, l.Backlog())
	assert.Equal(t, calls, listener.count(), "group-switch clears never upload tombstones")
}

func TestLibrary_SetRatingsNotifiesButDiffIsEmpty(t *testing.T) {
	l, listener, _ := setupLibrary(t)

	require.NoError(t, l.Add(domain.Movie{ID: "mov-1", Title: "Up", Year: "2009"}, false))
	require.NoError(t, l.SetRatings("mov-1", []domain.Rating{
		{Reviewer: "Ben", Scores: domain.CriterionScores{Overall: 8}},
	}))

	listener.mu.Lock()
	defer listener.mu.Unlock()
	require.Len(t, listener.calls, 2)

	// The ratings edit is a real local change, but the resulting diff
	// contains no movie uploads.
	last := listener.calls[1]
	res := Diff(last.old, last.updated)
	assert.Empty(t, res.Changed)
	assert.Empty(t, res.RemovedIDs)
}

func TestLibrary_PersistsAcrossReopen(t *testing.T) {
	store, err := blob.Open(t.TempDir(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer store.Close()

	l := New(store, slog.New(slog.DiscardHandler))
	require.NoError(t, l.Add(domain.Movie{ID: "mov-1", Title: "Up", Year: "2009"}, false))
	require.NoError(t, l.Add(domain.Movie{ID: "mov-2", Title: "Heat", Year: "1995"}, true))

	reloaded := New(store, slog.New(slog.DiscardHandler))
	assert.Len(t, reloaded.Watched(), 1)
	assert.Len(t, reloaded.Backlog(), 1)
}

func TestLibrary_MigrationGuard(t *testing.T) {
	l, _, _ := setupLibrary(t)

	require.True(t, l.TryBeginMigration())
	assert.False(t, l.TryBeginMigration(), "overlapping migrations are prevented")
	l.EndMigration()
	assert.True(t, l.TryBeginMigration())
	l.EndMigration()
}

func TestLibrary_RemoveProducesTombstoneDelta(t *testing.T) {
	l, listener, _ := setupLibrary(t)

	require.NoError(t, l.Add(domain.Movie{ID: "mov-1", Title: "Up", Year: "2009"}, false))
	require.NoError(t, l.Remove("mov-1"))

	listener.mu.Lock()
	defer listener.mu.Unlock()
	require.Len(t, listener.calls, 2)

	res := Diff(listener.calls[1].old, listener.calls[1].updated)
	assert.Equal(t, []string{"mov-1"}, res.RemovedIDs)
}
