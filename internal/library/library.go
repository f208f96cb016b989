// Package library owns the on-device movie cache: the watched and
// backlog collections that are the single source of truth for the UI.
// All reads and writes go through the Library service; background
// workers never touch the collections directly, they hand a complete
// result set to one of the terminal apply methods.
package library

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/reelmates/reelmates-core/internal/blob"
	"github.com/reelmates/reelmates-core/internal/domain"
	"github.com/reelmates/reelmates-core/internal/errors"
	"github.com/reelmates/reelmates-core/internal/normalize"
)

// State tracks what the library is currently doing. The enum replaces
// independent boolean guards so overlapping states cannot be reached.
type State int

// Library states.
const (
	StateIdle State = iota
	// StateApplyingRemote suppresses the change-notification path while
	// a remote-originated update overwrites the collections, so a pull
	// is never re-uploaded.
	StateApplyingRemote
	// StateMigrating marks a credit migration pass in flight. It only
	// prevents a second pass from starting; migrated results still flow
	// through the normal mutation path.
	StateMigrating
)

// ChangeListener receives collection deltas after a local mutation.
// Implementations are expected to kick off background reconciliation
// and return promptly.
type ChangeListener interface {
	CollectionChanged(old, updated []domain.Movie, backlog bool)
}

// Library holds the two ordered movie collections, mirrored to the
// blob store on every change.
type Library struct {
	mu       sync.Mutex
	watched  []domain.Movie
	backlog  []domain.Movie
	state    State
	store    *blob.Store
	logger   *slog.Logger
	listener ChangeListener
}

// New creates a library backed by the given blob store and loads any
// cached collections. Decode failures count as an empty cache.
func New(store *blob.Store, logger *slog.Logger) *Library {
	l := &Library{
		store:  store,
		logger: logger,
	}

	if err := store.GetJSON(blob.KeyWatched, &l.watched); err != nil && !errors.Is(err, blob.ErrNotFound) {
		logger.Warn("Failed to load watched cache", "error", err)
	}
	if err := store.GetJSON(blob.KeyBacklog, &l.backlog); err != nil && !errors.Is(err, blob.ErrNotFound) {
		logger.Warn("Failed to load backlog cache", "error", err)
	}

	return l
}

// SetChangeListener wires the reconciliation hook. Set once at startup,
// before any mutation.
func (l *Library) SetChangeListener(listener ChangeListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listener = listener
}

// Watched returns a deep copy of the watched collection.
func (l *Library) Watched() []domain.Movie {
	l.mu.Lock()
	defer l.mu.Unlock()
	return domain.CloneMovies(l.watched)
}

// Backlog returns a deep copy of the backlog collection.
func (l *Library) Backlog() []domain.Movie {
	l.mu.Lock()
	defer l.mu.Unlock()
	return domain.CloneMovies(l.backlog)
}

// Find returns the movie with the given id from either collection,
// along with whether it sits in the backlog.
func (l *Library) Find(movieID string) (domain.Movie, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, m := range l.watched {
		if m.ID == movieID {
			return m.Clone(), false, nil
		}
	}
	for _, m := range l.backlog {
		if m.ID == movieID {
			return m.Clone(), true, nil
		}
	}
	return domain.Movie{}, false, errors.NotFoundf("movie %s not found", movieID)
}

// Add inserts a movie into the watched or backlog collection. Insertion
// dedupes by folded title+year across both collections, not by id.
func (l *Library) Add(m domain.Movie, toBacklog bool) error {
	return l.mutate(func(w, b []domain.Movie) ([]domain.Movie, []domain.Movie, error) {
		key := normalize.TitleYearKey(m.Title, m.Year)
		for _, existing := range append(slices.Clone(w), b...) {
			if normalize.TitleYearKey(existing.Title, existing.Year) == key {
				return nil, nil, errors.Conflict("movie already tracked: " + m.Title)
			}
		}
		if toBacklog {
			m.WatchedAt = nil
			return w, append(b, m), nil
		}
		return append(w, m), b, nil
	})
}

// Update replaces the stored movie with the same id, wherever it lives.
func (l *Library) Update(m domain.Movie) error {
	return l.mutate(func(w, b []domain.Movie) ([]domain.Movie, []domain.Movie, error) {
		if replaceByID(w, m) || replaceByID(b, m) {
			return w, b, nil
		}
		return nil, nil, errors.NotFoundf("movie %s not found", m.ID)
	})
}

// Remove deletes the movie from whichever collection holds it. The
// removal surfaces as a tombstone in the next reconciliation pass.
func (l *Library) Remove(movieID string) error {
	return l.mutate(func(w, b []domain.Movie) ([]domain.Movie, []domain.Movie, error) {
		match := func(m domain.Movie) bool { return m.ID == movieID }
		w2 := slices.DeleteFunc(w, match)
		b2 := slices.DeleteFunc(b, match)
		if len(w2) == len(w) && len(b2) == len(b) {
			return nil, nil, errors.NotFoundf("movie %s not found", movieID)
		}
		return w2, b2, nil
	})
}

// MarkWatched moves a backlog movie into the watched collection,
// stamping the watch date and optional location. The whole record
// transfers; its id is unchanged.
func (l *Library) MarkWatched(movieID string, watchedAt time.Time, location string) error {
	return l.mutate(func(w, b []domain.Movie) ([]domain.Movie, []domain.Movie, error) {
		for i, m := range b {
			if m.ID == movieID {
				moved := m
				moved.WatchedAt = &watchedAt
				moved.Location = location
				return append(w, moved), slices.Delete(b, i, i+1), nil
			}
		}
		return nil, nil, errors.NotFoundf("movie %s not in backlog", movieID)
	})
}

// MoveToBacklog moves a watched movie back to the backlog, clearing its
// watch date and location.
func (l *Library) MoveToBacklog(movieID string) error {
	return l.mutate(func(w, b []domain.Movie) ([]domain.Movie, []domain.Movie, error) {
		for i, m := range w {
			if m.ID == movieID {
				moved := m
				moved.WatchedAt = nil
				moved.Location = ""
				return slices.Delete(w, i, i+1), append(b, moved), nil
			}
		}
		return nil, nil, errors.NotFoundf("movie %s not in watched", movieID)
	})
}

// SetRatings replaces a movie's in-memory rating list. This persists
// locally like any mutation, but because the differ ignores ratings it
// never produces a movie upload; rating records sync independently.
func (l *Library) SetRatings(movieID string, ratings []domain.Rating) error {
	return l.mutate(func(w, b []domain.Movie) ([]domain.Movie, []domain.Movie, error) {
		for i := range w {
			if w[i].ID == movieID {
				w[i].Ratings = ratings
				return w, b, nil
			}
		}
		for i := range b {
			if b[i].ID == movieID {
				b[i].Ratings = ratings
				return w, b, nil
			}
		}
		return nil, nil, errors.NotFoundf("movie %s not found", movieID)
	})
}

// ReplaceAll swaps in complete new collections through the normal
// mutation path, producing at most one diff per collection. The credit
// migrator uses this for its single terminal assignment.
func (l *Library) ReplaceAll(watched, backlog []domain.Movie) error {
	return l.mutate(func(_, _ []domain.Movie) ([]domain.Movie, []domain.Movie, error) {
		return domain.CloneMovies(watched), domain.CloneMovies(backlog), nil
	})
}

// ApplyRemote atomically overwrites both collections with
// remote-originated state. The change path is suppressed so the pull is
// persisted locally but never re-uploaded.
func (l *Library) ApplyRemote(watched, backlog []domain.Movie) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.state
	l.state = StateApplyingRemote
	l.watched = domain.CloneMovies(watched)
	l.backlog = domain.CloneMovies(backlog)
	l.persistLocked(true, true)
	l.state = prev
}

// Clear atomically empties both collections under suppression. Group
// transitions use this so the outgoing group's data can never leak into
// the incoming group's remote scope as an upload.
func (l *Library) Clear() {
	l.ApplyRemote(nil, nil)
}

// TryBeginMigration flips the library into the migrating state. Returns
// false if a migration or remote apply is already in flight.
func (l *Library) TryBeginMigration() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateIdle {
		return false
	}
	l.state = StateMigrating
	return true
}

// EndMigration returns the library to the idle state.
func (l *Library) EndMigration() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == StateMigrating {
		l.state = StateIdle
	}
}

// mutate runs fn over copies of both collections, then persists and
// notifies only what actually changed. A no-op write (e.g. a binding
// round-trip re-assigning an unchanged value) is dropped here.
func (l *Library) mutate(fn func(watched, backlog []domain.Movie) ([]domain.Movie, []domain.Movie, error)) error {
	l.mu.Lock()

	oldWatched := domain.CloneMovies(l.watched)
	oldBacklog := domain.CloneMovies(l.backlog)

	newWatched, newBacklog, err := fn(domain.CloneMovies(l.watched), domain.CloneMovies(l.backlog))
	if err != nil {
		l.mu.Unlock()
		return err
	}

	watchedChanged := !collectionsEqual(oldWatched, newWatched)
	backlogChanged := !collectionsEqual(oldBacklog, newBacklog)
	if !watchedChanged && !backlogChanged {
		l.mu.Unlock()
		return nil
	}

	l.watched = newWatched
	l.backlog = newBacklog
	l.persistLocked(watchedChanged, backlogChanged)

	notify := l.listener != nil && l.state != StateApplyingRemote
	listener := l.listener
	l.mu.Unlock()

	if !notify {
		return nil
	}
	if watchedChanged {
		listener.CollectionChanged(oldWatched, domain.CloneMovies(newWatched), false)
	}
	if backlogChanged {
		listener.CollectionChanged(oldBacklog, domain.CloneMovies(newBacklog), true)
	}
	return nil
}

// persistLocked mirrors the collections to the blob store. Persistence
// failures are logged; the in-memory state stays authoritative.
func (l *Library) persistLocked(watched, backlog bool) {
	if watched {
		if err := l.store.SetJSON(blob.KeyWatched, l.watched); err != nil {
			l.logger.Error("Failed to persist watched cache", "error", err)
		}
	}
	if backlog {
		if err := l.store.SetJSON(blob.KeyBacklog, l.backlog); err != nil {
			l.logger.Error("Failed to persist backlog cache", "error", err)
		}
	}
}

// replaceByID swaps the element with m's id in place.
func replaceByID(list []domain.Movie, m domain.Movie) bool {
	for i := range list {
		if list[i].ID == m.ID {
			list[i] = m
			return true
		}
	}
	return false
}

// collectionsEqual compares two snapshots record by record, ratings
// included: a ratings edit is a real local change even though it never
// becomes a movie upload.
func collectionsEqual(a, b []domain.Movie) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].EqualIgnoringRatings(b[i]) || !slices.Equal(a[i].Ratings, b[i].Ratings) {
			return false
		}
	}
	return true
}
