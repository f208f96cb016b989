package remote

import (
	"context"
	"maps"
	"sync"

	"github.com/reelmates/reelmates-core/internal/domain"
	"github.com/reelmates/reelmates-core/internal/normalize"
)

// Memory is an in-memory implementation of all three remote stores.
// It backs tests and the engine's offline mode. Call counters and error
// injection hooks let tests assert the engine's traffic shape.
type Memory struct {
	mu sync.Mutex

	movies  map[string]map[string]MovieRecord          // scope -> movieID -> record
	ratings map[string]map[string]map[string]domain.Rating // scope -> movieID -> reviewerKey -> rating
	yearly  map[string]domain.YearlyGoals
	custom  map[string][]byte

	// Counters for traffic assertions.
	SaveCalls   int
	DeleteCalls int

	// Error injection. When set, the corresponding call fails.
	FailSave   error
	FailDelete error
	FailFetch  error
}

// NewMemory creates an empty in-memory remote store.
func NewMemory() *Memory {
	return &Memory{
		movies:  make(map[string]map[string]MovieRecord),
		ratings: make(map[string]map[string]map[string]domain.Rating),
		yearly:  make(map[string]domain.YearlyGoals),
		custom:  make(map[string][]byte),
	}
}

// Fetch implements MovieStore.
func (m *Memory) Fetch(_ context.Context, groupID string) ([]MovieRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailFetch != nil {
		return nil, m.FailFetch
	}

	var out []MovieRecord
	for _, rec := range m.movies[Scope(groupID)] {
		out = append(out, rec)
	}
	return out, nil
}

// Save implements MovieStore.
func (m *Memory) Save(_ context.Context, movie domain.Movie, backlog bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls++
	if m.FailSave != nil {
		return m.FailSave
	}

	scope := Scope(movie.GroupID)
	if m.movies[scope] == nil {
		m.movies[scope] = make(map[string]MovieRecord)
	}
	m.movies[scope][movie.ID] = MovieRecord{Movie: movie.Clone(), Backlog: backlog}
	return nil
}

// Delete implements MovieStore.
func (m *Memory) Delete(_ context.Context, movieID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls++
	if m.FailDelete != nil {
		return m.FailDelete
	}

	for _, partition := range m.movies {
		delete(partition, movieID)
	}
	return nil
}

// FetchRatings implements RatingStore.
func (m *Memory) FetchRatings(_ context.Context, groupID string, movieIDs []string) (map[string][]domain.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailFetch != nil {
		return nil, m.FailFetch
	}

	scope := Scope(groupID)
	out := make(map[string][]domain.Rating)
	for _, movieID := range movieIDs {
		for _, r := range m.ratings[scope][movieID] {
			out[movieID] = append(out[movieID], r)
		}
	}
	return out, nil
}

// SaveRating implements RatingStore.
func (m *Memory) SaveRating(_ context.Context, groupID, movieID string, r domain.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSave != nil {
		return m.FailSave
	}

	scope := Scope(groupID)
	if m.ratings[scope] == nil {
		m.ratings[scope] = make(map[string]map[string]domain.Rating)
	}
	if m.ratings[scope][movieID] == nil {
		m.ratings[scope][movieID] = make(map[string]domain.Rating)
	}
	m.ratings[scope][movieID][normalize.ReviewerKey(r.Reviewer)] = r
	return nil
}

// DeleteRating implements RatingStore.
func (m *Memory) DeleteRating(_ context.Context, groupID, movieID, reviewer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailDelete != nil {
		return m.FailDelete
	}

	delete(m.ratings[Scope(groupID)][movieID], normalize.ReviewerKey(reviewer))
	return nil
}

// FetchYearlyGoals implements GoalStore.
func (m *Memory) FetchYearlyGoals(_ context.Context, groupID string) (domain.YearlyGoals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailFetch != nil {
		return nil, m.FailFetch
	}
	return maps.Clone(m.yearly[Scope(groupID)]), nil
}

// SaveYearlyGoal implements GoalStore.
func (m *Memory) SaveYearlyGoal(_ context.Context, groupID string, year, target int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSave != nil {
		return m.FailSave
	}

	scope := Scope(groupID)
	if m.yearly[scope] == nil {
		m.yearly[scope] = make(domain.YearlyGoals)
	}
	m.yearly[scope][year] = target
	return nil
}

// FetchCustomGoals implements GoalStore.
func (m *Memory) FetchCustomGoals(_ context.Context, groupID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailFetch != nil {
		return nil, m.FailFetch
	}
	return m.custom[Scope(groupID)], nil
}

// SaveCustomGoals implements GoalStore.
func (m *Memory) SaveCustomGoals(_ context.Context, groupID string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSave != nil {
		return m.FailSave
	}
	m.custom[Scope(groupID)] = payload
	return nil
}

// MovieCount returns the number of records in a group's partition.
func (m *Memory) MovieCount(groupID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.movies[Scope(groupID)])
}

// HasMovie reports whether a record exists in a group's partition.
func (m *Memory) HasMovie(groupID, movieID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.movies[Scope(groupID)][movieID]
	return ok
}
