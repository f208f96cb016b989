package service

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/reelmates/reelmates-core/internal/blob"
	"github.com/reelmates/reelmates-core/internal/domain"
	"github.com/reelmates/reelmates-core/internal/errors"
	"github.com/reelmates/reelmates-core/internal/id"
)

// GoalService manages the group's yearly targets and custom viewing
// goals. Writes land locally first and are then pushed to the remote
// store; the returned booleans report whether the remote write stuck,
// matching the rating path's offline semantics.
type GoalService struct {
	mu     sync.Mutex
	yearly domain.YearlyGoals
	custom []domain.CustomGoal
	store  *blob.Store
	remote remoteGoals
	groups GroupState
	logger *slog.Logger
}

// remoteGoals is the slice of the remote API the goal service needs.
type remoteGoals interface {
	FetchYearlyGoals(ctx context.Context, groupID string) (domain.YearlyGoals, error)
	SaveYearlyGoal(ctx context.Context, groupID string, year, target int) error
	FetchCustomGoals(ctx context.Context, groupID string) ([]byte, error)
	SaveCustomGoals(ctx context.Context, groupID string, payload []byte) error
}

// NewGoalService creates the service and restores persisted goals.
func NewGoalService(store *blob.Store, remote remoteGoals, groups GroupState, logger *slog.Logger) *GoalService {
	s := &GoalService{
		yearly: make(domain.YearlyGoals),
		store:  store,
		remote: remote,
		groups: groups,
		logger: logger,
	}

	if err := store.GetJSON(blob.KeyYearlyGoals, &s.yearly); err != nil && !errors.Is(err, blob.ErrNotFound) {
		logger.Warn("Failed to load yearly goals", "error", err)
	}
	if s.yearly == nil {
		s.yearly = make(domain.YearlyGoals)
	}

	if data, err := store.Get(blob.KeyCustomGoals); err == nil {
		goals, err := domain.DecodeCustomGoals(data)
		if err != nil {
			logger.Warn("Failed to decode custom goals, starting empty", "error", err)
		} else {
			s.custom = goals
		}
	}

	return s
}

// YearlyGoals returns a copy of the yearly targets.
func (s *GoalService) YearlyGoals() domain.YearlyGoals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.yearly)
}

// SetYearlyGoal records the target for a year and pushes it to the
// remote store. Returns whether the remote write succeeded.
func (s *GoalService) SetYearlyGoal(ctx context.Context, year, target int) bool {
	s.mu.Lock()
	s.yearly[year] = target
	s.persistYearlyLocked()
	s.mu.Unlock()

	scope := s.scope()
	if err := s.remote.SaveYearlyGoal(ctx, scope, year, target); err != nil {
		s.logger.Warn("Failed to push yearly goal", "year", year, "error", err)
		return false
	}
	return true
}

// CustomGoals returns a copy of the custom goal list.
func (s *GoalService) CustomGoals() []domain.CustomGoal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.custom)
}

// UpsertCustomGoal folds a goal into the list by semantic identity,
// assigning a fresh id and creation time when it is genuinely new, then
// pushes the whole payload to the remote store. Returns the stored goal
// and whether the remote write succeeded.
func (s *GoalService) UpsertCustomGoal(ctx context.Context, g domain.CustomGoal) (domain.CustomGoal, bool) {
	if g.ID == "" {
		g.ID = id.MustGenerate(id.PrefixGoal)
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.custom = domain.UpsertCustomGoal(s.custom, g)
	key := g.SemanticKey()
	var stored domain.CustomGoal
	for _, existing := range s.custom {
		if existing.SemanticKey() == key {
			stored = existing
			break
		}
	}
	s.persistCustomLocked()
	s.mu.Unlock()

	return stored, s.pushCustom(ctx)
}

// DeleteCustomGoal removes the goal with the given id and pushes the
// updated payload. Returns whether the remote write succeeded.
func (s *GoalService) DeleteCustomGoal(ctx context.Context, goalID string) bool {
	s.mu.Lock()
	s.custom = slices.DeleteFunc(slices.Clone(s.custom), func(g domain.CustomGoal) bool {
		return g.ID == goalID
	})
	s.persistCustomLocked()
	s.mu.Unlock()

	return s.pushCustom(ctx)
}

// Refresh replaces both goal sets with the remote state. Called after a
// group transition alongside the collection pull. Fetch failures keep
// the local state untouched.
func (s *GoalService) Refresh(ctx context.Context) error {
	scope := s.scope()

	yearly, err := s.remote.FetchYearlyGoals(ctx, scope)
	if err != nil {
		return errors.Remotef("fetch yearly goals: %v", err)
	}

	payload, err := s.remote.FetchCustomGoals(ctx, scope)
	if err != nil {
		return errors.Remotef("fetch custom goals: %v", err)
	}
	custom, err := domain.DecodeCustomGoals(payload)
	if err != nil {
		s.logger.Warn("Remote custom goals undecodable, treating as empty", "error", err)
		custom = nil
	}

	s.mu.Lock()
	s.yearly = yearly
	if s.yearly == nil {
		s.yearly = make(domain.YearlyGoals)
	}
	s.custom = custom
	s.persistYearlyLocked()
	s.persistCustomLocked()
	s.mu.Unlock()

	return nil
}

// pushCustom encodes and uploads the current custom goal payload.
func (s *GoalService) pushCustom(ctx context.Context) bool {
	s.mu.Lock()
	goals := slices.Clone(s.custom)
	s.mu.Unlock()

	payload, err := domain.EncodeCustomGoals(goals)
	if err != nil {
		s.logger.Error("Failed to encode custom goals", "error", err)
		return false
	}
	if err := s.remote.SaveCustomGoals(ctx, s.scope(), payload); err != nil {
		s.logger.Warn("Failed to push custom goals", "error", err)
		return false
	}
	return true
}

func (s *GoalService) scope() string {
	return s.groups.Active().ID
}

func (s *GoalService) persistYearlyLocked() {
	if err := s.store.SetJSON(blob.KeyYearlyGoals, s.yearly); err != nil {
		s.logger.Error("Failed to persist yearly goals", "error", err)
	}
}

func (s *GoalService) persistCustomLocked() {
	payload, err := domain.EncodeCustomGoals(s.custom)
	if err != nil {
		s.logger.Error("Failed to encode custom goals", "error", err)
		return
	}
	if err := s.store.Set(blob.KeyCustomGoals, payload); err != nil {
		s.logger.Error("Failed to persist custom goals", "error", err)
	}
}
