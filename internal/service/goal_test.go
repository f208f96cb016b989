package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelmates/reelmates-core/internal/blob"
	"github.com/reelmates/reelmates-core/internal/domain"
	"github.com/reelmates/reelmates-core/internal/remote"
)

func newGoalEnv(t *testing.T) (*GoalService, *remote.Memory, *blob.Store) {
	t.Helper()

	store, err := blob.Open(t.TempDir(), discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	mem := remote.NewMemory()
	return NewGoalService(store, mem, &stubGroups{}, discard()), mem, store
}

func TestGoalService_YearlyGoalRoundTrip(t *testing.T) {
	svc, mem, _ := newGoalEnv(t)

	assert.True(t, svc.SetYearlyGoal(context.Background(), 2026, 52))

	assert.Equal(t, 52, svc.YearlyGoals()[2026])

	stored, err := mem.FetchYearlyGoals(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 52, stored[2026])
}

func TestGoalService_YearlyGoalOffline(t *testing.T) {
	svc, mem, _ := newGoalEnv(t)

	mem.FailSave = errors.New("remote unavailable")
	assert.False(t, svc.SetYearlyGoal(context.Background(), 2026, 52))

	// The local write sticks regardless.
	assert.Equal(t, 52, svc.YearlyGoals()[2026])
}

func TestGoalService_CustomGoalAssignsIDAndPushes(t *testing.T) {
	svc, mem, _ := newGoalEnv(t)

	stored, ok := svc.UpsertCustomGoal(context.Background(), domain.CustomGoal{
		Type:        domain.GoalDecade,
		Target:      10,
		DecadeStart: 1980,
		DecadeEnd:   1989,
	})
	assert.True(t, ok)
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())

	payload, err := mem.FetchCustomGoals(context.Background(), "")
	require.NoError(t, err)
	goals, err := domain.DecodeCustomGoals(payload)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, stored.ID, goals[0].ID)
}

func TestGoalService_CustomGoalDedupesBySemanticKey(t *testing.T) {
	svc, _, _ := newGoalEnv(t)

	first, _ := svc.UpsertCustomGoal(context.Background(), domain.CustomGoal{
		Type: domain.GoalPerson, Target: 3, PersonID: 819, PersonName: "Edward Norton",
	})
	second, _ := svc.UpsertCustomGoal(context.Background(), domain.CustomGoal{
		Type: domain.GoalPerson, Target: 5, PersonID: 819, PersonName: "Edward Norton",
	})

	// Re-creating the same goal edits it in place.
	goals := svc.CustomGoals()
	require.Len(t, goals, 1)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, 5, goals[0].Target)
}

func TestGoalService_DeleteCustomGoal(t *testing.T) {
	svc, mem, _ := newGoalEnv(t)

	stored, _ := svc.UpsertCustomGoal(context.Background(), domain.CustomGoal{
		Type: domain.GoalKeyword, Target: 4, Keyword: "heist",
	})

	assert.True(t, svc.DeleteCustomGoal(context.Background(), stored.ID))
	assert.Empty(t, svc.CustomGoals())

	payload, err := mem.FetchCustomGoals(context.Background(), "")
	require.NoError(t, err)
	goals, err := domain.DecodeCustomGoals(payload)
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestGoalService_RefreshReplacesLocalState(t *testing.T) {
	svc, mem, _ := newGoalEnv(t)

	require.True(t, svc.SetYearlyGoal(context.Background(), 2025, 12))

	require.NoError(t, mem.SaveYearlyGoal(context.Background(), "", 2026, 52))
	payload, err := domain.EncodeCustomGoals([]domain.CustomGoal{
		{ID: "goal-1", Type: domain.GoalGenre, Target: 6, GenreID: 27, GenreName: "Horror"},
	})
	require.NoError(t, err)
	require.NoError(t, mem.SaveCustomGoals(context.Background(), "", payload))

	require.NoError(t, svc.Refresh(context.Background()))

	assert.Equal(t, 52, svc.YearlyGoals()[2026])

	goals := svc.CustomGoals()
	require.Len(t, goals, 1)
	assert.Equal(t, "goal-1", goals[0].ID)
}

func TestGoalService_RefreshDecodesLegacyPayload(t *testing.T) {
	svc, mem, _ := newGoalEnv(t)

	// Old clients stored custom goals as a bare array.
	legacy := []byte(`[{"id":"goal-old","type":"decade","target":8,"decade_start":1970,"decade_end":1979}]`)
	require.NoError(t, mem.SaveCustomGoals(context.Background(), "", legacy))

	require.NoError(t, svc.Refresh(context.Background()))

	goals := svc.CustomGoals()
	require.Len(t, goals, 1)
	assert.Equal(t, "goal-old", goals[0].ID)
	assert.Equal(t, domain.GoalDecade, goals[0].Type)
}

func TestGoalService_RefreshFailureKeepsLocal(t *testing.T) {
	svc, mem, _ := newGoalEnv(t)

	require.True(t, svc.SetYearlyGoal(context.Background(), 2026, 52))

	mem.FailFetch = errors.New("remote unavailable")
	require.Error(t, svc.Refresh(context.Background()))

	assert.Equal(t, 52, svc.YearlyGoals()[2026])
}

func TestGoalService_StateSurvivesRestart(t *testing.T) {
	svc, mem, store := newGoalEnv(t)

	require.True(t, svc.SetYearlyGoal(context.Background(), 2026, 52))
	stored, _ := svc.UpsertCustomGoal(context.Background(), domain.CustomGoal{
		Type: domain.GoalDirector, Target: 2, PersonID: 7467, PersonName: "David Fincher",
	})

	restored := NewGoalService(store, mem, &stubGroups{}, discard())
	assert.Equal(t, 52, restored.YearlyGoals()[2026])
	goals := restored.CustomGoals()
	require.Len(t, goals, 1)
	assert.Equal(t, stored.ID, goals[0].ID)
}
