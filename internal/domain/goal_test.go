package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomGoal_SemanticKey(t *testing.T) {
	a := CustomGoal{ID: "goal-1", Type: GoalGenre, GenreID: 28, GenreName: "Action"}
	b := CustomGoal{ID: "goal-2", Type: GoalGenre, GenreID: 28, GenreName: "Action"}
	assert.Equal(t, a.SemanticKey(), b.SemanticKey())

	// Person and director goals over the same person are different goals.
	p := CustomGoal{Type: GoalPerson, PersonID: 819}
	d := CustomGoal{Type: GoalDirector, PersonID: 819}
	assert.NotEqual(t, p.SemanticKey(), d.SemanticKey())
}

func TestUpsertCustomGoal_SemanticDedupe(t *testing.T) {
	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	goals := []CustomGoal{
		{ID: "goal-1", Type: GoalDecade, DecadeStart: 1980, DecadeEnd: 1989, Target: 5, CreatedAt: created},
	}

	// Re-creating "the same" goal edits the existing one.
	goals = UpsertCustomGoal(goals, CustomGoal{
		ID: "goal-2", Type: GoalDecade, DecadeStart: 1980, DecadeEnd: 1989, Target: 12,
	})

	require.Len(t, goals, 1)
	assert.Equal(t, "goal-1", goals[0].ID, "original id is kept")
	assert.Equal(t, 12, goals[0].Target)
	assert.Equal(t, created, goals[0].CreatedAt, "original creation time is kept")

	// A different decade is a new goal.
	goals = UpsertCustomGoal(goals, CustomGoal{
		ID: "goal-3", Type: GoalDecade, DecadeStart: 1990, DecadeEnd: 1999, Target: 3,
	})
	assert.Len(t, goals, 2)
}

func TestDecodeCustomGoals_CurrentPayload(t *testing.T) {
	goals := []CustomGoal{{ID: "goal-1", Type: GoalKeyword, Keyword: "heist", Target: 4}}

	data, err := EncodeCustomGoals(goals)
	require.NoError(t, err)

	decoded, err := DecodeCustomGoals(data)
	require.NoError(t, err)
	assert.Equal(t, goals, decoded)
}

func TestDecodeCustomGoals_LegacyArray(t *testing.T) {
	legacy := []byte(`[{"id":"goal-9","type":"genre","genre_id":27,"target":6}]`)

	decoded, err := DecodeCustomGoals(legacy)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, GoalGenre, decoded[0].Type)
	assert.Equal(t, 6, decoded[0].Target)
}

func TestDecodeCustomGoals_Garbage(t *testing.T) {
	_, err := DecodeCustomGoals([]byte(`not json`))
	assert.Error(t, err)

	decoded, err := DecodeCustomGoals(nil)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestKnownGroups_UpsertAndRemove(t *testing.T) {
	var known KnownGroups

	known = known.Upsert(GroupInfo{ID: "A", Name: "Film Friends"})
	known = known.Upsert(GroupInfo{ID: "B", Name: "Horror Club"})
	require.Len(t, known, 2)

	// Re-activating refreshes the cached display name.
	known = known.Upsert(GroupInfo{ID: "A", Name: "Film Friends v2"})
	require.Len(t, known, 2)
	assert.Equal(t, "Film Friends v2", known[0].Name)

	known = known.Remove("B")
	require.Len(t, known, 1)
	assert.Equal(t, "A", known[0].ID)
	assert.False(t, known.Contains("B"))
}
