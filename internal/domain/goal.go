package domain

import (
	"encoding/json/v2"
	"fmt"
	"time"
)

// YearlyGoals maps a calendar year to the number of movies the group
// aims to watch that year.
type YearlyGoals map[int]int

// GoalType tags the variant of a custom goal.
type GoalType string

// Custom goal variants.
const (
	GoalDecade   GoalType = "decade"
	GoalPerson   GoalType = "person"
	GoalDirector GoalType = "director"
	GoalGenre    GoalType = "genre"
	GoalKeyword  GoalType = "keyword"
)

// CustomGoal is a user-defined viewing goal. The ID is locally
// generated; uniqueness is additionally enforced through SemanticKey so
// that re-creating "the same" goal edits the existing one instead of
// duplicating it.
type CustomGoal struct {
	ID        string    `json:"id"`
	Type      GoalType  `json:"type"`
	Target    int       `json:"target"`
	CreatedAt time.Time `json:"created_at"`

	// Criteria; which fields are meaningful depends on Type.
	DecadeStart int    `json:"decade_start,omitempty"`
	DecadeEnd   int    `json:"decade_end,omitempty"`
	PersonID    int64  `json:"person_id,omitempty"`
	PersonName  string `json:"person_name,omitempty"`
	GenreID     int64  `json:"genre_id,omitempty"`
	GenreName   string `json:"genre_name,omitempty"`
	Keyword     string `json:"keyword,omitempty"`
}

// SemanticKey derives the identity key from (type, criteria). Two goals
// with the same key are "the same" goal regardless of their record ids.
func (g CustomGoal) SemanticKey() string {
	switch g.Type {
	case GoalDecade:
		return fmt.Sprintf("decade:%d-%d", g.DecadeStart, g.DecadeEnd)
	case GoalPerson:
		return fmt.Sprintf("person:%d", g.PersonID)
	case GoalDirector:
		return fmt.Sprintf("director:%d", g.PersonID)
	case GoalGenre:
		return fmt.Sprintf("genre:%d", g.GenreID)
	case GoalKeyword:
		return "keyword:" + g.Keyword
	default:
		return string(g.Type) + ":" + g.ID
	}
}

// customGoalsPayloadVersion is the current on-disk/remote payload shape.
const customGoalsPayloadVersion = 1

// CustomGoalsPayload is the versioned envelope custom goals are encoded
// in, both locally and in the remote goal store.
type CustomGoalsPayload struct {
	Version int          `json:"version"`
	Goals   []CustomGoal `json:"goals"`
}

// EncodeCustomGoals marshals goals into the current payload shape.
func EncodeCustomGoals(goals []CustomGoal) ([]byte, error) {
	return json.Marshal(CustomGoalsPayload{
		Version: customGoalsPayloadVersion,
		Goals:   goals,
	})
}

// DecodeCustomGoals unmarshals a custom-goals payload, migrating older
// shapes forward. Version 0 payloads were a bare JSON array without an
// envelope. A payload that decodes as neither shape yields an error;
// callers treat that as an empty goal list.
func DecodeCustomGoals(data []byte) ([]CustomGoal, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var payload CustomGoalsPayload
	if err := json.Unmarshal(data, &payload); err == nil && payload.Version >= 1 {
		return payload.Goals, nil
	}

	// Legacy v0 shape: a bare array of goals.
	var legacy []CustomGoal
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("decode custom goals: %w", err)
	}
	return legacy, nil
}

// UpsertCustomGoal folds a goal into the list by semantic key: an
// existing goal with the same key is replaced in place (keeping its id
// and creation time), otherwise the goal is appended.
func UpsertCustomGoal(goals []CustomGoal, g CustomGoal) []CustomGoal {
	key := g.SemanticKey()
	for i := range goals {
		if goals[i].SemanticKey() == key {
			g.ID = goals[i].ID
			g.CreatedAt = goals[i].CreatedAt
			goals[i] = g
			return goals
		}
	}
	return append(goals, g)
}
