package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for i := 0; i < count; i++ {
		id, err := Generate(PrefixMovie)
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	id, err := Generate(PrefixGoal)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "goal-"))
	// prefix + "-" + 21-char NanoID
	assert.Len(t, id, len(PrefixGoal)+1+21)
}

func TestHasPrefix(t *testing.T) {
	id := MustGenerate(PrefixMovie)
	assert.True(t, HasPrefix(id, PrefixMovie))
	assert.False(t, HasPrefix(id, PrefixGoal))
	assert.False(t, HasPrefix("movie", PrefixMovie))
}
