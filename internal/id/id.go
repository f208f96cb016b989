// Package id generates prefixed unique identifiers for local entities.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the entity kinds that get locally generated ids.
// Movie ids are stable for the life of the record and never derived
// from title or year, so retitling a movie never changes its identity.
const (
	PrefixMovie = "mov"
	PrefixGoal  = "goal"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "mov-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy for secure
// random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use only where failure should crash the program.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// HasPrefix reports whether id carries the given entity prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"-")
}
