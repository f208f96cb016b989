// Package normalize provides canonical comparison keys for names that are
// compared case-insensitively across devices.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fold returns a canonical caseless form of s: unicode-decomposed,
// combining marks stripped, lowercased, and trimmed. Two strings that
// differ only in case or accents fold to the same key.
func Fold(s string) string {
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
	return strings.TrimSpace(s)
}

// ReviewerKey is the identity key for a rating's reviewer display name.
// "Anna" and "anna" are the same reviewer.
func ReviewerKey(name string) string {
	return Fold(name)
}

// TitleYearKey is the dedupe key used when inserting a movie: two entries
// with the same folded title and release year are considered the same
// film regardless of their record ids.
func TitleYearKey(title, year string) string {
	return Fold(title) + "|" + strings.TrimSpace(year)
}
