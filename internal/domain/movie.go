// Package domain contains the core types shared across the ReelMates sync engine.
package domain

import (
	"slices"
	"time"
)

// CastMember is a credited person on a movie. PersonID is the external
// catalog person id; locally invented placeholder ids are negative until
// the credit migrator resolves the canonical one.
type CastMember struct {
	PersonID int64  `json:"person_id"`
	Name     string `json:"name"`
}

// IsSentinel reports whether this member still carries a locally
// invented placeholder id.
func (c CastMember) IsSentinel() bool {
	return c.PersonID < 0
}

// Genre is a named genre from the external catalog.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Keyword is a named keyword from the external catalog.
type Keyword struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Movie is a single tracked film. The ID is a locally generated stable
// id, never reused and never derived from title or year. A nil WatchedAt
// means the movie sits in the backlog.
type Movie struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Year        string       `json:"year"` // release year, "n/a" when unknown
	CatalogID   int64        `json:"catalog_id,omitempty"`
	PosterPath  string       `json:"poster_path,omitempty"`
	WatchedAt   *time.Time   `json:"watched_at,omitempty"`
	Location    string       `json:"location,omitempty"`
	SuggestedBy string       `json:"suggested_by,omitempty"`
	Ratings     []Rating     `json:"ratings,omitempty"`
	Genres      []Genre      `json:"genres,omitempty"`
	Keywords    []Keyword    `json:"keywords,omitempty"`
	Cast        []CastMember `json:"cast,omitempty"`
	Directors   []CastMember `json:"directors,omitempty"`
	GroupID     string       `json:"group_id,omitempty"`
	GroupName   string       `json:"group_name,omitempty"`
}

// EqualIgnoringRatings reports whether two movies are structurally equal
// with both rating lists treated as empty. Ratings are synchronized as
// independent records, so a ratings-only edit must not make the movie
// itself look changed.
func (m Movie) EqualIgnoringRatings(other Movie) bool {
	if m.ID != other.ID ||
		m.Title != other.Title ||
		m.Year != other.Year ||
		m.CatalogID != other.CatalogID ||
		m.PosterPath != other.PosterPath ||
		m.Location != other.Location ||
		m.SuggestedBy != other.SuggestedBy ||
		m.GroupID != other.GroupID ||
		m.GroupName != other.GroupName {
		return false
	}
	if !timePtrEqual(m.WatchedAt, other.WatchedAt) {
		return false
	}
	return slices.Equal(m.Genres, other.Genres) &&
		slices.Equal(m.Keywords, other.Keywords) &&
		slices.Equal(m.Cast, other.Cast) &&
		slices.Equal(m.Directors, other.Directors)
}

// NeedsCreditMigration reports whether this movie is a candidate for the
// legacy identifier migrator: it has a resolvable catalog id and either
// no cast at all or at least one sentinel person id.
func (m Movie) NeedsCreditMigration() bool {
	if m.CatalogID == 0 {
		return false
	}
	if len(m.Cast) == 0 {
		return true
	}
	for _, c := range m.Cast {
		if c.IsSentinel() {
			return true
		}
	}
	for _, d := range m.Directors {
		if d.IsSentinel() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the movie. Slices are copied so callers
// can mutate the clone without aliasing the original.
func (m Movie) Clone() Movie {
	out := m
	out.Ratings = slices.Clone(m.Ratings)
	out.Genres = slices.Clone(m.Genres)
	out.Keywords = slices.Clone(m.Keywords)
	out.Cast = slices.Clone(m.Cast)
	out.Directors = slices.Clone(m.Directors)
	if m.WatchedAt != nil {
		t := *m.WatchedAt
		out.WatchedAt = &t
	}
	return out
}

// CloneMovies deep-copies a movie collection.
func CloneMovies(movies []Movie) []Movie {
	out := make([]Movie, len(movies))
	for i := range movies {
		out[i] = movies[i].Clone()
	}
	return out
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
