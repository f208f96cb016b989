package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/reelmates/reelmates-core/internal/blob"
	"github.com/reelmates/reelmates-core/internal/errors"
	"github.com/reelmates/reelmates-core/internal/metadata/tmdb"
	"github.com/reelmates/reelmates-core/internal/ttl"
)

const (
	popularityTTL   = 30 * 24 * time.Hour
	popularityBatch = 6
)

// PersonFetcher resolves a person record from the external catalog.
type PersonFetcher interface {
	Person(ctx context.Context, personID int64) (*tmdb.Person, error)
}

// PopularityService keeps a month-long cache of person popularity
// scores used to order cast lists. It is pure enrichment: a missing
// score never blocks anything, and a person whose fetch failed reads as
// zero until the TTL lapses.
type PopularityService struct {
	cache   *ttl.Cache[float64]
	catalog PersonFetcher
	store   *blob.Store
	logger  *slog.Logger
}

// NewPopularityService creates the service and restores any persisted
// snapshot.
func NewPopularityService(store *blob.Store, catalog PersonFetcher, logger *slog.Logger) *PopularityService {
	s := &PopularityService{
		cache:   ttl.New[float64](popularityTTL),
		catalog: catalog,
		store:   store,
		logger:  logger,
	}

	var snapshot map[string]ttl.Record[float64]
	if err := store.GetJSON(blob.KeyPopularityCache, &snapshot); err != nil {
		if !errors.Is(err, blob.ErrNotFound) {
			logger.Warn("Failed to load popularity cache", "error", err)
		}
	} else {
		s.cache.Restore(snapshot)
	}

	return s
}

// Score returns the cached popularity for a person, if fresh.
func (s *PopularityService) Score(personID int64) (float64, bool) {
	return s.cache.Read(strconv.FormatInt(personID, 10))
}

// Preload refreshes scores for the given people in batches, then
// persists the cache. Already fresh or in-flight ids are skipped.
func (s *PopularityService) Preload(ctx context.Context, personIDs []int64) {
	ids := make([]string, 0, len(personIDs))
	for _, id := range personIDs {
		ids = append(ids, strconv.FormatInt(id, 10))
	}

	s.cache.Preload(ctx, ids, popularityBatch, func(ctx context.Context, id string) (float64, error) {
		personID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return 0, err
		}
		person, err := s.catalog.Person(ctx, personID)
		if err != nil {
			s.logger.Debug("Popularity fetch failed", "person_id", personID, "error", err)
			return 0, err
		}
		return person.Popularity, nil
	})

	if err := s.store.SetJSON(blob.KeyPopularityCache, s.cache.Snapshot()); err != nil {
		s.logger.Error("Failed to persist popularity cache", "error", err)
	}
}
