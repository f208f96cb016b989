package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/reelmates/reelmates-core/internal/domain"
	"github.com/reelmates/reelmates-core/internal/library"
	"github.com/reelmates/reelmates-core/internal/metadata/tmdb"
)

const maxConcurrentCreditFetch = 4

// CreditFetcher resolves a movie's credit list from the external
// catalog.
type CreditFetcher interface {
	Credits(ctx context.Context, movieID int64) (*tmdb.Credits, error)
}

// CreditsMigrator repairs movies that still carry locally invented
// placeholder person ids from before catalog credits were wired in. It
// runs once at startup: scans both collections, fetches real credits
// for every candidate, and applies the repaired collections in a single
// pass so the sync layer sees at most one diff per collection.
type CreditsMigrator struct {
	library *library.Library
	catalog CreditFetcher
	logger  *slog.Logger
}

// NewCreditsMigrator creates the migrator.
func NewCreditsMigrator(lib *library.Library, catalog CreditFetcher, logger *slog.Logger) *CreditsMigrator {
	return &CreditsMigrator{
		library: lib,
		catalog: catalog,
		logger:  logger,
	}
}

// Run executes one migration pass. It returns the number of movies
// repaired, zero when nothing needed fixing or another pass was already
// in flight. Individual fetch failures leave that movie untouched; it
// stays a candidate for the next run.
func (m *CreditsMigrator) Run(ctx context.Context) int {
	if !m.library.TryBeginMigration() {
		m.logger.Debug("Credit migration skipped, library busy")
		return 0
	}
	defer m.library.EndMigration()

	watched := m.library.Watched()
	backlog := m.library.Backlog()

	repaired := m.repair(ctx, watched) + m.repair(ctx, backlog)
	if repaired == 0 {
		return 0
	}

	if err := m.library.ReplaceAll(watched, backlog); err != nil {
		m.logger.Error("Failed to apply migrated collections", "error", err)
		return 0
	}

	m.logger.Info("Credit migration complete", "repaired", repaired)
	return repaired
}

// repair fetches real credits for every candidate in the slice,
// rewriting entries in place. Returns how many movies were repaired.
func (m *CreditsMigrator) repair(ctx context.Context, movies []domain.Movie) int {
	var (
		wg       sync.WaitGroup
		sem      = make(chan struct{}, maxConcurrentCreditFetch)
		mu       sync.Mutex
		repaired int
	)

	for i := range movies {
		if !movies[i].NeedsCreditMigration() {
			continue
		}

		sem <- struct{}{}
		wg.Go(func() {
			defer func() { <-sem }()

			credits, err := m.catalog.Credits(ctx, movies[i].CatalogID)
			if err != nil {
				m.logger.Warn("Credit fetch failed, leaving movie as-is",
					"movie_id", movies[i].ID,
					"catalog_id", movies[i].CatalogID,
					"error", err)
				return
			}

			cast, directors := convertCredits(credits)

			mu.Lock()
			movies[i].Cast = cast
			movies[i].Directors = directors
			repaired++
			mu.Unlock()
		})
	}

	wg.Wait()
	return repaired
}

// convertCredits maps a catalog credit list onto the domain
// representation. Directors come from crew entries with the directing
// job; everyone keeps the catalog's real person id.
func convertCredits(credits *tmdb.Credits) (cast, directors []domain.CastMember) {
	for _, c := range credits.Cast {
		cast = append(cast, domain.CastMember{PersonID: c.ID, Name: c.Name})
	}
	for _, c := range credits.Crew {
		if c.Job == "Director" {
			directors = append(directors, domain.CastMember{PersonID: c.ID, Name: c.Name})
		}
	}
	return cast, directors
}
