// Package di provides dependency injection configuration for the ReelMates sync core.
package di

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/reelmates/reelmates-core/internal/config"
	"github.com/reelmates/reelmates-core/internal/di/providers"
	"github.com/reelmates/reelmates-core/internal/domain"
	"github.com/reelmates/reelmates-core/internal/library"
	"github.com/reelmates/reelmates-core/internal/logger"
	"github.com/reelmates/reelmates-core/internal/metadata/tmdb"
	"github.com/reelmates/reelmates-core/internal/remote"
	"github.com/reelmates/reelmates-core/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideStore)

	// Remote and catalog clients
	do.Provide(injector, providers.ProvideRemoteStore)
	do.Provide(injector, providers.ProvideCatalogClient)

	// Engine services
	do.Provide(injector, providers.ProvideLibrary)
	do.Provide(injector, providers.ProvideGroupService)
	do.Provide(injector, providers.ProvideSyncService)
	do.Provide(injector, providers.ProvideRatingService)
	do.Provide(injector, providers.ProvideGoalService)
	do.Provide(injector, providers.ProvideCreditsMigrator)
	do.Provide(injector, providers.ProvidePopularityService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and runs the engine's startup
// sequence: a full pull of the active group, then the credit migration
// pass, then popularity preloading for everyone referenced by the
// collections. The startup sequence runs in the background so the HTTP
// server comes up immediately with cached data.
func Bootstrap(ctx context.Context, injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	log := do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[remote.Store](injector)
	_ = do.MustInvoke[*tmdb.Client](injector)

	lib := do.MustInvoke[*library.Library](injector)
	_ = do.MustInvoke[*service.GroupService](injector)
	syncSvc := do.MustInvoke[*service.SyncService](injector)
	_ = do.MustInvoke[*service.RatingService](injector)
	goalSvc := do.MustInvoke[*service.GoalService](injector)
	migrator := do.MustInvoke[*service.CreditsMigrator](injector)
	popularity := do.MustInvoke[*service.PopularityService](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	go func() {
		if err := syncSvc.FullPull(ctx); err != nil {
			log.Warn("Startup pull failed, serving cached collections", "error", err)
		}
		if err := goalSvc.Refresh(ctx); err != nil {
			log.Warn("Startup goal refresh failed", "error", err)
		}

		migrator.Run(ctx)

		popularity.Preload(ctx, collectPersonIDs(lib))
	}()

	return nil
}

// collectPersonIDs gathers every catalog person id referenced by either
// collection's credits.
func collectPersonIDs(lib *library.Library) []int64 {
	seen := make(map[int64]struct{})
	var ids []int64

	add := func(members []domain.CastMember) {
		for _, m := range members {
			if m.PersonID <= 0 {
				continue
			}
			if _, ok := seen[m.PersonID]; ok {
				continue
			}
			seen[m.PersonID] = struct{}{}
			ids = append(ids, m.PersonID)
		}
	}

	for _, m := range lib.Watched() {
		add(m.Cast)
		add(m.Directors)
	}
	for _, m := range lib.Backlog() {
		add(m.Cast)
		add(m.Directors)
	}
	return ids
}
