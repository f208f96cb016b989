package providers

import (
	"github.com/samber/do/v2"

	"github.com/reelmates/reelmates-core/internal/library"
	"github.com/reelmates/reelmates-core/internal/logger"
	"github.com/reelmates/reelmates-core/internal/metadata/tmdb"
	"github.com/reelmates/reelmates-core/internal/remote"
	"github.com/reelmates/reelmates-core/internal/service"
)

// ProvideLibrary provides the on-device movie library.
func ProvideLibrary(i do.Injector) (*library.Library, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return library.New(storeHandle.Store, log.Logger), nil
}

// ProvideGroupService provides the group lifecycle service.
func ProvideGroupService(i do.Injector) (*service.GroupService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	lib := do.MustInvoke[*library.Library](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGroupService(storeHandle.Store, lib, log.Logger), nil
}

// ProvideSyncService provides the reconciliation engine. This is where
// the change-notification and post-transition pull hooks get wired:
// the library notifies the sync service, and group transitions trigger
// its full pulls.
func ProvideSyncService(i do.Injector) (*service.SyncService, error) {
	lib := do.MustInvoke[*library.Library](i)
	store := do.MustInvoke[remote.Store](i)
	groupSvc := do.MustInvoke[*service.GroupService](i)
	log := do.MustInvoke[*logger.Logger](i)

	syncSvc := service.NewSyncService(lib, store, store, groupSvc, log.Logger)
	lib.SetChangeListener(syncSvc)
	groupSvc.SetPuller(syncSvc)

	return syncSvc, nil
}

// ProvideRatingService provides the rating merge service.
func ProvideRatingService(i do.Injector) (*service.RatingService, error) {
	lib := do.MustInvoke[*library.Library](i)
	store := do.MustInvoke[remote.Store](i)
	groupSvc := do.MustInvoke[*service.GroupService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRatingService(lib, store, groupSvc, log.Logger), nil
}

// ProvideGoalService provides the goal tracking service.
func ProvideGoalService(i do.Injector) (*service.GoalService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	store := do.MustInvoke[remote.Store](i)
	groupSvc := do.MustInvoke[*service.GroupService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGoalService(storeHandle.Store, store, groupSvc, log.Logger), nil
}

// ProvideCreditsMigrator provides the legacy credit migrator.
func ProvideCreditsMigrator(i do.Injector) (*service.CreditsMigrator, error) {
	lib := do.MustInvoke[*library.Library](i)
	catalog := do.MustInvoke[*tmdb.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCreditsMigrator(lib, catalog, log.Logger), nil
}

// ProvidePopularityService provides the person popularity cache.
func ProvidePopularityService(i do.Injector) (*service.PopularityService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalog := do.MustInvoke[*tmdb.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPopularityService(storeHandle.Store, catalog, log.Logger), nil
}
