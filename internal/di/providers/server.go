package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/reelmates/reelmates-core/internal/api"
	"github.com/reelmates/reelmates-core/internal/config"
	"github.com/reelmates/reelmates-core/internal/library"
	"github.com/reelmates/reelmates-core/internal/logger"
	"github.com/reelmates/reelmates-core/internal/metadata/tmdb"
	"github.com/reelmates/reelmates-core/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	lib := do.MustInvoke[*library.Library](i)
	syncSvc := do.MustInvoke[*service.SyncService](i)
	ratingSvc := do.MustInvoke[*service.RatingService](i)
	groupSvc := do.MustInvoke[*service.GroupService](i)
	goalSvc := do.MustInvoke[*service.GoalService](i)
	catalog := do.MustInvoke[*tmdb.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	handler := api.NewServer(storeHandle.Store, lib, syncSvc, ratingSvc, groupSvc, goalSvc, catalog, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
