package providers

import (
	"github.com/samber/do/v2"

	"github.com/reelmates/reelmates-core/internal/config"
	"github.com/reelmates/reelmates-core/internal/logger"
	"github.com/reelmates/reelmates-core/internal/remote"
)

// ProvideRemoteStore provides the shared record store. With no remote
// URL configured the engine runs against the in-memory store: fully
// functional, device-local only.
func ProvideRemoteStore(i do.Injector) (remote.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Remote.BaseURL == "" {
		log.Info("No remote configured, running in offline mode")
		return remote.NewMemory(), nil
	}

	log.Info("Remote record store configured", "url", cfg.Remote.BaseURL)
	return remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Token, log.Logger), nil
}
