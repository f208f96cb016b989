package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/reelmates/reelmates-core/internal/blob"
	"github.com/reelmates/reelmates-core/internal/config"
	"github.com/reelmates/reelmates-core/internal/logger"
)

// StoreHandle wraps the blob store with shutdown capability.
type StoreHandle struct {
	*blob.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the on-device blob store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "db")
	store, err := blob.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	return &StoreHandle{Store: store}, nil
}
