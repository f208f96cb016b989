package providers

import (
	"github.com/samber/do/v2"

	"github.com/reelmates/reelmates-core/internal/config"
	"github.com/reelmates/reelmates-core/internal/logger"
	"github.com/reelmates/reelmates-core/internal/metadata/tmdb"
)

// ProvideCatalogClient provides the external movie catalog client. An
// empty API key yields a client whose calls fail with the distinguished
// missing-credential error, so startup never blocks on configuration.
func ProvideCatalogClient(i do.Injector) (*tmdb.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Catalog.APIKey == "" {
		log.Warn("No catalog API key configured, enrichment disabled")
	}

	return tmdb.New(cfg.Catalog.APIKey, log.Logger), nil
}
