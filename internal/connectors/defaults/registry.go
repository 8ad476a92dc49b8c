package defaults

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gabriel/bigfinish-metadata/internal/config"
	"github.com/gabriel/bigfinish-metadata/internal/connectors"
	"github.com/gabriel/bigfinish-metadata/internal/connectors/native/bigfinish"
	"github.com/gabriel/bigfinish-metadata/internal/connectors/profile"
)

// NewRegistry builds the registry with the BigFinish connector, using the
// profile override at cfg.SiteProfilePath when one is set.
func NewRegistry(cfg config.Config, logger *slog.Logger) (*connectors.Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	siteProfile, err := profile.Load(cfg.SiteProfilePath)
	if err != nil {
		return nil, fmt.Errorf("load site profile: %w", err)
	}

	connector := bigfinish.NewConnector(
		siteProfile,
		bigfinish.NewHTTPFetcher(&http.Client{Timeout: cfg.HTTPTimeout}),
		bigfinish.Options{
			StripTitle:     cfg.StripTitle,
			DetailTimeout:  cfg.DetailTimeout,
			MaxConcurrency: cfg.MaxConcurrency,
			Logger:         logger.With("connector", siteProfile.Key),
		},
	)

	registry := connectors.NewRegistry()
	if err := registry.Register(connector); err != nil {
		return nil, fmt.Errorf("register %s connector: %w", siteProfile.Key, err)
	}
	return registry, nil
}
