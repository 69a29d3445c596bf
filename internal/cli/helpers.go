package cli

import (
	matomo "github.com/GesetzeFinden-at/matomo-sdk"
	"github.com/GesetzeFinden-at/matomo-sdk/internal/config"
	"github.com/GesetzeFinden-at/matomo-sdk/internal/logging"
)

// setup loads and validates configuration and builds the logger and
// tracker client every dispatching command needs.
func setup() (*config.Config, logging.Logger, *matomo.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	logger := logging.NewLogger(&logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	client, err := newClient(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, logger, client, nil
}

func newClient(cfg *config.Config, logger logging.Logger) (*matomo.Client, error) {
	opts := []matomo.Option{matomo.WithLogger(logger)}
	if cfg.Tracker.SkipValidation {
		opts = append(opts, matomo.WithoutEndpointValidation())
	}
	if cfg.Tracker.TokenAuth != "" {
		opts = append(opts, matomo.WithTokenAuth(cfg.Tracker.TokenAuth))
	}
	if cfg.Tracker.UserAgent != "" {
		opts = append(opts, matomo.WithUserAgent(cfg.Tracker.UserAgent))
	}
	return matomo.New(cfg.Tracker.SiteID, cfg.Tracker.Endpoint, opts...)
}
