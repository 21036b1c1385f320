// Package app wires the configured catalog client, store and services
// together for the commands.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/ramonehamilton/mtg-collector/internal/cards/resolve"
	"github.com/ramonehamilton/mtg-collector/internal/cards/scryfall"
	"github.com/ramonehamilton/mtg-collector/internal/collection"
	"github.com/ramonehamilton/mtg-collector/internal/config"
	"github.com/ramonehamilton/mtg-collector/internal/metrics"
	"github.com/ramonehamilton/mtg-collector/internal/storage"
)

// App holds the long-lived components built from a Config.
type App struct {
	Config   *config.Config
	Log      zerolog.Logger
	Catalog  *scryfall.Client
	Resolver *resolve.Resolver
	Service  *collection.Service
	Metrics  *metrics.LookupMetrics

	backend storage.Backend
}

// Options are the optional collaborators of New.
type Options struct {
	Logger zerolog.Logger
	// Registerer receives the lookup metrics. Nil disables them.
	Registerer prometheus.Registerer
}

// New validates cfg, opens the store and builds the services.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	backend, err := storage.OpenBackend(ctx, storage.BackendOptions{
		Driver:    cfg.Storage.Driver,
		Path:      cfg.Storage.Path,
		RedisURL:  cfg.Storage.RedisURL,
		Namespace: storage.DefaultNamespace,
	})
	if err != nil {
		return nil, err
	}

	lookupMetrics := metrics.NewLookupMetrics(opts.Registerer)
	catalog := scryfall.NewClient(
		scryfall.WithBaseURL(cfg.Catalog.BaseURL),
		scryfall.WithUserAgent(cfg.Catalog.UserAgent),
		scryfall.WithLimiter(scryfall.NewLimiter(cfg.RequestInterval())),
		scryfall.WithTimeout(cfg.CatalogTimeout()),
		scryfall.WithRetryPolicy(cfg.Catalog.MaxRetries, scryfall.DefaultBackoff),
		scryfall.WithMetrics(lookupMetrics),
	)
	resolver := resolve.NewResolver(catalog,
		resolve.WithLogger(opts.Logger.With().Str("component", "resolver").Logger()),
		resolve.WithMetrics(lookupMetrics),
	)
	service := collection.NewService(backend, resolver,
		collection.WithLogger(opts.Logger.With().Str("component", "collection").Logger()),
		collection.WithDefaultSettings(collection.Settings{Language: cfg.Import.Language}),
	)

	opts.Logger.Debug().
		Str("driver", cfg.Storage.Driver).
		Str("catalog", cfg.Catalog.BaseURL).
		Msg("application initialized")

	return &App{
		Config:   cfg,
		Log:      opts.Logger,
		Catalog:  catalog,
		Resolver: resolver,
		Service:  service,
		Metrics:  lookupMetrics,
		backend:  backend,
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.backend == nil {
		return nil
	}
	return a.backend.Close()
}
