package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/abandoned-sites/internal/config"
	"github.com/jwebster45206/abandoned-sites/internal/logger"
	"github.com/jwebster45206/abandoned-sites/internal/services"
	"github.com/jwebster45206/abandoned-sites/internal/storage"
	"github.com/jwebster45206/abandoned-sites/pkg/catalog"
	"github.com/jwebster45206/abandoned-sites/pkg/moderation"
)

const (
	startupTimeout  = 30 * time.Second
	redisRetries    = 10
	redisRetryDelay = time.Second
)

// app is the wiring shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   storage.Storage
	catalog *services.Catalog
}

// openApp connects the configured storage, seeds it when empty and binds a
// fresh browsing session.
func openApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if catalogFile != "" {
		cfg.CatalogFile = catalogFile
	}

	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if err := seedIfEmpty(ctx, store, cfg.CatalogFile, log); err != nil {
		_ = store.Close()
		return nil, err
	}

	session := uuid.New()
	log = logger.WithSession(log, session.String())

	var opts []services.Option
	if moderation.Restrictive(cfg.ContentRating) {
		opts = append(opts, services.WithModeration(moderation.New()))
		log.Debug("Story moderation enabled", "content_rating", cfg.ContentRating)
	}

	return &app{
		cfg:     cfg,
		logger:  log,
		store:   store,
		catalog: services.NewCatalog(store, session, log, opts...),
	}, nil
}

func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rs, err := storage.NewRedisStorage(cfg.RedisURL, cfg.SessionTTL, log)
		if err != nil {
			return nil, err
		}
		if err := rs.WaitForConnection(ctx, redisRetries, redisRetryDelay); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("failed to connect to storage: %w", err)
		}
		log.Info("Using redis storage", "session_ttl", cfg.SessionTTL)
		return rs, nil
	default:
		log.Debug("Using in-memory storage")
		return storage.NewMemoryStorage(), nil
	}
}

// seedIfEmpty loads the catalog into storage unless another session has
// already seeded it and the keys have not expired.
func seedIfEmpty(ctx context.Context, store storage.Storage, path string, log *slog.Logger) error {
	existing, err := store.ListLocations(ctx, catalog.Filter{})
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	if len(existing) > 0 {
		log.Debug("Catalog already seeded", "locations", len(existing))
		return nil
	}

	var locs []catalog.Location
	if path != "" {
		locs, err = catalog.LoadSeedFile(path)
	} else {
		locs, err = catalog.DefaultSeed()
	}
	if err != nil {
		return err
	}

	if err := store.Seed(ctx, locs); err != nil {
		return err
	}
	log.Info("Catalog seeded", "locations", len(locs), "source", seedSource(path))
	return nil
}

func seedSource(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}

func (a *app) Close() error {
	return a.store.Close()
}
