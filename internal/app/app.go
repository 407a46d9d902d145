// Package app wires the phone advisor services from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/cache"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/catalog"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/config"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/observability"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/retrieval"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/storage"
)

// Services holds the wired dependencies shared by the API and the CLI.
type Services struct {
	DB         *sql.DB
	Phones     *storage.PhoneRepository
	Migrations *storage.MigrationManager
	Catalog    *catalog.Index
	Cache      cache.Client
	Router     *retrieval.Router
}

// Options controls which startup steps run.
type Options struct {
	// SkipCatalog leaves Catalog and Router nil, for commands that only touch the schema.
	SkipCatalog bool
}

// OpenDatabase opens the configured database and applies migrations and seed
// data when the configuration asks for them.
func OpenDatabase(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*sql.DB, *storage.MigrationManager, error) {
	opts := storage.OpenOptions{
		Driver: cfg.Database.Driver,
		DSN:    cfg.DatabaseDSN(),
	}
	if cfg.Database.Driver == "sqlite" {
		opts.MaxOpenConns = cfg.Database.SQLite.MaxOpenConns
		opts.JournalMode = cfg.Database.SQLite.JournalMode
	} else {
		opts.MaxOpenConns = cfg.Database.Postgres.MaxOpenConns
		opts.MaxIdleConns = cfg.Database.Postgres.MaxIdleConns
		opts.ConnMaxLifetime = cfg.Database.Postgres.ConnMaxLifetime
	}

	db, err := storage.Open(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	migrations := storage.NewMigrationManager(db, cfg.Database.Driver)

	if cfg.Database.AutoMigrate {
		applied, err := migrations.Migrate(ctx)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		if len(applied) > 0 {
			logger.Info().Int("count", len(applied)).Msg("Applied migrations")
		}
	}

	if cfg.Database.Seed {
		if err := migrations.Seed(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("seed: %w", err)
		}
		logger.Debug().Msg("Seed data applied")
	}

	return db, migrations, nil
}

// NewCache builds the answer cache for the configured driver.
func NewCache(ctx context.Context, cfg *config.Config) (cache.Client, error) {
	switch cfg.Cache.Driver {
	case "", "memory":
		return cache.NewMemoryClient(cfg.Cache.MaxEntries), nil
	case "redis":
		client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", cfg.Cache.Driver)
	}
}

// InvalidateSharedAnswers clears answers held in a shared Redis cache after the
// record store changed. A memory cache lives inside the API process and is
// cleared by its catalog reload endpoint instead.
func InvalidateSharedAnswers(ctx context.Context, cfg *config.Config) error {
	if !cfg.Advisor.CacheAnswers || cfg.Cache.Driver != "redis" {
		return nil
	}
	c, err := NewCache(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}
	defer c.Close()
	return retrieval.InvalidateAnswers(ctx, c)
}

// New opens the store, loads the catalog and builds the question router.
// Any failure here is a startup failure.
func New(ctx context.Context, cfg *config.Config, logger *observability.Logger, opts Options) (*Services, error) {
	db, migrations, err := OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	svc := &Services{
		DB:         db,
		Phones:     storage.NewPhoneRepository(db),
		Migrations: migrations,
	}
	if opts.SkipCatalog {
		return svc, nil
	}

	svc.Catalog, err = catalog.Load(ctx, svc.Phones, logger)
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	if cfg.Advisor.CacheAnswers {
		c, err := NewCache(ctx, cfg)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("create cache: %w", err)
		}
		svc.Cache = c
	}

	svc.Router = retrieval.NewRouter(logger, svc.Phones, svc.Cache, retrieval.RouterConfig{
		MatchCutoff:  cfg.Advisor.MatchCutoff,
		CacheAnswers: cfg.Advisor.CacheAnswers,
		CacheTTL:     cfg.Cache.TTL,
	})

	return svc, nil
}

// Close releases the cache and the database.
func (s *Services) Close() error {
	var errs []error
	if s.Cache != nil {
		errs = append(errs, s.Cache.Close())
	}
	if s.DB != nil {
		errs = append(errs, s.DB.Close())
	}
	return errors.Join(errs...)
}
