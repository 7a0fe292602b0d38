package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vadimbarashkov/url-redirector/internal/config"
	"github.com/vadimbarashkov/url-redirector/internal/database/dynamodb"
	"github.com/vadimbarashkov/url-redirector/internal/database/memory"
	"github.com/vadimbarashkov/url-redirector/internal/database/postgres"
	"github.com/vadimbarashkov/url-redirector/internal/database/redis"
	"github.com/vadimbarashkov/url-redirector/internal/models"
	"github.com/vadimbarashkov/url-redirector/internal/service"

	pkgpostgres "github.com/vadimbarashkov/url-redirector/pkg/postgres"
)

func nopClose() error { return nil }

// NewStore connects the link store selected by cfg.Store.Driver. The returned
// function releases its connections.
func NewStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.LinkStore, func() error, error) {
	const op = "app.NewStore"

	switch cfg.Store.Driver {
	case config.DriverDynamoDB:
		client, err := dynamodb.New(ctx,
			dynamodb.WithRegion(cfg.DynamoDB.Region),
			dynamodb.WithEndpoint(cfg.DynamoDB.Endpoint),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		return dynamodb.NewLinkRepository(client, cfg.Store.TableName), nopClose, nil

	case config.DriverPostgres:
		db, err := pkgpostgres.New(
			ctx,
			cfg.Postgres.DSN(),
			pkgpostgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
			pkgpostgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
			pkgpostgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
			pkgpostgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
			pkgpostgres.WithConnectAttempts(3, 2*time.Second),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
		}

		version, err := pkgpostgres.RunMigrations(cfg.Postgres.MigrationsPath, cfg.Postgres.DSN())
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("%s: failed to run migrations: %w", op, err)
		}
		logger.Info("database schema is up to date", slog.Uint64("version", uint64(version)))

		return postgres.NewLinkRepository(db), db.Close, nil

	case config.DriverRedis:
		client, err := redis.New(ctx, redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		return redis.NewLinkRepository(client, cfg.Store.TableName), client.Close, nil

	case config.DriverMemory:
		repo := memory.NewLinkRepository()
		for _, link := range cfg.Memory.Links {
			repo.Put(models.Link{Code: link.Code, OriginalURL: link.OriginalURL})
		}
		logger.Warn("using in-memory link store, visit counters are not persisted",
			slog.Int("links", len(cfg.Memory.Links)))

		return repo, nopClose, nil

	default:
		return nil, nil, fmt.Errorf("%s: unknown store driver %q", op, cfg.Store.Driver)
	}
}

// NewResolver builds the store and a Resolver over it that computes visit
// days in cfg.Timezone.
func NewResolver(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...service.Option) (*service.Resolver, func() error, error) {
	const op = "app.NewResolver"

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to load timezone: %w", op, err)
	}

	store, closeStore, err := NewStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	opts = append([]service.Option{service.WithLocation(loc)}, opts...)

	return service.NewResolver(store, logger, opts...), closeStore, nil
}
