package main

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gitlab.com/casesync.net/internal/adapter/postgres/actionrepository"
	"gitlab.com/casesync.net/internal/adapter/redis/suitelock"
	"gitlab.com/casesync.net/internal/adapter/yamlreport"
	"gitlab.com/casesync.net/internal/config"
	"gitlab.com/casesync.net/internal/core/ports/primary"
	"gitlab.com/casesync.net/internal/core/ports/secondary"
)

// backends holds the optional stores; close releases whatever was opened.
type backends struct {
	report   *yamlreport.Store
	database *actionrepository.ActionRepository
	locker   *suitelock.Locker

	closers []func() error
}

func (b *backends) ledgers() []secondary.TagActionRepository {
	ledgers := []secondary.TagActionRepository{b.report}
	if b.database != nil {
		ledgers = append(ledgers, b.database)
	}
	return ledgers
}

// suiteLocker keeps the interface nil when Redis is not configured.
func (b *backends) suiteLocker() secondary.SuiteLocker {
	if b.locker == nil {
		return nil
	}
	return b.locker
}

func (b *backends) close() {
	for _, c := range b.closers {
		_ = c()
	}
}

func openBackends(ctx context.Context, cfg *config.AppConfig, logger primary.Logger) (*backends, error) {
	b := &backends{report: yamlreport.NewStore(cfg.CorpusConfig.ReportPath, logger)}

	if cfg.PostgresConfig.Enabled() {
		db, err := setupDatabase(ctx, cfg.PostgresConfig)
		if err != nil {
			b.close()
			return nil, err
		}
		b.closers = append(b.closers, db.Close)

		repo := actionrepository.NewActionRepository(db, logger)
		if err := repo.EnsureSchema(ctx); err != nil {
			b.close()
			return nil, err
		}
		b.database = repo
	}

	if cfg.RedisConfig.Enabled() {
		client := setupRedis(cfg.RedisConfig)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unavailable, suite resolution stays in-process", "addr", cfg.RedisConfig.Url, "error", err)
			_ = client.Close()
		} else {
			b.closers = append(b.closers, client.Close)
			b.locker = suitelock.NewLocker(client, cfg.RedisConfig.LockWait, logger)
		}
	}

	return b, nil
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(ctx context.Context, cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// setupRedis sets up the Redis connection
func setupRedis(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Url,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
