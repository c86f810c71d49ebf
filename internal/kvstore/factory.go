// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package kvstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/finboard/internal/platform/config"
	"github.com/taibuivan/finboard/internal/platform/migration"
	"github.com/taibuivan/finboard/internal/platform/postgres"
	redisclient "github.com/taibuivan/finboard/internal/platform/redis"
)

// SweepInterval is how often durable backends purge expired rows.
const SweepInterval = 10 * time.Minute

// expirer is implemented by backends whose expired rows must be purged explicitly.
type expirer interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Open builds the backend selected by STORAGE_BACKEND.
//
// # Parameters
//   - ctx: Context for connection attempts and the background sweeper.
//   - cfg: Validated application configuration.
//   - logger: Structured logger for backend events.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.StorageBackend {
	case config.BackendMemory:
		memory := NewMemoryStore(DefaultMemoryCapacity)
		memory.StartJanitor(ctx, time.Minute, logger)
		store = memory

	case config.BackendRedis:
		client, connectErr := redisclient.NewClient(ctx, cfg.RedisURL, logger)
		if connectErr != nil {
			return nil, connectErr
		}
		store = NewRedisStore(client)

	case config.BackendPostgres:
		if err = migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
			return nil, err
		}
		pool, connectErr := postgres.NewPool(ctx, cfg.DatabaseURL, logger)
		if connectErr != nil {
			return nil, connectErr
		}
		store = NewPostgresStore(pool)

	case config.BackendSQLite:
		store, err = OpenSQLiteStore(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("kvstore: unsupported backend %q", cfg.StorageBackend)
	}

	if sweeper, ok := store.(expirer); ok {
		go sweep(ctx, sweeper, SweepInterval, logger)
	}

	logger.Info("kvstore_initialized", slog.String("backend", cfg.StorageBackend))
	return store, nil
}

// sweep purges expired rows until ctx is cancelled.
func sweep(ctx context.Context, store expirer, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := store.DeleteExpired(ctx)
			if err != nil {
				logger.Warn("kvstore_sweep_failed", slog.Any("error", err))
				continue
			}
			if removed > 0 {
				logger.Debug("kvstore_swept", slog.Int64("removed", removed))
			}
		case <-ctx.Done():
			return
		}
	}
}
