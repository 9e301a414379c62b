package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/config"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/logging"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/store"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/store/postgres"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/store/sqlite"
)

// openStore is a var so tests can substitute a backend.
var openStore = buildStore

// Postgres often comes up after the service in compose setups, so opening
// a networked store is retried with linear backoff.
var (
	storeOpenAttempts = 5
	storeOpenBackoff  = time.Second
)

func openStoreWithRetry(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (store.Store, error) {
	attempts := 1
	if cfg.Driver == config.DriverPostgres {
		attempts = storeOpenAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		st, err := openStore(ctx, cfg)
		if err == nil {
			return st, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		logging.Warn(logger, "store open retry",
			logging.FieldDriver, cfg.Driver,
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * storeOpenBackoff):
		}
	}
	return nil, fmt.Errorf("open %s store: %w", cfg.Driver, lastErr)
}

func buildStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "", config.DriverMemory:
		return store.NewMemoryStore(), nil
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
