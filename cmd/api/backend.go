package main

import (
	"context"
	"fmt"

	memkv "github.com/Overland-East-Bay/scoring-api/internal/adapters/memory/kvstore"
	"github.com/Overland-East-Bay/scoring-api/internal/adapters/postgres"
	pgkv "github.com/Overland-East-Bay/scoring-api/internal/adapters/postgres/kvstore"
	rediskv "github.com/Overland-East-Bay/scoring-api/internal/adapters/redis/kvstore"
	valkeykv "github.com/Overland-East-Bay/scoring-api/internal/adapters/valkey/kvstore"
	"github.com/Overland-East-Bay/scoring-api/internal/platform/config"
	"github.com/Overland-East-Bay/scoring-api/internal/ports/out/kvstore"
)

// openBackend connects the configured key-value backend and checks it answers.
// The returned cleanup is never nil.
func openBackend(ctx context.Context, cfg config.StoreConfig) (kvstore.Backend, func(), error) {
	var (
		backend kvstore.Backend
		cleanup = func() {}
	)

	switch cfg.Backend {
	case config.BackendMemory, "":
		backend = memkv.NewStore()
	case config.BackendRedis:
		s := rediskv.NewStore(rediskv.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			Timeout:  cfg.Timeout,
		})
		backend, cleanup = s, func() { _ = s.Close() }
	case config.BackendValkey:
		s, err := valkeykv.NewStore(valkeykv.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, cleanup, err
		}
		backend, cleanup = s, func() { _ = s.Close() }
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			return nil, cleanup, fmt.Errorf("invalid postgres config: %w", err)
		}
		s := pgkv.NewStore(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, cleanup, err
		}
		backend, cleanup = s, pool.Close
	default:
		return nil, cleanup, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	if p, ok := backend.(kvstore.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			cleanup()
			return nil, func() {}, err
		}
	}
	return backend, cleanup, nil
}
