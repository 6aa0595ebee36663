// Package cache holds the idempotency key stores used by the scan endpoint.
package cache

import (
	"context"
	"fmt"

	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/erp/stockscan/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StoreOptions tune NewIdempotencyStore
type StoreOptions struct {
	Logger *zap.Logger
	// RequireRedis fails instead of falling back to memory when the redis
	// backend is configured but unreachable.
	RequireRedis bool
}

// NewIdempotencyStore opens the store selected by scanner.IdempotencyBackend
func NewIdempotencyStore(ctx context.Context, scanner config.ScannerConfig, redisCfg config.RedisConfig, opts StoreOptions) (shared.IdempotencyStore, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("backend", scanner.IdempotencyBackend))

	if scanner.IdempotencyBackend != config.IdempotencyRedis {
		log.Info("idempotency store ready")
		return NewInMemoryIdempotencyStore(0), nil
	}

	store, err := DialRedisIdempotencyStore(ctx, redisCfg)
	switch {
	case err == nil:
		log.Info("idempotency store ready")
		return store, nil
	case opts.RequireRedis:
		return nil, fmt.Errorf("open redis idempotency store: %w", err)
	}
	log.Warn("redis unreachable, idempotency keys stay local to this instance", zap.Error(err))
	return NewInMemoryIdempotencyStore(0), nil
}
