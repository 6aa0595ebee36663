package cache

import (
	"context"
	"testing"

	"github.com/erp/stockscan/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// nothing listens on port 1
var unreachableRedis = config.RedisConfig{Host: "127.0.0.1", Port: 1}

func TestNewIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	memoryCfg := config.ScannerConfig{IdempotencyBackend: config.IdempotencyMemory}
	redisCfg := config.ScannerConfig{IdempotencyBackend: config.IdempotencyRedis}

	t.Run("memory backend", func(t *testing.T) {
		store, err := NewIdempotencyStore(ctx, memoryCfg, unreachableRedis, StoreOptions{})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		store, err := NewIdempotencyStore(ctx, redisCfg, unreachableRedis, StoreOptions{Logger: zaptest.NewLogger(t)})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("unreachable redis required", func(t *testing.T) {
		store, err := NewIdempotencyStore(ctx, redisCfg, unreachableRedis, StoreOptions{RequireRedis: true})
		assert.ErrorContains(t, err, "open redis idempotency store")
		assert.Nil(t, store)
	})
}
