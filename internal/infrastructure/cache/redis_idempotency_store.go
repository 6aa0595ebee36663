package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/erp/stockscan/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces idempotency keys in Redis
const DefaultKeyPrefix = "stockscan:idempotency:"

const pingTimeout = 5 * time.Second

// RedisIdempotencyStore keeps claims in Redis so every instance sharing the
// database sees them. Expiry is left to Redis key TTLs.
type RedisIdempotencyStore struct {
	client *redis.Client
	prefix string
}

// DialRedisIdempotencyStore connects to the configured Redis and pings it
// before returning the store.
func DialRedisIdempotencyStore(ctx context.Context, cfg config.RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", client.Options().Addr, err)
	}
	return NewRedisIdempotencyStore(client, DefaultKeyPrefix), nil
}

// NewRedisIdempotencyStore wraps an existing client. An empty prefix uses
// DefaultKeyPrefix.
func NewRedisIdempotencyStore(client *redis.Client, prefix string) *RedisIdempotencyStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, prefix: prefix}
}

// MarkProcessed claims key with SET NX and the given ttl
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.prefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim idempotency key %q: %w", key, err)
	}
	return ok, nil
}

// IsProcessed reports whether key holds a live claim
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("check idempotency key %q: %w", key, err)
	}
	return n == 1, nil
}

// Remove releases key
func (s *RedisIdempotencyStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key %q: %w", key, err)
	}
	return nil
}

// Close closes the client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
