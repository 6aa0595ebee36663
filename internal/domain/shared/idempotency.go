package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys that were already applied.
type IdempotencyStore interface {
	// MarkProcessed records the key with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been recorded
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Remove forgets a key so the request can be retried
	Remove(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}

// DefaultIdempotencyTTL is how long a key is remembered when no TTL is
// configured. After it expires the same key is accepted again.
const DefaultIdempotencyTTL = 24 * time.Hour
