//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/erp/stockscan/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	return config.RedisConfig{Host: host, Port: port.Int()}
}

func TestRedisIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	store, err := DialRedisIdempotencyStore(ctx, startRedis(t))
	require.NoError(t, err)
	defer store.Close()

	claimed, err := store.MarkProcessed(ctx, "scan:ship-1:k1", time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.MarkProcessed(ctx, "scan:ship-1:k1", time.Hour)
	require.NoError(t, err)
	assert.False(t, claimed)

	processed, err := store.IsProcessed(ctx, "scan:ship-1:k1")
	require.NoError(t, err)
	assert.True(t, processed)

	require.NoError(t, store.Remove(ctx, "scan:ship-1:k1"))
	processed, err = store.IsProcessed(ctx, "scan:ship-1:k1")
	require.NoError(t, err)
	assert.False(t, processed)

	_, err = store.MarkProcessed(ctx, "scan:ship-1:short", 50*time.Millisecond)
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		ok, err := store.IsProcessed(ctx, "scan:ship-1:short")
		return err == nil && !ok
	}, 5*time.Second, 50*time.Millisecond)
}
