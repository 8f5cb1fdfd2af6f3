//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisCacheInvalidatesScope(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	defer client.Close()

	c := NewRedisCache(client, "gym", time.Minute)
	require.NoError(t, c.Ping(ctx))

	gen, err := c.Generation(ctx, "expiring")
	require.NoError(t, err)
	require.Zero(t, gen)

	feb := Key("expiring", gen, "2024-02")
	require.NoError(t, c.Set(ctx, feb, []byte(`[{"user_id":"u1"}]`)))
	require.NoError(t, c.Set(ctx, "other:1", []byte(`1`)))

	value, ok, err := c.Get(ctx, feb)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[{"user_id":"u1"}]`, string(value))

	ttl, err := client.TTL(ctx, "gym:"+feb).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx, "expiring"))
	require.NoError(t, c.Invalidate(ctx, "expiring"))

	next, err := c.Generation(ctx, "expiring")
	require.NoError(t, err)
	require.Equal(t, int64(2), next)

	_, ok, err = c.Get(ctx, Key("expiring", next, "2024-02"))
	require.NoError(t, err)
	require.False(t, ok)

	// A reader that observed the old generation still writes under the old key.
	require.NoError(t, c.Set(ctx, feb, []byte(`[]`)))
	_, ok, err = c.Get(ctx, Key("expiring", next, "2024-02"))
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = c.Get(ctx, "other:1")
	require.NoError(t, err)
	require.True(t, ok)
}
