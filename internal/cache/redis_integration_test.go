//go:build integration

package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisClient(t *testing.T) {
	ctx := context.Background()

	redisContainer, err := redis.Run(ctx,
		"redis:7.4-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	uri, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)

	c, err := NewRedisClient(ctx, RedisConfig{Addr: strings.TrimPrefix(uri, "redis://"), Prefix: "test:"})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "answer:1:a", []byte("hello"), time.Minute))
	require.NoError(t, c.Set(ctx, "answer:1:b", []byte("world"), time.Minute))

	got, err := c.Get(ctx, "answer:1:a")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	require.NoError(t, c.DeleteByPrefix(ctx, "answer:1:"))
	_, err = c.Get(ctx, "answer:1:b")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
