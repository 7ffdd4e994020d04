//go:build integration

package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ultralight/pkg/cache"
	"github.com/dmitrymomot/ultralight/pkg/redis"
)

func TestRedis(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}
	ctx := context.Background()
	client, err := redis.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	pages := cache.NewRedis[string](client, nil, cache.WithPrefix("test-pages"))
	other := cache.NewRedis[string](client, nil, cache.WithPrefix("test-other"))
	t.Cleanup(func() {
		_ = pages.Clear(ctx)
		_ = other.Clear(ctx)
	})

	_, err = pages.Get(ctx, "/")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, pages.Set(ctx, "/", "<html>", time.Minute))
	require.NoError(t, other.Set(ctx, "/", "kept", -1))
	v, err := pages.Get(ctx, "/")
	require.NoError(t, err)
	require.Equal(t, "<html>", v)

	ttl, err := client.TTL(ctx, "test-other:/").Result()
	require.NoError(t, err)
	require.Equal(t, time.Duration(-1), ttl)

	require.NoError(t, pages.Clear(ctx))
	ok, err := pages.Has(ctx, "/")
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = other.Has(ctx, "/")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, other.Delete(ctx, "/"))
	ok, err = other.Has(ctx, "/")
	require.NoError(t, err)
	require.False(t, ok)
}
