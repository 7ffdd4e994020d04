package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ultralight/pkg/cache"
)

func TestPurgeTask(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[[]byte]()
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Set(ctx, "page:/", []byte("<html>"), 0))

	task := cache.NewPurgeTask(c)
	require.Equal(t, "cache.purge", task.Name())
	require.Equal(t, cache.DefaultPurgeSchedule, task.Schedule())
	require.NoError(t, task.Handle(ctx))

	ok, err := c.Has(ctx, "page:/")
	require.NoError(t, err)
	require.False(t, ok)

	custom := cache.NewPurgeTask(c, cache.WithPurgeName("feeds.purge"), cache.WithPurgeSchedule("*/5 * * * *"))
	require.Equal(t, "feeds.purge", custom.Name())
	require.Equal(t, "*/5 * * * *", custom.Schedule())
}

func TestPurgeTask_Closed(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[string]()
	require.NoError(t, c.Close())

	err := cache.NewPurgeTask(c).Handle(context.Background())
	require.ErrorIs(t, err, cache.ErrClosed)
}
