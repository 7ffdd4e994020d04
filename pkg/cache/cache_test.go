package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ultralight/pkg/cache"
)

func newMemory[V any](t *testing.T, opts ...cache.MemoryOption) *cache.Memory[V] {
	t.Helper()
	c := cache.NewMemory[V](append([]cache.MemoryOption{cache.WithCleanupInterval(0)}, opts...)...)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemory_SetGetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newMemory[string](t)

	_, err := c.Get(ctx, "missing")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, c.Set(ctx, "a", "one", 0))
	require.NoError(t, c.Set(ctx, "a", "uno", 0))
	v, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "uno", v)

	ok, err := c.Has(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.Delete(ctx, "a"))
	require.NoError(t, c.Delete(ctx, "a"))
	ok, err = c.Has(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemory_TTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newMemory[int](t, cache.WithDefaultTTL(20*time.Millisecond))

	require.NoError(t, c.Set(ctx, "default", 1, 0))
	require.NoError(t, c.Set(ctx, "short", 2, 10*time.Millisecond))
	require.NoError(t, c.Set(ctx, "forever", 3, -1))

	time.Sleep(40 * time.Millisecond)

	_, err := c.Get(ctx, "default")
	require.ErrorIs(t, err, cache.ErrNotFound)
	ok, _ := c.Has(ctx, "short")
	require.False(t, ok)
	v, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	require.Equal(t, 3, v)
	require.Equal(t, 1, c.Len())
}

func TestMemory_LRU(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var evicted []string
	c := newMemory[int](t,
		cache.WithMaxEntries(2),
		cache.WithEvictCallback(func(key string) { evicted = append(evicted, key) }),
	)

	require.NoError(t, c.Set(ctx, "a", 1, 0))
	require.NoError(t, c.Set(ctx, "b", 2, 0))
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "c", 3, 0))

	require.Equal(t, []string{"b"}, evicted)
	_, err = c.Get(ctx, "b")
	require.ErrorIs(t, err, cache.ErrNotFound)
	require.Equal(t, 2, c.Len())

	require.NoError(t, c.Clear(ctx))
	require.ElementsMatch(t, []string{"b", "a", "c"}, evicted)
	require.Zero(t, c.Len())
}

func TestMemory_Janitor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[string](cache.WithCleanupInterval(5 * time.Millisecond))
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Set(ctx, "k", "v", time.Millisecond))
	require.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMemory_Closed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[string]()
	require.NoError(t, c.Set(ctx, "k", "v", 0))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	require.ErrorIs(t, c.Set(ctx, "k", "w", 0), cache.ErrClosed)
	require.ErrorIs(t, c.Delete(ctx, "k"), cache.ErrClosed)
	require.ErrorIs(t, c.Clear(ctx), cache.ErrClosed)

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)
}

func TestGetOrSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("loads once", func(t *testing.T) {
		t.Parallel()

		c := newMemory[string](t)
		var calls atomic.Int32
		load := func(context.Context) (string, time.Duration, error) {
			calls.Add(1)
			time.Sleep(10 * time.Millisecond)
			return "value", 0, nil
		}

		var wg sync.WaitGroup
		results := make([]string, 10)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], _ = cache.GetOrSet(ctx, c, "key", load)
			}()
		}
		wg.Wait()
		for _, v := range results {
			require.Equal(t, "value", v)
		}
		require.Equal(t, int32(1), calls.Load())

		v, err := cache.GetOrSet(ctx, c, "key", load)
		require.NoError(t, err)
		require.Equal(t, "value", v)
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("error is not cached", func(t *testing.T) {
		t.Parallel()

		c := newMemory[string](t)
		boom := errors.New("boom")
		_, err := cache.GetOrSet(ctx, c, "key", func(context.Context) (string, time.Duration, error) {
			return "", 0, boom
		})
		require.ErrorIs(t, err, boom)

		ok, _ := c.Has(ctx, "key")
		require.False(t, ok)
	})

	t.Run("caches are isolated", func(t *testing.T) {
		t.Parallel()

		a, b := newMemory[string](t), newMemory[string](t)
		va, err := cache.GetOrSet(ctx, a, "same", func(context.Context) (string, time.Duration, error) { return "a", 0, nil })
		require.NoError(t, err)
		vb, err := cache.GetOrSet(ctx, b, "same", func(context.Context) (string, time.Duration, error) { return "b", 0, nil })
		require.NoError(t, err)
		require.Equal(t, "a", va)
		require.Equal(t, "b", vb)
	})
}

func TestJSON(t *testing.T) {
	t.Parallel()

	type page struct {
		Status int    `json:"status"`
		Body   []byte `json:"body"`
	}
	m := cache.JSON[page]{}

	b, err := m.Marshal(page{Status: 200, Body: []byte("<p>")})
	require.NoError(t, err)
	got, err := m.Unmarshal(b)
	require.NoError(t, err)
	require.Equal(t, page{Status: 200, Body: []byte("<p>")}, got)

	_, err = m.Unmarshal([]byte("{"))
	require.ErrorIs(t, err, cache.ErrUnmarshal)

	_, err = cache.JSON[chan int]{}.Marshal(make(chan int))
	require.ErrorIs(t, err, cache.ErrMarshal)
}
