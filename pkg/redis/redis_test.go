package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestOpen_InvalidURL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := Open(ctx, "")
	require.ErrorIs(t, err, ErrEmptyConnectionURL)

	for _, url := range []string{"http://localhost:6379", "localhost:6379", "postgres://localhost/db", "redis://localhost:6379/notadb"} {
		_, err := Open(ctx, url)
		require.ErrorIs(t, err, ErrFailedToParseURL, url)
	}
}

func TestOpen_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "redis://127.0.0.1:1/0",
		WithRetry(2, time.Millisecond),
		WithDialTimeout(100*time.Millisecond),
	)
	require.ErrorIs(t, err, ErrConnectionFailed)
}

func TestOpen_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, "redis://127.0.0.1:1/0", WithRetry(3, time.Hour))
	require.ErrorIs(t, err, ErrConnectionFailed)
	require.ErrorIs(t, err, context.Canceled)
}

func TestMustOpen_Panics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { MustOpen(context.Background(), "") })
}

func TestConfig(t *testing.T) {
	t.Parallel()

	var cfg Config
	require.NoError(t, env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{
		"REDIS_URL":       "redis://cache:6379/1",
		"REDIS_POOL_SIZE": "32",
	}}))
	require.True(t, cfg.Enabled())
	require.Equal(t, 32, cfg.PoolSize)
	require.Equal(t, 5*time.Second, cfg.DialTimeout)

	s := &settings{opts: &goredis.Options{}}
	for _, opt := range cfg.Options() {
		opt(s)
	}
	require.Equal(t, 32, s.opts.PoolSize)
	require.Equal(t, 2, s.opts.MinIdleConns)
	require.Equal(t, 3*time.Second, s.opts.ReadTimeout)
	require.Equal(t, 3, s.attempts)
	require.Equal(t, 2*time.Second, s.interval)

	require.False(t, Config{}.Enabled())
}

func TestOptions_IgnoreInvalid(t *testing.T) {
	t.Parallel()

	s := &settings{opts: &goredis.Options{PoolSize: 7, DialTimeout: time.Second}}
	for _, opt := range []Option{WithPoolSize(0), WithDialTimeout(-1), WithMinIdleConns(-3), WithRetry(0, 0)} {
		opt(s)
	}
	require.Equal(t, 7, s.opts.PoolSize)
	require.Equal(t, time.Second, s.opts.DialTimeout)
	require.Zero(t, s.opts.MinIdleConns)
	require.Equal(t, 1, s.attempts)
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Healthcheck(nil)(context.Background()), ErrHealthcheckFailed)
}

type closer struct{ err error }

func (c closer) Close() error { return c.err }

func TestShutdown(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	require.NoError(t, Shutdown(closer{})(context.Background()))
	require.ErrorIs(t, Shutdown(closer{err: boom})(context.Background()), boom)
}
