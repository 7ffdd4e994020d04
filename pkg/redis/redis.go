package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrEmptyConnectionURL = errors.New("redis: empty connection URL")
	ErrFailedToParseURL   = errors.New("redis: failed to parse connection URL")
	ErrConnectionFailed   = errors.New("redis: failed to establish connection")
	ErrHealthcheckFailed  = errors.New("redis: healthcheck failed")
)

// Config is read from the environment with caarlos0/env. An empty URL means
// Redis is not used.
type Config struct {
	URL           string        `env:"REDIS_URL"`
	PoolSize      int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns  int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout   time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout   time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout  time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
}

// Enabled reports whether a URL is configured.
func (c Config) Enabled() bool { return c.URL != "" }

// Options returns the Option list equivalent to c.
func (c Config) Options() []Option {
	return []Option{
		WithPoolSize(c.PoolSize),
		WithMinIdleConns(c.MinIdleConns),
		WithDialTimeout(c.DialTimeout),
		WithReadTimeout(c.ReadTimeout),
		WithWriteTimeout(c.WriteTimeout),
		WithRetry(c.RetryAttempts, c.RetryInterval),
	}
}

// Option adjusts the client options parsed from the URL.
type Option func(*settings)

type settings struct {
	opts     *redis.Options
	attempts int
	interval time.Duration
}

// WithPoolSize caps open connections.
func WithPoolSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.opts.PoolSize = n
		}
	}
}

// WithMinIdleConns keeps n idle connections open.
func WithMinIdleConns(n int) Option {
	return func(s *settings) { s.opts.MinIdleConns = max(n, 0) }
}

// WithMaxIdleTime closes connections idle longer than d.
func WithMaxIdleTime(d time.Duration) Option {
	return func(s *settings) { s.opts.ConnMaxIdleTime = d }
}

// WithMaxActiveTime recycles connections older than d.
func WithMaxActiveTime(d time.Duration) Option {
	return func(s *settings) { s.opts.ConnMaxLifetime = d }
}

// WithDialTimeout bounds connection setup.
func WithDialTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.opts.DialTimeout = d
		}
	}
}

// WithReadTimeout bounds socket reads.
func WithReadTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.opts.ReadTimeout = d
		}
	}
}

// WithWriteTimeout bounds socket writes.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.opts.WriteTimeout = d
		}
	}
}

// WithRetry pings up to attempts times, waiting interval*n after failure n.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(s *settings) {
		s.attempts = max(attempts, 1)
		s.interval = interval
	}
}

// Open parses a redis:// or rediss:// URL and returns a client that has
// answered PING.
//
//	client, err := redis.Open(ctx, cfg.Redis.URL, cfg.Redis.Options()...)
func Open(ctx context.Context, url string, opts ...Option) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, fmt.Errorf("%w: unsupported scheme", ErrFailedToParseURL)
	}
	parsed, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}

	s := &settings{opts: parsed, attempts: 3, interval: 2 * time.Second}
	for _, opt := range opts {
		opt(s)
	}

	var last error
	for i := range s.attempts {
		client := redis.NewClient(s.opts)
		if last = client.Ping(ctx).Err(); last == nil {
			return client, nil
		}
		_ = client.Close()
		if i == s.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * s.interval):
		}
	}
	return nil, errors.Join(ErrConnectionFailed, last)
}

// MustOpen is Open that panics on failure.
func MustOpen(ctx context.Context, url string, opts ...Option) redis.UniversalClient {
	client, err := Open(ctx, url, opts...)
	if err != nil {
		panic(err)
	}
	return client
}

// Healthcheck pings client. It fits health.CheckFunc.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a run hook that closes the client.
//
//	app.Run(":8080", ultralight.ShutdownHook(redis.Shutdown(client)))
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error { return client.Close() }
}
