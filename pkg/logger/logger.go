package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

var ErrInvalidConfig = errors.New("logger: invalid configuration")

// Config selects level, format and the optional Sentry sink. It is read
// from the environment with caarlos0/env.
type Config struct {
	Level             string `env:"LOG_LEVEL" envDefault:"info"`
	Format            string `env:"LOG_FORMAT" envDefault:"json"`
	SentryDSN         string `env:"SENTRY_DSN"`
	SentryEnvironment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// SentryLevel is the lowest level stored as a Sentry log. Errors always
	// become Sentry issues.
	SentryLevel string `env:"SENTRY_LEVEL" envDefault:"warn"`
}

// ContextExtractor pulls a request-scoped attribute, such as the request
// ID, out of the context of every record.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// New returns a JSON logger on stdout at info level.
func New(extractors ...ContextExtractor) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(withContext(h, extractors))
}

// NewNope returns a logger that discards everything.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// FromConfig builds a logger writing to w. With a Sentry DSN, records at
// SentryLevel and above are also sent to Sentry.
func FromConfig(cfg Config, w io.Writer, extractors ...ContextExtractor) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		h = slog.NewJSONHandler(w, opts)
	case "text":
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, cfg.Format)
	}

	if cfg.SentryDSN != "" {
		sh, err := sentryHandler(cfg)
		if err != nil {
			return nil, err
		}
		h = fanout{h, sh}
	}
	return slog.New(withContext(h, extractors)), nil
}

// ParseLevel accepts debug, info, warn and error, case-insensitively, with
// optional offsets such as "warn+2".
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.Join(ErrInvalidConfig, err)
	}
	return l, nil
}

func sentryHandler(cfg Config) (slog.Handler, error) {
	min, err := ParseLevel(cfg.SentryLevel)
	if err != nil {
		return nil, err
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		EnableLogs:  true,
	}); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	var logLevels []slog.Level
	for _, l := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l >= min {
			logLevels = append(logLevels, l)
		}
	}
	return sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevels,
	}.NewSentryHandler(context.Background()), nil
}

// FlushSentry returns a shutdown hook that waits for buffered Sentry events.
// It is a no-op when Sentry was never initialized.
func FlushSentry(timeout time.Duration) func(context.Context) error {
	return func(context.Context) error {
		sentry.Flush(timeout)
		return nil
	}
}
