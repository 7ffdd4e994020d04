package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/ultralight/pkg/logger"
)

var (
	ErrCheckFailed  = errors.New("health: check failed")
	ErrCheckTimeout = errors.New("health: check timeout")
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	DefaultTimeout = 5 * time.Second
)

// CheckFunc reports whether a dependency is usable. db.Healthcheck,
// redis.Healthcheck and job.Healthcheck return one.
type CheckFunc func(ctx context.Context) error

// Checks maps a dependency name to its check.
type Checks map[string]CheckFunc

// Report is the outcome of one probe. Checks are ordered by name.
type Report struct {
	Status string   `json:"status"`
	Checks []Result `json:"checks,omitempty"`
}

// Result is the outcome of a single check.
type Result struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Duration int64  `json:"duration_ms"`
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool { return r.Status == StatusHealthy }

// Err joins ErrCheckFailed with one error per failed check, or returns nil.
func (r Report) Err() error {
	if r.Healthy() {
		return nil
	}
	errs := []error{ErrCheckFailed}
	for _, c := range r.Checks {
		if c.Status != StatusHealthy {
			errs = append(errs, fmt.Errorf("%s: %s", c.Name, c.Error))
		}
	}
	return errors.Join(errs...)
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

type Option func(*config)

// WithTimeout bounds the whole probe. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failed checks at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{timeout: DefaultTimeout, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Probe runs every check concurrently under one timeout. A failing check
// never cancels the others.
func Probe(ctx context.Context, checks Checks, opts ...Option) Report {
	return probe(ctx, checks, newConfig(opts))
}

// Run probes once and returns Report.Err. The serve command calls it before
// accepting traffic.
func Run(ctx context.Context, checks Checks, opts ...Option) error {
	return Probe(ctx, checks, opts...).Err()
}

func probe(ctx context.Context, checks Checks, cfg config) Report {
	report := Report{Status: StatusHealthy}
	if len(checks) == 0 {
		return report
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	names := slices.Sorted(maps.Keys(checks))
	report.Checks = make([]Result, len(names))

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			report.Checks[i] = runCheck(ctx, name, checks[name], cfg.logger)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range report.Checks {
		if r.Status != StatusHealthy {
			report.Status = StatusUnhealthy
			break
		}
	}
	return report
}

func runCheck(ctx context.Context, name string, check CheckFunc, log *slog.Logger) Result {
	start := time.Now()
	err := check(ctx)
	res := Result{Name: name, Status: StatusHealthy, Duration: time.Since(start).Milliseconds()}
	if err == nil {
		return res
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = errors.Join(ErrCheckTimeout, err)
	}
	res.Status, res.Error = StatusUnhealthy, err.Error()
	log.WarnContext(ctx, "health check failed",
		slog.String("check", name),
		slog.String("error", res.Error),
	)
	return res
}
