package job

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dmitrymomot/ultralight/pkg/logger"
)

const defaultMaxWorkers = 100

type periodic struct {
	name     string
	schedule string
}

type config struct {
	tasks      tasks
	periodic   []periodic
	queues     map[string]int
	logger     *slog.Logger
	maxWorkers int
}

func newConfig(opts []Option) *config {
	cfg := &config{
		tasks:      tasks{},
		queues:     map[string]int{},
		logger:     logger.NewNope(),
		maxWorkers: defaultMaxWorkers,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Option configures a Manager.
type Option func(*config)

// WithTask registers a task under its Name. The payload type is inferred
// from the Handle method:
//
//	job.WithTask(imaging.NewThumbnailTask(store, 320, 240))
func WithTask[P any](t Task[P]) Option {
	return func(c *config) {
		c.tasks[t.Name()] = typedRunner(t)
	}
}

// WithScheduledTask registers a task that River enqueues on its cron
// schedule.
func WithScheduledTask(t ScheduledTask) Option {
	return func(c *config) {
		c.tasks[t.Name()] = func(ctx context.Context, _ json.RawMessage) error {
			return t.Handle(ctx)
		}
		c.periodic = append(c.periodic, periodic{name: t.Name(), schedule: t.Schedule()})
	}
}

// WithQueue adds a named queue with its own worker count.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if name != "" && workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithMaxWorkers sets the worker count of the default queue.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithLogger sets the logger used by the manager and River.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// EnqueuerOption configures an Enqueuer.
type EnqueuerOption func(*config)

// WithEnqueuerLogger sets the logger of an Enqueuer.
func WithEnqueuerLogger(l *slog.Logger) EnqueuerOption {
	return EnqueuerOption(WithLogger(l))
}

type enqueueConfig struct {
	queue       string
	runAt       time.Time
	uniqueKey   string
	uniqueFor   time.Duration
	tags        []string
	maxAttempts int
	priority    int
}

// EnqueueOption configures a single enqueued job.
type EnqueueOption func(*enqueueConfig)

// InQueue sends the job to a named queue instead of the default one.
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) {
		if name != "" {
			c.queue = name
		}
	}
}

// ScheduledAt delays the job until t.
func ScheduledAt(t time.Time) EnqueueOption {
	return func(c *enqueueConfig) { c.runAt = t }
}

// ScheduledIn delays the job by d.
func ScheduledIn(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) { c.runAt = time.Now().Add(d) }
}

// MaxAttempts caps retries. River retries 25 times by default.
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// UniqueFor skips the job if an equal one was inserted within d. Jobs are
// equal when their task and payload match, or their UniqueKey does.
//
//	c.Enqueue(imaging.ThumbnailTaskName, payload,
//	    job.UniqueFor(time.Hour),
//	    job.UniqueKey(payload.Key))
func UniqueFor(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) { c.uniqueFor = d }
}

// UniqueKey replaces the payload as the deduplication key. It only has an
// effect together with UniqueFor.
func UniqueKey(key string) EnqueueOption {
	return func(c *enqueueConfig) { c.uniqueKey = key }
}

// Priority orders jobs within a queue, 1 first. River accepts 1 to 4.
func Priority(p int) EnqueueOption {
	return func(c *enqueueConfig) { c.priority = p }
}

// Tags attaches labels to the job row.
func Tags(tags ...string) EnqueueOption {
	return func(c *enqueueConfig) { c.tags = append(c.tags, tags...) }
}
