package cache

import (
	"context"
	"fmt"
)

// DefaultPurgeSchedule clears a cache at the top of every hour.
const DefaultPurgeSchedule = "0 * * * *"

// PurgeTask is a scheduled job that empties a cache. Register it with
// job.WithScheduledTask to drop cached pages on a fixed cadence.
type PurgeTask[V any] struct {
	cache    Cache[V]
	name     string
	schedule string
}

// PurgeOption configures a PurgeTask.
type PurgeOption func(*purgeOptions)

type purgeOptions struct {
	name     string
	schedule string
}

// WithPurgeSchedule sets the cron expression. Defaults to DefaultPurgeSchedule.
func WithPurgeSchedule(expr string) PurgeOption {
	return func(o *purgeOptions) {
		if expr != "" {
			o.schedule = expr
		}
	}
}

// WithPurgeName sets the task name. Needed when more than one cache is purged.
func WithPurgeName(name string) PurgeOption {
	return func(o *purgeOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// NewPurgeTask creates a task that clears c.
func NewPurgeTask[V any](c Cache[V], opts ...PurgeOption) *PurgeTask[V] {
	o := &purgeOptions{name: "cache.purge", schedule: DefaultPurgeSchedule}
	for _, opt := range opts {
		opt(o)
	}
	return &PurgeTask[V]{cache: c, name: o.name, schedule: o.schedule}
}

// Name returns the task name.
func (t *PurgeTask[V]) Name() string { return t.name }

// Schedule returns the cron expression.
func (t *PurgeTask[V]) Schedule() string { return t.schedule }

// Handle clears the cache.
func (t *PurgeTask[V]) Handle(ctx context.Context) error {
	if err := t.cache.Clear(ctx); err != nil {
		return fmt.Errorf("cache: purge %s: %w", t.name, err)
	}
	return nil
}
