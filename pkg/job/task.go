package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"github.com/robfig/cron/v3"
)

// Task is a unit of background work with a JSON payload.
type Task[P any] interface {
	Name() string
	Handle(ctx context.Context, payload P) error
}

// ScheduledTask runs on a five-field cron schedule and takes no payload.
type ScheduledTask interface {
	Name() string
	Schedule() string
	Handle(ctx context.Context) error
}

// runner executes a task from its stored payload.
type runner func(ctx context.Context, payload json.RawMessage) error

func typedRunner[P any](t Task[P]) runner {
	return func(ctx context.Context, raw json.RawMessage) error {
		var p P
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &p); err != nil {
				return errors.Join(ErrInvalidPayload, err)
			}
		}
		return t.Handle(ctx, p)
	}
}

// tasks maps a task name to its runner. It is filled by options before the
// manager starts and only read afterwards.
type tasks map[string]runner

func (ts tasks) run(ctx context.Context, name string, payload json.RawMessage) error {
	r, ok := ts[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return r(ctx, payload)
}

// args is the single River job kind used for every task. The task name
// selects the runner. Uniqueness compares Task and UniqueKey only.
type args struct {
	Task      string          `json:"task" river:"unique"`
	UniqueKey string          `json:"unique_key,omitempty" river:"unique"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (args) Kind() string { return "ultralight.task" }

// schedule wraps a cron schedule for River's periodic jobs.
type schedule struct{ cron.Schedule }

func (s schedule) Next(t time.Time) time.Time { return s.Schedule.Next(t) }

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

func parseSchedule(expr string) (river.PeriodicSchedule, error) {
	s, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, expr, err)
	}
	return schedule{s}, nil
}
