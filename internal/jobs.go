package internal

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/ultralight/pkg/job"
)

// JobEnqueuer is the part of *job.Manager and *job.Enqueuer actions use.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) error
	EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error
}

var (
	_ JobEnqueuer = (*job.Manager)(nil)
	_ JobEnqueuer = (*job.Enqueuer)(nil)
)
