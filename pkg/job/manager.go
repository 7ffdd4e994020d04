package job

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// Enqueuer inserts jobs without running them. Web processes whose workers
// live elsewhere use it directly; Manager embeds it.
type Enqueuer struct {
	pool   *pgxpool.Pool
	client *river.Client[pgx.Tx]
	logger *slog.Logger
}

// NewEnqueuer creates an insert-only River client.
func NewEnqueuer(pool *pgxpool.Pool, opts ...EnqueuerOption) (*Enqueuer, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}
	cfg := newConfig(nil)
	for _, opt := range opts {
		opt(cfg)
	}
	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{Logger: cfg.logger})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}
	return &Enqueuer{pool: pool, client: client, logger: cfg.logger}, nil
}

// Enqueue inserts a job for the named task. The payload is stored as JSON.
func (e *Enqueuer) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	a, ins, err := insertParams(name, payload, opts)
	if err != nil {
		return err
	}
	res, err := e.client.Insert(ctx, a, ins)
	if err != nil {
		return errors.Join(ErrEnqueueFailed, err)
	}
	e.logInserted(ctx, name, res.Job.ID, res.UniqueSkippedAsDuplicate)
	return nil
}

// EnqueueTx inserts the job inside tx, so it becomes visible on commit.
func (e *Enqueuer) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	a, ins, err := insertParams(name, payload, opts)
	if err != nil {
		return err
	}
	res, err := e.client.InsertTx(ctx, tx, a, ins)
	if err != nil {
		return errors.Join(ErrEnqueueFailed, err)
	}
	e.logInserted(ctx, name, res.Job.ID, res.UniqueSkippedAsDuplicate)
	return nil
}

func (e *Enqueuer) logInserted(ctx context.Context, name string, id int64, duplicate bool) {
	e.logger.DebugContext(ctx, "job enqueued",
		slog.String("task", name),
		slog.Int64("job_id", id),
		slog.Bool("duplicate", duplicate),
	)
}

func insertParams(name string, payload any, opts []EnqueueOption) (*args, *river.InsertOpts, error) {
	a := &args{Task: name}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, errors.Join(ErrInvalidPayload, err)
		}
		a.Payload = raw
	}

	var cfg enqueueConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	ins := &river.InsertOpts{
		Queue:       cfg.queue,
		MaxAttempts: cfg.maxAttempts,
		Priority:    cfg.priority,
		Tags:        cfg.tags,
		ScheduledAt: cfg.runAt,
	}
	if cfg.uniqueFor > 0 {
		a.UniqueKey = cfg.uniqueKey
		if a.UniqueKey == "" {
			sum := sha256.Sum256(a.Payload)
			a.UniqueKey = hex.EncodeToString(sum[:])
		}
		ins.UniqueOpts = river.UniqueOpts{ByArgs: true, ByPeriod: cfg.uniqueFor}
	}
	return a, ins, nil
}

// Manager enqueues and works jobs. The River client exists from NewManager
// on, so jobs can be enqueued before Start.
type Manager struct {
	*Enqueuer
	tasks tasks

	mu      sync.Mutex
	started bool
}

// NewManager builds a manager for the registered tasks.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}
	cfg := newConfig(opts)

	queues := map[string]river.QueueConfig{river.QueueDefault: {MaxWorkers: cfg.maxWorkers}}
	for name, n := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: n}
	}

	var periodicJobs []*river.PeriodicJob
	for _, p := range cfg.periodic {
		sched, err := parseSchedule(p.schedule)
		if err != nil {
			return nil, err
		}
		name := p.name
		periodicJobs = append(periodicJobs, river.NewPeriodicJob(sched,
			func() (river.JobArgs, *river.InsertOpts) { return &args{Task: name}, nil },
			&river.PeriodicJobOpts{},
		))
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &worker{tasks: cfg.tasks, logger: cfg.logger})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodicJobs,
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}

	return &Manager{
		Enqueuer: &Enqueuer{pool: pool, client: client, logger: cfg.logger},
		tasks:    cfg.tasks,
	}, nil
}

// Enqueue rejects names no task was registered for.
func (m *Manager) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	if _, ok := m.tasks[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return m.Enqueuer.Enqueue(ctx, name, payload, opts...)
}

// EnqueueTx is Enqueue inside a transaction.
func (m *Manager) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	if _, ok := m.tasks[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return m.Enqueuer.EnqueueTx(ctx, tx, name, payload, opts...)
}

// Start begins working jobs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return ErrAlreadyStarted
	}
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start: %w", err)
	}
	m.started = true
	m.logger.InfoContext(ctx, "job manager started", slog.Int("tasks", len(m.tasks)))
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return ErrNotStarted
	}
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop: %w", err)
	}
	m.started = false
	m.logger.InfoContext(ctx, "job manager stopped")
	return nil
}

// StartFunc adapts Start to a startup hook.
func (m *Manager) StartFunc() func(context.Context) error { return m.Start }

// Shutdown adapts Stop to a shutdown hook.
func (m *Manager) Shutdown() func(context.Context) error { return m.Stop }

func (m *Manager) running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// Healthcheck reports whether m is started and its pool answers.
func Healthcheck(m *Manager) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		switch {
		case m == nil:
			return errors.Join(ErrHealthcheckFailed, ErrNotConfigured)
		case !m.running():
			return errors.Join(ErrHealthcheckFailed, ErrNotStarted)
		}
		if err := m.pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

type worker struct {
	river.WorkerDefaults[args]
	tasks  tasks
	logger *slog.Logger
}

func (w *worker) Work(ctx context.Context, j *river.Job[args]) error {
	l := w.logger.With(
		slog.String("task", j.Args.Task),
		slog.Int64("job_id", j.ID),
		slog.Int("attempt", j.Attempt),
	)
	if err := w.tasks.run(ctx, j.Args.Task, j.Args.Payload); err != nil {
		l.ErrorContext(ctx, "job failed", slog.Any("error", err))
		if errors.Is(err, ErrUnknownTask) || errors.Is(err, ErrInvalidPayload) {
			return river.JobCancel(err)
		}
		return err
	}
	l.DebugContext(ctx, "job done")
	return nil
}
