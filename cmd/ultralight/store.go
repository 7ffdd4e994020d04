package main

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/ultralight/pkg/db"
	"github.com/dmitrymomot/ultralight/pkg/job"
	"github.com/dmitrymomot/ultralight/pkg/model"
)

// store holds the blog database. pool is set only on Postgres, which is also
// the only backend that can run background jobs.
type store struct {
	db   *model.DB
	pool *pgxpool.Pool
	log  *slog.Logger
	cfg  db.Config
}

func openStore(ctx context.Context, cfg config, log *slog.Logger) (*store, error) {
	if cfg.DB.URL != "" {
		pool, err := db.Connect(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		log.Info("connected to postgres")
		return &store{db: model.FromPool(pool, model.WithLogger(log)), pool: pool, log: log, cfg: cfg.DB}, nil
	}
	m, err := model.Open("sqlite", cfg.SQLitePath, model.WithLogger(log))
	if err != nil {
		return nil, err
	}
	log.Info("using sqlite", "path", cfg.SQLitePath)
	return &store{db: m, log: log, cfg: cfg.DB}, nil
}

func (s *store) migrator() (*db.Migrator, error) {
	dialect, dir := "sqlite3", "assets/migrations/sqlite"
	if s.pool != nil {
		dialect, dir = "postgres", "assets/migrations/postgres"
	}
	if _, err := fs.Stat(assets, dir); err != nil {
		return nil, err
	}
	return db.NewMigrator(s.db.SQL(), dialect, assets,
		db.WithMigrationsDir(dir),
		db.WithMigrationsTable(s.cfg.MigrationsTable),
		db.WithMigrationLogger(s.log),
	), nil
}

// migrate applies the SQL migrations, creates or extends the model tables
// and, on Postgres, installs River's schema.
func (s *store) migrate(ctx context.Context) error {
	m, err := s.migrator()
	if err != nil {
		return err
	}
	if err := m.Up(ctx); err != nil {
		return err
	}
	res, err := s.db.Migrate(ctx, models...)
	if err != nil {
		return err
	}
	if res.Changed() {
		s.log.Info("model tables updated", "created", res.Created, "added", res.Added)
	}
	if s.pool != nil {
		return job.Migrate(ctx, s.pool)
	}
	return nil
}

func (s *store) ping(ctx context.Context) error {
	if s.pool != nil {
		return db.Healthcheck(s.pool)(ctx)
	}
	return s.db.Ping(ctx)
}

func (s *store) close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

func (s *store) shutdown() func(context.Context) error {
	return func(context.Context) error {
		return s.close()
	}
}
