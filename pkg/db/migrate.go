package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrymomot/ultralight/pkg/logger"
)

// DefaultMigrationsTable records applied goose versions.
const DefaultMigrationsTable = "schema_migrations"

// goose keeps its settings in package state.
var gooseMu sync.Mutex

// Migrator applies goose SQL migrations from an fs.FS, usually an embed.FS.
type Migrator struct {
	db      *sql.DB
	dialect string
	fsys    fs.FS
	dir     string
	table   string
	log     *slog.Logger
}

// MigrateOption configures a Migrator.
type MigrateOption func(*Migrator)

// WithMigrationsTable overrides DefaultMigrationsTable.
func WithMigrationsTable(name string) MigrateOption {
	return func(m *Migrator) {
		if name != "" {
			m.table = name
		}
	}
}

// WithMigrationsDir sets the directory inside the FS. Defaults to ".".
func WithMigrationsDir(dir string) MigrateOption {
	return func(m *Migrator) {
		if dir != "" {
			m.dir = dir
		}
	}
}

// WithMigrationLogger logs goose progress.
func WithMigrationLogger(l *slog.Logger) MigrateOption {
	return func(m *Migrator) {
		if l != nil {
			m.log = l
		}
	}
}

// NewMigrator prepares migrations for db. dialect is a goose dialect name:
// "postgres" or "sqlite3".
func NewMigrator(db *sql.DB, dialect string, fsys fs.FS, opts ...MigrateOption) *Migrator {
	m := &Migrator{
		db:      db,
		dialect: dialect,
		fsys:    fsys,
		dir:     ".",
		table:   DefaultMigrationsTable,
		log:     logger.NewNope(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(func() error { return goose.UpContext(ctx, m.db, m.dir) })
}

// Down rolls back the latest migration.
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(func() error { return goose.DownContext(ctx, m.db, m.dir) })
}

// Status logs every migration with its applied state.
func (m *Migrator) Status(ctx context.Context) error {
	return m.run(func() error { return goose.StatusContext(ctx, m.db, m.dir) })
}

// Version returns the latest applied version, 0 on a fresh database.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	var v int64
	err := m.run(func() error {
		var err error
		v, err = goose.GetDBVersionContext(ctx, m.db)
		return err
	})
	return v, err
}

func (m *Migrator) run(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(m.fsys)
	goose.SetTableName(m.table)
	goose.SetLogger(gooseLogger{m.log})
	if err := goose.SetDialect(m.dialect); err != nil {
		return errors.Join(ErrMigration, err)
	}
	if err := fn(); err != nil {
		return errors.Join(ErrMigration, err)
	}
	return nil
}

// Migrate applies migrations to a pgx pool.
//
//	//go:embed migrations/*.sql
//	var migrations embed.FS
//
//	err := db.Migrate(ctx, pool, migrations, db.WithMigrationsDir("migrations"))
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, opts ...MigrateOption) error {
	// The wrapper shares pool connections; closing it would not close the pool.
	return NewMigrator(stdlib.OpenDBFromPool(pool), "postgres", fsys, opts...).Up(ctx)
}

type gooseLogger struct{ log *slog.Logger }

func (g gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

// Fatalf only logs; goose returns the error to the caller as well.
func (g gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}
