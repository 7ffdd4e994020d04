package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrymomot/ultralight/pkg/logger"
	"github.com/dmitrymomot/ultralight/pkg/query"
)

// Executor is the part of *sql.DB and *sql.Tx the repository needs.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB couples a database handle with the SQL dialect spoken by it.
type DB struct {
	sql     *sql.DB
	dialect query.Dialect
	log     *slog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used for migration and query diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) {
		if l != nil {
			db.log = l
		}
	}
}

// NewDB wraps an existing handle.
func NewDB(db *sql.DB, d query.Dialect, opts ...Option) *DB {
	m := &DB{sql: db, dialect: d, log: logger.NewNope()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open opens a database using a registered database/sql driver.
// The dialect is derived from the driver name ("sqlite", "pgx", "postgres").
func Open(driver, dsn string, opts ...Option) (*DB, error) {
	d, ok := query.DialectByName(driver)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDialect, driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if d == query.SQLite {
		// SQLite allows a single writer; serialize through one connection.
		db.SetMaxOpenConns(1)
	}
	return NewDB(db, d, opts...), nil
}

// FromPool exposes a pgx pool through database/sql with the Postgres dialect.
// Closing the returned DB does not close the pool.
func FromPool(pool *pgxpool.Pool, opts ...Option) *DB {
	return NewDB(stdlib.OpenDBFromPool(pool), query.Postgres, opts...)
}

// SQL returns the underlying handle.
func (db *DB) SQL() *sql.DB { return db.sql }

// Dialect returns the SQL dialect.
func (db *DB) Dialect() query.Dialect { return db.dialect }

// Ping verifies the connection.
func (db *DB) Ping(ctx context.Context) error { return db.sql.PingContext(ctx) }

// Close closes the handle.
func (db *DB) Close() error { return db.sql.Close() }

// Shutdown returns a hook that closes the handle on application shutdown.
func (db *DB) Shutdown() func(context.Context) error {
	return func(context.Context) error {
		return db.sql.Close()
	}
}

// WithTx executes fn within a transaction.
// If fn returns an error or panics, the transaction is rolled back.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			return errors.Join(err, rerr)
		}
		return err
	}

	return tx.Commit()
}
