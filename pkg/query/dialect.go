package query

import (
	"strconv"
	"strings"
)

// Kind is the storage class of a column, independent of the SQL dialect.
type Kind int

const (
	KindString Kind = iota
	KindText
	KindInt
	KindBigInt
	KindFloat
	KindBool
	KindTime
	KindBytes
)

// Dialect renders the database-specific parts of a statement.
type Dialect interface {
	// Name returns the dialect identifier ("postgres", "sqlite").
	Name() string

	// Placeholder returns the bind parameter marker for the n-th argument (1-based).
	Placeholder(n int) string

	// Quote quotes an identifier.
	Quote(ident string) string

	// ColumnType maps a column kind to a SQL type. Size is used for bounded strings.
	ColumnType(k Kind, size int) string

	// PrimaryKey returns the column definition of an auto-incrementing primary key.
	PrimaryKey() string

	// ColumnsQuery returns a query listing the column names of the given table.
	ColumnsQuery(table string) (string, []any)
}

// Postgres is the PostgreSQL dialect.
var Postgres Dialect = postgresDialect{}

// SQLite is the SQLite dialect.
var SQLite Dialect = sqliteDialect{}

// DialectByName returns a dialect by its name or driver alias.
func DialectByName(name string) (Dialect, bool) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pgx":
		return Postgres, true
	case "sqlite", "sqlite3":
		return SQLite, true
	}
	return nil, false
}

func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

type postgresDialect struct{}

func (postgresDialect) Name() string              { return "postgres" }
func (postgresDialect) Placeholder(n int) string  { return "$" + strconv.Itoa(n) }
func (postgresDialect) Quote(ident string) string { return quoteIdent(ident) }
func (postgresDialect) PrimaryKey() string        { return "BIGSERIAL PRIMARY KEY" }

func (postgresDialect) ColumnType(k Kind, size int) string {
	switch k {
	case KindString:
		if size > 0 {
			return "VARCHAR(" + strconv.Itoa(size) + ")"
		}
		return "TEXT"
	case KindText:
		return "TEXT"
	case KindInt:
		return "INTEGER"
	case KindBigInt:
		return "BIGINT"
	case KindFloat:
		return "DOUBLE PRECISION"
	case KindBool:
		return "BOOLEAN"
	case KindTime:
		return "TIMESTAMPTZ"
	case KindBytes:
		return "BYTEA"
	}
	return "TEXT"
}

func (d postgresDialect) ColumnsQuery(table string) (string, []any) {
	return "SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = " +
		d.Placeholder(1), []any{table}
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string              { return "sqlite" }
func (sqliteDialect) Placeholder(int) string    { return "?" }
func (sqliteDialect) Quote(ident string) string { return quoteIdent(ident) }
func (sqliteDialect) PrimaryKey() string        { return "INTEGER PRIMARY KEY AUTOINCREMENT" }

func (sqliteDialect) ColumnType(k Kind, size int) string {
	switch k {
	case KindString:
		if size > 0 {
			return "VARCHAR(" + strconv.Itoa(size) + ")"
		}
		return "TEXT"
	case KindText:
		return "TEXT"
	case KindInt, KindBigInt:
		return "INTEGER"
	case KindFloat:
		return "REAL"
	case KindBool:
		return "BOOLEAN"
	case KindTime:
		return "DATETIME"
	case KindBytes:
		return "BLOB"
	}
	return "TEXT"
}

func (sqliteDialect) ColumnsQuery(table string) (string, []any) {
	return "SELECT name FROM pragma_table_info(?)", []any{table}
}
