package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrymomot/ultralight/pkg/query"
)

// MigrateResult reports what Migrate changed.
type MigrateResult struct {
	Added   map[string][]string
	Created []string
}

// Changed reports whether any table or column was created.
func (r *MigrateResult) Changed() bool {
	return len(r.Created) > 0 || len(r.Added) > 0
}

// Migrate creates missing tables, adds missing columns and ensures indexes
// for the given models. Existing columns are never altered or dropped.
// All statements run in one transaction.
func (db *DB) Migrate(ctx context.Context, models ...any) (*MigrateResult, error) {
	res := &MigrateResult{Added: map[string][]string{}}

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, m := range models {
			s, err := Reflect(m)
			if err != nil {
				return err
			}
			if err := db.migrateTable(ctx, tx, s, res); err != nil {
				return errors.Join(ErrMigrate, fmt.Errorf("%s: %w", s.Table, err))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(res.Added) == 0 {
		res.Added = nil
	}
	return res, nil
}

func (db *DB) migrateTable(ctx context.Context, tx *sql.Tx, s *Schema, res *MigrateResult) error {
	existing, err := db.columns(ctx, tx, s.Table)
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		stmt, err := CreateTableSQL(db.dialect, s)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
		res.Created = append(res.Created, s.Table)
		db.log.InfoContext(ctx, "table created", "table", s.Table)
	} else {
		for _, f := range s.Fields {
			if existing[f.Column] {
				continue
			}
			stmt := "ALTER TABLE " + db.dialect.Quote(s.Table) + " ADD COLUMN " + columnDef(db.dialect, f, true)
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
			res.Added[s.Table] = append(res.Added[s.Table], f.Column)
			db.log.InfoContext(ctx, "column added", "table", s.Table, "column", f.Column)
		}
	}

	for _, stmt := range indexSQL(db.dialect, s) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) columns(ctx context.Context, tx *sql.Tx, table string) (map[string]bool, error) {
	q, args := db.dialect.ColumnsQuery(table)
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// CreateTableSQL renders the CREATE TABLE statement for a schema.
func CreateTableSQL(d query.Dialect, s *Schema) (string, error) {
	if !query.ValidIdent(s.Table) {
		return "", fmt.Errorf("%w: %q", query.ErrInvalidField, s.Table)
	}
	defs := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		defs = append(defs, columnDef(d, f, false))
	}
	return "CREATE TABLE IF NOT EXISTS " + d.Quote(s.Table) + " (\n\t" + strings.Join(defs, ",\n\t") + "\n)", nil
}

func columnDef(d query.Dialect, f *Field, adding bool) string {
	var b strings.Builder
	b.WriteString(d.Quote(f.Column))
	b.WriteByte(' ')

	if f.PK {
		if f.SQLType == "" && (f.Kind == query.KindInt || f.Kind == query.KindBigInt) {
			b.WriteString(d.PrimaryKey())
		} else {
			b.WriteString(columnType(d, f) + " PRIMARY KEY")
		}
		return b.String()
	}

	b.WriteString(columnType(d, f))

	def := defaultLiteral(f)
	if adding && d == query.SQLite && def == "CURRENT_TIMESTAMP" {
		// SQLite only accepts constant defaults in ADD COLUMN.
		def = ""
	}
	notNull := !f.Nullable
	if adding && def == "" {
		// Existing rows need a value for the new column.
		def = zeroLiteral(f.Kind)
		if def == "" {
			notNull = false
		}
	}
	if notNull {
		b.WriteString(" NOT NULL")
	}
	if def != "" {
		b.WriteString(" DEFAULT " + def)
	}
	return b.String()
}

func columnType(d query.Dialect, f *Field) string {
	if f.SQLType != "" {
		return strings.ToUpper(f.SQLType)
	}
	return d.ColumnType(f.Kind, f.Size)
}

func defaultLiteral(f *Field) string {
	if f.Default == "" {
		return ""
	}
	switch f.Kind {
	case query.KindInt, query.KindBigInt, query.KindFloat:
		if _, err := strconv.ParseFloat(f.Default, 64); err == nil {
			return f.Default
		}
	case query.KindBool:
		if b, err := parseBool(f.Default); err == nil {
			if b {
				return "TRUE"
			}
			return "FALSE"
		}
	case query.KindTime:
		if strings.EqualFold(f.Default, "now") || strings.EqualFold(f.Default, "current_timestamp") {
			return "CURRENT_TIMESTAMP"
		}
	}
	return "'" + strings.ReplaceAll(f.Default, "'", "''") + "'"
}

func zeroLiteral(k query.Kind) string {
	switch k {
	case query.KindString, query.KindText:
		return "''"
	case query.KindInt, query.KindBigInt, query.KindFloat:
		return "0"
	case query.KindBool:
		return "FALSE"
	}
	return ""
}

func indexSQL(d query.Dialect, s *Schema) []string {
	var out []string
	for _, f := range s.Fields {
		if f.PK {
			continue
		}
		switch {
		case f.Unique:
			out = append(out, "CREATE UNIQUE INDEX IF NOT EXISTS "+
				d.Quote("uq_"+s.Table+"_"+f.Column)+" ON "+d.Quote(s.Table)+" ("+d.Quote(f.Column)+")")
		case f.Indexed:
			out = append(out, "CREATE INDEX IF NOT EXISTS "+
				d.Quote("idx_"+s.Table+"_"+f.Column)+" ON "+d.Quote(s.Table)+" ("+d.Quote(f.Column)+")")
		}
	}
	return out
}
