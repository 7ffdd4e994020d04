package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/dmitrymomot/ultralight/pkg/query"
)

// Repository provides CRUD operations for one model type.
type Repository[T any] struct {
	db     *DB
	exec   Executor
	schema *Schema
	err    error
}

// NewRepository creates a repository for T.
// Schema errors are deferred and returned by every operation.
func NewRepository[T any](db *DB) *Repository[T] {
	s, err := SchemaOf[T]()
	return &Repository[T]{db: db, exec: db.sql, schema: s, err: err}
}

// Schema returns the schema of T.
func (r *Repository[T]) Schema() *Schema { return r.schema }

// WithTx returns a copy of the repository bound to the transaction.
func (r *Repository[T]) WithTx(tx *sql.Tx) *Repository[T] {
	cp := *r
	cp.exec = tx
	return &cp
}

// ListOption narrows a List, Count or Paginate call.
type ListOption func(*listOptions)

type listOptions struct {
	conds  []query.Cond
	orders []orderBy
	limit  int
	offset int
}

type orderBy struct {
	field string
	desc  bool
}

// Where adds conditions joined with AND.
func Where(conds ...query.Cond) ListOption {
	return func(o *listOptions) { o.conds = append(o.conds, conds...) }
}

// OrderBy adds a sort key.
func OrderBy(field string, desc bool) ListOption {
	return func(o *listOptions) { o.orders = append(o.orders, orderBy{field: field, desc: desc}) }
}

// Limit caps the number of returned rows.
func Limit(n int) ListOption {
	return func(o *listOptions) { o.limit = n }
}

// Offset skips the first n rows.
func Offset(n int) ListOption {
	return func(o *listOptions) { o.offset = n }
}

func (r *Repository[T]) selectBuilder(opts []ListOption) (*query.SelectBuilder, error) {
	o := &listOptions{}
	for _, opt := range opts {
		opt(o)
	}

	b := query.Select(r.schema.Table).Columns(r.schema.Columns()...)
	for _, c := range o.conds {
		c, err := coerceCond(r.schema, c)
		if err != nil {
			return nil, err
		}
		b.Where(c)
	}
	for _, ob := range o.orders {
		if r.schema.Field(ob.field) == nil {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, r.schema.Table, ob.field)
		}
		b.OrderBy(ob.field, ob.desc)
	}
	b.Limit(o.limit).Offset(o.offset)
	return b, nil
}

// Find returns the record with the given primary key.
func (r *Repository[T]) Find(ctx context.Context, id any) (*T, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.schema.PK == nil {
		return nil, ErrNoPrimaryKey
	}
	return r.First(ctx, query.Eq(r.schema.PK.Column, id))
}

// First returns the first record matching the conditions, ordered by primary key.
func (r *Repository[T]) First(ctx context.Context, conds ...query.Cond) (*T, error) {
	opts := []ListOption{Where(conds...), Limit(1)}
	if r.schema != nil && r.schema.PK != nil {
		opts = append(opts, OrderBy(r.schema.PK.Column, false))
	}
	items, err := r.List(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}

// List returns all records matching the options.
func (r *Repository[T]) List(ctx context.Context, opts ...ListOption) ([]T, error) {
	if r.err != nil {
		return nil, r.err
	}
	b, err := r.selectBuilder(opts)
	if err != nil {
		return nil, err
	}
	stmt, args, err := b.Build(r.db.dialect)
	if err != nil {
		return nil, err
	}

	rows, err := r.exec.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var item T
		if err := r.scan(rows, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *Repository[T]) scan(rows *sql.Rows, dst *T) error {
	rv := reflect.ValueOf(dst).Elem()
	targets := make([]any, len(r.schema.Fields))
	for i, f := range r.schema.Fields {
		targets[i] = &fieldScanner{dst: fieldTarget(rv, f), column: f.Column}
	}
	return rows.Scan(targets...)
}

// Count returns the number of records matching the conditions.
func (r *Repository[T]) Count(ctx context.Context, conds ...query.Cond) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := r.selectBuilder([]ListOption{Where(conds...)})
	if err != nil {
		return 0, err
	}
	stmt, args, err := b.BuildCount(r.db.dialect)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.exec.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Insert validates and stores a new record. An auto-generated primary key is
// written back into the struct.
func (r *Repository[T]) Insert(ctx context.Context, item *T) error {
	if r.err != nil {
		return r.err
	}
	if err := Validate(item); err != nil {
		return err
	}

	rv := reflect.ValueOf(item).Elem()
	now := time.Now().UTC()
	b := query.Insert(r.schema.Table)
	for _, f := range r.schema.Fields {
		fv := fieldTarget(rv, f)
		if f.PK && fv.IsZero() {
			continue
		}
		if (f.Created || f.Updated) && fv.IsZero() {
			setTime(fv, now)
		}
		b.Set(f.Column, driverValue(fv))
	}

	pk := r.schema.PK
	if pk == nil || !fieldValue(rv, pk).IsZero() {
		stmt, args, err := b.Build(r.db.dialect)
		if err != nil {
			return err
		}
		_, err = r.exec.ExecContext(ctx, stmt, args...)
		return err
	}

	stmt, args, err := b.Returning(pk.Column).Build(r.db.dialect)
	if err != nil {
		return err
	}
	dst := &fieldScanner{dst: fieldTarget(rv, pk), column: pk.Column}
	return r.exec.QueryRowContext(ctx, stmt, args...).Scan(dst)
}

// Update validates and stores changes of an existing record.
// It returns ErrNotFound when no row has the record's primary key.
func (r *Repository[T]) Update(ctx context.Context, item *T) error {
	if r.err != nil {
		return r.err
	}
	pk := r.schema.PK
	if pk == nil {
		return ErrNoPrimaryKey
	}
	rv := reflect.ValueOf(item).Elem()
	id := fieldValue(rv, pk)
	if id.IsZero() {
		return ErrZeroPrimaryKey
	}
	if err := Validate(item); err != nil {
		return err
	}

	now := time.Now().UTC()
	b := query.Update(r.schema.Table)
	for _, f := range r.schema.Fields {
		if f.PK || f.Created {
			continue
		}
		fv := fieldTarget(rv, f)
		if f.Updated {
			setTime(fv, now)
		}
		b.Set(f.Column, driverValue(fv))
	}
	stmt, args, err := b.Where(query.Eq(pk.Column, driverValue(id))).Build(r.db.dialect)
	if err != nil {
		return err
	}
	return expectOne(r.exec.ExecContext(ctx, stmt, args...))
}

// Save inserts the record when its primary key is zero and updates it otherwise.
func (r *Repository[T]) Save(ctx context.Context, item *T) error {
	if r.err != nil {
		return r.err
	}
	if r.schema.PK == nil || fieldValue(reflect.ValueOf(item).Elem(), r.schema.PK).IsZero() {
		return r.Insert(ctx, item)
	}
	return r.Update(ctx, item)
}

// Delete removes the record with the given primary key.
func (r *Repository[T]) Delete(ctx context.Context, id any) error {
	if r.err != nil {
		return r.err
	}
	if r.schema.PK == nil {
		return ErrNoPrimaryKey
	}
	c, err := coerceCond(r.schema, query.Eq(r.schema.PK.Column, id))
	if err != nil {
		return err
	}
	stmt, args, err := query.Delete(r.schema.Table).Where(c).Build(r.db.dialect)
	if err != nil {
		return err
	}
	return expectOne(r.exec.ExecContext(ctx, stmt, args...))
}

// DeleteWhere removes every record matching the conditions and returns the count.
func (r *Repository[T]) DeleteWhere(ctx context.Context, conds ...query.Cond) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	b := query.Delete(r.schema.Table)
	for _, c := range conds {
		c, err := coerceCond(r.schema, c)
		if err != nil {
			return 0, err
		}
		b.Where(c)
	}
	stmt, args, err := b.Build(r.db.dialect)
	if err != nil {
		return 0, err
	}
	res, err := r.exec.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items   []T
	Page    int
	PerPage int
	Pages   int
	Total   int64
}

// HasPrev reports whether a previous page exists.
func (p *Page[T]) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p *Page[T]) HasNext() bool { return p.Page < p.Pages }

// Paginate returns the given 1-based page. Limit and Offset options are overridden.
func (r *Repository[T]) Paginate(ctx context.Context, page, perPage int, opts ...ListOption) (*Page[T], error) {
	if r.err != nil {
		return nil, r.err
	}
	page = max(page, 1)
	if perPage <= 0 {
		perPage = 20
	}

	o := &listOptions{}
	for _, opt := range opts {
		opt(o)
	}
	total, err := r.Count(ctx, o.conds...)
	if err != nil {
		return nil, err
	}

	opts = append(opts[:len(opts):len(opts)], Limit(perPage), Offset((page-1)*perPage))
	items, err := r.List(ctx, opts...)
	if err != nil {
		return nil, err
	}

	pages := int((total + int64(perPage) - 1) / int64(perPage))
	return &Page[T]{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
		Total:   total,
	}, nil
}

func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %w", ErrNotFound, ErrNoRowsAffected)
	}
	return nil
}

func setTime(fv reflect.Value, t time.Time) {
	if fv.Kind() == reflect.Pointer {
		fv.Set(reflect.ValueOf(&t))
		return
	}
	if fv.Type() == timeType {
		fv.Set(reflect.ValueOf(t))
	}
}

// IsNotFound reports whether err means a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}
