package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// writer accumulates SQL text and bound arguments.
type writer struct {
	d    Dialect
	args []any
	sb   strings.Builder
}

func newWriter(d Dialect) *writer {
	return &writer{d: d}
}

func (w *writer) arg(v any) string {
	w.args = append(w.args, v)
	return w.d.Placeholder(len(w.args))
}

func (w *writer) ident(name string) error {
	if !ValidIdent(name) {
		return fmt.Errorf("%w: %q", ErrInvalidField, name)
	}
	w.sb.WriteString(w.d.Quote(name))
	return nil
}

func (w *writer) where(conds []Cond) error {
	if len(conds) == 0 {
		return nil
	}
	w.sb.WriteString(" WHERE ")
	for i, c := range conds {
		if i > 0 {
			w.sb.WriteString(" AND ")
		}
		if err := c.write(w); err != nil {
			return err
		}
	}
	return nil
}

type order struct {
	field string
	desc  bool
}

// SelectBuilder builds SELECT statements.
type SelectBuilder struct {
	table   string
	columns []string
	conds   []Cond
	orders  []order
	limit   int
	offset  int
}

// Select starts a SELECT statement on table.
func Select(table string) *SelectBuilder {
	return &SelectBuilder{table: table}
}

// Columns sets the selected columns. No columns means "*".
func (b *SelectBuilder) Columns(cols ...string) *SelectBuilder {
	b.columns = append(b.columns, cols...)
	return b
}

// Where appends conditions joined with AND.
func (b *SelectBuilder) Where(conds ...Cond) *SelectBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

// OrderBy appends a sort key.
func (b *SelectBuilder) OrderBy(field string, desc bool) *SelectBuilder {
	b.orders = append(b.orders, order{field: field, desc: desc})
	return b
}

// Limit caps the number of rows. Zero means no limit.
func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = n
	return b
}

// Offset skips the first n rows.
func (b *SelectBuilder) Offset(n int) *SelectBuilder {
	b.offset = n
	return b
}

// Build renders the statement for the dialect.
func (b *SelectBuilder) Build(d Dialect) (string, []any, error) {
	if b.table == "" {
		return "", nil, ErrNoTable
	}
	w := newWriter(d)
	w.sb.WriteString("SELECT ")
	if len(b.columns) == 0 {
		w.sb.WriteString("*")
	}
	for i, col := range b.columns {
		if i > 0 {
			w.sb.WriteString(", ")
		}
		if err := w.ident(col); err != nil {
			return "", nil, err
		}
	}
	w.sb.WriteString(" FROM ")
	if err := w.ident(b.table); err != nil {
		return "", nil, err
	}
	if err := w.where(b.conds); err != nil {
		return "", nil, err
	}
	for i, o := range b.orders {
		if i == 0 {
			w.sb.WriteString(" ORDER BY ")
		} else {
			w.sb.WriteString(", ")
		}
		if err := w.ident(o.field); err != nil {
			return "", nil, err
		}
		if o.desc {
			w.sb.WriteString(" DESC")
		} else {
			w.sb.WriteString(" ASC")
		}
	}
	if b.limit > 0 {
		w.sb.WriteString(" LIMIT " + strconv.Itoa(b.limit))
	}
	if b.offset > 0 {
		w.sb.WriteString(" OFFSET " + strconv.Itoa(b.offset))
	}
	return w.sb.String(), w.args, nil
}

// BuildCount renders a COUNT(*) over the same table and conditions.
// Columns, ordering and paging are ignored.
func (b *SelectBuilder) BuildCount(d Dialect) (string, []any, error) {
	if b.table == "" {
		return "", nil, ErrNoTable
	}
	w := newWriter(d)
	w.sb.WriteString("SELECT COUNT(*) FROM ")
	if err := w.ident(b.table); err != nil {
		return "", nil, err
	}
	if err := w.where(b.conds); err != nil {
		return "", nil, err
	}
	return w.sb.String(), w.args, nil
}

// assignments is an ordered column/value list.
type assignments struct {
	cols []string
	vals []any
}

func (a *assignments) set(col string, v any) {
	if i := slices.Index(a.cols, col); i >= 0 {
		a.vals[i] = v
		return
	}
	a.cols = append(a.cols, col)
	a.vals = append(a.vals, v)
}

func (a *assignments) setMap(m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		a.set(k, m[k])
	}
}

// InsertBuilder builds INSERT statements.
type InsertBuilder struct {
	table     string
	returning string
	values    assignments
}

// Insert starts an INSERT statement on table.
func Insert(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

// Set assigns a column value. Setting the same column twice keeps the last value.
func (b *InsertBuilder) Set(col string, v any) *InsertBuilder {
	b.values.set(col, v)
	return b
}

// Values assigns every entry of the map, in key order.
func (b *InsertBuilder) Values(m map[string]any) *InsertBuilder {
	b.values.setMap(m)
	return b
}

// Returning adds a RETURNING clause for the given column.
func (b *InsertBuilder) Returning(col string) *InsertBuilder {
	b.returning = col
	return b
}

// Build renders the statement for the dialect.
func (b *InsertBuilder) Build(d Dialect) (string, []any, error) {
	if b.table == "" {
		return "", nil, ErrNoTable
	}
	if len(b.values.cols) == 0 {
		return "", nil, ErrNoValues
	}
	w := newWriter(d)
	w.sb.WriteString("INSERT INTO ")
	if err := w.ident(b.table); err != nil {
		return "", nil, err
	}
	w.sb.WriteString(" (")
	for i, col := range b.values.cols {
		if i > 0 {
			w.sb.WriteString(", ")
		}
		if err := w.ident(col); err != nil {
			return "", nil, err
		}
	}
	w.sb.WriteString(") VALUES (")
	for i, v := range b.values.vals {
		if i > 0 {
			w.sb.WriteString(", ")
		}
		w.sb.WriteString(w.arg(v))
	}
	w.sb.WriteString(")")
	if b.returning != "" {
		w.sb.WriteString(" RETURNING ")
		if err := w.ident(b.returning); err != nil {
			return "", nil, err
		}
	}
	return w.sb.String(), w.args, nil
}

// UpdateBuilder builds UPDATE statements.
type UpdateBuilder struct {
	table  string
	values assignments
	conds  []Cond
}

// Update starts an UPDATE statement on table.
func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set assigns a column value.
func (b *UpdateBuilder) Set(col string, v any) *UpdateBuilder {
	b.values.set(col, v)
	return b
}

// Values assigns every entry of the map, in key order.
func (b *UpdateBuilder) Values(m map[string]any) *UpdateBuilder {
	b.values.setMap(m)
	return b
}

// Where appends conditions joined with AND.
func (b *UpdateBuilder) Where(conds ...Cond) *UpdateBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

// Build renders the statement for the dialect.
func (b *UpdateBuilder) Build(d Dialect) (string, []any, error) {
	if b.table == "" {
		return "", nil, ErrNoTable
	}
	if len(b.values.cols) == 0 {
		return "", nil, ErrNoValues
	}
	w := newWriter(d)
	w.sb.WriteString("UPDATE ")
	if err := w.ident(b.table); err != nil {
		return "", nil, err
	}
	w.sb.WriteString(" SET ")
	for i, col := range b.values.cols {
		if i > 0 {
			w.sb.WriteString(", ")
		}
		if err := w.ident(col); err != nil {
			return "", nil, err
		}
		w.sb.WriteString(" = " + w.arg(b.values.vals[i]))
	}
	if err := w.where(b.conds); err != nil {
		return "", nil, err
	}
	return w.sb.String(), w.args, nil
}

// DeleteBuilder builds DELETE statements.
type DeleteBuilder struct {
	table string
	conds []Cond
}

// Delete starts a DELETE statement on table.
func Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

// Where appends conditions joined with AND.
func (b *DeleteBuilder) Where(conds ...Cond) *DeleteBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

// Build renders the statement for the dialect.
func (b *DeleteBuilder) Build(d Dialect) (string, []any, error) {
	if b.table == "" {
		return "", nil, ErrNoTable
	}
	w := newWriter(d)
	w.sb.WriteString("DELETE FROM ")
	if err := w.ident(b.table); err != nil {
		return "", nil, err
	}
	if err := w.where(b.conds); err != nil {
		return "", nil, err
	}
	return w.sb.String(), w.args, nil
}
