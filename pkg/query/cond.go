package query

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"slices"
	"strings"
)

// Op is a comparison operator of the filter language.
type Op string

const (
	OpEq      Op = "="
	OpNe      Op = "!"
	OpLt      Op = "<"
	OpGt      Op = ">"
	OpLe      Op = "<="
	OpGe      Op = ">="
	OpLike    Op = ":"
	OpNotLike Op = "!:"
	OpIn      Op = "@"
	OpNotIn   Op = "!@"
	OpIsNull  Op = "?"
	OpNotNull Op = "!?"
)

// Two-character operators come first so that "<=" is not read as "<" followed by "=".
var parseOrder = []Op{OpLe, OpGe, OpNotLike, OpNotIn, OpNotNull, OpEq, OpNe, OpLt, OpGt, OpLike, OpIn, OpIsNull}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdent reports whether s can be used as a column or table name.
func ValidIdent(s string) bool {
	return identRe.MatchString(s)
}

// Cond is a single predicate: Field Op Value.
type Cond struct {
	Value any
	Field string
	Op    Op
}

// String renders the condition back into filter-language form.
func (c Cond) String() string {
	switch c.Op {
	case OpIsNull, OpNotNull:
		return c.Field + "|" + string(c.Op)
	}
	return fmt.Sprintf("%s|%s%v", c.Field, c.Op, c.Value)
}

func Eq(field string, v any) Cond      { return Cond{Field: field, Op: OpEq, Value: v} }
func Ne(field string, v any) Cond      { return Cond{Field: field, Op: OpNe, Value: v} }
func Lt(field string, v any) Cond      { return Cond{Field: field, Op: OpLt, Value: v} }
func Gt(field string, v any) Cond      { return Cond{Field: field, Op: OpGt, Value: v} }
func Le(field string, v any) Cond      { return Cond{Field: field, Op: OpLe, Value: v} }
func Ge(field string, v any) Cond      { return Cond{Field: field, Op: OpGe, Value: v} }
func Like(field string, v string) Cond { return Cond{Field: field, Op: OpLike, Value: v} }
func In(field string, v any) Cond      { return Cond{Field: field, Op: OpIn, Value: v} }
func NotIn(field string, v any) Cond   { return Cond{Field: field, Op: OpNotIn, Value: v} }
func IsNull(field string) Cond         { return Cond{Field: field, Op: OpIsNull} }
func NotNull(field string) Cond        { return Cond{Field: field, Op: OpNotNull} }

// Parse reads a single "field|<op><value>" expression.
func Parse(expr string) (Cond, error) {
	field, rest, ok := strings.Cut(expr, "|")
	if !ok {
		return Cond{}, fmt.Errorf("%w: %q", ErrInvalidExpr, expr)
	}
	field = strings.TrimSpace(field)
	if !ValidIdent(field) {
		return Cond{}, fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	op, value, err := splitOp(rest)
	if err != nil {
		return Cond{}, err
	}
	c := Cond{Field: field, Op: op}
	if op != OpIsNull && op != OpNotNull {
		c.Value = value
	}
	return c, nil
}

// ParseMap converts a map of "field|op" keys into conditions.
// A key without an operator means equality. Conditions are returned in key order.
func ParseMap(m map[string]any) ([]Cond, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	conds := make([]Cond, 0, len(keys))
	for _, k := range keys {
		field, rest, hasOp := strings.Cut(k, "|")
		if !ValidIdent(field) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidField, field)
		}
		op := OpEq
		if hasOp {
			var tail string
			var err error
			op, tail, err = splitOp(rest)
			if err != nil {
				return nil, err
			}
			if tail != "" {
				return nil, fmt.Errorf("%w: %q", ErrInvalidExpr, k)
			}
		}
		conds = append(conds, Cond{Field: field, Op: op, Value: m[k]})
	}
	return conds, nil
}

// ParseValues parses every value of the given key as a filter expression.
// Empty values are skipped.
func ParseValues(values url.Values, key string) ([]Cond, error) {
	var conds []Cond
	for _, raw := range values[key] {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		c, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

func splitOp(s string) (Op, string, error) {
	for _, op := range parseOrder {
		if strings.HasPrefix(s, string(op)) {
			return op, s[len(op):], nil
		}
	}
	return "", "", fmt.Errorf("%w: %q", ErrInvalidOp, s)
}

func (c Cond) write(w *writer) error {
	if !ValidIdent(c.Field) {
		return fmt.Errorf("%w: %q", ErrInvalidField, c.Field)
	}
	col := w.d.Quote(c.Field)

	switch c.Op {
	case OpEq, "":
		if c.Value == nil {
			w.sb.WriteString(col + " IS NULL")
			return nil
		}
		w.sb.WriteString(col + " = " + w.arg(c.Value))
	case OpNe:
		if c.Value == nil {
			w.sb.WriteString(col + " IS NOT NULL")
			return nil
		}
		w.sb.WriteString(col + " <> " + w.arg(c.Value))
	case OpLt:
		w.sb.WriteString(col + " < " + w.arg(c.Value))
	case OpGt:
		w.sb.WriteString(col + " > " + w.arg(c.Value))
	case OpLe:
		w.sb.WriteString(col + " <= " + w.arg(c.Value))
	case OpGe:
		w.sb.WriteString(col + " >= " + w.arg(c.Value))
	case OpLike:
		w.sb.WriteString(col + " LIKE " + w.arg(likePattern(c.Value)))
	case OpNotLike:
		w.sb.WriteString(col + " NOT LIKE " + w.arg(likePattern(c.Value)))
	case OpIn, OpNotIn:
		items := listValues(c.Value)
		if len(items) == 0 {
			if c.Op == OpIn {
				w.sb.WriteString("1=0")
			} else {
				w.sb.WriteString("1=1")
			}
			return nil
		}
		w.sb.WriteString(col)
		if c.Op == OpNotIn {
			w.sb.WriteString(" NOT")
		}
		w.sb.WriteString(" IN (")
		for i, v := range items {
			if i > 0 {
				w.sb.WriteString(", ")
			}
			w.sb.WriteString(w.arg(v))
		}
		w.sb.WriteString(")")
	case OpIsNull:
		w.sb.WriteString(col + " IS NULL")
	case OpNotNull:
		w.sb.WriteString(col + " IS NOT NULL")
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOp, c.Op)
	}
	return nil
}

func likePattern(v any) string {
	s := fmt.Sprint(v)
	if strings.Contains(s, "%") {
		return s
	}
	return "%" + s + "%"
}

// listValues flattens the value of an IN condition. Strings are split on commas.
func listValues(v any) []any {
	switch vv := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(vv) == "" {
			return nil
		}
		parts := strings.Split(vv, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	case []any:
		return vv
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range rv.Len() {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
