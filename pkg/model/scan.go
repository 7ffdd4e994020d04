package model

import (
	"database/sql"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/ultralight/pkg/query"
)

// Layouts tried when a driver hands back a time column as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// fieldValue reads a field, treating nil embedded pointers as zero values.
func fieldValue(rv reflect.Value, f *Field) reflect.Value {
	v, err := rv.FieldByIndexErr(f.Index)
	if err != nil {
		return reflect.Zero(f.Type)
	}
	return v
}

// fieldTarget returns a settable field, allocating nil embedded pointers.
func fieldTarget(rv reflect.Value, f *Field) reflect.Value {
	v := rv
	for i, x := range f.Index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

// driverValue converts a field into a value database/sql accepts.
func driverValue(v reflect.Value) any {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	return v.Interface()
}

// fieldScanner assigns a database value to a struct field, converting between
// the representations different drivers use for the same column type.
type fieldScanner struct {
	dst    reflect.Value
	column string
}

var _ sql.Scanner = (*fieldScanner)(nil)

func (s *fieldScanner) Scan(src any) error {
	if src == nil {
		s.dst.Set(reflect.Zero(s.dst.Type()))
		return nil
	}
	dst := s.dst
	if dst.Kind() == reflect.Pointer {
		ptr := reflect.New(dst.Type().Elem())
		if err := assign(ptr.Elem(), src); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidValue, s.column, err)
		}
		dst.Set(ptr)
		return nil
	}
	if err := assign(dst, src); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidValue, s.column, err)
	}
	return nil
}

func assign(dst reflect.Value, src any) error {
	if dst.Type() == timeType {
		t, err := toTime(src)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(t))
		return nil
	}

	switch dst.Kind() {
	case reflect.String:
		switch v := src.(type) {
		case string:
			dst.SetString(v)
		case []byte:
			dst.SetString(string(v))
		case time.Time:
			dst.SetString(v.Format(time.RFC3339))
		default:
			dst.SetString(fmt.Sprint(v))
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt(src)
		if err != nil {
			return err
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toInt(src)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("negative value %d for unsigned field", n)
		}
		dst.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		f, err := toFloat(src)
		if err != nil {
			return err
		}
		dst.SetFloat(f)
	case reflect.Bool:
		b, err := toBool(src)
		if err != nil {
			return err
		}
		dst.SetBool(b)
	case reflect.Slice:
		switch v := src.(type) {
		case []byte:
			dst.SetBytes(append([]byte(nil), v...))
		case string:
			dst.SetBytes([]byte(v))
		default:
			return fmt.Errorf("cannot scan %T into %s", src, dst.Type())
		}
	default:
		return fmt.Errorf("cannot scan %T into %s", src, dst.Type())
	}
	return nil
}

func toInt(src any) (int64, error) {
	switch v := src.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	}
	return 0, fmt.Errorf("cannot convert %T to integer", src)
}

func toFloat(src any) (float64, error) {
	switch v := src.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	return 0, fmt.Errorf("cannot convert %T to float", src)
}

func toBool(src any) (bool, error) {
	switch v := src.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case []byte:
		return parseBool(string(v))
	case string:
		return parseBool(v)
	}
	return false, fmt.Errorf("cannot convert %T to bool", src)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "yes", "y":
		return true, nil
	case "off", "no", "n", "":
		return false, nil
	}
	return strconv.ParseBool(s)
}

func toTime(src any) (time.Time, error) {
	switch v := src.(type) {
	case time.Time:
		return v, nil
	case []byte:
		return parseTime(string(v))
	case string:
		return parseTime(v)
	case int64:
		return time.Unix(v, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("cannot convert %T to time", src)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
}

// coerce converts a condition value, typically a string taken from a request,
// into the Go type the column holds. Non-string values pass through.
func coerce(f *Field, v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	var (
		out any
		err error
	)
	switch f.Kind {
	case query.KindInt, query.KindBigInt:
		out, err = strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	case query.KindFloat:
		out, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
	case query.KindBool:
		out, err = parseBool(s)
	case query.KindTime:
		out, err = parseTime(s)
	default:
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w %q: %q", ErrInvalidValue, f.Column, s)
	}
	return out, nil
}

// coerceCond validates the condition column and converts its value.
func coerceCond(s *Schema, c query.Cond) (query.Cond, error) {
	f := s.Field(c.Field)
	if f == nil {
		return c, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, s.Table, c.Field)
	}
	switch c.Op {
	case query.OpIsNull, query.OpNotNull, query.OpLike, query.OpNotLike:
		return c, nil
	case query.OpIn, query.OpNotIn:
		items, ok := c.Value.(string)
		if !ok {
			return c, nil
		}
		var list []any
		for p := range strings.SplitSeq(items, ",") {
			if p = strings.TrimSpace(p); p == "" {
				continue
			}
			v, err := coerce(f, p)
			if err != nil {
				return c, err
			}
			list = append(list, v)
		}
		c.Value = list
		return c, nil
	}
	v, err := coerce(f, c.Value)
	if err != nil {
		return c, err
	}
	c.Value = v
	return c, nil
}
