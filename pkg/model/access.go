package model

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrymomot/ultralight/pkg/query"
)

// Value returns the value of the field mapped to column. Nil pointers yield nil.
func Value(v any, column string) (any, error) {
	s, err := Reflect(v)
	if err != nil {
		return nil, err
	}
	f := s.Field(column)
	if f == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, s.Table, column)
	}
	return driverValue(fieldValue(reflect.Indirect(reflect.ValueOf(v)), f)), nil
}

// SetValue assigns value to the field mapped to column. dst must be a pointer
// to a struct. Strings are converted to the field's type; a blank string
// resets numeric, time and pointer fields to their zero value.
func SetValue(dst any, column string, value any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: SetValue needs a non-nil pointer, got %T", ErrNotStruct, dst)
	}
	s, err := Reflect(dst)
	if err != nil {
		return err
	}
	f := s.Field(column)
	if f == nil {
		return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, s.Table, column)
	}

	target := fieldTarget(rv.Elem(), f)
	if str, ok := value.(string); ok && strings.TrimSpace(str) == "" && (target.Kind() == reflect.Pointer || !isText(f)) {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}
	sc := &fieldScanner{dst: target, column: f.Column}
	return sc.Scan(value)
}

func isText(f *Field) bool {
	return f.Kind == query.KindString || f.Kind == query.KindText
}
