package internal

import (
	"reflect"
	"strconv"
)

// Scalar lists the types Param and Query convert to.
type Scalar interface {
	~string | ~int | ~int64 | ~uint | ~uint64 | ~float64 | ~bool
}

// ContextValue returns the value stored under key by Set, or the zero T.
func ContextValue[T any](c Context, key any) T {
	v, _ := c.Get(key).(T)
	return v
}

// Param converts a path parameter, returning the zero T when it is missing
// or malformed.
func Param[T Scalar](c Context, name string) T {
	v, _ := parse[T](c.Param(name))
	return v
}

func Query[T Scalar](c Context, name string) T {
	v, _ := parse[T](c.Query(name))
	return v
}

// QueryDefault returns def when the query parameter is missing or malformed.
func QueryDefault[T Scalar](c Context, name string, def T) T {
	if v, ok := parse[T](c.Query(name)); ok {
		return v
	}
	return def
}

// parse also accepts named types such as `type Slug string` through their
// underlying kind.
func parse[T Scalar](raw string) (T, bool) {
	var out T
	if raw == "" {
		return out, false
	}
	v := reflect.ValueOf(&out).Elem()
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return out, false
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, v.Type().Bits())
		if err != nil {
			return out, false
		}
		v.SetUint(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return out, false
		}
		v.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return out, false
		}
		v.SetBool(b)
	}
	return out, true
}
