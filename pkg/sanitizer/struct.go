package sanitizer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrNotPointer is returned by SanitizeStruct for non-pointer arguments.
var ErrNotPointer = errors.New("sanitizer: expected a pointer to a struct")

// SanitizeStruct rewrites string fields according to their `sanitize` tag.
// A rule is "trim" or the name of a registered policy: "strip", "html",
// "markdown" or one added with Register. Rules combine with commas ("strip,trim") and run in order. Nested structs
// and string pointers are followed.
func SanitizeStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrNotPointer
	}
	return sanitizeValue(rv.Elem())
}

func sanitizeValue(rv reflect.Value) error {
	t := rv.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := rv.Field(i)
		tag := sf.Tag.Get("sanitize")

		if fv.Kind() == reflect.Pointer && !fv.IsNil() {
			fv = fv.Elem()
		}
		switch fv.Kind() {
		case reflect.Struct:
			if err := sanitizeValue(fv); err != nil {
				return err
			}
		case reflect.String:
			if tag == "" || tag == "-" {
				continue
			}
			out, err := apply(fv.String(), tag)
			if err != nil {
				return fmt.Errorf("sanitizer: %s.%s: %w", t.Name(), sf.Name, err)
			}
			fv.SetString(out)
		}
	}
	return nil
}

func apply(s, tag string) (string, error) {
	for rule := range strings.SplitSeq(tag, ",") {
		rule = strings.TrimSpace(rule)
		switch rule {
		case "":
		case "trim":
			s = strings.TrimSpace(s)
		default:
			p, ok := Policy(rule)
			if !ok {
				return "", fmt.Errorf("unknown rule %q", rule)
			}
			s = p.Sanitize(s)
		}
	}
	return s, nil
}
