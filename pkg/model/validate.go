package model

import (
	"fmt"
	"net/mail"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ValidationErrors maps column names to validation messages.
type ValidationErrors map[string][]string

// Error implements error.
func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(v[k], ", "))
	}
	return "model: validation failed: " + strings.Join(parts, "; ")
}

// Add appends a message for the column.
func (v ValidationErrors) Add(column, msg string) {
	v[column] = append(v[column], msg)
}

// Has reports whether the column has any messages.
func (v ValidationErrors) Has(column string) bool {
	return len(v[column]) > 0
}

// First returns the first message for the column, or "".
func (v ValidationErrors) First(column string) string {
	if msgs := v[column]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Validate checks a model value against its field rules.
// It returns nil when the value is valid and ValidationErrors otherwise.
func Validate(v any) error {
	s, err := Reflect(v)
	if err != nil {
		return err
	}
	rv := reflect.Indirect(reflect.ValueOf(v))

	errs := ValidationErrors{}
	for _, f := range s.Fields {
		if f.PK || f.Created || f.Updated {
			continue
		}
		validateField(errs, f, fieldValue(rv, f))
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateField(errs ValidationErrors, f *Field, fv reflect.Value) {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			if f.Required {
				errs.Add(f.Column, "is required")
			}
			return
		}
		fv = fv.Elem()
	}

	if f.Required && isBlank(fv) {
		errs.Add(f.Column, "is required")
		return
	}

	switch fv.Kind() {
	case reflect.String:
		s := fv.String()
		if s == "" {
			return
		}
		n := float64(utf8.RuneCountInString(s))
		if f.Min != nil && n < *f.Min {
			errs.Add(f.Column, "must be at least "+formatNum(*f.Min)+" characters")
		}
		if f.Max != nil && n > *f.Max {
			errs.Add(f.Column, "must be at most "+formatNum(*f.Max)+" characters")
		}
		if f.Pattern != nil && !f.Pattern.MatchString(s) {
			errs.Add(f.Column, "has invalid format")
		}
		if f.Email && !validEmail(s) {
			errs.Add(f.Column, "must be a valid email address")
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		checkRange(errs, f, float64(fv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		checkRange(errs, f, float64(fv.Uint()))
	case reflect.Float32, reflect.Float64:
		checkRange(errs, f, fv.Float())
	}
}

func checkRange(errs ValidationErrors, f *Field, n float64) {
	if f.Min != nil && n < *f.Min {
		errs.Add(f.Column, "must be at least "+formatNum(*f.Min))
	}
	if f.Max != nil && n > *f.Max {
		errs.Add(f.Column, "must be at most "+formatNum(*f.Max))
	}
}

func isBlank(v reflect.Value) bool {
	if v.Kind() == reflect.String {
		return strings.TrimSpace(v.String()) == ""
	}
	return v.IsZero()
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func formatNum(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return fmt.Sprint(n)
}
