package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/dmitrymomot/ultralight/pkg/model"
	"github.com/dmitrymomot/ultralight/pkg/query"
	"github.com/dmitrymomot/ultralight/pkg/sanitizer"
)

// MaxMemory is the part of a multipart body kept in memory by Bind.
const MaxMemory = 32 << 20

// Bind fills dst from the request. JSON bodies are decoded with encoding/json;
// urlencoded and multipart forms are mapped by column name. Only submitted
// fields are touched, the last value of a repeated field wins, and
// auto-increment keys and repository timestamps are never bound. Fields with
// a `sanitize` tag are cleaned afterwards.
func Bind(r *http.Request, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrNotPointer
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		if r.Body == nil {
			return nil
		}
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return errors.Join(ErrDecode, err)
		}
		return sanitizer.SanitizeStruct(dst)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(MaxMemory); err != nil {
			return errors.Join(ErrDecode, err)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return errors.Join(ErrDecode, err)
		}
	}
	return BindValues(r.Form, dst)
}

// BindValues fills dst from already parsed form values.
func BindValues(values map[string][]string, dst any) error {
	s, err := model.Reflect(dst)
	if err != nil {
		return err
	}

	var errs []error
	for _, f := range s.Fields {
		if f.Created || f.Updated {
			continue
		}
		if f.PK && (f.Kind == query.KindInt || f.Kind == query.KindBigInt) {
			continue
		}
		spec, err := parseTag(f.FormTag)
		if err != nil {
			return fmt.Errorf("form: %s.%s: %w", s.Type.Name(), f.Name, err)
		}
		if spec.skip || spec.typ == File || f.Kind == query.KindBytes {
			continue
		}
		vals, ok := values[f.Column]
		if !ok || len(vals) == 0 {
			continue
		}
		raw := vals[len(vals)-1]
		if spec.typ != Password && spec.typ != Textarea && f.Kind != query.KindText {
			raw = strings.TrimSpace(raw)
		}
		if err := model.SetValue(dst, f.Column, raw); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrDecode}, errs...)...)
	}
	return sanitizer.SanitizeStruct(dst)
}
