package view

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxIncludeDepth bounds nested +@name+ includes.
const MaxIncludeDepth = 10

// Data is the value set a template is executed with.
type Data map[string]any

// HTML is trusted markup that is written without escaping.
type HTML string

// Component renders itself as HTML. Values implementing it (templ components,
// forms, bootstrap helpers) are rendered in place.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

type segKind uint8

const (
	segText segKind = iota
	segVar
	segInclude
)

type segment struct {
	text    string
	path    []string
	filters []string
	kind    segKind
}

// Template is a parsed placeholder template.
type Template struct {
	meta     map[string]any
	name     string
	segments []segment
}

var (
	candidateRe = regexp.MustCompile(`^(@[^\s+<>"']+|[A-Za-z_][^\s+<>"']*)$`)
	varRe       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
	includeRe   = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_./-]*$`)
	filterRe    = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// Parse parses template source.
//
//	+title+              escaped value
//	+author.name+        dotted lookup through maps and struct fields
//	+body|md+            value piped through filters
//	+@partials/nav.html+ include, executed with the same data
//	++                   a literal +
//
// A + that does not start a placeholder is kept as text.
func Parse(name, src string) (*Template, error) {
	t := &Template{name: name}
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			t.segments = append(t.segments, segment{kind: segText, text: text.String()})
			text.Reset()
		}
	}

	line := 1
	for i := 0; i < len(src); {
		c := src[i]
		if c != '+' {
			if c == '\n' {
				line++
			}
			text.WriteByte(c)
			i++
			continue
		}
		if i+1 < len(src) && src[i+1] == '+' {
			text.WriteByte('+')
			i += 2
			continue
		}
		end := strings.IndexByte(src[i+1:], '+')
		if end < 0 {
			text.WriteString(src[i:])
			break
		}
		token := src[i+1 : i+1+end]
		if !candidateRe.MatchString(token) {
			text.WriteByte('+')
			i++
			continue
		}
		seg, ok, err := parseToken(token)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, line, err)
		}
		if !ok {
			text.WriteByte('+')
			i++
			continue
		}
		flush()
		t.segments = append(t.segments, seg)
		i += end + 2
	}
	flush()
	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(name, src string) *Template {
	t, err := Parse(name, src)
	if err != nil {
		panic(err)
	}
	return t
}

// parseToken reports false for tokens that are not placeholders, such as the
// words of a URL query joined by +.
func parseToken(token string) (segment, bool, error) {
	if name, ok := strings.CutPrefix(token, "@"); ok {
		if !includeRe.MatchString(name) || strings.Contains(name, "..") {
			return segment{}, false, fmt.Errorf("%w: include %q", ErrSyntax, name)
		}
		return segment{kind: segInclude, text: name}, true, nil
	}

	parts := strings.Split(token, "|")
	if !varRe.MatchString(parts[0]) {
		return segment{}, false, nil
	}
	for _, f := range parts[1:] {
		if !filterRe.MatchString(f) {
			return segment{}, false, fmt.Errorf("%w: filter %q", ErrSyntax, f)
		}
	}
	return segment{kind: segVar, path: strings.Split(parts[0], "."), filters: parts[1:]}, true, nil
}

// Name returns the name the template was parsed with.
func (t *Template) Name() string { return t.name }

// Meta returns the template's front matter, or nil.
func (t *Template) Meta() map[string]any { return t.meta }

// Placeholders lists the variable names used by the template, in order of
// first use. Includes are not followed.
func (t *Template) Placeholders() []string {
	var (
		out  []string
		seen = map[string]bool{}
	)
	for _, s := range t.segments {
		if s.kind != segVar {
			continue
		}
		name := strings.Join(s.path, ".")
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// Execute writes the template. e provides filters and includes; with a nil
// engine only the built-in filters are available and includes fail.
func (t *Template) Execute(ctx context.Context, w io.Writer, data Data, e *Engine) error {
	return t.execute(ctx, w, data, e, 0)
}

func (t *Template) execute(ctx context.Context, w io.Writer, data Data, e *Engine, depth int) error {
	for _, s := range t.segments {
		var err error
		switch s.kind {
		case segText:
			_, err = io.WriteString(w, s.text)
		case segVar:
			err = writeValue(ctx, w, t.pipe(s, data, e))
		case segInclude:
			err = t.include(ctx, w, s.text, data, e, depth)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Template) pipe(s segment, data Data, e *Engine) any {
	v := lookup(data, s.path)
	for _, name := range s.filters {
		f, ok := e.filter(name)
		if !ok {
			return filterError{fmt.Errorf("%w: %q in %s", ErrUnknownFilter, name, t.name)}
		}
		v = f(v)
	}
	return v
}

type filterError struct{ err error }

// checkFilters reports the first filter e does not provide.
func (t *Template) checkFilters(e *Engine) error {
	for _, s := range t.segments {
		for _, name := range s.filters {
			if _, ok := e.filter(name); !ok {
				return fmt.Errorf("%w: %q in %s", ErrUnknownFilter, name, t.name)
			}
		}
	}
	return nil
}

func (t *Template) include(ctx context.Context, w io.Writer, name string, data Data, e *Engine, depth int) error {
	if e == nil {
		return fmt.Errorf("%w: %s includes %s", ErrNoEngine, t.name, name)
	}
	if depth >= MaxIncludeDepth {
		return fmt.Errorf("%w: %s", ErrIncludeDepth, name)
	}
	inc, err := e.Template(name)
	if err != nil {
		return err
	}
	return inc.execute(ctx, w, data, e, depth+1)
}

func writeValue(ctx context.Context, w io.Writer, v any) error {
	switch v := v.(type) {
	case filterError:
		return v.err
	case nil:
		return nil
	case HTML:
		_, err := io.WriteString(w, string(v))
		return err
	case Component:
		return v.Render(ctx, w)
	}
	_, err := io.WriteString(w, html.EscapeString(toString(v)))
	return err
}

// lookup resolves a dotted path. Missing keys yield nil.
func lookup(data Data, path []string) any {
	var cur any = map[string]any(data)
	for _, key := range path {
		cur = field(cur, key)
		if cur == nil {
			return nil
		}
	}
	return cur
}

func field(v any, key string) any {
	switch m := v.(type) {
	case map[string]any:
		return m[key]
	case Data:
		return m[key]
	case map[string]string:
		if s, ok := m[key]; ok {
			return s
		}
		return nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil
		}
		return mv.Interface()
	case reflect.Struct:
		return structField(rv, key)
	}
	return nil
}

// structField matches key against the db tag, then the field name ignoring
// case and underscores, so created_at finds CreatedAt.
func structField(rv reflect.Value, key string) any {
	rt := rv.Type()
	norm := strings.ReplaceAll(key, "_", "")
	for i := range rt.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(sf.Tag.Get("db"), ",")
		if tag == key || (tag != "-" && strings.EqualFold(sf.Name, norm)) {
			return rv.Field(i).Interface()
		}
	}
	return nil
}

func toString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case HTML:
		return string(v)
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	case time.Time:
		return v.Format(time.DateOnly)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format(time.DateOnly)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case Component:
		var buf bytes.Buffer
		if err := v.Render(context.Background(), &buf); err != nil {
			return ""
		}
		return buf.String()
	}
	return fmt.Sprint(v)
}
