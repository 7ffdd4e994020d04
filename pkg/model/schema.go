package model

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/dmitrymomot/ultralight/pkg/query"
)

// Schema is the table description derived from a struct type.
type Schema struct {
	Type   reflect.Type
	PK     *Field
	Table  string
	Fields []*Field
}

// Field describes one persisted struct field.
type Field struct {
	Type     reflect.Type
	Min      *float64
	Max      *float64
	Pattern  *regexp.Regexp
	Name     string
	Column   string
	SQLType  string
	Default  string
	Label    string
	FormTag  string
	Index    []int
	Kind     query.Kind
	Size     int
	PK       bool
	Required bool
	Unique   bool
	Indexed  bool
	Nullable bool
	Email    bool
	Created  bool
	Updated  bool
}

// Field returns the field mapped to the given column, or nil.
func (s *Schema) Field(column string) *Field {
	for _, f := range s.Fields {
		if f.Column == column {
			return f
		}
	}
	return nil
}

// Columns returns all column names in declaration order.
func (s *Schema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Column
	}
	return cols
}

// tabler lets a model override its table name.
type tabler interface {
	TableName() string
}

var (
	schemas  sync.Map // reflect.Type -> *Schema
	timeType = reflect.TypeFor[time.Time]()
)

// SchemaOf returns the schema of T.
func SchemaOf[T any]() (*Schema, error) {
	return reflectType(reflect.TypeFor[T]())
}

// Reflect returns the schema of the value's struct type. Pointers are dereferenced.
func Reflect(v any) (*Schema, error) {
	if v == nil {
		return nil, ErrNotStruct
	}
	return reflectType(reflect.TypeOf(v))
}

func reflectType(t reflect.Type) (*Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, t)
	}
	if s, ok := schemas.Load(t); ok {
		return s.(*Schema), nil
	}

	s := &Schema{Type: t, Table: tableName(t)}
	if err := collectFields(s, t, nil); err != nil {
		return nil, err
	}
	if s.PK == nil {
		if f := s.Field("id"); f != nil {
			f.PK = true
			s.PK = f
		}
	}

	actual, _ := schemas.LoadOrStore(t, s)
	return actual.(*Schema), nil
}

func tableName(t reflect.Type) string {
	zero := reflect.New(t)
	if tn, ok := zero.Interface().(tabler); ok {
		return tn.TableName()
	}
	if tn, ok := zero.Elem().Interface().(tabler); ok {
		return tn.TableName()
	}
	return pluralize(snakeCase(t.Name()))
}

func collectFields(s *Schema, t reflect.Type, parent []int) error {
	for i := range t.NumField() {
		sf := t.Field(i)
		index := append(append([]int(nil), parent...), i)

		dbTag := sf.Tag.Get("db")
		if dbTag == "-" {
			continue
		}
		if sf.Anonymous && dbTag == "" {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && ft != timeType {
				if err := collectFields(s, ft, index); err != nil {
					return err
				}
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}

		f, err := newField(sf, index)
		if err != nil {
			return fmt.Errorf("model: %s.%s: %w", t.Name(), sf.Name, err)
		}
		if s.Field(f.Column) != nil {
			return fmt.Errorf("%w: %s.%s", ErrDuplicateColumn, s.Table, f.Column)
		}
		if f.PK {
			if s.PK != nil {
				return fmt.Errorf("%w: %s", ErrMultiplePK, s.Table)
			}
			s.PK = f
		}
		s.Fields = append(s.Fields, f)
	}
	return nil
}

func newField(sf reflect.StructField, index []int) (*Field, error) {
	f := &Field{
		Name:    sf.Name,
		Column:  sf.Tag.Get("db"),
		Index:   index,
		Type:    sf.Type,
		FormTag: sf.Tag.Get("form"),
	}
	if f.Column == "" {
		f.Column = snakeCase(sf.Name)
	}
	if !query.ValidIdent(f.Column) {
		return nil, fmt.Errorf("%w: %q", query.ErrInvalidField, f.Column)
	}

	base := sf.Type
	if base.Kind() == reflect.Pointer {
		f.Nullable = true
		base = base.Elem()
	}
	kind, ok := kindOf(base)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, sf.Type)
	}
	f.Kind = kind

	if err := parseModelTag(f, sf.Tag.Get("model")); err != nil {
		return nil, err
	}
	if f.Label == "" {
		f.Label = humanize(f.Column)
	}
	if f.Kind == query.KindString && f.Size == 0 && f.Max != nil {
		f.Size = int(*f.Max)
	}
	return f, nil
}

func kindOf(t reflect.Type) (query.Kind, bool) {
	if t == timeType {
		return query.KindTime, true
	}
	switch t.Kind() {
	case reflect.String:
		return query.KindString, true
	case reflect.Int64, reflect.Int, reflect.Uint, reflect.Uint64, reflect.Uint32:
		return query.KindBigInt, true
	case reflect.Int32, reflect.Int16, reflect.Int8, reflect.Uint16, reflect.Uint8:
		return query.KindInt, true
	case reflect.Float32, reflect.Float64:
		return query.KindFloat, true
	case reflect.Bool:
		return query.KindBool, true
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return query.KindBytes, true
		}
	}
	return 0, false
}

// parseModelTag reads `model:"pk;type:varchar(80);required;min:3;max:80;unique"`.
// Values are split on the first colon, so patterns may contain colons but not semicolons.
func parseModelTag(f *Field, tag string) error {
	if tag == "" {
		return nil
	}
	for part := range strings.SplitSeq(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, _ := strings.Cut(part, ":")
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)

		switch key {
		case "pk", "primary":
			f.PK = true
		case "type":
			f.SQLType = val
			if strings.EqualFold(val, "text") && f.Kind == query.KindString {
				f.Kind = query.KindText
			}
		case "size":
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("%w: size %q", ErrInvalidTag, val)
			}
			f.Size = n
		case "required":
			f.Required = true
		case "unique":
			f.Unique = true
		case "index":
			f.Indexed = true
		case "null", "nullable":
			f.Nullable = true
		case "email":
			f.Email = true
		case "created":
			f.Created = true
		case "updated":
			f.Updated = true
		case "default":
			f.Default = val
		case "label":
			f.Label = val
		case "min", "max":
			n, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("%w: %s %q", ErrInvalidTag, key, val)
			}
			if key == "min" {
				f.Min = &n
			} else {
				f.Max = &n
			}
		case "pattern":
			re, err := regexp.Compile(val)
			if err != nil {
				return fmt.Errorf("%w: pattern %q: %v", ErrInvalidTag, val, err)
			}
			f.Pattern = re
		default:
			return fmt.Errorf("%w: unknown key %q", ErrInvalidTag, key)
		}
	}
	return nil
}

func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func pluralize(s string) string {
	switch {
	case s == "":
		return s
	case strings.HasSuffix(s, "s"), strings.HasSuffix(s, "x"),
		strings.HasSuffix(s, "ch"), strings.HasSuffix(s, "sh"):
		return s + "es"
	case strings.HasSuffix(s, "y") && len(s) > 1 && !strings.ContainsRune("aeiou", rune(s[len(s)-2])):
		return s[:len(s)-1] + "ies"
	}
	return s + "s"
}

func humanize(column string) string {
	words := strings.Split(column, "_")
	if len(words) > 1 && words[len(words)-1] == "id" {
		words = words[:len(words)-1]
	}
	s := strings.Join(words, " ")
	if s == "" {
		return column
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
