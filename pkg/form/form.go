package form

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/ultralight/pkg/model"
	"github.com/dmitrymomot/ultralight/pkg/query"
)

// Field names reserved by the form builder.
const (
	CSRFField   = "_csrf"
	MethodField = "_method"
)

// Form is an HTML form. It implements templ.Component.
type Form struct {
	Errors    model.ValidationErrors
	Action    string
	Method    string
	CSRFToken string
	Submit    string
	ID        string
	Class     string
	Fields    []Field
}

// Option configures a Form.
type Option func(*Form)

// WithMethod sets the HTTP method. Defaults to POST.
func WithMethod(method string) Option {
	return func(f *Form) {
		if method != "" {
			f.Method = strings.ToUpper(method)
		}
	}
}

// WithErrors attaches validation errors shown next to their fields.
func WithErrors(errs model.ValidationErrors) Option {
	return func(f *Form) { f.Errors = errs }
}

// WithCSRF adds the token as a hidden _csrf field.
func WithCSRF(token string) Option {
	return func(f *Form) { f.CSRFToken = token }
}

// WithSubmit sets the submit button label. An empty label omits the button.
func WithSubmit(label string) Option {
	return func(f *Form) { f.Submit = label }
}

// WithID sets the form element id.
func WithID(id string) Option {
	return func(f *Form) { f.ID = id }
}

// WithClass sets the form element class.
func WithClass(class string) Option {
	return func(f *Form) { f.Class = class }
}

// New creates an empty form posting to action.
func New(action string, opts ...Option) *Form {
	f := &Form{Action: action, Method: http.MethodPost, Submit: "Save"}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Add appends fields. Fields without a type are text inputs.
func (f *Form) Add(fields ...Field) *Form {
	for _, fl := range fields {
		if fl.Type == "" {
			fl.Type = Text
		}
		f.Fields = append(f.Fields, fl)
	}
	return f
}

// Field returns the field with the given name, or nil.
func (f *Form) Field(name string) *Field {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			return &f.Fields[i]
		}
	}
	return nil
}

// Multipart reports whether the form must be sent as multipart/form-data.
func (f *Form) Multipart() bool {
	for _, fl := range f.Fields {
		if fl.Type == File {
			return true
		}
	}
	return false
}

// FromModel builds a form from a model's schema, filled with the model's values.
// Timestamps maintained by the repository are left out. A primary key becomes
// a hidden field once it is set.
func FromModel(v any, action string, opts ...Option) (*Form, error) {
	s, err := model.Reflect(v)
	if err != nil {
		return nil, err
	}
	f := New(action, opts...)

	for _, mf := range s.Fields {
		if mf.Created || mf.Updated {
			continue
		}
		spec, err := parseTag(mf.FormTag)
		if err != nil {
			return nil, fmt.Errorf("form: %s.%s: %w", s.Type.Name(), mf.Name, err)
		}
		if spec.skip {
			continue
		}
		val, err := model.Value(v, mf.Column)
		if err != nil {
			return nil, err
		}
		if mf.PK && spec.typ == "" {
			switch {
			case !isZero(val):
				spec.typ = Hidden
			case mf.Kind == query.KindInt || mf.Kind == query.KindBigInt:
				continue
			}
		}
		f.Add(fieldFromSchema(mf, spec, val))
	}
	return f, nil
}

func fieldFromSchema(mf *model.Field, spec tagSpec, val any) Field {
	fl := Field{
		Name:        mf.Column,
		Type:        spec.typ,
		Label:       mf.Label,
		Placeholder: spec.placeholder,
		Help:        spec.help,
		Class:       spec.class,
		Choices:     spec.choices,
		Rows:        spec.rows,
		Required:    mf.Required,
		Attrs:       map[string]string{},
	}
	if spec.label != "" {
		fl.Label = spec.label
	}
	if fl.Type == "" {
		fl.Type = inferType(mf)
	}

	switch {
	case fl.Type == Number:
		if mf.Min != nil {
			fl.Attrs["min"] = strconv.FormatFloat(*mf.Min, 'f', -1, 64)
		}
		if mf.Max != nil {
			fl.Attrs["max"] = strconv.FormatFloat(*mf.Max, 'f', -1, 64)
		}
		if mf.Kind == query.KindFloat {
			fl.Attrs["step"] = "any"
		}
	case mf.Kind == query.KindString || mf.Kind == query.KindText:
		if mf.Min != nil {
			fl.Attrs["minlength"] = strconv.FormatFloat(*mf.Min, 'f', 0, 64)
		}
		if mf.Max != nil {
			fl.Attrs["maxlength"] = strconv.FormatFloat(*mf.Max, 'f', 0, 64)
		}
		if mf.Pattern != nil && fl.Type != Textarea {
			fl.Attrs["pattern"] = mf.Pattern.String()
		}
	}
	if len(fl.Attrs) == 0 {
		fl.Attrs = nil
	}

	switch v := val.(type) {
	case nil:
	case bool:
		fl.Checked = v
		fl.Value = strconv.FormatBool(v)
	case time.Time:
		if !v.IsZero() {
			if fl.Type == DateTime {
				fl.Value = v.Format("2006-01-02T15:04")
			} else {
				fl.Value = v.Format(time.DateOnly)
			}
		}
	case []byte:
		fl.Value = string(v)
	default:
		fl.Value = fmt.Sprint(v)
	}
	return fl
}

func inferType(mf *model.Field) FieldType {
	switch mf.Kind {
	case query.KindText:
		return Textarea
	case query.KindBool:
		return Checkbox
	case query.KindInt, query.KindBigInt, query.KindFloat:
		return Number
	case query.KindTime:
		return Date
	case query.KindBytes:
		return File
	}
	switch {
	case mf.Email:
		return Email
	case strings.Contains(mf.Column, "password"):
		return Password
	}
	return Text
}

func isZero(v any) bool {
	return v == nil || reflect.ValueOf(v).IsZero()
}

// Render writes the form markup.
func (f *Form) Render(_ context.Context, w io.Writer) error {
	hw := &htmlWriter{w: w}
	method := f.Method
	if method == "" {
		method = http.MethodPost
	}
	override := method != http.MethodGet && method != http.MethodPost

	hw.raw("<form")
	hw.attr("action", f.Action)
	if method == http.MethodGet {
		hw.attr("method", "get")
	} else {
		hw.attr("method", "post")
	}
	if f.Multipart() {
		hw.attr("enctype", "multipart/form-data")
	}
	if f.ID != "" {
		hw.attr("id", f.ID)
	}
	if f.Class != "" {
		hw.attr("class", f.Class)
	}
	hw.raw(">")

	if override {
		_ = renderHidden(hw, Field{Name: MethodField, Value: method}, nil)
	}
	if f.CSRFToken != "" {
		_ = renderHidden(hw, Field{Name: CSRFField, Value: f.CSRFToken}, nil)
	}
	if hw.err != nil {
		return hw.err
	}

	for _, fl := range f.Fields {
		r, ok := lookupRenderer(fl.Type)
		if !ok {
			return fmt.Errorf("%w: %q", ErrNoRenderer, fl.Type)
		}
		if err := r(w, fl, f.Errors[fl.Name]); err != nil {
			return err
		}
	}

	if f.Submit != "" {
		if err := renderSubmit(w, Field{Label: f.Submit}, nil); err != nil {
			return err
		}
	}
	hw.raw("</form>")
	return hw.err
}
