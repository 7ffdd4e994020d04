package form

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/a-h/templ"
)

// Renderer writes one field. errs holds the field's validation messages.
type Renderer func(w io.Writer, f Field, errs []string) error

var (
	renderersMu sync.RWMutex
	renderers   = map[FieldType]Renderer{
		Text:     renderInput,
		Email:    renderInput,
		Password: renderInput,
		Number:   renderInput,
		Date:     renderInput,
		DateTime: renderInput,
		File:     renderInput,
		Hidden:   renderHidden,
		Textarea: renderTextarea,
		Select:   renderSelect,
		Checkbox: renderCheckbox,
		Radio:    renderRadio,
		Submit:   renderSubmit,
	}
)

// RegisterRenderer sets the renderer used for a field type by every form.
// Registering an existing type replaces the built-in renderer.
func RegisterRenderer(t FieldType, r Renderer) {
	renderersMu.Lock()
	defer renderersMu.Unlock()
	renderers[t] = r
}

func lookupRenderer(t FieldType) (Renderer, bool) {
	renderersMu.RLock()
	defer renderersMu.RUnlock()
	r, ok := renderers[t]
	return r, ok
}

// htmlWriter keeps the first write error so markup can be emitted without
// checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

// Write implements io.Writer so nested renderers share the form's error state.
func (hw *htmlWriter) Write(p []byte) (int, error) {
	if hw.err != nil {
		return 0, hw.err
	}
	n, err := hw.w.Write(p)
	hw.err = err
	return n, err
}

func (hw *htmlWriter) raw(s string) {
	if hw.err == nil {
		_, hw.err = io.WriteString(hw.w, s)
	}
}

func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

func (hw *htmlWriter) attr(name, value string) {
	hw.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (hw *htmlWriter) flag(name string, on bool) {
	if on {
		hw.raw(" " + name)
	}
}

func (hw *htmlWriter) extra(attrs map[string]string) {
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		hw.attr(k, attrs[k])
	}
}

func controlClass(base string, f Field, errs []string) string {
	cls := base
	if f.Class != "" {
		cls += " " + f.Class
	}
	if len(errs) > 0 {
		cls += " is-invalid"
	}
	return cls
}

func (hw *htmlWriter) label(f Field, class string) {
	if f.Label == "" {
		return
	}
	hw.raw("<label")
	hw.attr("for", f.ID())
	hw.attr("class", class)
	hw.raw(">")
	hw.text(f.Label)
	hw.raw("</label>")
}

func (hw *htmlWriter) feedback(f Field, errs []string) {
	for _, msg := range errs {
		hw.raw(`<div class="invalid-feedback">`)
		hw.text(msg)
		hw.raw("</div>")
	}
	if f.Help != "" {
		hw.raw(`<div class="form-text">`)
		hw.text(f.Help)
		hw.raw("</div>")
	}
}

func renderInput(w io.Writer, f Field, errs []string) error {
	hw := &htmlWriter{w: w}
	hw.raw(`<div class="mb-3">`)
	hw.label(f, "form-label")
	hw.raw("<input")
	hw.attr("type", string(f.Type))
	hw.attr("id", f.ID())
	hw.attr("name", f.Name)
	if f.Type != Password && f.Type != File {
		hw.attr("value", f.Value)
	}
	hw.attr("class", controlClass("form-control", f, errs))
	if f.Placeholder != "" {
		hw.attr("placeholder", f.Placeholder)
	}
	hw.flag("required", f.Required)
	hw.extra(f.Attrs)
	hw.raw(">")
	hw.feedback(f, errs)
	hw.raw("</div>")
	return hw.err
}

func renderHidden(w io.Writer, f Field, _ []string) error {
	hw := &htmlWriter{w: w}
	hw.raw(`<input type="hidden"`)
	hw.attr("name", f.Name)
	hw.attr("value", f.Value)
	hw.extra(f.Attrs)
	hw.raw(">")
	return hw.err
}

func renderTextarea(w io.Writer, f Field, errs []string) error {
	hw := &htmlWriter{w: w}
	rows := f.Rows
	if rows == 0 {
		rows = 5
	}
	hw.raw(`<div class="mb-3">`)
	hw.label(f, "form-label")
	hw.raw("<textarea")
	hw.attr("id", f.ID())
	hw.attr("name", f.Name)
	hw.attr("rows", strconv.Itoa(rows))
	hw.attr("class", controlClass("form-control", f, errs))
	if f.Placeholder != "" {
		hw.attr("placeholder", f.Placeholder)
	}
	hw.flag("required", f.Required)
	hw.extra(f.Attrs)
	hw.raw(">")
	hw.text(f.Value)
	hw.raw("</textarea>")
	hw.feedback(f, errs)
	hw.raw("</div>")
	return hw.err
}

func renderSelect(w io.Writer, f Field, errs []string) error {
	hw := &htmlWriter{w: w}
	hw.raw(`<div class="mb-3">`)
	hw.label(f, "form-label")
	hw.raw("<select")
	hw.attr("id", f.ID())
	hw.attr("name", f.Name)
	hw.attr("class", controlClass("form-select", f, errs))
	hw.flag("required", f.Required)
	hw.extra(f.Attrs)
	hw.raw(">")
	if f.Placeholder != "" {
		hw.raw(`<option value="">`)
		hw.text(f.Placeholder)
		hw.raw("</option>")
	}
	for _, ch := range f.Choices {
		hw.raw("<option")
		hw.attr("value", ch.Value)
		hw.flag("selected", ch.Value == f.Value)
		hw.raw(">")
		hw.text(ch.Label)
		hw.raw("</option>")
	}
	hw.raw("</select>")
	hw.feedback(f, errs)
	hw.raw("</div>")
	return hw.err
}

// renderCheckbox emits a hidden "false" before the box so an unchecked box
// still submits a value; Bind keeps the last value of a field.
func renderCheckbox(w io.Writer, f Field, errs []string) error {
	hw := &htmlWriter{w: w}
	hw.raw(`<div class="mb-3 form-check">`)
	hw.raw(`<input type="hidden"`)
	hw.attr("name", f.Name)
	hw.raw(` value="false">`)
	hw.raw(`<input type="checkbox" value="true"`)
	hw.attr("id", f.ID())
	hw.attr("name", f.Name)
	hw.attr("class", controlClass("form-check-input", f, errs))
	hw.flag("checked", f.Checked)
	hw.extra(f.Attrs)
	hw.raw(">")
	hw.label(f, "form-check-label")
	hw.feedback(f, errs)
	hw.raw("</div>")
	return hw.err
}

func renderRadio(w io.Writer, f Field, errs []string) error {
	hw := &htmlWriter{w: w}
	hw.raw(`<fieldset class="mb-3">`)
	if f.Label != "" {
		hw.raw(`<legend class="col-form-label">`)
		hw.text(f.Label)
		hw.raw("</legend>")
	}
	for i, ch := range f.Choices {
		id := fmt.Sprintf("%s-%d", f.ID(), i)
		hw.raw(`<div class="form-check">`)
		hw.raw(`<input type="radio"`)
		hw.attr("id", id)
		hw.attr("name", f.Name)
		hw.attr("value", ch.Value)
		hw.attr("class", controlClass("form-check-input", f, errs))
		hw.flag("checked", ch.Value == f.Value)
		hw.flag("required", f.Required)
		hw.raw(">")
		hw.raw("<label")
		hw.attr("for", id)
		hw.raw(` class="form-check-label">`)
		hw.text(ch.Label)
		hw.raw("</label></div>")
	}
	if len(errs) > 0 {
		hw.raw(`<div class="invalid-feedback d-block">`)
		hw.text(errs[0])
		hw.raw("</div>")
	}
	hw.raw("</fieldset>")
	return hw.err
}

func renderSubmit(w io.Writer, f Field, _ []string) error {
	hw := &htmlWriter{w: w}
	label := f.Label
	if label == "" {
		label = "Submit"
	}
	cls := "btn btn-primary"
	if f.Class != "" {
		cls = f.Class
	}
	hw.raw(`<button type="submit"`)
	hw.attr("class", cls)
	if f.Name != "" {
		hw.attr("name", f.Name)
		hw.attr("value", f.Value)
	}
	hw.raw(">")
	hw.text(label)
	hw.raw("</button>")
	return hw.err
}
