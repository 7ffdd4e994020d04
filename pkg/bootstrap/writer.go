package bootstrap

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// htmlWriter keeps the first write error so markup can be emitted without
// checking every call.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
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

func (hw *htmlWriter) open(tag string, classes ...any) {
	hw.raw("<" + tag)
	if cls := templ.Classes(classes...).String(); cls != "" {
		hw.attr("class", cls)
	}
}

func (hw *htmlWriter) href(url string) {
	hw.attr("href", string(templ.URL(url)))
}

// child renders a nested component inline.
func (hw *htmlWriter) child(c templ.Component) {
	if hw.err == nil && c != nil {
		hw.err = c.Render(hw.ctx, hw.w)
	}
}

func component(fn func(hw *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{ctx: ctx, w: w}
		fn(hw)
		return hw.err
	})
}

// Text wraps a plain string as an escaped component.
func Text(s string) templ.Component {
	return component(func(hw *htmlWriter) { hw.text(s) })
}

// Raw wraps trusted markup as a component. The markup is written unescaped.
func Raw(html string) templ.Component {
	return templ.Raw(html)
}

func join(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
