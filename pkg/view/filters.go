package view

import (
	"bytes"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/ultralight/pkg/sanitizer"
	"github.com/dmitrymomot/ultralight/pkg/slug"
)

// Filter transforms a placeholder value. Returning HTML marks the result as
// safe; any other value is escaped on output.
type Filter func(v any) any

// DateLayout is the layout used by the "date" filter.
const DateLayout = "Jan 2, 2006"

var titleCaser = cases.Title(language.English)

func builtinFilters(md goldmark.Markdown) map[string]Filter {
	return map[string]Filter{
		"html":  func(v any) any { return v },
		"raw":   func(v any) any { return HTML(toString(v)) },
		"upper": func(v any) any { return strings.ToUpper(toString(v)) },
		"lower": func(v any) any { return strings.ToLower(toString(v)) },
		"trim":  func(v any) any { return strings.TrimSpace(toString(v)) },
		"title": func(v any) any { return titleCaser.String(toString(v)) },
		"url":   func(v any) any { return url.QueryEscape(toString(v)) },
		"slug":  func(v any) any { return slug.Make(toString(v)) },
		"strip": func(v any) any { return sanitizer.StripHTML(toString(v)) },
		"nl2br": func(v any) any {
			s := html.EscapeString(toString(v))
			s = strings.ReplaceAll(s, "\r\n", "\n")
			return HTML(strings.ReplaceAll(s, "\n", "<br>\n"))
		},
		"date": func(v any) any {
			switch t := v.(type) {
			case time.Time:
				return t.Format(DateLayout)
			case *time.Time:
				if t == nil {
					return ""
				}
				return t.Format(DateLayout)
			}
			return v
		},
		"md": func(v any) any {
			var buf bytes.Buffer
			if err := md.Convert([]byte(toString(v)), &buf); err != nil {
				return ""
			}
			return HTML(sanitizer.SanitizeMarkdownHTML(buf.String()))
		},
	}
}

func (e *Engine) filter(name string) (Filter, bool) {
	if e == nil {
		f, ok := defaultFilters[name]
		return f, ok
	}
	f, ok := e.filters[name]
	return f, ok
}

var defaultFilters = builtinFilters(goldmark.New())
