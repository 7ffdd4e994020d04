package bootstrap

import (
	"strconv"

	"github.com/a-h/templ"
)

// Variant is a Bootstrap contextual color.
type Variant string

const (
	Primary   Variant = "primary"
	Secondary Variant = "secondary"
	Success   Variant = "success"
	Danger    Variant = "danger"
	Warning   Variant = "warning"
	Info      Variant = "info"
	Light     Variant = "light"
	Dark      Variant = "dark"
)

func (v Variant) or(def Variant) Variant {
	if v == "" {
		return def
	}
	return v
}

// Alert renders an alert box. A dismissible alert gets a close button.
func Alert(v Variant, message string, dismissible bool) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.open("div", "alert", "alert-"+string(v.or(Info)), templ.KV("alert-dismissible fade show", dismissible))
		hw.attr("role", "alert")
		hw.raw(">")
		hw.text(message)
		if dismissible {
			hw.raw(`<button type="button" class="btn-close" data-bs-dismiss="alert" aria-label="Close"></button>`)
		}
		hw.raw("</div>")
	})
}

// Badge renders an inline label.
func Badge(v Variant, text string) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.open("span", "badge", "text-bg-"+string(v.or(Secondary)))
		hw.raw(">")
		hw.text(text)
		hw.raw("</span>")
	})
}

// Size selects a button size. The zero value is the default size.
type Size string

const (
	Small Size = "sm"
	Large Size = "lg"
)

// ButtonOption configures Button and ButtonLink.
type ButtonOption func(*button)

type button struct {
	variant  Variant
	size     Size
	outline  bool
	disabled bool
	typ      string
	class    string
}

// WithVariant sets the button color.
func WithVariant(v Variant) ButtonOption { return func(b *button) { b.variant = v } }

// WithSize sets the button size.
func WithSize(s Size) ButtonOption { return func(b *button) { b.size = s } }

// Outline renders the outline style of the variant.
func Outline() ButtonOption { return func(b *button) { b.outline = true } }

// Disabled marks the button disabled.
func Disabled() ButtonOption { return func(b *button) { b.disabled = true } }

// WithType sets the type attribute of a <button>. Defaults to "button".
func WithType(t string) ButtonOption { return func(b *button) { b.typ = t } }

// WithClass appends extra classes.
func WithClass(class string) ButtonOption { return func(b *button) { b.class = class } }

func newButton(opts []ButtonOption) *button {
	b := &button{variant: Primary, typ: "button"}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *button) classes() string {
	style := "btn-" + string(b.variant)
	if b.outline {
		style = "btn-outline-" + string(b.variant)
	}
	size := ""
	if b.size != "" {
		size = "btn-" + string(b.size)
	}
	return join("btn", style, size, b.class)
}

// Button renders a <button> element.
func Button(label string, opts ...ButtonOption) templ.Component {
	b := newButton(opts)
	return component(func(hw *htmlWriter) {
		hw.raw("<button")
		hw.attr("type", b.typ)
		hw.attr("class", b.classes())
		if b.disabled {
			hw.raw(" disabled")
		}
		hw.raw(">")
		hw.text(label)
		hw.raw("</button>")
	})
}

// ButtonLink renders an anchor styled as a button.
func ButtonLink(label, url string, opts ...ButtonOption) templ.Component {
	b := newButton(opts)
	return component(func(hw *htmlWriter) {
		hw.raw("<a")
		hw.href(url)
		cls := b.classes()
		if b.disabled {
			cls += " disabled"
		}
		hw.attr("class", cls)
		hw.attr("role", "button")
		if b.disabled {
			hw.attr("aria-disabled", "true")
		}
		hw.raw(">")
		hw.text(label)
		hw.raw("</a>")
	})
}

// Card renders a card. Empty title and nil footer are omitted.
func Card(title string, body, footer templ.Component) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<div class="card"><div class="card-body">`)
		if title != "" {
			hw.raw(`<h5 class="card-title">`)
			hw.text(title)
			hw.raw("</h5>")
		}
		hw.child(body)
		hw.raw("</div>")
		if footer != nil {
			hw.raw(`<div class="card-footer">`)
			hw.child(footer)
			hw.raw("</div>")
		}
		hw.raw("</div>")
	})
}

// Table renders a striped table. Cells are escaped text.
func Table(headers []string, rows [][]string) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<table class="table table-striped">`)
		if len(headers) > 0 {
			hw.raw("<thead><tr>")
			for _, h := range headers {
				hw.raw(`<th scope="col">`)
				hw.text(h)
				hw.raw("</th>")
			}
			hw.raw("</tr></thead>")
		}
		hw.raw("<tbody>")
		for _, row := range rows {
			hw.raw("<tr>")
			for _, cell := range row {
				hw.raw("<td>")
				hw.text(cell)
				hw.raw("</td>")
			}
			hw.raw("</tr>")
		}
		hw.raw("</tbody></table>")
	})
}

// Link is an entry of Breadcrumb or Nav.
type Link struct {
	Label  string
	URL    string
	Active bool
}

// Breadcrumb renders a breadcrumb trail. The last link is the current page.
func Breadcrumb(links ...Link) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<nav aria-label="breadcrumb"><ol class="breadcrumb">`)
		for i, l := range links {
			if i == len(links)-1 {
				hw.raw(`<li class="breadcrumb-item active" aria-current="page">`)
				hw.text(l.Label)
				hw.raw("</li>")
				continue
			}
			hw.raw(`<li class="breadcrumb-item"><a`)
			hw.href(l.URL)
			hw.raw(">")
			hw.text(l.Label)
			hw.raw("</a></li>")
		}
		hw.raw("</ol></nav>")
	})
}

// Nav renders a nav of links, styled as "tabs", "pills" or plain when style is empty.
func Nav(style string, links ...Link) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.open("ul", "nav", templ.KV("nav-"+style, style != ""))
		hw.raw(">")
		for _, l := range links {
			hw.raw(`<li class="nav-item"><a`)
			hw.attr("class", join("nav-link", activeClass(l.Active)))
			hw.href(l.URL)
			if l.Active {
				hw.attr("aria-current", "page")
			}
			hw.raw(">")
			hw.text(l.Label)
			hw.raw("</a></li>")
		}
		hw.raw("</ul>")
	})
}

func activeClass(on bool) string {
	if on {
		return "active"
	}
	return ""
}

// PageWindow is the number of page links shown around the current page.
const PageWindow = 2

// Pagination renders page links for page current of total. url builds the
// link of a page. Nothing is rendered when total is below 2.
func Pagination(current, total int, url func(page int) string) templ.Component {
	return component(func(hw *htmlWriter) {
		if total < 2 {
			return
		}
		current = min(max(current, 1), total)
		hw.raw(`<nav aria-label="pagination"><ul class="pagination">`)
		pageItem(hw, "Previous", url(current-1), current == 1, false)
		for _, p := range Pages(current, total, PageWindow) {
			if p == 0 {
				hw.raw(`<li class="page-item disabled"><span class="page-link">&hellip;</span></li>`)
				continue
			}
			pageItem(hw, strconv.Itoa(p), url(p), false, p == current)
		}
		pageItem(hw, "Next", url(current+1), current == total, false)
		hw.raw("</ul></nav>")
	})
}

func pageItem(hw *htmlWriter, label, url string, disabled, active bool) {
	hw.open("li", "page-item", templ.KV("disabled", disabled), templ.KV("active", active))
	hw.raw(">")
	if disabled {
		hw.raw(`<span class="page-link">`)
		hw.text(label)
		hw.raw("</span></li>")
		return
	}
	hw.raw(`<a class="page-link"`)
	hw.href(url)
	if active {
		hw.attr("aria-current", "page")
	}
	hw.raw(">")
	hw.text(label)
	hw.raw("</a></li>")
}

// Pages lists the page numbers to link for current of total: the first and
// last pages plus window pages on each side of current. A 0 marks a gap.
func Pages(current, total, window int) []int {
	if total < 1 {
		return nil
	}
	current = min(max(current, 1), total)
	var pages []int
	last := 0
	for p := 1; p <= total; p++ {
		if p != 1 && p != total && (p < current-window || p > current+window) {
			continue
		}
		if last != 0 && p-last > 1 {
			pages = append(pages, 0)
		}
		pages = append(pages, p)
		last = p
	}
	return pages
}
