package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/ultralight"
	"github.com/dmitrymomot/ultralight/pkg/color"
	"github.com/dmitrymomot/ultralight/pkg/dispatch"
	"github.com/dmitrymomot/ultralight/pkg/view"
)

const defaultColor = "#0d6efd"

// Colors shows shades and a hue scheme for a base color: /colors/3366cc,
// /colors?c=rebeccapurple or /colors?c=hsl(200,60%,40%).
type Colors struct{ *blog }

func (cl *Colors) Actions() map[string]ultralight.HandlerFunc {
	return map[string]ultralight.HandlerFunc{"GET index": cl.index}
}

// baseColor reads the color from the first argument or ?c=. Bare hex digits
// get their # back since it cannot appear in a path.
func baseColor(c ultralight.Context) (color.Color, error) {
	raw := c.QueryDefault("c", dispatch.Arg(c, 0))
	if raw == "" {
		raw = defaultColor
	}
	if l := len(raw); (l == 3 || l == 6) && strings.Trim(strings.ToLower(raw), "0123456789abcdef") == "" {
		raw = "#" + raw
	}
	return color.Parse(raw)
}

func swatch(label string, col color.Color) view.Data {
	return view.Data{
		"label": label,
		"hex":   col.Hex(),
		"hsl":   col.HSLString(),
		"text":  col.TextColor().Hex(),
	}
}

func (cl *Colors) index(c ultralight.Context) error {
	base, err := baseColor(c)
	if err != nil {
		return ultralight.ErrBadRequest("unknown color", ultralight.WithError(err))
	}

	var shades, scheme []view.Data
	for i, s := range base.Shades(9) {
		shades = append(shades, swatch(strconv.Itoa((i+1)*100), s))
	}
	for i, s := range base.Scheme(5) {
		scheme = append(scheme, swatch(strconv.Itoa(i*72)+"°", s))
	}
	related := []view.Data{
		swatch("base", base),
		swatch("complement", base.Complement()),
		swatch("lighter", base.Lighten(0.15)),
		swatch("darker", base.Darken(0.15)),
		swatch("muted", base.Desaturate(0.3)),
		swatch("gray", base.Grayscale()),
	}

	data := view.Data{
		"title":    "Colors for " + base.Hex(),
		"base":     base.Hex(),
		"hsl":      base.HSLString(),
		"contrast": fmt.Sprintf("%.2f", base.Contrast(base.TextColor())),
	}
	for key, set := range map[string][]view.Data{"shades": shades, "scheme": scheme, "related": related} {
		html, err := cl.each(c, "colors/_swatch.html", set)
		if err != nil {
			return err
		}
		data[key] = html
	}
	return cl.render(c, http.StatusOK, "colors/index.html", data)
}
