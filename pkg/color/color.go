package color

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an sRGB color.
type Color struct {
	c colorful.Color
}

var (
	Black = RGB(0, 0, 0)
	White = RGB(255, 255, 255)
)

var named = map[string]string{
	"black": "#000000", "white": "#ffffff", "red": "#ff0000", "green": "#008000",
	"blue": "#0000ff", "yellow": "#ffff00", "orange": "#ffa500", "purple": "#800080",
	"gray": "#808080", "grey": "#808080", "silver": "#c0c0c0", "navy": "#000080",
	"teal": "#008080", "maroon": "#800000", "olive": "#808000", "lime": "#00ff00",
	"aqua": "#00ffff", "cyan": "#00ffff", "fuchsia": "#ff00ff", "magenta": "#ff00ff",
}

// RGB builds a color from 8-bit channels.
func RGB(r, g, b uint8) Color {
	return Color{colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}}
}

// HSL builds a color from hue in degrees and saturation and lightness in [0, 1].
func HSL(h, s, l float64) Color {
	return Color{colorful.Hsl(normHue(h), clamp01(s), clamp01(l)).Clamped()}
}

// Parse reads "#rgb", "#rrggbb", "rgb(r, g, b)", "hsl(h, s%, l%)" or a basic
// CSS color name.
func Parse(s string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if hex, ok := named[v]; ok {
		v = hex
	}

	switch {
	case strings.HasPrefix(v, "#"):
		if len(v) == 4 {
			v = string([]byte{'#', v[1], v[1], v[2], v[2], v[3], v[3]})
		}
		c, err := colorful.Hex(v)
		if err != nil || len(v) != 7 {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		return Color{c}, nil
	case strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")"):
		n, err := numbers(v[4:len(v)-1], false)
		if err != nil || n[0] > 255 || n[1] > 255 || n[2] > 255 {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		return RGB(uint8(n[0]), uint8(n[1]), uint8(n[2])), nil
	case strings.HasPrefix(v, "hsl(") && strings.HasSuffix(v, ")"):
		n, err := numbers(v[4:len(v)-1], true)
		if err != nil || n[1] > 100 || n[2] > 100 {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		return HSL(n[0], n[1]/100, n[2]/100), nil
	}
	return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Color {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func numbers(s string, percent bool) ([3]float64, error) {
	var out [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return out, ErrInvalidColor
	}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if percent && i > 0 {
			p = strings.TrimSuffix(p, "%")
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || f < 0 {
			return out, ErrInvalidColor
		}
		out[i] = f
	}
	return out, nil
}

// Hex returns "#rrggbb".
func (c Color) Hex() string { return c.c.Clamped().Hex() }

// String returns Hex.
func (c Color) String() string { return c.Hex() }

// RGB returns 8-bit channels.
func (c Color) RGB() (r, g, b uint8) { return c.c.Clamped().RGB255() }

// HSL returns hue in degrees and saturation and lightness in [0, 1].
func (c Color) HSL() (h, s, l float64) { return c.c.Hsl() }

// CSS returns the color in rgb() notation.
func (c Color) CSS() string {
	r, g, b := c.RGB()
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}

// HSLString returns the color in hsl() notation with whole numbers.
func (c Color) HSLString() string {
	h, s, l := c.HSL()
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", int(math.Round(h))%360, int(math.Round(s*100)), int(math.Round(l*100)))
}

// Lighten raises lightness by amount, an absolute step in [0, 1].
func (c Color) Lighten(amount float64) Color {
	h, s, l := c.HSL()
	return HSL(h, s, l+amount)
}

// Darken lowers lightness by amount.
func (c Color) Darken(amount float64) Color { return c.Lighten(-amount) }

// Saturate raises saturation by amount.
func (c Color) Saturate(amount float64) Color {
	h, s, l := c.HSL()
	return HSL(h, s+amount, l)
}

// Desaturate lowers saturation by amount.
func (c Color) Desaturate(amount float64) Color { return c.Saturate(-amount) }

// Grayscale removes all saturation.
func (c Color) Grayscale() Color {
	h, _, l := c.HSL()
	return HSL(h, 0, l)
}

// Rotate shifts the hue by deg degrees.
func (c Color) Rotate(deg float64) Color {
	h, s, l := c.HSL()
	return HSL(h+deg, s, l)
}

// Complement is the color opposite on the hue wheel.
func (c Color) Complement() Color { return c.Rotate(180) }

// Invert flips every channel.
func (c Color) Invert() Color {
	r, g, b := c.RGB()
	return RGB(255-r, 255-g, 255-b)
}

// Mix blends c toward o; t=0 gives c and t=1 gives o.
func (c Color) Mix(o Color, t float64) Color {
	return Color{c.c.BlendRgb(o.c, clamp01(t)).Clamped()}
}

// Luminance is the WCAG relative luminance in [0, 1].
func (c Color) Luminance() float64 {
	r, g, b := c.c.Clamped().LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// Contrast is the WCAG contrast ratio between c and o, from 1 to 21.
func (c Color) Contrast(o Color) float64 {
	a, b := c.Luminance(), o.Luminance()
	if a < b {
		a, b = b, a
	}
	return (a + 0.05) / (b + 0.05)
}

// TextColor picks black or white, whichever reads better on c.
func (c Color) TextColor() Color {
	if c.Contrast(Black) >= c.Contrast(White) {
		return Black
	}
	return White
}

// IsDark reports whether white text reads better on c than black.
func (c Color) IsDark() bool { return c.TextColor() == White }

// Distance is the CIEDE2000 perceptual distance between two colors.
func (c Color) Distance(o Color) float64 { return c.c.DistanceCIEDE2000(o.c) }

// Shades returns n colors from c's lightest to darkest tint, keeping hue and
// saturation.
func (c Color) Shades(n int) []Color {
	if n <= 0 {
		return nil
	}
	h, s, _ := c.HSL()
	out := make([]Color, n)
	for i := range n {
		l := 0.95 - 0.85*float64(i)/math.Max(1, float64(n-1))
		out[i] = HSL(h, s, l)
	}
	return out
}

// Scheme returns n colors with c's saturation and lightness spread evenly
// around the hue wheel, starting at c.
func (c Color) Scheme(n int) []Color {
	out := make([]Color, 0, max(n, 0))
	for i := range max(n, 0) {
		out = append(out, c.Rotate(360*float64(i)/float64(n)))
	}
	return out
}

// Palette returns n distinct soft colors for charts and tags. Results are
// random.
func Palette(n int) ([]Color, error) {
	cs, err := colorful.SoftPalette(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	out := make([]Color, len(cs))
	for i, x := range cs {
		out[i] = Color{x}
	}
	return out, nil
}

// MarshalText encodes the color as hex, so colors can be stored as text
// columns and JSON strings.
func (c Color) MarshalText() ([]byte, error) { return []byte(c.Hex()), nil }

// UnmarshalText parses any form Parse accepts.
func (c *Color) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }

func normHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}
