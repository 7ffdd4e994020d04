package color_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ultralight/pkg/color"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"#0d6efd":             "#0d6efd",
		"  #ABC ":             "#aabbcc",
		"rgb(255, 0, 0)":      "#ff0000",
		"hsl(120, 100%, 50%)": "#00ff00",
		"Navy":                "#000080",
	}
	for in, want := range tests {
		c, err := color.Parse(in)
		require.NoError(t, err, in)
		require.Equal(t, want, c.Hex(), in)
	}

	for _, in := range []string{"", "#12", "#12345g", "rgb(300, 0, 0)", "rgb(1, 2)", "hsl(0, 120%, 50%)", "blurple"} {
		_, err := color.Parse(in)
		require.ErrorIs(t, err, color.ErrInvalidColor, in)
	}
}

func TestConversions(t *testing.T) {
	t.Parallel()

	red := color.RGB(255, 0, 0)
	h, s, l := red.HSL()
	require.InDelta(t, 0, h, 1e-9)
	require.InDelta(t, 1, s, 1e-9)
	require.InDelta(t, 0.5, l, 1e-9)

	r, g, b := color.HSL(240, 1, 0.5).RGB()
	require.Equal(t, [3]uint8{0, 0, 255}, [3]uint8{r, g, b})

	require.Equal(t, "rgb(255, 0, 0)", red.CSS())
	require.Equal(t, "hsl(0, 100%, 50%)", red.HSLString())
	require.Equal(t, "#ff0000", red.String())
}

func TestAdjustments(t *testing.T) {
	t.Parallel()

	red := color.MustParse("red")

	require.Equal(t, "#333333", color.Black.Lighten(0.2).Hex())
	require.Equal(t, "#cccccc", color.White.Darken(0.2).Hex())
	require.Equal(t, "#ffffff", color.White.Lighten(0.5).Hex())
	require.Equal(t, "#00ff00", red.Rotate(120).Hex())
	require.Equal(t, "#0000ff", red.Rotate(-120).Hex())
	require.Equal(t, "#00ffff", red.Complement().Hex())
	require.Equal(t, "#00ffff", red.Invert().Hex())
	require.Equal(t, "#808080", color.Black.Mix(color.White, 0.5).Hex())
	require.Equal(t, "#808080", red.Desaturate(1).Hex())
	require.Equal(t, red.Desaturate(1), red.Grayscale())

	_, s, _ := red.Desaturate(0.5).Saturate(0.25).HSL()
	require.InDelta(t, 0.75, s, 1e-6)
}

func TestContrast(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 1, color.White.Luminance(), 1e-9)
	require.InDelta(t, 0, color.Black.Luminance(), 1e-9)
	require.InDelta(t, 21, color.Black.Contrast(color.White), 1e-9)
	require.InDelta(t, 21, color.White.Contrast(color.Black), 1e-9)

	require.Equal(t, color.White, color.MustParse("navy").TextColor())
	require.True(t, color.MustParse("navy").IsDark())
	require.Equal(t, color.Black, color.MustParse("yellow").TextColor())

	require.Zero(t, color.White.Distance(color.White))
	require.Greater(t, color.White.Distance(color.Black), 50.0)
}

func TestPalettes(t *testing.T) {
	t.Parallel()

	red := color.MustParse("#ff0000")
	scheme := red.Scheme(3)
	require.Len(t, scheme, 3)
	require.Equal(t, []string{"#ff0000", "#00ff00", "#0000ff"}, []string{scheme[0].Hex(), scheme[1].Hex(), scheme[2].Hex()})
	require.Empty(t, red.Scheme(0))

	shades := red.Shades(4)
	require.Len(t, shades, 4)
	for i := 1; i < len(shades); i++ {
		require.Less(t, shades[i].Luminance(), shades[i-1].Luminance())
	}
	require.Nil(t, red.Shades(0))

	p, err := color.Palette(5)
	require.NoError(t, err)
	require.Len(t, p, 5)
}

func TestText(t *testing.T) {
	t.Parallel()

	type theme struct {
		Primary color.Color `json:"primary"`
	}
	out, err := json.Marshal(theme{Primary: color.RGB(13, 110, 253)})
	require.NoError(t, err)
	require.JSONEq(t, `{"primary":"#0d6efd"}`, string(out))

	var th theme
	require.NoError(t, json.Unmarshal([]byte(`{"primary":"rgb(0, 128, 0)"}`), &th))
	require.Equal(t, "#008000", th.Primary.Hex())
	require.Error(t, json.Unmarshal([]byte(`{"primary":"nope"}`), &th))
}
