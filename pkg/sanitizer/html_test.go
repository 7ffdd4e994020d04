package sanitizer_test

import (
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ultralight/pkg/sanitizer"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		`<p>Hello</p><script>alert('x')</script>`:   "Hello",
		`<p>Hello <strong>world</strong></p>`:       "Hello world",
		`<img src="x" onerror="alert('x')">`:        "",
		`<a href="javascript:alert('x')">click</a>`: "click",
		`plain & simple`:                            "plain &amp; simple",
		``:                                          "",
	} {
		require.Equal(t, want, sanitizer.StripHTML(in), in)
	}
}

func TestSanitizeHTML(t *testing.T) {
	t.Parallel()

	out := sanitizer.SanitizeHTML(`<p onclick="x()">Hi <em>there</em></p><a href="https://example.com">link</a><a href="javascript:x()">bad</a><iframe src="https://evil"></iframe><h1>big</h1>`)
	require.Contains(t, out, "<p>Hi <em>there</em></p>")
	require.Contains(t, out, `<a href="https://example.com" rel="nofollow">link</a>`)
	require.NotContains(t, out, "onclick")
	require.NotContains(t, out, "javascript")
	require.NotContains(t, out, "iframe")
	require.NotContains(t, out, "<h1>")
	require.Contains(t, out, "big")
}

func TestRegister(t *testing.T) {
	t.Parallel()

	p := bluemonday.NewPolicy()
	p.AllowElements("mark")
	sanitizer.Register("highlight", p)

	got, ok := sanitizer.Policy("highlight")
	require.True(t, ok)
	require.Same(t, p, got)

	type snippet struct {
		Text string `sanitize:"highlight,trim"`
	}
	s := snippet{Text: " <mark>hit</mark><b>x</b> "}
	require.NoError(t, sanitizer.SanitizeStruct(&s))
	require.Equal(t, "<mark>hit</mark>x", s.Text)

	_, ok = sanitizer.Policy("missing")
	require.False(t, ok)
}

func TestSanitizeHTMLCustom(t *testing.T) {
	t.Parallel()

	require.Equal(t, "<b>x</b>", sanitizer.SanitizeHTMLCustom("<b>x</b>", nil))
	require.Equal(t, "x", sanitizer.SanitizeHTMLCustom("<b>x</b>", bluemonday.StrictPolicy()))
}
