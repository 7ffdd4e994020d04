package slug_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ultralight/pkg/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		opts     []slug.Option
		expected string
	}{
		{name: "words", input: "Hello, World!", expected: "hello-world"},
		{name: "numbers", input: "Price: $99.99", expected: "price-99-99"},
		{name: "whitespace", input: "  Line1\nLine2\tTabbed  ", expected: "line1-line2-tabbed"},
		{name: "empty", input: "", expected: ""},
		{name: "symbols only", input: "!@#$%^&*()", expected: ""},
		{name: "diacritics", input: "Château façade élève", expected: "chateau-facade-eleve"},
		{name: "german", input: "Über Größe straße", expected: "uber-grose-strase"},
		{name: "polish", input: "Zażółć gęślą jaźń", expected: "zazolc-gesla-jazn"},
		{name: "ligatures", input: "Æsop œuvre", expected: "asop-ouvre"},
		{name: "emoji", input: "Hello 😀 World 🌍", expected: "hello-world"},
		{name: "url", input: "https://example.com/a", expected: "https-example-com-a"},
		{name: "repeated separators", input: "Too---Many---Dashes", expected: "too-many-dashes"},
		{name: "keep case", input: "Hello World", opts: []slug.Option{slug.Lowercase(false)}, expected: "Hello-World"},
		{name: "separator", input: "Hello World", opts: []slug.Option{slug.Separator("_")}, expected: "hello_world"},
		{name: "no separator", input: "No Separator", opts: []slug.Option{slug.Separator("")}, expected: "noseparator"},
		{name: "max length", input: "This is a very long title", opts: []slug.Option{slug.MaxLength(14)}, expected: "this-is-a-very"},
		{name: "max length on separator", input: "Cut off cleanly", opts: []slug.Option{slug.MaxLength(8)}, expected: "cut-off"},
		{name: "zero max length", input: "Not truncated", opts: []slug.Option{slug.MaxLength(0)}, expected: "not-truncated"},
		{name: "strip", input: "Remove (these) [chars]", opts: []slug.Option{slug.StripChars("()[]")}, expected: "remove-these-chars"},
		{
			name:     "replace",
			input:    "Fish & Chips @ Home",
			opts:     []slug.Option{slug.CustomReplace(map[string]string{"&": "and", "@": "at"})},
			expected: "fish-and-chips-at-home",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, slug.Make(tt.input, tt.opts...))
		})
	}
}

func TestMake_Suffix(t *testing.T) {
	t.Parallel()

	t.Run("random suffix", func(t *testing.T) {
		t.Parallel()
		a := slug.Make("Same Title", slug.WithSuffix(6))
		b := slug.Make("Same Title", slug.WithSuffix(6))
		require.Regexp(t, `^same-title-[a-z0-9]{6}$`, a)
		require.NotEqual(t, a, b)
	})

	t.Run("suffix respects max length", func(t *testing.T) {
		t.Parallel()
		s := slug.Make("A rather long title", slug.WithSuffix(4), slug.MaxLength(13))
		require.LessOrEqual(t, len(s), 13)
		require.Regexp(t, `^a-rather-[a-z0-9]{4}$`, s)
	})

	t.Run("mixed case alphabet", func(t *testing.T) {
		t.Parallel()
		s := slug.Make("Title", slug.WithSuffix(8), slug.Lowercase(false))
		require.Regexp(t, `^Title-[A-Za-z0-9]{8}$`, s)
	})

	t.Run("no suffix on empty slug", func(t *testing.T) {
		t.Parallel()
		require.Empty(t, slug.Make("!!!", slug.WithSuffix(6)))
	})
}

func TestMake_Reserved(t *testing.T) {
	t.Parallel()

	s := slug.Make("ADMIN", slug.ReservedSlugs("Admin", "api"))
	require.True(t, strings.HasPrefix(s, "admin-"), s)
	require.Len(t, strings.TrimPrefix(s, "admin-"), 6)

	s = slug.Make("api", slug.ReservedSlugs("api"), slug.Separator("_"), slug.WithSuffix(3))
	require.Regexp(t, `^api_[a-z0-9]{3}$`, s)

	require.Equal(t, "product", slug.Make("product", slug.ReservedSlugs("admin")))
	require.Equal(t, "admin", slug.Make("admin", slug.ReservedSlugs()))
}

func TestMake_MinLength(t *testing.T) {
	t.Parallel()

	s := slug.Make("dog", slug.MinLength(10))
	require.Len(t, s, 10)
	require.True(t, strings.HasPrefix(s, "dog-"), s)

	require.Equal(t, "long-enough", slug.Make("Long enough", slug.MinLength(5)))
	require.Empty(t, slug.Make("", slug.MinLength(5)))
}
