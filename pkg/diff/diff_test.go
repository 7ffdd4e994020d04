package diff_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ultralight/pkg/diff"
)

func TestWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		html string
	}{
		{name: "identical", a: "same text", b: "same text", html: "same text"},
		{name: "replace word", a: "The quick brown fox", b: "The slow brown fox", html: "The <del>quick</del><ins>slow</ins> brown fox"},
		{name: "append", a: "Hello", b: "Hello, world", html: "Hello<ins>, world</ins>"},
		{name: "remove", a: "a b c", b: "a c", html: "a <del>b </del>c"},
		{name: "from empty", a: "", b: "new", html: "<ins>new</ins>"},
		{name: "to empty", a: "old", b: "", html: "<del>old</del>"},
		{name: "escaped", a: "1 < 2", b: "1 < 3", html: "1 &lt; <del>2</del><ins>3</ins>"},
		{name: "moved run", a: "x one two three y", b: "one two three x y", html: "<del>x </del>one two three<ins> x</ins> y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			chunks := diff.Words(tt.a, tt.b)
			require.Equal(t, tt.html, diff.HTML(chunks))
			require.Equal(t, tt.a, diff.Old(chunks))
			require.Equal(t, tt.b, diff.New(chunks))
		})
	}
}

func TestDiff_MergesChunks(t *testing.T) {
	t.Parallel()

	chunks := diff.Diff([]string{"a", "b", "c"}, []string{"x", "y", "c"})
	require.Equal(t, []diff.Chunk{
		{Op: diff.Delete, Tokens: []string{"a", "b"}},
		{Op: diff.Insert, Tokens: []string{"x", "y"}},
		{Op: diff.Equal, Tokens: []string{"c"}},
	}, chunks)
	require.Nil(t, diff.Diff(nil, nil))
}

func TestLines(t *testing.T) {
	t.Parallel()

	a := "one\ntwo\nthree\n"
	b := "one\n2\nthree\nfour"
	chunks := diff.Lines(a, b)
	require.Equal(t, " one\n-two\n+2\n three\n+four\n\\ No newline at end of file\n", diff.Unified(chunks))
	require.Equal(t, b, diff.New(chunks))

	require.Equal(t, []string{"a\n", "b"}, diff.SplitLines("a\nb"))
	require.Nil(t, diff.SplitLines(""))
}

func TestChars(t *testing.T) {
	t.Parallel()

	chunks := diff.Chars("colour", "color")
	require.Equal(t, "colo<del>u</del>r", diff.HTML(chunks))
}

func TestSplitWords(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"Hi", ",", "  ", "you", "!", "!"}, diff.SplitWords("Hi,  you!!"))
	require.Equal(t, []string{"naïve", " ", "café_2"}, diff.SplitWords("naïve café_2"))
}

func TestStats(t *testing.T) {
	t.Parallel()

	s := diff.StatsOf(diff.Words("a b c d", "a b x d"))
	require.Equal(t, diff.Stats{Equal: 6, Inserted: 1, Deleted: 1}, s)
	require.True(t, s.Changed())
	require.InDelta(t, 12.0/14.0, s.Similarity(), 1e-9)

	require.Equal(t, 1.0, diff.Stats{}.Similarity())
	require.False(t, diff.StatsOf(diff.Words("x", "x")).Changed())
	require.Equal(t, "insert", diff.Insert.String())
}
