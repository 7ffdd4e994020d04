package diff

import (
	"strings"
	"unicode"
)

// Op is the kind of change a Chunk represents.
type Op uint8

const (
	Equal Op = iota
	Insert
	Delete
)

func (o Op) String() string {
	switch o {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return "equal"
	}
}

// Chunk is a run of tokens sharing one Op.
type Chunk struct {
	Tokens []string
	Op     Op
}

// Text joins the chunk's tokens.
func (c Chunk) Text() string { return strings.Join(c.Tokens, "") }

// Diff compares two token sequences. It takes the longest run of tokens both
// sides share, keeps it, and diffs what lies before and after it the same
// way. Deletions precede insertions where a region changed.
func Diff(a, b []string) []Chunk {
	var out []Chunk
	appendChunks(&out, a, b)
	return out
}

func appendChunks(out *[]Chunk, a, b []string) {
	// Common prefix and suffix are cheap to strip before the quadratic search.
	p := 0
	for p < len(a) && p < len(b) && a[p] == b[p] {
		p++
	}
	s := 0
	for s < len(a)-p && s < len(b)-p && a[len(a)-1-s] == b[len(b)-1-s] {
		s++
	}
	emit(out, Equal, a[:p])
	mid(out, a[p:len(a)-s], b[p:len(b)-s])
	emit(out, Equal, a[len(a)-s:])
}

func mid(out *[]Chunk, a, b []string) {
	if len(a) == 0 || len(b) == 0 {
		emit(out, Delete, a)
		emit(out, Insert, b)
		return
	}

	ai, bi, n := longestRun(a, b)
	if n == 0 {
		emit(out, Delete, a)
		emit(out, Insert, b)
		return
	}
	appendChunks(out, a[:ai], b[:bi])
	emit(out, Equal, a[ai:ai+n])
	appendChunks(out, a[ai+n:], b[bi+n:])
}

// longestRun finds the longest common contiguous run, preferring the
// earliest one in a.
func longestRun(a, b []string) (ai, bi, n int) {
	positions := make(map[string][]int, len(b))
	for j, tok := range b {
		positions[tok] = append(positions[tok], j)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i, tok := range a {
		clear(cur)
		for _, j := range positions[tok] {
			l := prev[j] + 1
			cur[j+1] = l
			if l > n {
				n, ai, bi = l, i-l+1, j-l+1
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, n
}

func emit(out *[]Chunk, op Op, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	if last := len(*out) - 1; last >= 0 && (*out)[last].Op == op {
		(*out)[last].Tokens = append((*out)[last].Tokens, tokens...)
		return
	}
	*out = append(*out, Chunk{Op: op, Tokens: append([]string(nil), tokens...)})
}

// Words diffs two texts word by word. Whitespace and punctuation runs are
// tokens of their own, so joining all chunks of one side restores it exactly.
func Words(a, b string) []Chunk {
	return Diff(SplitWords(a), SplitWords(b))
}

// Lines diffs two texts line by line. Tokens keep their trailing newline.
func Lines(a, b string) []Chunk {
	return Diff(SplitLines(a), SplitLines(b))
}

// Chars diffs two strings rune by rune.
func Chars(a, b string) []Chunk {
	return Diff(splitRunes(a), splitRunes(b))
}

// SplitWords tokenizes s into words, whitespace runs and single punctuation runes.
func SplitWords(s string) []string {
	var (
		tokens []string
		start  = -1
		class  int
	)
	for i, r := range s {
		c := runeClass(r)
		if start >= 0 && (c != class || c == classPunct) {
			tokens = append(tokens, s[start:i])
			start = -1
		}
		if start < 0 {
			start, class = i, c
		}
	}
	if start >= 0 {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

const (
	classWord = iota
	classSpace
	classPunct
)

func runeClass(r rune) int {
	switch {
	case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
		return classWord
	case unicode.IsSpace(r):
		return classSpace
	default:
		return classPunct
	}
}

// SplitLines splits s after each newline.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
