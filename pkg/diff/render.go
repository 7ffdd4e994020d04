package diff

import (
	"fmt"
	"html"
	"strings"
)

// Stats counts changed tokens.
type Stats struct {
	Equal    int
	Inserted int
	Deleted  int
}

// Similarity is the share of tokens left unchanged, from 0 to 1. Two empty
// inputs are identical.
func (s Stats) Similarity() float64 {
	total := s.Equal*2 + s.Inserted + s.Deleted
	if total == 0 {
		return 1
	}
	return float64(s.Equal*2) / float64(total)
}

// Changed reports whether anything was inserted or deleted.
func (s Stats) Changed() bool { return s.Inserted > 0 || s.Deleted > 0 }

// StatsOf counts the tokens in chunks.
func StatsOf(chunks []Chunk) Stats {
	var s Stats
	for _, c := range chunks {
		switch c.Op {
		case Equal:
			s.Equal += len(c.Tokens)
		case Insert:
			s.Inserted += len(c.Tokens)
		case Delete:
			s.Deleted += len(c.Tokens)
		}
	}
	return s
}

// HTML renders chunks with deletions in <del> and insertions in <ins>.
// Text is escaped.
func HTML(chunks []Chunk) string {
	var sb strings.Builder
	for _, c := range chunks {
		text := html.EscapeString(c.Text())
		switch c.Op {
		case Insert:
			sb.WriteString("<ins>" + text + "</ins>")
		case Delete:
			sb.WriteString("<del>" + text + "</del>")
		default:
			sb.WriteString(text)
		}
	}
	return sb.String()
}

// Unified renders a line diff with "+", "-" and " " prefixes, the way patch
// tools show it without hunk headers.
func Unified(chunks []Chunk) string {
	var sb strings.Builder
	for _, c := range chunks {
		prefix := " "
		switch c.Op {
		case Insert:
			prefix = "+"
		case Delete:
			prefix = "-"
		}
		for _, line := range c.Tokens {
			fmt.Fprintf(&sb, "%s%s", prefix, line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n\\ No newline at end of file\n")
			}
		}
	}
	return sb.String()
}

// Old reassembles the first input from chunks.
func Old(chunks []Chunk) string { return side(chunks, Insert) }

// New reassembles the second input from chunks.
func New(chunks []Chunk) string { return side(chunks, Delete) }

func side(chunks []Chunk, skip Op) string {
	var sb strings.Builder
	for _, c := range chunks {
		if c.Op != skip {
			sb.WriteString(c.Text())
		}
	}
	return sb.String()
}
