package slug

import (
	"crypto/rand"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	defaultSuffixLength = 6
	lowerAlphabet       = "abcdefghijklmnopqrstuvwxyz0123456789"
	mixedAlphabet       = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Letters that do not decompose into a base letter plus a combining mark.
var foldings = map[rune]string{
	'ß': "s", 'ẞ': "s",
	'æ': "a", 'Æ': "a",
	'œ': "o", 'Œ': "o",
	'ø': "o", 'Ø': "o",
	'ł': "l", 'Ł': "l",
	'đ': "d", 'Đ': "d",
	'ð': "d", 'Ð': "d",
	'þ': "th", 'Þ': "th",
	'ı': "i",
}

type config struct {
	replace   map[string]string
	reserved  map[string]struct{}
	separator string
	strip     string
	maxLength int
	minLength int
	suffix    int
	lowercase bool
}

// Option configures Make.
type Option func(*config)

// MaxLength caps the slug length in runes. Zero or less means no limit.
func MaxLength(n int) Option { return func(c *config) { c.maxLength = n } }

// MinLength pads short slugs with a random suffix until they reach n runes.
func MinLength(n int) Option { return func(c *config) { c.minLength = n } }

// Separator sets the string placed between words. Default "-".
func Separator(s string) Option { return func(c *config) { c.separator = s } }

// Lowercase toggles lowercasing. Default true.
func Lowercase(v bool) Option { return func(c *config) { c.lowercase = v } }

// StripChars removes every listed character before slugifying.
func StripChars(chars string) Option { return func(c *config) { c.strip = chars } }

// CustomReplace applies literal replacements before slugifying.
func CustomReplace(m map[string]string) Option { return func(c *config) { c.replace = m } }

// WithSuffix appends a random alphanumeric suffix of n characters.
func WithSuffix(n int) Option { return func(c *config) { c.suffix = n } }

// ReservedSlugs forces a random suffix onto any slug matching one of the
// given values, compared case-insensitively.
func ReservedSlugs(slugs ...string) Option {
	return func(c *config) {
		if c.reserved == nil {
			c.reserved = make(map[string]struct{}, len(slugs))
		}
		for _, s := range slugs {
			c.reserved[strings.ToLower(s)] = struct{}{}
		}
	}
}

// Make converts s into a URL-safe slug.
func Make(s string, opts ...Option) string {
	cfg := config{separator: "-", lowercase: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	for from, to := range cfg.replace {
		s = strings.ReplaceAll(s, from, " "+to+" ")
	}
	if cfg.strip != "" {
		s = strings.Map(func(r rune) rune {
			if strings.ContainsRune(cfg.strip, r) {
				return -1
			}
			return r
		}, s)
	}

	words := split(fold(s), cfg.lowercase)
	out := strings.Join(words, cfg.separator)
	out = truncate(out, cfg.separator, cfg.maxLength)

	suffix := cfg.suffix
	if _, ok := cfg.reserved[strings.ToLower(out)]; ok && out != "" && suffix == 0 {
		suffix = defaultSuffixLength
	}
	if suffix == 0 && cfg.minLength > 0 && out != "" {
		if missing := cfg.minLength - utf8.RuneCountInString(out) - utf8.RuneCountInString(cfg.separator); missing > 0 {
			suffix = missing
		}
	}
	if suffix > 0 && out != "" {
		out = appendSuffix(out, cfg, suffix)
	}
	return out
}

func fold(s string) string {
	var b strings.Builder
	for _, r := range s {
		if f, ok := foldings[r]; ok {
			b.WriteString(f)
			continue
		}
		b.WriteRune(r)
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, b.String())
	if err != nil {
		return b.String()
	}
	return folded
}

// split keeps ASCII letters and digits; everything else breaks words.
func split(s string, lower bool) []string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	if lower {
		for i, w := range words {
			words[i] = strings.ToLower(w)
		}
	}
	return words
}

func truncate(s, sep string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	s = string([]rune(s)[:max])
	if sep != "" {
		for strings.HasSuffix(s, sep) {
			s = strings.TrimSuffix(s, sep)
		}
	}
	return s
}

func appendSuffix(s string, cfg config, n int) string {
	if cfg.maxLength > 0 {
		room := cfg.maxLength - utf8.RuneCountInString(cfg.separator) - n
		if room < 1 {
			// Not even one rune of the base fits, shorten the suffix instead.
			n = cfg.maxLength - utf8.RuneCountInString(cfg.separator) - 1
			if n < 1 {
				return truncate(s, cfg.separator, cfg.maxLength)
			}
			room = 1
		}
		s = truncate(s, cfg.separator, room)
	}
	alphabet := lowerAlphabet
	if !cfg.lowercase {
		alphabet = mixedAlphabet
	}
	return s + cfg.separator + randomString(n, alphabet)
}

func randomString(n int, alphabet string) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic("slug: crypto/rand failed: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf)
}
