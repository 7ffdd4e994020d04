package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Built-in policy names usable in `sanitize` tags.
const (
	PolicyStrip    = "strip"
	PolicyHTML     = "html"
	PolicyMarkdown = "markdown"
)

var (
	policiesMu sync.RWMutex
	policies   = map[string]*bluemonday.Policy{
		PolicyStrip:    bluemonday.StrictPolicy(),
		PolicyHTML:     basicPolicy(),
		PolicyMarkdown: markdownPolicy(),
	}
)

// basicPolicy keeps inline formatting, lists, quotes, code and links.
func basicPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowElements("p", "br", "strong", "b", "em", "i", "ul", "ol", "li", "code", "pre", "blockquote")
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	return p
}

// markdownPolicy allows what goldmark emits, including fenced code
// language classes.
func markdownPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre")
	p.RequireNoFollowOnLinks(true)
	return p
}

// Register adds or replaces a named policy. The name becomes a rule in
// `sanitize` struct tags.
func Register(name string, p *bluemonday.Policy) {
	policiesMu.Lock()
	defer policiesMu.Unlock()
	policies[name] = p
}

// Policy returns the policy registered under name.
func Policy(name string) (*bluemonday.Policy, bool) {
	policiesMu.RLock()
	defer policiesMu.RUnlock()
	p, ok := policies[name]
	return p, ok
}

func sanitize(name, s string) string {
	p, _ := Policy(name)
	return p.Sanitize(s)
}

// StripHTML removes all markup and returns the text.
func StripHTML(s string) string { return sanitize(PolicyStrip, s) }

// SanitizeHTML keeps basic formatting and links for user comments.
func SanitizeHTML(s string) string { return sanitize(PolicyHTML, s) }

// SanitizeMarkdownHTML cleans HTML rendered from markdown.
func SanitizeMarkdownHTML(s string) string { return sanitize(PolicyMarkdown, s) }

// SanitizeHTMLCustom applies policy, or returns s unchanged when it is nil.
func SanitizeHTMLCustom(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}
