// Package sanitizer cleans user-supplied HTML with bluemonday policies.
//
// Policies are registered by name. "strip" removes all markup, "html" keeps
// basic formatting for comments and "markdown" keeps what rendered markdown
// needs. The view package runs the md filter through SanitizeMarkdownHTML;
// form.Bind runs SanitizeStruct so fields tagged `sanitize:"strip,trim"` are
// cleaned before validation.
package sanitizer
