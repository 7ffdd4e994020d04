package view

import "errors"

var (
	ErrSyntax           = errors.New("view: malformed placeholder")
	ErrTemplateNotFound = errors.New("view: template not found")
	ErrUnknownFilter    = errors.New("view: unknown filter")
	ErrIncludeDepth     = errors.New("view: include depth exceeded")
	ErrNoEngine         = errors.New("view: includes need an engine")
	ErrWatch            = errors.New("view: failed to watch templates")
)
