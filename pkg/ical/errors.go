package ical

import "errors"

var (
	ErrNoStart      = errors.New("ical: event start is required")
	ErrNoSummary    = errors.New("ical: event summary is required")
	ErrInvalidRange = errors.New("ical: event ends before it starts")
	ErrDecode       = errors.New("ical: failed to decode calendar")
)
