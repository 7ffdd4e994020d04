package feed

import "errors"

var (
	ErrUnknownFormat = errors.New("feed: unknown format")
	ErrNoTitle       = errors.New("feed: title is required")
	ErrNoLink        = errors.New("feed: link is required")
	ErrEncode        = errors.New("feed: failed to encode")
)
