package imaging

import "errors"

var (
	ErrInvalidSize       = errors.New("imaging: invalid target size")
	ErrUnsupportedFormat = errors.New("imaging: unsupported format")
	ErrTooLarge          = errors.New("imaging: image too large")
	ErrDecode            = errors.New("imaging: failed to decode image")
	ErrEncode            = errors.New("imaging: failed to encode image")
)
