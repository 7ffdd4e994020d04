package form

import "errors"

var (
	ErrNotPointer   = errors.New("form: destination must be a non-nil pointer to a struct")
	ErrDecode       = errors.New("form: failed to decode request")
	ErrInvalidTag   = errors.New("form: invalid form tag")
	ErrNoRenderer   = errors.New("form: no renderer for field type")
	ErrInvalidToken = errors.New("form: invalid csrf token")
)
