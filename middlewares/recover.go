package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dmitrymomot/ultralight/internal"
)

// MaxStackSize bounds the stack kept on a PanicError.
const MaxStackSize = 8 << 10

// PanicError is returned by Recover in place of a panicking action.
type PanicError struct {
	Value  any
	Method string
	Path   string
	Stack  []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// IsPanicError reports whether err wraps a *PanicError.
func IsPanicError(err error) bool {
	_, ok := AsPanicError(err)
	return ok
}

func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	ok := errors.As(err, &pe)
	return pe, ok
}

type recoverConfig struct {
	stack bool
}

type RecoverOption func(*recoverConfig)

// WithoutStack skips stack capture.
func WithoutStack() RecoverOption {
	return func(cfg *recoverConfig) { cfg.stack = false }
}

// Recover converts a panic in an action into a *PanicError for the error
// handler, which renders it as a 500. http.ErrAbortHandler is re-raised so
// the server can abort the connection.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := recoverConfig{stack: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				req := c.Request()
				pe := &PanicError{Value: v, Method: req.Method, Path: req.URL.Path}
				attrs := []any{"panic", v, "method", pe.Method, "path", pe.Path}
				if cfg.stack {
					pe.Stack = debug.Stack()
					if len(pe.Stack) > MaxStackSize {
						pe.Stack = pe.Stack[:MaxStackSize]
					}
					attrs = append(attrs, "stack", string(pe.Stack))
				}
				c.LogError("panic recovered", attrs...)
				err = pe
			}()
			return next(c)
		}
	}
}
