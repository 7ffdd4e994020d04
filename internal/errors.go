package internal

import (
	"errors"
	"log/slog"
	"net/http"
)

// ErrStartupHook is returned by Run when a startup hook fails.
var ErrStartupHook = errors.New("ultralight: startup hook failed")

// HTTPError is returned by actions to choose the response status. Message
// is shown to the user; Err is only logged.
type HTTPError struct {
	Err       error
	Message   string
	Title     string
	Detail    string
	ErrorCode string
	RequestID string
	Code      int
}

func (e *HTTPError) Error() string   { return e.Message }
func (e *HTTPError) Unwrap() error   { return e.Err }
func (e *HTTPError) StatusCode() int { return e.Code }

// StatusText returns Title, or the standard text for Code.
func (e *HTTPError) StatusText() string {
	if e.Title != "" {
		return e.Title
	}
	return http.StatusText(e.Code)
}

type HTTPErrorOption func(*HTTPError)

// NewHTTPError builds an HTTPError. An empty message falls back to the
// status text.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithTitle(title string) HTTPErrorOption {
	return func(e *HTTPError) { e.Title = title }
}

func WithDetail(detail string) HTTPErrorOption {
	return func(e *HTTPError) { e.Detail = detail }
}

// WithErrorCode sets a machine-readable code for API clients.
func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) { e.ErrorCode = code }
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) { e.RequestID = id }
}

// WithError attaches the underlying cause.
func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) { e.Err = err }
}

func statusError(code int) func(string, ...HTTPErrorOption) *HTTPError {
	return func(message string, opts ...HTTPErrorOption) *HTTPError {
		return NewHTTPError(code, message, opts...)
	}
}

var (
	ErrBadRequest         = statusError(http.StatusBadRequest)
	ErrUnauthorized       = statusError(http.StatusUnauthorized)
	ErrForbidden          = statusError(http.StatusForbidden)
	ErrNotFound           = statusError(http.StatusNotFound)
	ErrConflict           = statusError(http.StatusConflict)
	ErrUnprocessable      = statusError(http.StatusUnprocessableEntity)
	ErrInternal           = statusError(http.StatusInternalServerError)
	ErrServiceUnavailable = statusError(http.StatusServiceUnavailable)
)

func IsHTTPError(err error) bool { return AsHTTPError(err) != nil }

// AsHTTPError finds an *HTTPError in err's chain, or returns nil.
func AsHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	return nil
}

// DefaultErrorHandler writes an HTTPError's status and message as text.
// Other errors become a bare 500. Server errors are logged.
func DefaultErrorHandler(c Context, err error) error {
	he := AsHTTPError(err)
	if he == nil {
		he = NewHTTPError(http.StatusInternalServerError, "", WithError(err))
	}
	if he.Code >= http.StatusInternalServerError {
		c.LogError("request failed", slog.Int("status", he.Code), slog.Any("error", err))
	}
	return c.String(he.Code, he.Message)
}

// handleError logs instead of writing when the response already started.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		a.logger.ErrorContext(c, "handler error after response was written", slog.Any("error", err))
		return
	}
	h := a.onError
	if h == nil {
		h = DefaultErrorHandler
	}
	if herr := h(c, err); herr != nil {
		a.logger.ErrorContext(c, "error handler failed", slog.Any("error", errors.Join(err, herr)))
	}
}
