package internal

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/ultralight/pkg/cookie"
	"github.com/dmitrymomot/ultralight/pkg/job"
	"github.com/dmitrymomot/ultralight/pkg/model"
	"github.com/dmitrymomot/ultralight/pkg/storage"
)

// ValidationErrors maps field names to validation messages.
type ValidationErrors = model.ValidationErrors

// Component renders itself to w. templ components and view templates both
// satisfy it.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// Handler declares its routes on a Router. dispatch.Dispatcher is one.
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is a controller action. A returned error goes to the app's
// ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc:
//
//	func AdminOnly(next ultralight.HandlerFunc) ultralight.HandlerFunc {
//	    return func(c ultralight.Context) error {
//	        if _, err := c.CookieSigned("admin"); err != nil {
//	            return c.Redirect(http.StatusFound, "/login")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders an error returned by a HandlerFunc.
type ErrorHandler func(Context, error) error

// Context is the per-request handle passed to actions. It is also a
// context.Context bound to the request.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter
	ResponseWriter() *ResponseWriter
	Context() context.Context

	// Param returns a path parameter, "" when absent.
	Param(name string) string
	Query(name string) string
	QueryDefault(name, defaultValue string) string
	QueryValues() url.Values
	Form(name string) string
	FormFile(name string) (multipart.File, *multipart.FileHeader, error)
	Header(name string) string
	SetHeader(name, value string)

	JSON(code int, v any) error
	String(code int, s string) error
	HTML(code int, html string) error
	Blob(code int, contentType string, data []byte) error
	NoContent(code int) error
	Redirect(code int, url string) error
	// Render writes component as text/html.
	Render(code int, component Component) error
	// Error builds an HTTPError for the action to return. Nothing is written.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError
	// Written reports whether the response has started.
	Written() bool

	// Bind decodes the submitted form into v and validates its model tags.
	// Validation failures come back as ValidationErrors with a nil error.
	Bind(v any) (ValidationErrors, error)

	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a request-scoped value, visible through Get and
	// Context().Value.
	Set(key any, value any)
	Get(key any) any

	Cookie(name string) (string, error)
	SetCookie(name, value string, maxAge int)
	DeleteCookie(name string)
	// Signed, encrypted and flash cookies return cookie.ErrNoSecret without
	// a cookie secret.
	CookieSigned(name string) (string, error)
	SetCookieSigned(name, value string, maxAge int) error
	CookieEncrypted(name string) (string, error)
	SetCookieEncrypted(name, value string, maxAge int) error
	Flash(key string, dest any) error
	SetFlash(key string, value any) error

	// Enqueue returns job.ErrNotConfigured unless the app was built with a
	// job option.
	Enqueue(name string, payload any, opts ...job.EnqueueOption) error
	// EnqueueTx inserts the job inside tx; it runs only after commit.
	EnqueueTx(tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error

	// Storage and the file helpers return storage.ErrNotConfigured unless
	// WithStorage was used.
	Storage() (storage.Storage, error)
	Upload(r io.Reader, size int64, opts ...storage.Option) (*storage.FileInfo, error)
	Download(key string) (io.ReadCloser, error)
	DeleteFile(key string) error
	FileURL(key string, opts ...storage.URLOption) (string, error)
}

type requestContext struct {
	request *http.Request
	rw      *ResponseWriter
	app     *App
}

// newContext reuses w when it is already a *ResponseWriter so middleware and
// the action agree on Written.
func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}
	return &requestContext{request: r, rw: rw, app: app}
}

func (c *requestContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *requestContext) Done() <-chan struct{}       { return c.request.Context().Done() }
func (c *requestContext) Err() error                  { return c.request.Context().Err() }
func (c *requestContext) Value(key any) any           { return c.request.Context().Value(key) }

func (c *requestContext) Request() *http.Request          { return c.request }
func (c *requestContext) Response() http.ResponseWriter   { return c.rw }
func (c *requestContext) ResponseWriter() *ResponseWriter { return c.rw }
func (c *requestContext) Context() context.Context        { return c.request.Context() }

func (c *requestContext) Param(name string) string { return chi.URLParam(c.request, name) }
func (c *requestContext) Query(name string) string { return c.request.URL.Query().Get(name) }
func (c *requestContext) QueryValues() url.Values  { return c.request.URL.Query() }
func (c *requestContext) Form(name string) string  { return c.request.FormValue(name) }
func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return defaultValue
}

func (c *requestContext) FormFile(name string) (multipart.File, *multipart.FileHeader, error) {
	return c.request.FormFile(name)
}

func (c *requestContext) SetHeader(name, value string) { c.rw.Header().Set(name, value) }

func (c *requestContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

func (c *requestContext) Get(key any) any { return c.request.Context().Value(key) }

func (c *requestContext) Logger() *slog.Logger { return c.app.logger }

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.app.logger.DebugContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.app.logger.InfoContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.app.logger.WarnContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.app.logger.ErrorContext(c.Context(), msg, attrs...)
}

func (c *requestContext) cookies() *cookie.Manager { return c.app.cookies }
