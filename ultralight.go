package ultralight

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/ultralight/internal"
	"github.com/dmitrymomot/ultralight/pkg/cookie"
	"github.com/dmitrymomot/ultralight/pkg/health"
	"github.com/dmitrymomot/ultralight/pkg/job"
	"github.com/dmitrymomot/ultralight/pkg/logger"
	"github.com/dmitrymomot/ultralight/pkg/storage"
)

// Type aliases - public API
type (
	// App orchestrates routing, middleware and graceful shutdown.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// Component is anything that renders itself to a writer: templ
	// components and view templates alike.
	Component = internal.Component

	// ValidationErrors maps a field name to its validation messages.
	ValidationErrors = internal.ValidationErrors

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// HTTPError carries a status code and a user-facing message.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor

	// CookieOption configures the cookie manager.
	CookieOption = cookie.Option

	// ResponseWriter wraps http.ResponseWriter and tracks status and size.
	ResponseWriter = internal.ResponseWriter

	// Extractor reads a value from the first source that has it.
	Extractor = internal.Extractor

	// ExtractorSource reads one value from a request.
	ExtractorSource = internal.ExtractorSource

	// JobOption configures the job manager.
	JobOption = job.Option

	// EnqueueOption configures job enqueueing.
	EnqueueOption = job.EnqueueOption

	// EnqueuerOption configures the job enqueuer.
	EnqueuerOption = job.EnqueuerOption

	// JobManager handles background job processing.
	JobManager = job.Manager

	// Storage is the file storage used by Context.Upload and friends.
	Storage = storage.Storage

	// ServerConfig holds HTTP server timeouts, loadable from the environment.
	ServerConfig = internal.ServerConfig

	// Scalar lists the types Param, Query and QueryDefault can parse.
	Scalar = internal.Scalar
)

// New creates a new application with the given options.
//
// Example:
//
//	app := ultralight.New(
//	    ultralight.WithLogger("blog"),
//	    ultralight.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    ultralight.WithHandlers(dispatch.New(dispatch.WithRoutes(routes...), dispatch.WithControllers(articles))),
//	)
//
//	err := app.Run(":8080")
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// App options

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithStaticFiles mounts a static file handler at the given pattern.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	ultralight.WithStaticFiles("/static/", assets, "public")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithErrorHandler sets a custom error handler for handler errors.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithHealthChecks enables liveness and readiness endpoints.
//
// Example:
//
//	ultralight.WithHealthChecks(
//	    ultralight.WithReadinessCheck("db", database.Ping),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger creates a JSON logger tagged with a component name.
// Extractors add request-scoped values such as the request ID.
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithCookieOptions configures the cookie manager used for signed cookies,
// flash messages and CSRF tokens.
func WithCookieOptions(opts ...CookieOption) Option {
	return internal.WithCookieOptions(opts...)
}

// WithStorage sets the file storage used by Context.Upload, Download,
// DeleteFile and FileURL.
func WithStorage(s Storage) Option {
	return internal.WithStorage(s)
}

// Health check options

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// DefaultServerConfig returns the timeouts Run uses when none are given.
func DefaultServerConfig() ServerConfig {
	return internal.DefaultServerConfig()
}

// WithServerConfig applies server timeouts, typically parsed with env.Parse.
// Zero fields keep their defaults.
func WithServerConfig(sc ServerConfig) RunOption {
	return internal.WithServerConfig(sc)
}

// Logger sets the server logger. Defaults to the application logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run after the port is bound and
// before serving requests. A failing hook stops the server.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
//
// Example:
//
//	ultralight.ShutdownHook(database.Shutdown())
//
// Hooks run in reverse registration order.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets the base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Context helpers

// ContextValue retrieves a typed value stored with Context.Set.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param returns a typed URL parameter, or the zero value when it is
// missing or malformed.
func Param[T Scalar](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query returns a typed query parameter, or the zero value.
func Query[T Scalar](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault returns a typed query parameter or defaultValue.
//
// Example:
//
//	page := ultralight.QueryDefault(c, "page", 1)
func QueryDefault[T Scalar](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

// Extractors

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }

// FromForm reads a form field.
func FromForm(name string) ExtractorSource { return internal.FromForm(name) }

// FromParam reads a URL parameter.
func FromParam(name string) ExtractorSource { return internal.FromParam(name) }

// FromCookie reads a plain cookie.
func FromCookie(name string) ExtractorSource { return internal.FromCookie(name) }

// FromCookieSigned reads a signed cookie.
func FromCookieSigned(name string) ExtractorSource { return internal.FromCookieSigned(name) }

// FromCookieEncrypted reads an encrypted cookie.
func FromCookieEncrypted(name string) ExtractorSource { return internal.FromCookieEncrypted(name) }

// Errors

// NewHTTPError creates an HTTPError with the given status and message.
// An empty message falls back to the status text.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// AsHTTPError extracts an HTTPError from err, or returns nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// IsHTTPError reports whether err wraps an HTTPError.
func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

// Status error constructors.
var (
	ErrBadRequest         = internal.ErrBadRequest
	ErrUnauthorized       = internal.ErrUnauthorized
	ErrForbidden          = internal.ErrForbidden
	ErrNotFound           = internal.ErrNotFound
	ErrConflict           = internal.ErrConflict
	ErrUnprocessable      = internal.ErrUnprocessable
	ErrInternal           = internal.ErrInternal
	ErrServiceUnavailable = internal.ErrServiceUnavailable
)

// WithErrorCode sets a machine-readable code for API clients.
func WithErrorCode(code string) HTTPErrorOption {
	return internal.WithErrorCode(code)
}

// WithErrorTitle overrides the status text shown with the error.
func WithErrorTitle(title string) HTTPErrorOption {
	return internal.WithTitle(title)
}

// WithError attaches the underlying error to an HTTPError for logging.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// DefaultErrorHandler is the error handler used when none is configured.
func DefaultErrorHandler(c Context, err error) error {
	return internal.DefaultErrorHandler(c, err)
}

// ErrStartupHook is returned by Run when a startup hook fails.
var ErrStartupHook = internal.ErrStartupHook

// Cookie options

// WithCookieSecret sets the secret for signing and encryption.
// Must be at least 32 bytes.
func WithCookieSecret(secret string) CookieOption {
	return cookie.WithSecret(secret)
}

// WithPreviousCookieSecrets keeps old secrets valid for reading while
// new cookies use the current one.
func WithPreviousCookieSecrets(secrets ...string) CookieOption {
	return cookie.WithPreviousSecrets(secrets...)
}

// WithCookiePath sets the cookie path.
func WithCookiePath(path string) CookieOption {
	return cookie.WithPath(path)
}

// WithCookieSecure sets the Secure flag.
func WithCookieSecure(secure bool) CookieOption {
	return cookie.WithSecure(secure)
}

// WithCookieSameSite sets the SameSite attribute.
func WithCookieSameSite(ss http.SameSite) CookieOption {
	return cookie.WithSameSite(ss)
}

// Cookie errors for checking return values.
var (
	ErrCookieNotFound = cookie.ErrNotFound
	ErrCookieNoSecret = cookie.ErrNoSecret
	ErrCookieBadSig   = cookie.ErrBadSig
)

// Jobs

// WithJobs enables job enqueueing and worker processing on River.
// Workers start with the server and stop during shutdown.
//
// Example:
//
//	ultralight.WithJobs(pool,
//	    ultralight.WithTask(imaging.NewThumbnailTask(store, 320, 240)),
//	    ultralight.WithScheduledTask(cache.NewPurgeTask(pageCache)),
//	)
func WithJobs(pool *pgxpool.Pool, opts ...JobOption) Option {
	return internal.WithJobs(pool, opts...)
}

// WithJobEnqueuer enables enqueueing only, for web processes whose jobs
// run elsewhere.
func WithJobEnqueuer(pool *pgxpool.Pool, opts ...EnqueuerOption) Option {
	return internal.WithJobEnqueuer(pool, opts...)
}

// WithJobWorker enables job processing without enqueueing.
func WithJobWorker(pool *pgxpool.Pool, opts ...JobOption) Option {
	return internal.WithJobWorker(pool, opts...)
}

// WithJobManager uses a caller-built manager for enqueueing and processing.
func WithJobManager(m *JobManager) Option {
	return internal.WithJobManager(m)
}

// WithTask registers a task; its payload type is inferred from Handle.
func WithTask[P any](task job.Task[P]) JobOption {
	return job.WithTask(task)
}

// WithScheduledTask registers a periodic task with a cron Schedule().
func WithScheduledTask(task job.ScheduledTask) JobOption {
	return job.WithScheduledTask(task)
}

// WithJobQueue configures a named queue with the given worker count.
func WithJobQueue(name string, workers int) JobOption {
	return job.WithQueue(name, workers)
}

// InQueue puts the job into a named queue.
func InQueue(name string) EnqueueOption {
	return job.InQueue(name)
}

// ScheduledIn delays the job by d.
func ScheduledIn(d time.Duration) EnqueueOption {
	return job.ScheduledIn(d)
}

// UniqueFor deduplicates the job for d.
func UniqueFor(d time.Duration) EnqueueOption {
	return job.UniqueFor(d)
}

// Job errors for checking return values.
var (
	ErrJobNotConfigured  = job.ErrNotConfigured
	ErrJobUnknownTask    = job.ErrUnknownTask
	ErrJobInvalidPayload = job.ErrInvalidPayload
)

// JobHealthcheck returns a readiness check for the job manager.
func JobHealthcheck(m *JobManager) health.CheckFunc {
	return job.Healthcheck(m)
}
