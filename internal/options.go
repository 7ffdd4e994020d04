package internal

import (
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/ultralight/pkg/cookie"
	"github.com/dmitrymomot/ultralight/pkg/health"
	"github.com/dmitrymomot/ultralight/pkg/job"
	"github.com/dmitrymomot/ultralight/pkg/logger"
	"github.com/dmitrymomot/ultralight/pkg/storage"
)

type Option func(*App)

// WithMiddleware appends app-wide middleware. It runs before routing, so
// MethodOverride can change the matched route.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) { a.middlewares = append(a.middlewares, mw...) }
}

func WithHandlers(h ...Handler) Option {
	return func(a *App) { a.handlers = append(a.handlers, h...) }
}

// WithStaticFiles serves subDir of fsys under pattern, without directory
// listings. It panics when subDir is not a valid path.
//
//	//go:embed public
//	var assets embed.FS
//
//	ultralight.WithStaticFiles("/static/", assets, "public")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		sub, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(fmt.Sprintf("static files %q: %v", subDir, err))
		}
		a.mounts = append(a.mounts, mount{pattern: pattern, handler: staticHandler(sub)})
	}
}

// WithErrorHandler replaces DefaultErrorHandler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) { a.onError = h }
}

func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) { a.notFound = h }
}

func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) { a.notAllow = h }
}

// WithHealthChecks serves /health/live and /health/ready:
//
//	ultralight.WithHealthChecks(
//	    ultralight.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    ultralight.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        health.Checks{},
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.health = cfg
	}
}

// WithLogger logs JSON to stdout tagged with component. Extractors add
// request-scoped attributes such as request_id.
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger uses l as is, for example one built by logger.FromConfig.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCookieOptions configures the cookie manager behind c.Cookie and
// friends. Signed cookies, flash messages and CSRF need cookie.WithSecret.
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(a *App) { a.cookies = cookie.New(opts...) }
}

// WithJobs runs workers in this process and lets actions enqueue. It panics
// when the manager cannot be built.
//
//	ultralight.WithJobs(pool,
//	    job.WithTask(imaging.NewThumbnailTask(store, 320, 240)),
//	    job.WithScheduledTask(cache.NewPurgeTask(pages)),
//	)
func WithJobs(pool *pgxpool.Pool, opts ...job.Option) Option {
	return func(a *App) {
		m, err := job.NewManager(pool, opts...)
		if err != nil {
			panic(fmt.Sprintf("job manager: %v", err))
		}
		a.jobs, a.worker = m, m
	}
}

// WithJobEnqueuer lets actions enqueue jobs that another process works.
func WithJobEnqueuer(pool *pgxpool.Pool, opts ...job.EnqueuerOption) Option {
	return func(a *App) {
		e, err := job.NewEnqueuer(pool, opts...)
		if err != nil {
			panic(fmt.Sprintf("job enqueuer: %v", err))
		}
		a.jobs = e
	}
}

// WithJobWorker works jobs without exposing Enqueue to actions.
func WithJobWorker(pool *pgxpool.Pool, opts ...job.Option) Option {
	return func(a *App) {
		m, err := job.NewManager(pool, opts...)
		if err != nil {
			panic(fmt.Sprintf("job worker: %v", err))
		}
		a.worker = m
	}
}

// WithJobManager uses a manager built by the caller, for example one shared
// with a readiness check. The app starts and stops it.
func WithJobManager(m *job.Manager) Option {
	return func(a *App) { a.jobs, a.worker = m, m }
}

// WithStorage sets the store behind c.Upload, c.Download, c.DeleteFile and
// c.FileURL: storage.S3 in production, storage.Dir on a single box.
func WithStorage(s storage.Storage) Option {
	return func(a *App) { a.storage = s }
}
