package internal

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/ultralight/pkg/cookie"
	"github.com/dmitrymomot/ultralight/pkg/health"
	"github.com/dmitrymomot/ultralight/pkg/job"
	"github.com/dmitrymomot/ultralight/pkg/logger"
	"github.com/dmitrymomot/ultralight/pkg/storage"
)

// App owns the router and the services handed to every Context. It is
// configured once through New and read-only afterwards.
type App struct {
	router   chi.Router
	logger   *slog.Logger
	cookies  *cookie.Manager
	jobs     JobEnqueuer
	worker   *job.Manager
	storage  storage.Storage
	health   *healthConfig
	onError  ErrorHandler
	notFound HandlerFunc
	notAllow HandlerFunc

	middlewares []Middleware
	handlers    []Handler
	mounts      []mount
}

type mount struct {
	pattern string
	handler http.Handler
}

// New applies opts and builds the route table:
//
//	app := ultralight.New(
//	    ultralight.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    ultralight.WithHandlers(dispatcher),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:  chi.NewRouter(),
		logger:  logger.NewNope(),
		cookies: cookie.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.buildRoutes()
	return a
}

func (a *App) Router() chi.Router   { return a.router }
func (a *App) Logger() *slog.Logger { return a.logger }

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run serves on addr until SIGINT or SIGTERM. A job worker configured on the
// app starts before the first request and stops after the server drains.
//
//	err := app.Run(":8080", ultralight.ShutdownHook(db.Shutdown(pool)))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := newRunConfig(opts)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}
	if cfg.server.Addr == "" {
		cfg.server.Addr = addr
	}
	if a.worker != nil {
		cfg.startup = append([]func(context.Context) error{a.worker.StartFunc()}, cfg.startup...)
		cfg.shutdown = append(cfg.shutdown, a.worker.Shutdown())
	}
	return serve(a, cfg)
}

func (a *App) buildRoutes() {
	if a.notFound != nil {
		a.router.NotFound(a.handler(a.notFound))
	}
	if a.notAllow != nil {
		a.router.MethodNotAllowed(a.handler(a.notAllow))
	}
	for _, mw := range a.middlewares {
		a.router.Use(a.chiMiddleware(mw))
	}
	for _, m := range a.mounts {
		a.router.Mount(m.pattern, m.handler)
	}
	if h := a.health; h != nil {
		a.router.Get(h.livenessPath, health.LivenessHandler())
		a.router.Get(h.readinessPath, health.ReadinessHandler(h.checks, health.WithLogger(a.logger)))
	}

	r := &router{chi: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// handler adapts a HandlerFunc to net/http.
func (a *App) handler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// chiMiddleware lets a Middleware wrap mounted handlers and the dispatcher
// alike. The wrapped request carries any values the middleware Set.
func (a *App) chiMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return a.handler(mw(func(c Context) error {
			next.ServeHTTP(c.Response(), c.Request())
			return nil
		}))
	}
}

// staticHandler serves files from fsys without directory listings.
func staticHandler(fsys fs.FS) http.Handler {
	files := http.FileServerFS(fsys)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}
