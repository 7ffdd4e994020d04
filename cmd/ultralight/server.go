package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dmitrymomot/ultralight"
	"github.com/dmitrymomot/ultralight/middlewares"
	"github.com/dmitrymomot/ultralight/pkg/cache"
	"github.com/dmitrymomot/ultralight/pkg/dispatch"
	"github.com/dmitrymomot/ultralight/pkg/form"
	"github.com/dmitrymomot/ultralight/pkg/imaging"
	"github.com/dmitrymomot/ultralight/pkg/job"
	"github.com/dmitrymomot/ultralight/pkg/logger"
	"github.com/dmitrymomot/ultralight/pkg/redis"
	"github.com/dmitrymomot/ultralight/pkg/storage"
	"github.com/dmitrymomot/ultralight/pkg/view"
)

const (
	uploadsPath   = "/uploads"
	sentryFlush   = 2 * time.Second
	pagesPrefix   = "ultralight:pages"
	memoryPages   = 500
	purgeSchedule = "*/30 * * * *"
)

// server is the wired blog. hooks release what it opened and run on
// shutdown, or through close when the server never starts.
type server struct {
	app   *ultralight.App
	hooks []func(context.Context) error
}

func (s *server) onShutdown(fn func(context.Context) error) {
	s.hooks = append(s.hooks, fn)
}

// runOptions registers the hooks with Run, which calls them last to first.
func (s *server) runOptions() []ultralight.RunOption {
	opts := make([]ultralight.RunOption, 0, len(s.hooks))
	for _, h := range s.hooks {
		opts = append(opts, ultralight.ShutdownHook(h))
	}
	return opts
}

func (s *server) close(ctx context.Context) {
	for i := len(s.hooks) - 1; i >= 0; i-- {
		_ = s.hooks[i](ctx)
	}
}

func loadRoutes() ([]dispatch.Route, error) {
	return dispatch.LoadRoutesFile(assets, "assets/routes.yaml")
}

func newDispatcher(b *blog, routes []dispatch.Route, log *slog.Logger) *dispatch.Dispatcher {
	return dispatch.New(
		dispatch.WithRoutes(routes...),
		dispatch.WithControllers(b.controllers()...),
		dispatch.WithLogger(log),
	)
}

func templates(cfg config, log *slog.Logger) (*view.Engine, error) {
	opts := []view.Option{view.WithLayout("layout.html"), view.WithLogger(log)}
	if cfg.TemplateDir != "" {
		return view.New(os.DirFS(cfg.TemplateDir), append(opts, view.WithReload(cfg.TemplateDir))...)
	}
	sub, err := fs.Sub(assets, "assets/templates")
	if err != nil {
		return nil, err
	}
	return view.New(sub, opts...)
}

// cacheable limits the page cache to feeds and the calendar, which carry no
// per-visitor state.
func cacheable(c ultralight.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/feed") || p == "/calendar.ics"
}

// newServer wires the blog onto st. On error everything opened so far is
// closed again.
func newServer(ctx context.Context, cfg config, log *slog.Logger, st *store) (srv *server, err error) {
	srv = &server{}
	defer func() {
		if err != nil {
			srv.close(context.Background())
			srv = nil
		}
	}()

	if cfg.Log.SentryDSN != "" {
		srv.onShutdown(logger.FlushSentry(sentryFlush))
	}
	srv.onShutdown(st.shutdown())

	checks := []ultralight.HealthOption{ultralight.WithReadinessCheck("database", st.ping)}
	opts := []ultralight.Option{ultralight.WithCustomLogger(log)}

	views, err := templates(cfg, log)
	if err != nil {
		return srv, err
	}
	srv.onShutdown(func(context.Context) error { return views.Close() })

	var pages cache.Cache[middlewares.Page]
	if cfg.Redis.Enabled() {
		client, err := redis.Open(ctx, cfg.Redis.URL, cfg.Redis.Options()...)
		if err != nil {
			return srv, err
		}
		srv.onShutdown(redis.Shutdown(client))
		checks = append(checks, ultralight.WithReadinessCheck("redis", redis.Healthcheck(client)))
		pages = cache.NewRedis[middlewares.Page](client, nil, cache.WithPrefix(pagesPrefix))
	} else {
		mem := cache.NewMemory[middlewares.Page](cache.WithMaxEntries(memoryPages))
		srv.onShutdown(func(context.Context) error { return mem.Close() })
		pages = mem
	}

	var files storage.Storage
	if cfg.Storage.Enabled() {
		s3, err := storage.New(cfg.Storage)
		if err != nil {
			return srv, err
		}
		files = s3
	} else {
		dir, err := storage.NewDir(cfg.UploadDir, uploadsPath)
		if err != nil {
			return srv, err
		}
		srv.onShutdown(func(context.Context) error { return dir.Close() })
		opts = append(opts, ultralight.WithStaticFiles(uploadsPath+"/", dir.FS(), "."))
		files = dir
	}
	opts = append(opts, ultralight.WithStorage(files))

	thumbs := imaging.NewThumbnailTask(files, thumbWidth, thumbHeight, imaging.WithThumbnailLogger(log))
	if st.pool != nil {
		jobs, err := job.NewManager(st.pool,
			job.WithTask[imaging.ThumbnailPayload](thumbs),
			job.WithScheduledTask(cache.NewPurgeTask(pages, cache.WithPurgeSchedule(purgeSchedule))),
			job.WithLogger(log),
		)
		if err != nil {
			return srv, err
		}
		opts = append(opts, ultralight.WithJobManager(jobs))
		checks = append(checks, ultralight.WithReadinessCheck("jobs", ultralight.JobHealthcheck(jobs)))
	}

	secret := cfg.CookieSecret
	if secret == "" {
		secret = form.NewToken()
		log.Warn("COOKIE_SECRET is not set; sessions and flash messages will not survive a restart")
	}
	opts = append(opts, ultralight.WithCookieOptions(
		ultralight.WithCookieSecret(secret),
		ultralight.WithCookieSecure(strings.HasPrefix(cfg.BaseURL, "https://")),
	))

	routes, err := loadRoutes()
	if err != nil {
		return srv, err
	}
	b := newBlog(cfg, st.db, views, pages, thumbs)

	opts = append(opts,
		ultralight.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
			middlewares.MethodOverride(),
			middlewares.CSRF(),
			middlewares.Cache(pages, cfg.PageCacheTTL, middlewares.WithCacheSkip(func(c ultralight.Context) bool {
				return !cacheable(c)
			})),
		),
		ultralight.WithStaticFiles("/static/", assets, "assets/public"),
		ultralight.WithHandlers(newDispatcher(b, routes, log)),
		ultralight.WithErrorHandler(b.errorPage),
		ultralight.WithNotFoundHandler(func(c ultralight.Context) error {
			return b.errorPage(c, ultralight.ErrNotFound(""))
		}),
		ultralight.WithHealthChecks(checks...),
	)

	srv.app = ultralight.New(opts...)
	return srv, nil
}
