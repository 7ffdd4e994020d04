package internal

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"
)

// ServerConfig holds the HTTP server settings. It is read from the
// environment with caarlos0/env.
type ServerConfig struct {
	Addr              string        `env:"HTTP_ADDR"`
	ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MaxHeaderBytes    int           `env:"HTTP_MAX_HEADER_BYTES" envDefault:"1048576"`
}

// DefaultServerConfig matches the envDefault tags.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ShutdownTimeout:   30 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

type RunOption func(*runConfig)

type runConfig struct {
	server   ServerConfig
	logger   *slog.Logger
	baseCtx  context.Context
	startup  []func(context.Context) error
	shutdown []func(context.Context) error
}

func newRunConfig(opts []RunOption) *runConfig {
	cfg := &runConfig{server: DefaultServerConfig(), baseCtx: context.Background()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithServerConfig replaces the server settings. A non-empty Addr overrides
// the address passed to Run; zero durations keep their defaults.
func WithServerConfig(sc ServerConfig) RunOption {
	return func(c *runConfig) {
		def := DefaultServerConfig()
		c.server = ServerConfig{
			Addr:              sc.Addr,
			ReadTimeout:       orDefault(sc.ReadTimeout, def.ReadTimeout),
			ReadHeaderTimeout: orDefault(sc.ReadHeaderTimeout, def.ReadHeaderTimeout),
			WriteTimeout:      orDefault(sc.WriteTimeout, def.WriteTimeout),
			IdleTimeout:       orDefault(sc.IdleTimeout, def.IdleTimeout),
			ShutdownTimeout:   orDefault(sc.ShutdownTimeout, def.ShutdownTimeout),
			MaxHeaderBytes:    orDefault(sc.MaxHeaderBytes, def.MaxHeaderBytes),
		}
	}
}

func orDefault[T time.Duration | int](v, def T) T {
	if v > 0 {
		return v
	}
	return def
}

// Logger sets the server lifecycle logger. Defaults to the app logger.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout bounds draining the server and running shutdown hooks.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.server.ShutdownTimeout = d
		}
	}
}

// StartupHook runs after the listener is bound and before requests are
// served. An error aborts Run with ErrStartupHook.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startup = append(c.startup, fn)
		}
	}
}

// ShutdownHook runs after the server drained. Hooks run in reverse order of
// registration, so resources opened first are closed last.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdown = append(c.shutdown, fn)
		}
	}
}

// WithContext sets the parent of the signal context. Cancelling it stops
// the server like a signal does.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}

func serve(h http.Handler, cfg *runConfig) error {
	sc := cfg.server
	if sc.Addr == "" {
		sc.Addr = ":8080"
	}
	log := cfg.logger

	srv := &http.Server{
		Addr:              sc.Addr,
		Handler:           h,
		ReadTimeout:       sc.ReadTimeout,
		ReadHeaderTimeout: sc.ReadHeaderTimeout,
		WriteTimeout:      sc.WriteTimeout,
		IdleTimeout:       sc.IdleTimeout,
		MaxHeaderBytes:    sc.MaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(cfg.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", sc.Addr)
	if err != nil {
		return err
	}
	for _, hook := range cfg.startup {
		if err := hook(ctx); err != nil {
			_ = ln.Close()
			log.Error("startup hook failed", slog.Any("error", err))
			return errors.Join(ErrStartupHook, err)
		}
	}

	served := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", ln.Addr().String()))
		served <- srv.Serve(ln)
	}()

	select {
	case err := <-served:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), sc.ShutdownTimeout)
	defer cancel()

	errs := []error{srv.Shutdown(sctx)}
	for _, hook := range slices.Backward(cfg.shutdown) {
		if err := hook(sctx); err != nil {
			log.Error("shutdown hook failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	log.Info("shutdown completed")
	return nil
}
