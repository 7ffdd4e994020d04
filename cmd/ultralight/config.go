package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/ultralight"
	"github.com/dmitrymomot/ultralight/middlewares"
	"github.com/dmitrymomot/ultralight/pkg/db"
	"github.com/dmitrymomot/ultralight/pkg/logger"
	"github.com/dmitrymomot/ultralight/pkg/redis"
	"github.com/dmitrymomot/ultralight/pkg/storage"
)

// config is read from the environment. Without DATABASE_URL the blog runs on
// SQLite, without REDIS_URL the page cache stays in memory and without a
// bucket uploads go to UPLOAD_DIR.
type config struct {
	Server  ultralight.ServerConfig
	Log     logger.Config
	DB      db.Config
	Redis   redis.Config
	Storage storage.Config

	SiteTitle    string        `env:"SITE_TITLE" envDefault:"UltraLight"`
	BaseURL      string        `env:"BASE_URL" envDefault:"http://localhost:8080"`
	SQLitePath   string        `env:"SQLITE_PATH" envDefault:"ultralight.db"`
	UploadDir    string        `env:"UPLOAD_DIR" envDefault:"uploads"`
	TemplateDir  string        `env:"TEMPLATE_DIR"`
	CookieSecret string        `env:"COOKIE_SECRET"`
	PageCacheTTL time.Duration `env:"PAGE_CACHE_TTL" envDefault:"1m"`
	PerPage      int           `env:"ARTICLES_PER_PAGE" envDefault:"10"`
}

func loadConfig() (config, error) {
	cfg, err := env.ParseAs[config]()
	if err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config) (*slog.Logger, error) {
	l, err := logger.FromConfig(cfg.Log, os.Stderr, middlewares.RequestIDExtractor())
	if err != nil {
		return nil, err
	}
	return l.With("component", "ultralight"), nil
}
