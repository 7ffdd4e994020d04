// Package logger builds slog loggers for UltraLight applications.
//
// FromConfig reads level and format from Config and optionally mirrors
// warnings and errors to Sentry. ContextExtractors add request-scoped
// attributes to every record written with a *Context logging method:
//
//	var cfg logger.Config
//	_ = env.Parse(&cfg)
//	log, err := logger.FromConfig(cfg, os.Stdout, middlewares.RequestIDExtractor())
//
// NewNope is the default for packages that accept an optional logger.
package logger
