package middlewares

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/ultralight/internal"
	"github.com/dmitrymomot/ultralight/pkg/form"
)

// ErrInvalidCSRF is returned when an unsafe request carries no valid CSRF token.
var ErrInvalidCSRF = errors.New("middlewares: invalid csrf token")

type csrfKey struct{}

// CSRFConfig configures the CSRF middleware.
type CSRFConfig struct {
	CookieName string
	MaxAge     int
	Skip       func(c internal.Context) bool
	Token      internal.Extractor
}

// CSRFOption configures CSRFConfig.
type CSRFOption func(*CSRFConfig)

// WithCSRFCookie sets the name of the signed cookie holding the token.
func WithCSRFCookie(name string) CSRFOption {
	return func(cfg *CSRFConfig) {
		cfg.CookieName = name
	}
}

// WithCSRFMaxAge sets the token cookie lifetime in seconds.
func WithCSRFMaxAge(seconds int) CSRFOption {
	return func(cfg *CSRFConfig) {
		cfg.MaxAge = seconds
	}
}

// WithCSRFTokenSources replaces where the submitted token is read from.
func WithCSRFTokenSources(sources ...internal.ExtractorSource) CSRFOption {
	return func(cfg *CSRFConfig) {
		cfg.Token = internal.NewExtractor(sources...)
	}
}

// WithCSRFSkip exempts requests for which fn returns true, e.g. JSON APIs
// authenticated by other means.
func WithCSRFSkip(fn func(c internal.Context) bool) CSRFOption {
	return func(cfg *CSRFConfig) {
		cfg.Skip = fn
	}
}

// CSRF protects unsafe requests with the double-submit pattern. Every visitor
// gets a random token in a signed cookie; POST, PUT, PATCH and DELETE requests
// must echo it in the _csrf form field or the X-CSRF-Token header. Forms get
// the token through CSRFToken(c) and form.WithCSRF.
//
// The app needs a cookie secret (WithCookieOptions(cookie.WithSecret(...))).
func CSRF(opts ...CSRFOption) internal.Middleware {
	cfg := &CSRFConfig{
		CookieName: "_csrf",
		MaxAge:     86400,
		Token: internal.NewExtractor(
			internal.FromForm(form.CSRFField),
			internal.FromHeader(form.CSRFHeader),
		),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if cfg.Skip != nil && cfg.Skip(c) {
				return next(c)
			}

			token, err := c.CookieSigned(cfg.CookieName)
			if err != nil || token == "" {
				token = form.NewToken()
				if err := c.SetCookieSigned(cfg.CookieName, token, cfg.MaxAge); err != nil {
					return err
				}
			}
			c.Set(csrfKey{}, token)

			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				return next(c)
			}

			submitted, _ := cfg.Token.Extract(c)
			if err := form.VerifyToken(token, submitted); err != nil {
				c.LogWarn("csrf check failed", "path", c.Request().URL.Path)
				return internal.ErrForbidden("Invalid or missing CSRF token", internal.WithError(ErrInvalidCSRF))
			}
			return next(c)
		}
	}
}

// CSRFToken returns the token for the current request, or "" when the CSRF
// middleware is not installed.
func CSRFToken(c internal.Context) string {
	if v, ok := c.Get(csrfKey{}).(string); ok {
		return v
	}
	return ""
}
