package middlewares

import (
	"bytes"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrymomot/ultralight/internal"
	"github.com/dmitrymomot/ultralight/pkg/cache"
)

// CacheHeader reports HIT or MISS for cacheable requests.
const CacheHeader = "X-Cache"

// Page is a cached response: body, content type and the headers the handler
// set, except per-response ones listed in uncachedHeaders.
type Page struct {
	Header      http.Header `json:"header,omitempty"`
	ContentType string      `json:"content_type"`
	Body        []byte      `json:"body"`
}

var uncachedHeaders = []string{
	"Content-Type", "Content-Length", "Date", "Set-Cookie", "X-Request-Id", CacheHeader,
}

// CacheConfig configures the page cache middleware.
type CacheConfig struct {
	Key  func(c internal.Context) string
	Skip func(c internal.Context) bool
	TTL  time.Duration
}

// CacheOption configures CacheConfig.
type CacheOption func(*CacheConfig)

// WithCacheKey sets the function deriving the cache key. Defaults to the
// request URI prefixed with "page:".
func WithCacheKey(fn func(c internal.Context) string) CacheOption {
	return func(cfg *CacheConfig) {
		cfg.Key = fn
	}
}

// WithCacheSkip bypasses the cache for requests where fn returns true.
func WithCacheSkip(fn func(c internal.Context) bool) CacheOption {
	return func(cfg *CacheConfig) {
		cfg.Skip = fn
	}
}

// Cache serves GET requests from store and stores successful responses for
// ttl. Only 200 responses are stored. Errors from the store never fail the
// request; they are logged at warn level.
func Cache(store cache.Cache[Page], ttl time.Duration, opts ...CacheOption) internal.Middleware {
	cfg := &CacheConfig{
		TTL: ttl,
		Key: func(c internal.Context) string {
			return "page:" + c.Request().URL.RequestURI()
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if c.Request().Method != http.MethodGet || (cfg.Skip != nil && cfg.Skip(c)) {
				return next(c)
			}

			key := cfg.Key(c)
			if p, err := store.Get(c, key); err == nil {
				h := c.Response().Header()
				for name, values := range p.Header {
					h[name] = slices.Clone(values)
				}
				c.SetHeader(CacheHeader, "HIT")
				return c.Blob(http.StatusOK, p.ContentType, p.Body)
			}

			rw := c.ResponseWriter()
			if rw == nil {
				return next(c)
			}
			var buf bytes.Buffer
			rw.Tee(&buf)
			c.SetHeader(CacheHeader, "MISS")

			if err := next(c); err != nil {
				return err
			}
			if !rw.Written() || rw.Status() != http.StatusOK {
				return nil
			}
			p := Page{
				Header:      storedHeader(rw.Header()),
				ContentType: rw.Header().Get("Content-Type"),
				Body:        buf.Bytes(),
			}
			if err := store.Set(c, key, p, cfg.TTL); err != nil {
				c.LogWarn("page cache store failed", "key", key, "error", err)
			}
			return nil
		}
	}
}

func storedHeader(h http.Header) http.Header {
	out := h.Clone()
	for _, name := range uncachedHeaders {
		out.Del(name)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
