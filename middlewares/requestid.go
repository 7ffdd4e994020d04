package middlewares

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/ultralight/internal"
	"github.com/dmitrymomot/ultralight/pkg/id"
	"github.com/dmitrymomot/ultralight/pkg/logger"
)

// MaxRequestIDLen caps accepted upstream request IDs.
const MaxRequestIDLen = 128

type requestIDKey struct{}

type requestIDConfig struct {
	generate func() string
	incoming []string
	outgoing string
}

type RequestIDOption func(*requestIDConfig)

// WithRequestIDHeaders replaces the headers searched, in order, for an
// upstream ID. No headers means an ID is always generated.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *requestIDConfig) { cfg.incoming = headers }
}

func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if gen != nil {
			cfg.generate = gen
		}
	}
}

// WithRequestIDResponseHeader renames the response header. An empty name
// keeps the ID out of the response.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *requestIDConfig) { cfg.outgoing = header }
}

// RequestID tags each request with an ID taken from X-Request-ID or
// X-Correlation-ID, or a new ULID. Upstream values that are too long or
// contain non-printable characters are replaced.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := requestIDConfig{
		generate: id.NewULID,
		incoming: []string{"X-Request-ID", "X-Correlation-ID"},
		outgoing: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			rid := ""
			for _, h := range cfg.incoming {
				if v := c.Header(h); validRequestID(v) {
					rid = v
					break
				}
			}
			if rid == "" {
				rid = cfg.generate()
			}

			c.Set(requestIDKey{}, rid)
			if cfg.outgoing != "" {
				c.SetHeader(cfg.outgoing, rid)
			}
			return next(c)
		}
	}
}

func validRequestID(s string) bool {
	if s == "" || len(s) > MaxRequestIDLen {
		return false
	}
	for i := range len(s) {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID returns the ID assigned by RequestID, or "".
func GetRequestID(c internal.Context) string {
	rid, _ := c.Get(requestIDKey{}).(string)
	return rid
}

// RequestIDExtractor adds request_id to records logged with a request
// context. Pass it to WithLogger.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		rid, _ := ctx.Value(requestIDKey{}).(string)
		return slog.String("request_id", rid), rid != ""
	}
}
