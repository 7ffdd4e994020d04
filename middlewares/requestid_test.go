package middlewares_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ultralight/internal"
	"github.com/dmitrymomot/ultralight/middlewares"
	"github.com/dmitrymomot/ultralight/pkg/logger"
)

func echoRequestID(r internal.Router) {
	r.GET("/", func(c internal.Context) error {
		return c.String(http.StatusOK, middlewares.GetRequestID(c))
	})
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		opts   []middlewares.RequestIDOption
		header map[string]string
		want   string
	}{
		{name: "upstream request id", header: map[string]string{"X-Request-ID": "abc-1"}, want: "abc-1"},
		{name: "correlation id", header: map[string]string{"X-Correlation-ID": "corr-1"}, want: "corr-1"},
		{
			name:   "custom generator ignores unknown header",
			opts:   []middlewares.RequestIDOption{middlewares.WithRequestIDGenerator(func() string { return "fixed" }), middlewares.WithRequestIDHeaders("X-Trace")},
			header: map[string]string{"X-Request-ID": "ignored"},
			want:   "fixed",
		},
		{
			name:   "oversized upstream id is replaced",
			opts:   []middlewares.RequestIDOption{middlewares.WithRequestIDGenerator(func() string { return "gen" })},
			header: map[string]string{"X-Request-ID": strings.Repeat("a", middlewares.MaxRequestIDLen+1)},
			want:   "gen",
		},
		{
			name:   "id with spaces is replaced",
			opts:   []middlewares.RequestIDOption{middlewares.WithRequestIDGenerator(func() string { return "gen" })},
			header: map[string]string{"X-Request-ID": "a b"},
			want:   "gen",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := newApp([]internal.Middleware{middlewares.RequestID(tt.opts...)}, echoRequestID)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := serve(app, req)
			require.Equal(t, tt.want, rec.Body.String())
			require.Equal(t, tt.want, rec.Header().Get("X-Request-ID"))
		})
	}

	t.Run("generated ulid", func(t *testing.T) {
		t.Parallel()

		rec := serve(newApp([]internal.Middleware{middlewares.RequestID()}, echoRequestID), httptest.NewRequest(http.MethodGet, "/", nil))
		require.Len(t, rec.Body.String(), 26)
	})

	t.Run("response header disabled", func(t *testing.T) {
		t.Parallel()

		app := newApp([]internal.Middleware{middlewares.RequestID(middlewares.WithRequestIDResponseHeader(""))}, echoRequestID)
		rec := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NotEmpty(t, rec.Body.String())
		require.Empty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("without middleware", func(t *testing.T) {
		t.Parallel()

		rec := serve(newApp(nil, echoRequestID), httptest.NewRequest(http.MethodGet, "/", nil))
		require.Empty(t, rec.Body.String())
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	_, ok := middlewares.RequestIDExtractor()(context.Background())
	require.False(t, ok)

	var buf bytes.Buffer
	log, err := logger.FromConfig(logger.Config{}, &buf, middlewares.RequestIDExtractor())
	require.NoError(t, err)

	app := newApp(
		[]internal.Middleware{middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "rid-7" }))},
		func(r internal.Router) {
			r.GET("/", func(c internal.Context) error {
				log.InfoContext(c.Context(), "served")
				return c.NoContent(http.StatusNoContent)
			})
		},
	)
	serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Contains(t, buf.String(), `"request_id":"rid-7"`)
}
