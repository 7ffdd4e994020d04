package middlewares_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ultralight/internal"
	"github.com/dmitrymomot/ultralight/middlewares"
	"github.com/dmitrymomot/ultralight/pkg/cache"
)

func TestCache(t *testing.T) {
	t.Parallel()

	store := cache.NewMemory[middlewares.Page]()
	t.Cleanup(func() { _ = store.Close() })

	var hits atomic.Int32
	app := newApp(
		[]internal.Middleware{middlewares.Cache(store, time.Minute, middlewares.WithCacheSkip(func(c internal.Context) bool {
			return c.Query("preview") != ""
		}))},
		func(r internal.Router) {
			r.GET("/feed", func(c internal.Context) error {
				n := hits.Add(1)
				c.SetHeader("Content-Disposition", `inline; filename="feed.xml"`)
				c.SetHeader("X-Request-ID", fmt.Sprintf("req-%d", n))
				return c.Blob(http.StatusOK, "application/rss+xml", []byte{byte('0' + n)})
			})
			r.GET("/missing", func(c internal.Context) error {
				hits.Add(1)
				return internal.ErrNotFound("gone")
			})
			r.POST("/feed", func(c internal.Context) error { return c.NoContent(http.StatusNoContent) })
		},
	)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/feed", nil))
	require.Equal(t, "MISS", rec.Header().Get(middlewares.CacheHeader))
	require.Equal(t, "1", rec.Body.String())

	rec = serve(app, httptest.NewRequest(http.MethodGet, "/feed", nil))
	require.Equal(t, "HIT", rec.Header().Get(middlewares.CacheHeader))
	require.Equal(t, "application/rss+xml", rec.Header().Get("Content-Type"))
	require.Equal(t, `inline; filename="feed.xml"`, rec.Header().Get("Content-Disposition"))
	require.Empty(t, rec.Header().Get("X-Request-ID"))
	require.Equal(t, "1", rec.Body.String())
	require.Equal(t, int32(1), hits.Load())

	rec = serve(app, httptest.NewRequest(http.MethodGet, "/feed?preview=1", nil))
	require.Empty(t, rec.Header().Get(middlewares.CacheHeader))
	require.Equal(t, "2", rec.Body.String())

	serve(app, httptest.NewRequest(http.MethodGet, "/missing", nil))
	rec = serve(app, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, int32(4), hits.Load())

	rec = serve(app, httptest.NewRequest(http.MethodPost, "/feed", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	require.NoError(t, cache.NewPurgeTask(store).Handle(context.Background()))
	rec = serve(app, httptest.NewRequest(http.MethodGet, "/feed", nil))
	require.Equal(t, "MISS", rec.Header().Get(middlewares.CacheHeader))
	require.Equal(t, "5", rec.Body.String())
}
