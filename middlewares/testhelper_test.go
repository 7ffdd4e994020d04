package middlewares_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/dmitrymomot/ultralight/internal"
	"github.com/dmitrymomot/ultralight/pkg/cookie"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

func newApp(mw []internal.Middleware, fn func(r internal.Router), opts ...internal.Option) *internal.App {
	opts = append(opts,
		internal.WithMiddleware(mw...),
		internal.WithHandlers(routes(fn)),
		internal.WithCookieOptions(cookie.WithSecret(testSecret)),
	)
	return internal.New(opts...)
}

func serve(app http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}
