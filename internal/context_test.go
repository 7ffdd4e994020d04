package internal_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ultralight/internal"
	"github.com/dmitrymomot/ultralight/pkg/cookie"
	"github.com/dmitrymomot/ultralight/pkg/job"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

func newApp(fn func(r internal.Router), opts ...internal.Option) *internal.App {
	opts = append(opts,
		internal.WithHandlers(routes(fn)),
		internal.WithCookieOptions(cookie.WithSecret(testSecret)),
	)
	return internal.New(opts...)
}

func do(app *internal.App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func TestContext_Responders(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/html", func(c internal.Context) error { return c.HTML(http.StatusOK, "<p>hi</p>") })
		r.GET("/blob", func(c internal.Context) error { return c.Blob(http.StatusOK, "text/calendar", []byte("BEGIN")) })
		r.GET("/redirect", func(c internal.Context) error { return c.Redirect(http.StatusSeeOther, "/html") })
		r.GET("/empty", func(c internal.Context) error { return c.NoContent(http.StatusAccepted) })
		r.GET("/query", func(c internal.Context) error {
			return c.String(http.StatusOK, c.QueryDefault("sort", "title")+","+c.Query("page"))
		})
	})

	rec := do(app, httptest.NewRequest(http.MethodGet, "/html", nil))
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, "<p>hi</p>", rec.Body.String())

	rec = do(app, httptest.NewRequest(http.MethodGet, "/blob", nil))
	require.Equal(t, "text/calendar", rec.Header().Get("Content-Type"))

	rec = do(app, httptest.NewRequest(http.MethodGet, "/redirect", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/html", rec.Header().Get("Location"))

	rec = do(app, httptest.NewRequest(http.MethodGet, "/empty", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Empty(t, rec.Body.String())

	rec = do(app, httptest.NewRequest(http.MethodGet, "/query?page=2", nil))
	require.Equal(t, "title,2", rec.Body.String())
}

func TestContext_ErrorAfterWrite(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/", func(c internal.Context) error {
			_ = c.String(http.StatusOK, "partial")
			return errors.New("late failure")
		})
	})

	rec := do(app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "partial", rec.Body.String())
}

func TestContext_SignedCookies(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/set", func(c internal.Context) error {
			if err := c.SetCookieSigned("user", "ada", 3600); err != nil {
				return err
			}
			return c.NoContent(http.StatusNoContent)
		})
		r.GET("/get", func(c internal.Context) error {
			v, err := c.CookieSigned("user")
			if err != nil {
				return c.Error(http.StatusUnauthorized, "no user")
			}
			return c.String(http.StatusOK, v)
		})
	})

	rec := do(app, httptest.NewRequest(http.MethodGet, "/set", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	req.AddCookie(cookies[0])
	rec = do(app, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ada", rec.Body.String())

	tampered := *cookies[0]
	tampered.Value = "x" + tampered.Value
	req = httptest.NewRequest(http.MethodGet, "/get", nil)
	req.AddCookie(&tampered)
	rec = do(app, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContext_Flash(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.POST("/save", func(c internal.Context) error {
			if err := c.SetFlash("notice", "Article saved"); err != nil {
				return err
			}
			return c.Redirect(http.StatusSeeOther, "/")
		})
		r.GET("/", func(c internal.Context) error {
			var msg string
			_ = c.Flash("notice", &msg)
			return c.String(http.StatusOK, msg)
		})
	})

	rec := do(app, httptest.NewRequest(http.MethodPost, "/save", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	rec = do(app, req)
	require.Equal(t, "Article saved", rec.Body.String())
}

func TestContext_BindJSON(t *testing.T) {
	t.Parallel()

	type comment struct {
		Author string `json:"author" db:"author" model:"required"`
		Body   string `json:"body" db:"body" model:"required;min:3"`
	}

	app := newApp(func(r internal.Router) {
		r.POST("/comments", func(c internal.Context) error {
			var in comment
			verrs, err := c.Bind(&in)
			if err != nil {
				return c.Error(http.StatusBadRequest, "bad body")
			}
			if len(verrs) > 0 {
				return c.JSON(http.StatusUnprocessableEntity, verrs)
			}
			return c.JSON(http.StatusCreated, in)
		})
	})

	req := httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader(`{"author":"ada","body":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(app, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.JSONEq(t, `{"body":["must be at least 3 characters"]}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader(`{"author":`))
	req.Header.Set("Content-Type", "application/json")
	rec = do(app, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContext_JobsNotConfigured(t *testing.T) {
	t.Parallel()

	var got error
	app := newApp(func(r internal.Router) {
		r.POST("/", func(c internal.Context) error {
			got = c.Enqueue("thumbnail", map[string]string{"key": "a.png"})
			return c.NoContent(http.StatusAccepted)
		})
	})

	do(app, httptest.NewRequest(http.MethodPost, "/", nil))
	require.ErrorIs(t, got, job.ErrNotConfigured)
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}

	app := newApp(func(r internal.Router) {
		r.GET("/items/{id}/{draft}", func(c internal.Context) error {
			c.Set(ctxKey{}, 7)
			id := internal.Param[int64](c, "id")
			draft := internal.Param[bool](c, "draft")
			page := internal.QueryDefault(c, "page", 1)
			ratio := internal.Query[float64](c, "ratio")
			stored := internal.ContextValue[int](c, ctxKey{})
			missing := internal.ContextValue[string](c, "nothing")
			return c.JSON(http.StatusOK, map[string]any{
				"id": id, "draft": draft, "page": page, "ratio": ratio, "stored": stored, "missing": missing,
			})
		})
	})

	rec := do(app, httptest.NewRequest(http.MethodGet, "/items/12/true?page=oops&ratio=0.5", nil))
	require.JSONEq(t, `{"id":12,"draft":true,"page":1,"ratio":0.5,"stored":7,"missing":""}`, rec.Body.String())
}

func TestExtractor(t *testing.T) {
	t.Parallel()

	ex := internal.NewExtractor(
		internal.FromHeader("X-Request-ID"),
		internal.FromQuery("rid"),
		internal.FromCookie("rid"),
	)

	app := newApp(func(r internal.Router) {
		r.GET("/", func(c internal.Context) error {
			v, ok := ex.Extract(c)
			if !ok {
				return c.String(http.StatusOK, "-")
			}
			return c.String(http.StatusOK, v)
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/?rid=q", nil)
	req.Header.Set("X-Request-ID", "h")
	require.Equal(t, "h", do(app, req).Body.String())

	require.Equal(t, "q", do(app, httptest.NewRequest(http.MethodGet, "/?rid=q", nil)).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "rid", Value: "c"})
	require.Equal(t, "c", do(app, req).Body.String())

	require.Equal(t, "-", do(app, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String())
}
