package dispatch_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ultralight"
	"github.com/dmitrymomot/ultralight/pkg/dispatch"
)

type stubController map[string]ultralight.HandlerFunc

func (s stubController) Actions() map[string]ultralight.HandlerFunc { return s }

func echo(c ultralight.Context) error {
	m, ok := dispatch.CurrentMatch(c)
	if !ok {
		return c.String(http.StatusInternalServerError, "no match")
	}
	return c.String(http.StatusOK, m.Controller+" "+m.Action+" "+strings.Join(m.Args, ","))
}

type HomeController struct{}

func (HomeController) Actions() map[string]ultralight.HandlerFunc {
	return map[string]ultralight.HandlerFunc{"index": echo, "about": echo}
}

type Articles struct{}

func (*Articles) Actions() map[string]ultralight.HandlerFunc {
	return map[string]ultralight.HandlerFunc{
		"index":         echo,
		"show":          echo,
		"POST save":     echo,
		"GET|POST edit": echo,
		"delete-all":    echo,
	}
}

type adminArticles struct{}

func (adminArticles) Path() string { return "/articles/admin/" }

func (adminArticles) Actions() map[string]ultralight.HandlerFunc {
	return map[string]ultralight.HandlerFunc{"index": echo, "DELETE purge": echo}
}

func newDispatcher(opts ...dispatch.Option) *dispatch.Dispatcher {
	opts = append([]dispatch.Option{dispatch.WithControllers(HomeController{}, &Articles{}, adminArticles{})}, opts...)
	return dispatch.New(opts...)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	d := newDispatcher()

	tests := []struct {
		name, method, path string
		want               dispatch.Match
	}{
		{"root", http.MethodGet, "/", dispatch.Match{Controller: "/", Action: "index", Args: []string{}}},
		{"root action", http.MethodGet, "/about", dispatch.Match{Controller: "/", Action: "about", Args: []string{}}},
		{"root fallback args", http.MethodGet, "/unknown/x", dispatch.Match{Controller: "/", Action: "index", Args: []string{"unknown", "x"}}},
		{"controller index", http.MethodGet, "/articles", dispatch.Match{Controller: "/articles", Action: "index", Args: []string{}}},
		{"trailing and repeated slashes", http.MethodGet, "//articles///show/42/", dispatch.Match{Controller: "/articles", Action: "show", Args: []string{"42"}}},
		{"index args", http.MethodGet, "/articles/2024/go", dispatch.Match{Controller: "/articles", Action: "index", Args: []string{"2024", "go"}}},
		{"explicit index", http.MethodGet, "/articles/index/3", dispatch.Match{Controller: "/articles", Action: "index", Args: []string{"3"}}},
		{"case and dashes", http.MethodGet, "/Articles/Delete-All", dispatch.Match{Controller: "/articles", Action: "delete_all", Args: []string{}}},
		{"longest prefix", http.MethodGet, "/articles/admin", dispatch.Match{Controller: "/articles/admin", Action: "index", Args: []string{}}},
		{"nested action", http.MethodDelete, "/articles/admin/purge/7", dispatch.Match{Controller: "/articles/admin", Action: "purge", Args: []string{"7"}}},
		{"method qualified", http.MethodPost, "/articles/save", dispatch.Match{Controller: "/articles", Action: "save", Args: []string{}}},
		{"head as get", http.MethodHead, "/articles/edit/1", dispatch.Match{Controller: "/articles", Action: "edit", Args: []string{"1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := d.Resolve(tt.method, tt.path)
			require.NoError(t, err)
			require.Equal(t, tt.want, m)
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	t.Parallel()

	d := dispatch.New(dispatch.WithController("/articles", stubController{"show": echo, "POST save": echo}))

	_, err := d.Resolve(http.MethodGet, "/")
	require.ErrorIs(t, err, dispatch.ErrNoController)

	_, err = d.Resolve(http.MethodGet, "/articles")
	require.ErrorIs(t, err, dispatch.ErrNoAction)

	_, err = d.Resolve(http.MethodGet, "/articles/save")
	require.ErrorIs(t, err, dispatch.ErrMethodNotAllowed)
}

func TestRegister_InvalidActionKey(t *testing.T) {
	t.Parallel()

	d := dispatch.New()
	d.Register("blog", stubController{"FETCH list": echo, "a b c": echo, "list": echo})

	m, err := d.Resolve(http.MethodGet, "/blog/list")
	require.NoError(t, err)
	require.Equal(t, "list", m.Action)
	require.Len(t, d.Endpoints(), 1)
}

func serve(app http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestDispatcher_Routes(t *testing.T) {
	t.Parallel()

	table := []dispatch.Route{
		{Pattern: "/blog/{year}/{slug}", Controller: "/articles", Action: "show"},
		{Pattern: "/feed.xml", Controller: "/articles", Action: "index", Methods: []string{"get"}},
		{Pattern: "/ghost", Controller: "/missing"},
	}
	app := ultralight.New(ultralight.WithHandlers(newDispatcher(dispatch.WithRoutes(table...))))

	rec := serve(app, http.MethodGet, "/blog/2024/go-generics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/articles show 2024,go-generics", rec.Body.String())

	rec = serve(app, http.MethodGet, "/feed.xml")
	require.Equal(t, "/articles index ", rec.Body.String())

	rec = serve(app, http.MethodGet, "/articles/show/9")
	require.Equal(t, "/articles show 9", rec.Body.String())

	rec = serve(app, http.MethodGet, "/")
	require.Equal(t, "/ index ", rec.Body.String())

	rec = serve(app, http.MethodGet, "/ghost")
	require.Equal(t, "/ index ghost", rec.Body.String())

	rec = serve(app, http.MethodGet, "/articles/save")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = serve(app, http.MethodPost, "/articles/save")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDispatcher_SplitMethods(t *testing.T) {
	t.Parallel()

	reply := func(body string) ultralight.HandlerFunc {
		return func(c ultralight.Context) error { return c.String(http.StatusOK, body) }
	}
	edit := stubController{"GET edit": reply("form"), "POST edit": reply("store"), "DELETE edit": reply("drop")}
	d := dispatch.New(
		dispatch.WithController("/posts", edit),
		dispatch.WithRoutes(dispatch.Route{Pattern: "/p/{id}", Controller: "/posts", Action: "edit", Methods: []string{"GET", "POST", "PUT"}}),
	)
	app := ultralight.New(ultralight.WithHandlers(d))

	tests := []struct {
		method, target string
		code           int
		body           string
	}{
		{http.MethodGet, "/posts/edit", http.StatusOK, "form"},
		{http.MethodHead, "/posts/edit", http.StatusOK, ""},
		{http.MethodPost, "/posts/edit", http.StatusOK, "store"},
		{http.MethodDelete, "/posts/edit/3", http.StatusOK, "drop"},
		{http.MethodPut, "/posts/edit", http.StatusMethodNotAllowed, ""},
		{http.MethodGet, "/p/1", http.StatusOK, "form"},
		{http.MethodPost, "/p/1", http.StatusOK, "store"},
		{http.MethodPut, "/p/1", http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			t.Parallel()
			rec := serve(app, tt.method, tt.target)
			require.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK && tt.body != "" {
				require.Equal(t, tt.body, rec.Body.String())
			}
		})
	}

	eps := d.Endpoints()
	require.Equal(t, []string{"DELETE", "GET", "POST"}, eps[len(eps)-1].Methods)
}

func TestDispatcher_NotFound(t *testing.T) {
	t.Parallel()

	d := dispatch.New(dispatch.WithController("/articles", stubController{"index": echo}))
	app := ultralight.New(ultralight.WithHandlers(d))

	require.Equal(t, http.StatusNotFound, serve(app, http.MethodGet, "/nothing").Code)
	require.Equal(t, http.StatusOK, serve(app, http.MethodGet, "/articles").Code)
}

func TestDispatcher_Mounted(t *testing.T) {
	t.Parallel()

	d := dispatch.New(dispatch.WithController("/", stubController{
		"index": func(c ultralight.Context) error {
			return c.String(http.StatusOK, dispatch.Arg(c, 0)+"|"+dispatch.Arg(c, 5))
		},
	}))
	mount := routes(func(r ultralight.Router) {
		r.Route("/admin", d.Routes)
	})
	app := ultralight.New(ultralight.WithHandlers(mount))

	rec := serve(app, http.MethodGet, "/admin/users")
	require.Equal(t, "users|", rec.Body.String())
}

type routes func(r ultralight.Router)

func (f routes) Routes(r ultralight.Router) { f(r) }

func TestLoadRoutes(t *testing.T) {
	t.Parallel()

	src := `
routes:
  - pattern: /blog/{year:[0-9]+}/{slug}
    controller: articles/
    action: Show
  - pattern: /feed.xml
    controller: /feeds
    methods: [get, head]
`
	rs, err := dispatch.LoadRoutes(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, rs, 2)
	require.Equal(t, "/articles", rs[0].Controller)
	require.Equal(t, "show", rs[0].Action)
	require.Equal(t, []string{"GET", "POST"}, rs[0].Methods)
	require.Equal(t, []string{"year", "slug"}, rs[0].Params())
	require.Equal(t, "index", rs[1].Action)
	require.Equal(t, []string{"GET", "HEAD"}, rs[1].Methods)

	rs, err = dispatch.LoadRoutes(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, rs)

	_, err = dispatch.LoadRoutes(strings.NewReader("routes:\n  - pattern: blog\n    controller: /a\n"))
	require.ErrorIs(t, err, dispatch.ErrInvalidRoute)

	_, err = dispatch.LoadRoutes(strings.NewReader("routes:\n  - pattern: /blog\n"))
	require.ErrorIs(t, err, dispatch.ErrInvalidRoute)

	_, err = dispatch.LoadRoutes(strings.NewReader("routes:\n  - pattern: /blog\n    controller: /a\n    methods: [FETCH]\n"))
	require.ErrorIs(t, err, dispatch.ErrInvalidRoute)

	_, err = dispatch.LoadRoutes(strings.NewReader("routes: ["))
	require.Error(t, err)
}

func TestLoadRoutesFile(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"config/routes.yaml": {Data: []byte("routes:\n  - pattern: /\n    controller: /home\n")},
	}
	rs, err := dispatch.LoadRoutesFile(fsys, "config/routes.yaml")
	require.NoError(t, err)
	require.Equal(t, "/home", rs[0].Controller)

	_, err = dispatch.LoadRoutesFile(fsys, "missing.yaml")
	require.Error(t, err)
}

func TestEndpoints(t *testing.T) {
	t.Parallel()

	d := newDispatcher(dispatch.WithRoutes(dispatch.Route{Pattern: "/blog/{slug}", Controller: "/articles", Action: "show"}))
	eps := d.Endpoints()

	require.Equal(t, "/blog/{slug}", eps[0].Pattern)
	var patterns []string
	for _, ep := range eps[1:] {
		patterns = append(patterns, ep.Pattern)
	}
	require.Equal(t, []string{
		"/", "/about", "/articles", "/articles/admin", "/articles/admin/purge",
		"/articles/delete_all", "/articles/edit", "/articles/save", "/articles/show",
	}, patterns)
}
