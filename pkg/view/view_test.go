package view_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ultralight/pkg/view"
)

type author struct {
	Name      string
	CreatedAt time.Time
	Email     string `db:"email_address"`
}

type badge string

func (b badge) Render(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, `<span class="badge">`+string(b)+`</span>`)
	return err
}

func execute(t *testing.T, src string, data view.Data) string {
	t.Helper()
	tpl, err := view.Parse("test.html", src)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, tpl.Execute(context.Background(), &buf, data, nil))
	return buf.String()
}

func TestExecute(t *testing.T) {
	t.Parallel()

	when := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	data := view.Data{
		"title":  `Tom & "Jerry"`,
		"html":   view.HTML("<b>bold</b>"),
		"badge":  badge("new"),
		"count":  42,
		"author": &author{Name: "ann lee", CreatedAt: when, Email: "ann@example.com"},
		"meta":   map[string]string{"lang": "en"},
		"body":   "line one\nline <two>",
	}

	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "escaped", src: "<h1>+title+</h1>", want: "<h1>Tom &amp; &#34;Jerry&#34;</h1>"},
		{name: "trusted html", src: "+html+", want: "<b>bold</b>"},
		{name: "component", src: "+badge+", want: `<span class="badge">new</span>`},
		{name: "number", src: "n=+count+", want: "n=42"},
		{name: "missing", src: "[+nope+][+author.nope+]", want: "[][]"},
		{name: "dotted struct", src: "+author.name+", want: "ann lee"},
		{name: "snake case field", src: "+author.created_at|date+", want: "Mar 9, 2024"},
		{name: "db tag", src: "+author.email_address+", want: "ann@example.com"},
		{name: "string map", src: "+meta.lang+", want: "en"},
		{name: "filter chain", src: "+author.name|title|upper+", want: "ANN LEE"},
		{name: "nl2br", src: "+body|nl2br+", want: "line one<br>\nline &lt;two&gt;"},
		{name: "slug", src: "+title|slug+", want: "tom-jerry"},
		{name: "url", src: "?q=+title|url+", want: "?q=Tom+%26+%22Jerry%22"},
		{name: "raw", src: "+title|raw+", want: `Tom & "Jerry"`},
		{name: "literal plus", src: "C++ and 1 + 1", want: "C+ and 1 + 1"},
		{name: "unclosed plus", src: "a+b", want: "a+b"},
		{name: "plus before space", src: "+ title +", want: "+ title +"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, execute(t, tt.src, data))
		})
	}
}

func TestExecute_Markdown(t *testing.T) {
	t.Parallel()

	out := execute(t, "+body|md+", view.Data{
		"body": "# Hello\n\n**world** <script>alert(1)</script>",
	})
	require.Contains(t, out, "<h1")
	require.Contains(t, out, "<strong>world</strong>")
	require.NotContains(t, out, "<script>")
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	for _, src := range []string{
		"+title|Upper+",
		"+@../secret.html+",
		"+title|+",
	} {
		_, err := view.Parse("bad.html", src)
		require.ErrorIs(t, err, view.ErrSyntax, src)
		require.Contains(t, err.Error(), "bad.html:1")
	}
}

func TestParse_PlusAsText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, src, want string
	}{
		{"url query", `<a href="/search?q=go+chi-router+tutorial">`, `<a href="/search?q=go+chi-router+tutorial">`},
		{"query with placeholder", `<a href="/search?q=go+chi-router+tutorial&p=+page+">`, `<a href="/search?q=go+chi-router+tutorial&p=2">`},
		{"arithmetic", "1+2+3 = 6", "1+2+3 = 6"},
		{"double dot", "+user..name+", "+user..name+"},
		{"dash", "C+ +-x+ +title+", "C+ +-x+ Go"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tpl, err := view.Parse("p.html", tt.src)
			require.NoError(t, err)
			var buf bytes.Buffer
			require.NoError(t, tpl.Execute(context.Background(), &buf, view.Data{"page": 2, "title": "Go"}, nil))
			require.Equal(t, tt.want, buf.String())
		})
	}
}

func TestTemplate_Placeholders(t *testing.T) {
	t.Parallel()

	tpl := view.MustParse("p", "+title+ +author.name|upper+ +title+ +@nav.html+")
	require.Equal(t, []string{"title", "author.name"}, tpl.Placeholders())
	require.Equal(t, "p", tpl.Name())
}

func TestExecute_NoEngineErrors(t *testing.T) {
	t.Parallel()

	tpl := view.MustParse("p", "+@nav.html+")
	err := tpl.Execute(context.Background(), io.Discard, nil, nil)
	require.ErrorIs(t, err, view.ErrNoEngine)

	tpl = view.MustParse("p", "+x|shout+")
	err = tpl.Execute(context.Background(), io.Discard, view.Data{"x": "a"}, nil)
	require.ErrorIs(t, err, view.ErrUnknownFilter)
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"layout.html":       {Data: []byte("<title>+title+</title><main>+content+</main>")},
		"partials/nav.html": {Data: []byte("<nav>+site+</nav>")},
		"index.html":        {Data: []byte("+@partials/nav.html+<p>+greeting|upper+</p>")},
		"about.html":        {Data: []byte("---\ntitle: About us\n---\n<p>about</p>")},
		"bare.html":         {Data: []byte("---\nlayout: none\n---\n<p>bare +title+</p>")},
		"loop.html":         {Data: []byte("x+@loop.html+")},
		"broken.html":       {Data: []byte("---\ntitle: [\n---\n")},
		"typo.html":         {Data: []byte("<p>+name|shuot+</p>")},
	}
}

func TestEngine_Render(t *testing.T) {
	t.Parallel()

	e, err := view.New(testFS(),
		view.WithLayout("layout.html"),
		view.WithFilter("shout", func(v any) any { return strings.ToUpper(v.(string)) + "!" }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	ctx := context.Background()

	out, err := e.RenderString(ctx, "index.html", view.Data{"site": "Blog", "greeting": "hi"})
	require.NoError(t, err)
	require.Equal(t, "<nav>Blog</nav><p>HI</p>", out)

	t.Run("page with layout", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, e.Page("/about.html", nil).Render(ctx, &buf))
		require.Equal(t, "<title>About us</title><main><p>about</p></main>", buf.String())
	})

	t.Run("data overrides front matter", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, e.Page("about.html", view.Data{"title": "Team"}).Render(ctx, &buf))
		require.Contains(t, buf.String(), "<title>Team</title>")
	})

	t.Run("layout disabled", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, e.Page("bare.html", view.Data{"title": "x"}).Render(ctx, &buf))
		require.Equal(t, "<p>bare x</p>", buf.String())
	})

	t.Run("custom filter", func(t *testing.T) {
		t.Parallel()
		tpl := view.MustParse("inline", "+name|shout+")
		var buf bytes.Buffer
		require.NoError(t, tpl.Execute(ctx, &buf, view.Data{"name": "go"}, e))
		require.Equal(t, "GO!", buf.String())
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()
		_, err := e.Template("missing.html")
		require.ErrorIs(t, err, view.ErrTemplateNotFound)

		_, err = e.Template("../etc/passwd")
		require.ErrorIs(t, err, view.ErrTemplateNotFound)

		_, err = e.Template("broken.html")
		require.ErrorIs(t, err, view.ErrSyntax)

		_, err = e.Template("typo.html")
		require.ErrorIs(t, err, view.ErrUnknownFilter)

		var buf bytes.Buffer
		err = e.Render(ctx, &buf, "loop.html", nil)
		require.ErrorIs(t, err, view.ErrIncludeDepth)
		require.Zero(t, buf.Len())
	})
}

func TestEngine_Reload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "hello.html")
	require.NoError(t, os.WriteFile(file, []byte("v1"), 0o600))

	e, err := view.New(os.DirFS(dir), view.WithReload(dir))
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	ctx := context.Background()
	out, err := e.RenderString(ctx, "hello.html", nil)
	require.NoError(t, err)
	require.Equal(t, "v1", out)

	require.NoError(t, os.WriteFile(file, []byte("v2"), 0o600))
	require.Eventually(t, func() bool {
		out, err := e.RenderString(ctx, "hello.html", nil)
		return err == nil && out == "v2"
	}, 2*time.Second, 20*time.Millisecond)
}
