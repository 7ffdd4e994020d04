package form_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ultralight/pkg/form"
	"github.com/dmitrymomot/ultralight/pkg/model"
)

type article struct {
	ID        int64     `db:"id" model:"pk"`
	Title     string    `db:"title" model:"required;max:200" form:"placeholder:Headline"`
	Body      string    `db:"body" model:"type:text" form:"rows:8"`
	Status    string    `db:"status" form:"options:draft=Draft|published=Published"`
	Views     int       `db:"views" model:"min:0"`
	Featured  bool      `db:"featured"`
	Author    string    `db:"author_email" model:"email"`
	Secret    string    `db:"secret" form:"-"`
	CreatedAt time.Time `db:"created_at" model:"created"`
}

func render(t *testing.T, f *form.Form) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.Render(context.Background(), &buf))
	return buf.String()
}

func TestFromModel(t *testing.T) {
	t.Parallel()

	a := &article{Title: `Go <tips> & "tricks"`, Status: "published", Views: 3, Featured: true}
	f, err := form.FromModel(a, "/articles")
	require.NoError(t, err)

	names := make([]string, 0, len(f.Fields))
	for _, fl := range f.Fields {
		names = append(names, fl.Name)
	}
	require.Equal(t, []string{"title", "body", "status", "views", "featured", "author_email"}, names)

	require.Equal(t, form.Textarea, f.Field("body").Type)
	require.Equal(t, 8, f.Field("body").Rows)
	require.Equal(t, form.Select, f.Field("status").Type)
	require.Equal(t, form.Number, f.Field("views").Type)
	require.Equal(t, "0", f.Field("views").Attrs["min"])
	require.Equal(t, form.Checkbox, f.Field("featured").Type)
	require.True(t, f.Field("featured").Checked)
	require.Equal(t, form.Email, f.Field("author_email").Type)
	require.Nil(t, f.Field("secret"))

	html := render(t, f)
	require.True(t, strings.HasPrefix(html, `<form action="/articles" method="post">`))
	require.True(t, strings.HasSuffix(html, "</form>"))
	require.Contains(t, html, `value="Go &lt;tips&gt; &amp; &#34;tricks&#34;"`)
	require.NotContains(t, html, "<tips>")
	require.Contains(t, html, `placeholder="Headline"`)
	require.Contains(t, html, `maxlength="200"`)
	require.Contains(t, html, `<option value="published" selected>Published</option>`)
	require.Contains(t, html, `<input type="hidden" name="featured" value="false">`)
	require.Contains(t, html, `<button type="submit" class="btn btn-primary">Save</button>`)
}

func TestFromModel_PrimaryKey(t *testing.T) {
	t.Parallel()

	f, err := form.FromModel(&article{ID: 42, Title: "x"}, "/articles/42", form.WithMethod("put"))
	require.NoError(t, err)
	require.Equal(t, form.Hidden, f.Field("id").Type)
	require.Equal(t, "42", f.Field("id").Value)

	html := render(t, f)
	require.Contains(t, html, `method="post"`)
	require.Contains(t, html, `<input type="hidden" name="_method" value="PUT">`)
	require.Contains(t, html, `<input type="hidden" name="id" value="42">`)
}

func TestFromModel_InvalidTag(t *testing.T) {
	t.Parallel()

	type bad struct {
		Name string `db:"name" form:"colour:red"`
	}
	_, err := form.FromModel(bad{}, "/")
	require.ErrorIs(t, err, form.ErrInvalidTag)
}

func TestForm_Options(t *testing.T) {
	t.Parallel()

	errs := model.ValidationErrors{}
	errs.Add("title", "is required")

	f := form.New("/search",
		form.WithMethod("get"),
		form.WithCSRF("tok<en>"),
		form.WithErrors(errs),
		form.WithSubmit(""),
		form.WithID("search"),
		form.WithClass("row"),
	).Add(
		form.Field{Name: "title", Label: "Title"},
		form.Field{Name: "kind", Type: form.Radio, Value: "b", Choices: form.Choices("a|b")},
		form.Field{Name: "cover", Type: form.File},
	)
	require.True(t, f.Multipart())
	require.Equal(t, form.Text, f.Field("title").Type)

	html := render(t, f)
	require.True(t, strings.HasPrefix(html, `<form action="/search" method="get" enctype="multipart/form-data" id="search" class="row">`))
	require.Contains(t, html, `<input type="hidden" name="_csrf" value="tok&lt;en&gt;">`)
	require.Contains(t, html, `class="form-control is-invalid"`)
	require.Contains(t, html, `<div class="invalid-feedback">is required</div>`)
	require.Contains(t, html, `id="f-kind-1" name="kind" value="b" class="form-check-input" checked>`)
	require.NotContains(t, html, "<button")
}

func TestRegisterRenderer(t *testing.T) {
	t.Parallel()

	const color form.FieldType = "color"
	f := form.New("/").Add(form.Field{Name: "accent", Type: color})

	var buf bytes.Buffer
	require.ErrorIs(t, f.Render(context.Background(), &buf), form.ErrNoRenderer)

	form.RegisterRenderer(color, func(w io.Writer, fl form.Field, _ []string) error {
		_, err := io.WriteString(w, `<input type="color" name="`+fl.Name+`">`)
		return err
	})
	require.Contains(t, render(t, f), `<input type="color" name="accent">`)
}

func TestChoices(t *testing.T) {
	t.Parallel()

	require.Equal(t, []form.Choice{
		{Value: "a", Label: "a"},
		{Value: "b", Label: "Bee"},
	}, form.Choices(" a | b=Bee ||"))
	require.Nil(t, form.Choices(""))
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestBind(t *testing.T) {
	t.Parallel()

	a := article{ID: 7, Body: "keep", Secret: "s"}
	req := postForm(url.Values{
		"id":           {"99"},
		"title":        {"  Hello  "},
		"views":        {"12"},
		"featured":     {"false", "true"},
		"author_email": {"ada@example.com"},
		"secret":       {"leak"},
		"created_at":   {"2020-01-01"},
	})
	require.NoError(t, form.Bind(req, &a))

	require.Equal(t, int64(7), a.ID)
	require.Equal(t, "Hello", a.Title)
	require.Equal(t, "keep", a.Body)
	require.Equal(t, 12, a.Views)
	require.True(t, a.Featured)
	require.Equal(t, "ada@example.com", a.Author)
	require.Equal(t, "s", a.Secret)
	require.True(t, a.CreatedAt.IsZero())
}

func TestBind_Errors(t *testing.T) {
	t.Parallel()

	var a article
	err := form.Bind(postForm(url.Values{"views": {"many"}}), &a)
	require.ErrorIs(t, err, form.ErrDecode)
	require.ErrorIs(t, err, model.ErrInvalidValue)

	require.ErrorIs(t, form.Bind(postForm(nil), a), form.ErrNotPointer)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	require.ErrorIs(t, form.Bind(req, &a), form.ErrDecode)
}

func TestBind_JSON(t *testing.T) {
	t.Parallel()

	var in struct {
		Title string `json:"title" db:"title"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"json"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	require.NoError(t, form.Bind(req, &in))
	require.Equal(t, "json", in.Title)
}

func TestBind_Multipart(t *testing.T) {
	t.Parallel()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Upload"))
	require.NoError(t, mw.WriteField("body", "  spaced  "))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var a article
	require.NoError(t, form.Bind(req, &a))
	require.Equal(t, "Upload", a.Title)
	require.Equal(t, "  spaced  ", a.Body)
}

func TestTokens(t *testing.T) {
	t.Parallel()

	a, b := form.NewToken(), form.NewToken()
	require.Len(t, a, 43)
	require.NotEqual(t, a, b)

	require.NoError(t, form.VerifyToken(a, a))
	require.ErrorIs(t, form.VerifyToken(a, b), form.ErrInvalidToken)
	require.ErrorIs(t, form.VerifyToken("", ""), form.ErrInvalidToken)

	req := postForm(url.Values{form.CSRFField: {a}})
	require.Equal(t, a, form.TokenFromRequest(req))

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(form.CSRFHeader, b)
	require.Equal(t, b, form.TokenFromRequest(req))
}

func TestBind_Sanitize(t *testing.T) {
	t.Parallel()

	var c struct {
		Author string `db:"author" sanitize:"strip,trim"`
		Body   string `db:"body" model:"type:text" sanitize:"html"`
	}
	req := postForm(url.Values{
		"author": {"<b>ada</b>"},
		"body":   {`<p>hi</p><script>alert(1)</script>`},
	})
	require.NoError(t, form.Bind(req, &c))
	require.Equal(t, "ada", c.Author)
	require.Equal(t, "<p>hi</p>", c.Body)
}
