package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/ultralight"
	"github.com/dmitrymomot/ultralight/middlewares"
	"github.com/dmitrymomot/ultralight/pkg/bootstrap"
	"github.com/dmitrymomot/ultralight/pkg/cache"
	"github.com/dmitrymomot/ultralight/pkg/dispatch"
	"github.com/dmitrymomot/ultralight/pkg/imaging"
	"github.com/dmitrymomot/ultralight/pkg/model"
	"github.com/dmitrymomot/ultralight/pkg/view"
)

// Article is a blog post. Its table is managed by model migrations.
type Article struct {
	ID        int64     `db:"id" model:"pk"`
	Title     string    `db:"title" model:"required;min:3;max:200" form:"placeholder:A catchy title"`
	Slug      string    `db:"slug" model:"unique;max:220;pattern:^[a-z0-9-]*$" form:"-"`
	Body      string    `db:"body" model:"type:text;required" form:"rows:12;help:Markdown is supported"`
	Status    string    `db:"status" model:"index;default:draft" form:"type:select;options:draft=Draft|published=Published"`
	Cover     string    `db:"cover" form:"-"`
	CreatedAt time.Time `db:"created_at" model:"created"`
	UpdatedAt time.Time `db:"updated_at" model:"updated"`
}

// Revision is a previous body of an article. Its table comes from the SQL
// migrations.
type Revision struct {
	ID        int64     `db:"id" model:"pk"`
	ArticleID int64     `db:"article_id"`
	Title     string    `db:"title"`
	Body      string    `db:"body" model:"type:text"`
	CreatedAt time.Time `db:"created_at" model:"created"`
}

func (Revision) TableName() string { return "article_revisions" }

// Event is a calendar entry exported as iCalendar.
type Event struct {
	ID       int64     `db:"id" model:"pk"`
	Summary  string    `db:"summary" model:"required;max:200"`
	Location string    `db:"location" model:"max:200"`
	Notes    string    `db:"notes" model:"type:text" form:"type:textarea;rows:4"`
	StartsAt time.Time `db:"starts_at" model:"required;index" form:"type:datetime-local;label:Starts at"`
	EndsAt   time.Time `db:"ends_at" form:"type:datetime-local;label:Ends at"`
	AllDay   bool      `db:"all_day" form:"label:All day"`
	UID      string    `db:"uid" model:"size:255" form:"-"`
}

// models lists the types whose tables model.Migrate maintains.
var models = []any{Article{}, Event{}}

const noticeKey = "notice"

// blog holds what every controller needs.
type blog struct {
	cfg       config
	db        *model.DB
	views     *view.Engine
	pages     cache.Cache[middlewares.Page]
	thumbs    *imaging.ThumbnailTask
	articles  *model.Repository[Article]
	revisions *model.Repository[Revision]
	events    *model.Repository[Event]
}

func newBlog(cfg config, db *model.DB, views *view.Engine, pages cache.Cache[middlewares.Page], thumbs *imaging.ThumbnailTask) *blog {
	return &blog{
		cfg:       cfg,
		db:        db,
		views:     views,
		pages:     pages,
		thumbs:    thumbs,
		articles:  model.NewRepository[Article](db),
		revisions: model.NewRepository[Revision](db),
		events:    model.NewRepository[Event](db),
	}
}

// controllers returns every controller of the site, mounted by type name.
func (b *blog) controllers() []dispatch.Controller {
	return []dispatch.Controller{
		&Home{b},
		&Articles{b},
		&Feeds{b},
		&Events{b},
		&Colors{b},
	}
}

var nav = []bootstrap.Link{
	{Label: "Home", URL: "/"},
	{Label: "Articles", URL: "/articles"},
	{Label: "Events", URL: "/events"},
	{Label: "Colors", URL: "/colors"},
}

// render wraps a page in the layout with the navigation and any pending
// flash notice.
func (b *blog) render(c ultralight.Context, code int, name string, data view.Data) error {
	if data == nil {
		data = view.Data{}
	}
	data["site"] = b.cfg.SiteTitle

	links := make([]bootstrap.Link, len(nav))
	path := c.Request().URL.Path
	for i, l := range nav {
		l.Active = path == l.URL || (l.URL != "/" && strings.HasPrefix(path, l.URL+"/"))
		links[i] = l
	}
	data["nav"] = bootstrap.Nav("pills", links...)

	var notice string
	if err := c.Flash(noticeKey, &notice); err == nil && notice != "" {
		data["flash"] = bootstrap.Alert(bootstrap.Success, notice, true)
	}
	return c.Render(code, b.views.Page(name, data))
}

// each renders a partial once per item and joins the output.
func (b *blog) each(ctx context.Context, name string, items []view.Data) (view.HTML, error) {
	var sb strings.Builder
	for _, d := range items {
		if err := b.views.Render(ctx, &sb, name, d); err != nil {
			return "", err
		}
	}
	return view.HTML(sb.String()), nil
}

// notify stores a flash notice. Without a cookie secret the notice is lost.
func notify(c ultralight.Context, msg string) {
	if err := c.SetFlash(noticeKey, msg); err != nil {
		c.LogDebug("flash not stored", "error", err)
	}
}

// purge drops cached pages after content changes.
func (b *blog) purge(c ultralight.Context) {
	if err := b.pages.Clear(c); err != nil {
		c.LogWarn("page cache purge failed", "error", err)
	}
}

// notFound maps a missing record to a 404.
func notFound(err error, what string) error {
	if model.IsNotFound(err) {
		return ultralight.ErrNotFound(what + " not found")
	}
	return err
}

// errorPage renders HTTP errors with the site layout.
func (b *blog) errorPage(c ultralight.Context, err error) error {
	he := ultralight.AsHTTPError(err)
	if he == nil {
		c.LogError("request failed", "error", err)
		he = ultralight.NewHTTPError(http.StatusInternalServerError, "")
	} else if errors.Is(he, middlewares.ErrInvalidCSRF) {
		c.LogWarn("rejected request", "error", err)
	}
	return b.render(c, he.Code, "error.html", view.Data{
		"title":   he.StatusText(),
		"code":    he.Code,
		"message": he.Message,
	})
}
