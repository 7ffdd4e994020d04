package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/ultralight"
	"github.com/dmitrymomot/ultralight/middlewares"
	"github.com/dmitrymomot/ultralight/pkg/bootstrap"
	"github.com/dmitrymomot/ultralight/pkg/diff"
	"github.com/dmitrymomot/ultralight/pkg/dispatch"
	"github.com/dmitrymomot/ultralight/pkg/form"
	"github.com/dmitrymomot/ultralight/pkg/imaging"
	"github.com/dmitrymomot/ultralight/pkg/job"
	"github.com/dmitrymomot/ultralight/pkg/model"
	"github.com/dmitrymomot/ultralight/pkg/query"
	"github.com/dmitrymomot/ultralight/pkg/slug"
	"github.com/dmitrymomot/ultralight/pkg/storage"
	"github.com/dmitrymomot/ultralight/pkg/view"
)

// Article covers.
const (
	thumbWidth     = 320
	thumbHeight    = 180
	maxCover       = 5 << 20
	thumbnailDedup = time.Minute
)

// Home is mounted at "/" and catches every path no other controller claims.
type Home struct{ *blog }

func (h *Home) Actions() map[string]ultralight.HandlerFunc {
	return map[string]ultralight.HandlerFunc{"GET index": h.index}
}

func (h *Home) index(c ultralight.Context) error {
	if len(dispatch.Args(c)) > 0 {
		return ultralight.ErrNotFound("page not found")
	}
	latest, err := h.articles.List(c,
		model.Where(query.Eq("status", "published")),
		model.OrderBy("created_at", true),
		model.Limit(5),
	)
	if err != nil {
		return err
	}
	list, err := h.articleList(c, latest)
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "home.html", view.Data{"articles": list})
}

// Articles manages blog posts under /articles. Published posts are also
// reachable as /blog/{slug} through the route table.
type Articles struct{ *blog }

func (a *Articles) Actions() map[string]ultralight.HandlerFunc {
	return map[string]ultralight.HandlerFunc{
		"GET index":     a.index,
		"GET show":      a.show,
		"GET new":       a.edit,
		"GET edit":      a.edit,
		"POST save":     a.save,
		"DELETE delete": a.delete,
		"GET history":   a.history,
		"POST cover":    a.cover,
	}
}

func articleURL(a Article) string {
	if a.Slug != "" && a.Status == "published" {
		return "/blog/" + a.Slug
	}
	return "/articles/show/" + strconv.FormatInt(a.ID, 10)
}

func statusBadge(status string) bootstrap.Variant {
	if status == "published" {
		return bootstrap.Success
	}
	return bootstrap.Secondary
}

func (b *blog) articleList(ctx context.Context, list []Article) (view.HTML, error) {
	items := make([]view.Data, 0, len(list))
	for _, a := range list {
		items = append(items, view.Data{
			"article": a,
			"url":     articleURL(a),
			"status":  bootstrap.Badge(statusBadge(a.Status), a.Status),
		})
	}
	return b.each(ctx, "articles/_item.html", items)
}

// index lists articles. ?q= takes filter expressions such as
// title|:release or status|=published and may repeat.
func (a *Articles) index(c ultralight.Context) error {
	conds, err := query.ParseValues(c.QueryValues(), "q")
	if err != nil {
		return ultralight.ErrBadRequest("invalid filter", ultralight.WithError(err))
	}
	page := max(ultralight.QueryDefault(c, "page", 1), 1)
	res, err := a.articles.Paginate(c, page, a.cfg.PerPage,
		model.Where(conds...),
		model.OrderBy("created_at", true),
	)
	if errors.Is(err, model.ErrUnknownColumn) || errors.Is(err, model.ErrInvalidValue) {
		return ultralight.ErrBadRequest("invalid filter", ultralight.WithError(err))
	}
	if err != nil {
		return err
	}

	list, err := a.articleList(c, res.Items)
	if err != nil {
		return err
	}
	pageURL := func(p int) string {
		v := c.QueryValues()
		v.Set("page", strconv.Itoa(p))
		return "/articles?" + v.Encode()
	}
	return a.render(c, http.StatusOK, "articles/index.html", view.Data{
		"title":      "Articles",
		"articles":   list,
		"total":      res.Total,
		"pagination": bootstrap.Pagination(res.Page, res.Pages, pageURL),
		"new":        bootstrap.ButtonLink("New article", "/articles/new", bootstrap.WithVariant(bootstrap.Primary)),
	})
}

// load finds the article named by the first argument: an ID under
// /articles, a slug under /blog/{slug}.
func (a *Articles) load(c ultralight.Context) (*Article, error) {
	if s := c.Param("slug"); s != "" {
		art, err := a.articles.First(c, query.Eq("slug", s), query.Eq("status", "published"))
		return art, notFound(err, "article")
	}
	id, err := strconv.ParseInt(dispatch.Arg(c, 0), 10, 64)
	if err != nil {
		return nil, ultralight.ErrNotFound("article not found")
	}
	art, err := a.articles.Find(c, id)
	return art, notFound(err, "article")
}

func (a *Articles) show(c ultralight.Context) error {
	art, err := a.load(c)
	if err != nil {
		return err
	}

	data := view.Data{
		"title":   art.Title,
		"article": art,
		"status":  bootstrap.Badge(statusBadge(art.Status), art.Status),
		"crumbs": bootstrap.Breadcrumb(
			bootstrap.Link{Label: "Articles", URL: "/articles"},
			bootstrap.Link{Label: art.Title},
		),
	}
	if art.Cover != "" {
		if u, err := c.FileURL(imaging.ThumbnailKey(art.Cover, thumbWidth, thumbHeight, imaging.JPEG)); err == nil {
			data["cover"] = u
		}
	}

	id := strconv.FormatInt(art.ID, 10)
	token := middlewares.CSRFToken(c)
	data["delete"] = form.New("/articles/delete/"+id,
		form.WithMethod(http.MethodDelete),
		form.WithCSRF(token),
		form.WithSubmit("Delete"),
		form.WithClass("d-inline"),
	)
	upload := form.New("/articles/cover/"+id, form.WithCSRF(token), form.WithSubmit("Upload cover"))
	upload.Add(form.Field{Name: "cover", Type: form.File, Label: "Cover image", Attrs: map[string]string{"accept": "image/*"}})
	data["upload"] = upload
	data["edit"] = bootstrap.ButtonLink("Edit", "/articles/edit/"+id, bootstrap.WithVariant(bootstrap.Secondary))
	data["history"] = bootstrap.ButtonLink("History", "/articles/history/"+id, bootstrap.Outline())
	return a.render(c, http.StatusOK, "articles/show.html", data)
}

// edit serves both the empty form under /articles/new and the filled one
// under /articles/edit/{id}.
func (a *Articles) edit(c ultralight.Context) error {
	art := &Article{Status: "draft"}
	if dispatch.Arg(c, 0) != "" {
		var err error
		if art, err = a.load(c); err != nil {
			return err
		}
	}
	return a.renderForm(c, http.StatusOK, art, nil)
}

func (a *Articles) renderForm(c ultralight.Context, code int, art *Article, verrs ultralight.ValidationErrors) error {
	action, title := "/articles/save", "New article"
	if art.ID != 0 {
		action, title = "/articles/save/"+strconv.FormatInt(art.ID, 10), "Edit "+art.Title
	}
	f, err := form.FromModel(art, action,
		form.WithErrors(verrs),
		form.WithCSRF(middlewares.CSRFToken(c)),
		form.WithSubmit("Save"),
	)
	if err != nil {
		return err
	}
	return a.render(c, code, "articles/edit.html", view.Data{"title": title, "form": f})
}

// save inserts or, given an ID, updates an article. An update keeps the
// previous title and body as a revision.
func (a *Articles) save(c ultralight.Context) error {
	art := &Article{}
	if dispatch.Arg(c, 0) != "" {
		var err error
		if art, err = a.load(c); err != nil {
			return err
		}
	}
	prev := *art

	verrs, err := c.Bind(art)
	if err != nil {
		return ultralight.ErrBadRequest("malformed form", ultralight.WithError(err))
	}
	art.Slug = slug.Make(art.Title, slug.MaxLength(200))
	if verrs == nil {
		if n, err := a.articles.Count(c, query.Eq("slug", art.Slug), query.Ne("id", art.ID)); err != nil {
			return err
		} else if n > 0 {
			verrs = ultralight.ValidationErrors{}
			verrs.Add("title", "is already used by another article")
		}
	}
	if len(verrs) > 0 {
		return a.renderForm(c, http.StatusUnprocessableEntity, art, verrs)
	}

	created := art.ID == 0
	if err := a.persist(c, &prev, art); err != nil {
		return err
	}
	if created {
		notify(c, "Article created.")
	} else {
		notify(c, "Article saved.")
	}
	a.purge(c)
	return c.Redirect(http.StatusSeeOther, "/articles/show/"+strconv.FormatInt(art.ID, 10))
}

func (a *Articles) delete(c ultralight.Context) error {
	art, err := a.load(c)
	if err != nil {
		return err
	}
	if err := a.remove(c, art.ID); err != nil {
		return err
	}
	if art.Cover != "" {
		for _, key := range []string{art.Cover, imaging.ThumbnailKey(art.Cover, thumbWidth, thumbHeight, imaging.JPEG)} {
			if err := c.DeleteFile(key); err != nil && !errors.Is(err, storage.ErrNotFound) {
				c.LogWarn("cover not deleted", "key", key, "error", err)
			}
		}
	}
	a.purge(c)
	notify(c, "Article deleted.")
	return c.Redirect(http.StatusSeeOther, "/articles")
}

// persist inserts art or updates it. An update whose title or body differs
// from prev records prev as a revision in the same transaction.
func (a *Articles) persist(ctx context.Context, prev, art *Article) error {
	if art.ID == 0 {
		return a.articles.Insert(ctx, art)
	}
	return a.db.WithTx(ctx, func(tx *sql.Tx) error {
		if prev.Body != art.Body || prev.Title != art.Title {
			rev := &Revision{ArticleID: prev.ID, Title: prev.Title, Body: prev.Body}
			if err := a.revisions.WithTx(tx).Insert(ctx, rev); err != nil {
				return err
			}
		}
		return a.articles.WithTx(tx).Update(ctx, art)
	})
}

// remove deletes an article together with its revisions.
func (a *Articles) remove(ctx context.Context, id int64) error {
	return a.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := a.revisions.WithTx(tx).DeleteWhere(ctx, query.Eq("article_id", id)); err != nil {
			return err
		}
		return a.articles.WithTx(tx).Delete(ctx, id)
	})
}

// history shows what every revision changed, newest first.
func (a *Articles) history(c ultralight.Context) error {
	art, err := a.load(c)
	if err != nil {
		return err
	}
	revs, err := a.revisions.List(c,
		model.Where(query.Eq("article_id", art.ID)),
		model.OrderBy("id", true),
	)
	if err != nil {
		return err
	}

	items := make([]view.Data, 0, len(revs))
	newer := art.Body
	for _, r := range revs {
		chunks := diff.Words(r.Body, newer)
		stats := diff.StatsOf(chunks)
		items = append(items, view.Data{
			"revision":   r,
			"diff":       view.HTML(diff.HTML(chunks)),
			"inserted":   stats.Inserted,
			"deleted":    stats.Deleted,
			"similarity": strconv.Itoa(int(stats.Similarity()*100)) + "%",
		})
		newer = r.Body
	}
	list, err := a.each(c, "articles/_revision.html", items)
	if err != nil {
		return err
	}
	return a.render(c, http.StatusOK, "articles/history.html", view.Data{
		"title":     "History of " + art.Title,
		"article":   art,
		"revisions": list,
		"count":     len(revs),
	})
}

// cover stores an uploaded image and queues its thumbnail. Without a job
// worker the thumbnail is made during the request.
func (a *Articles) cover(c ultralight.Context) error {
	art, err := a.load(c)
	if err != nil {
		return err
	}
	_, fh, err := c.FormFile("cover")
	if err != nil {
		return ultralight.ErrBadRequest("no file uploaded", ultralight.WithError(err))
	}
	store, err := c.Storage()
	if err != nil {
		return err
	}
	info, err := storage.PutFile(c, store, fh,
		storage.WithPrefix("covers"),
		storage.WithACL(storage.ACLPublicRead),
		storage.WithValidation(storage.NotEmpty(), storage.ImageOnly(), storage.MaxSize(maxCover)),
	)
	var invalid *storage.FileValidationError
	if errors.As(err, &invalid) {
		return ultralight.ErrUnprocessable(invalid.Message, ultralight.WithError(err), ultralight.WithErrorCode(invalid.Code))
	}
	if err != nil {
		return err
	}

	art.Cover = info.Key
	if err := a.articles.Update(c, art); err != nil {
		return err
	}

	payload := imaging.ThumbnailPayload{Key: info.Key}
	err = c.Enqueue(imaging.ThumbnailTaskName, payload, job.UniqueFor(thumbnailDedup))
	if errors.Is(err, job.ErrNotConfigured) {
		err = a.thumbs.Handle(c, payload)
	}
	if err != nil {
		c.LogError("thumbnail failed", "key", info.Key, "error", err)
	}

	a.purge(c)
	notify(c, "Cover uploaded.")
	return c.Redirect(http.StatusSeeOther, "/articles/show/"+strconv.FormatInt(art.ID, 10))
}
