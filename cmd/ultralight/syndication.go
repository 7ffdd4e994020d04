package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/ultralight"
	"github.com/dmitrymomot/ultralight/middlewares"
	"github.com/dmitrymomot/ultralight/pkg/bootstrap"
	"github.com/dmitrymomot/ultralight/pkg/dispatch"
	"github.com/dmitrymomot/ultralight/pkg/feed"
	"github.com/dmitrymomot/ultralight/pkg/form"
	"github.com/dmitrymomot/ultralight/pkg/ical"
	"github.com/dmitrymomot/ultralight/pkg/id"
	"github.com/dmitrymomot/ultralight/pkg/model"
	"github.com/dmitrymomot/ultralight/pkg/query"
	"github.com/dmitrymomot/ultralight/pkg/view"
)

const (
	feedSize = 20
	maxICS   = 1 << 20
)

// Feeds serves published articles as RSS, Atom or JSON Feed. The format is
// the first argument: /feeds/atom, or /feed.{format} from the route table.
type Feeds struct{ *blog }

func (f *Feeds) Actions() map[string]ultralight.HandlerFunc {
	return map[string]ultralight.HandlerFunc{"GET index": f.index}
}

func (f *Feeds) index(c ultralight.Context) error {
	format, err := feed.ParseFormat(dispatch.Arg(c, 0))
	if err != nil {
		return ultralight.ErrNotFound("unknown feed format", ultralight.WithError(err))
	}
	list, err := f.articles.List(c,
		model.Where(query.Eq("status", "published")),
		model.OrderBy("created_at", true),
		model.Limit(feedSize),
	)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(f.cfg.BaseURL, "/")
	out := feed.New(f.cfg.SiteTitle, base+"/", "Latest articles from "+f.cfg.SiteTitle)
	for _, a := range list {
		item := feed.Item{
			Title:       a.Title,
			Link:        base + articleURL(a),
			Description: excerpt(a.Body, 280),
			Created:     a.CreatedAt,
			Updated:     a.UpdatedAt,
		}
		if a.Cover != "" {
			if u, err := c.FileURL(a.Cover); err == nil {
				item.Enclosure = &feed.Enclosure{URL: absURL(base, u), Type: "image/jpeg"}
			}
		}
		out.Add(item)
	}
	if len(list) > 0 {
		out.Updated = list[0].UpdatedAt
	}

	var buf bytes.Buffer
	if err := out.Write(&buf, format); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, feed.ContentType(format), buf.Bytes())
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

func absURL(base, u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return base + "/" + strings.TrimPrefix(u, "/")
}

// Events lists calendar entries and exports them as iCalendar. An .ics
// upload imports events from another calendar.
type Events struct{ *blog }

func (e *Events) Actions() map[string]ultralight.HandlerFunc {
	return map[string]ultralight.HandlerFunc{
		"GET index":   e.index,
		"GET new":     e.edit,
		"POST save":   e.save,
		"GET ics":     e.export,
		"POST import": e.importICS,
	}
}

func (e *Events) index(c ultralight.Context) error {
	list, err := e.events.List(c,
		model.Where(query.Ge("starts_at", time.Now().AddDate(0, 0, -1))),
		model.OrderBy("starts_at", false),
	)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(list))
	for _, ev := range list {
		when := ev.StartsAt.Format("Mon, 02 Jan 2006 15:04")
		if ev.AllDay {
			when = ev.StartsAt.Format("Mon, 02 Jan 2006")
		}
		rows = append(rows, []string{when, ev.Summary, ev.Location})
	}

	upload := form.New("/events/import", form.WithCSRF(middlewares.CSRFToken(c)), form.WithSubmit("Import"))
	upload.Add(form.Field{Name: "calendar", Type: form.File, Label: "iCalendar file", Attrs: map[string]string{"accept": ".ics,text/calendar"}})

	return e.render(c, http.StatusOK, "events/index.html", view.Data{
		"title":  "Upcoming events",
		"table":  bootstrap.Table([]string{"When", "What", "Where"}, rows),
		"count":  len(list),
		"import": upload,
		"new":    bootstrap.ButtonLink("New event", "/events/new", bootstrap.WithVariant(bootstrap.Primary)),
		"ics":    bootstrap.ButtonLink("Subscribe", "/calendar.ics", bootstrap.Outline()),
	})
}

func (e *Events) edit(c ultralight.Context) error {
	return e.renderForm(c, http.StatusOK, &Event{StartsAt: time.Now().Truncate(time.Hour).Add(time.Hour)}, nil)
}

func (e *Events) renderForm(c ultralight.Context, code int, ev *Event, verrs ultralight.ValidationErrors) error {
	f, err := form.FromModel(ev, "/events/save",
		form.WithErrors(verrs),
		form.WithCSRF(middlewares.CSRFToken(c)),
		form.WithSubmit("Save"),
	)
	if err != nil {
		return err
	}
	return e.render(c, code, "events/edit.html", view.Data{"title": "New event", "form": f})
}

func (e *Events) save(c ultralight.Context) error {
	ev := &Event{}
	verrs, err := c.Bind(ev)
	if err != nil {
		return ultralight.ErrBadRequest("malformed form", ultralight.WithError(err))
	}
	if !ev.EndsAt.IsZero() && ev.EndsAt.Before(ev.StartsAt) {
		if verrs == nil {
			verrs = ultralight.ValidationErrors{}
		}
		verrs.Add("ends_at", "must not be before the start")
	}
	if len(verrs) > 0 {
		return e.renderForm(c, http.StatusUnprocessableEntity, ev, verrs)
	}
	ev.UID = id.NewULID() + "@" + e.host()
	if err := e.events.Insert(c, ev); err != nil {
		return err
	}
	e.purge(c)
	notify(c, "Event added.")
	return c.Redirect(http.StatusSeeOther, "/events")
}

func (e *Events) host() string {
	if u, err := url.Parse(e.cfg.BaseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return "ultralight"
}

func (e *Events) calendar(list []Event) *ical.Calendar {
	cal := ical.New(e.cfg.SiteTitle)
	for _, ev := range list {
		cal.Add(ical.Event{
			UID:         ev.UID,
			Summary:     ev.Summary,
			Description: ev.Notes,
			Location:    ev.Location,
			Start:       ev.StartsAt,
			End:         ev.EndsAt,
			AllDay:      ev.AllDay,
			URL:         strings.TrimSuffix(e.cfg.BaseURL, "/") + "/events",
		})
	}
	return cal
}

func (e *Events) export(c ultralight.Context) error {
	list, err := e.events.List(c, model.OrderBy("starts_at", false))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := e.calendar(list).Encode(&buf); err != nil {
		return err
	}
	c.SetHeader("Content-Disposition", `inline; filename="calendar.ics"`)
	return c.Blob(http.StatusOK, ical.ContentType, buf.Bytes())
}

// importICS adds the events of an uploaded calendar. Events whose UID is
// already stored are skipped.
func (e *Events) importICS(c ultralight.Context) error {
	file, fh, err := c.FormFile("calendar")
	if err != nil {
		return ultralight.ErrBadRequest("no file uploaded", ultralight.WithError(err))
	}
	defer file.Close()
	if fh.Size > maxICS {
		return ultralight.ErrUnprocessable("calendar is larger than 1 MB")
	}
	cal, err := ical.Decode(file)
	if errors.Is(err, ical.ErrDecode) {
		return ultralight.ErrUnprocessable("not an iCalendar file", ultralight.WithError(err))
	}
	if err != nil {
		return err
	}

	added := 0
	for _, ce := range cal.Events {
		if ce.UID != "" {
			n, err := e.events.Count(c, query.Eq("uid", ce.UID))
			if err != nil {
				return err
			}
			if n > 0 {
				continue
			}
		}
		ev := &Event{
			UID:      ce.UID,
			Summary:  ce.Summary,
			Notes:    ce.Description,
			Location: ce.Location,
			StartsAt: ce.Start,
			EndsAt:   ce.End,
			AllDay:   ce.AllDay,
		}
		if err := e.events.Insert(c, ev); err != nil {
			var verrs model.ValidationErrors
			if errors.As(err, &verrs) {
				c.LogWarn("skipping invalid event", "uid", ce.UID, "error", err)
				continue
			}
			return err
		}
		added++
	}
	e.purge(c)
	notify(c, "Imported "+strconv.Itoa(added)+" events.")
	return c.Redirect(http.StatusSeeOther, "/events")
}
