package feed

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/feeds"
)

// Format is a syndication format.
type Format string

const (
	RSS  Format = "rss"
	Atom Format = "atom"
	JSON Format = "json"
)

// ParseFormat maps a file extension or format name to a Format.
// The empty string selects RSS.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "rss", "xml":
		return RSS, nil
	case "atom":
		return Atom, nil
	case "json":
		return JSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type served for a format.
func ContentType(f Format) string {
	switch f {
	case Atom:
		return "application/atom+xml; charset=utf-8"
	case JSON:
		return "application/feed+json; charset=utf-8"
	default:
		return "application/rss+xml; charset=utf-8"
	}
}

// Feed is a channel of items.
type Feed struct {
	Updated     time.Time
	Title       string
	Link        string
	Description string
	Author      string
	Email       string
	Copyright   string
	Image       string
	ID          string
	Items       []Item
}

// Item is a single entry.
type Item struct {
	Created     time.Time
	Updated     time.Time
	Enclosure   *Enclosure
	Title       string
	Link        string
	Description string
	Content     string
	Author      string
	Email       string
	ID          string
}

// Enclosure is a media attachment, typically a podcast episode.
type Enclosure struct {
	URL    string
	Type   string
	Length int64
}

// New creates an empty feed.
func New(title, link, description string) *Feed {
	return &Feed{Title: title, Link: link, Description: description}
}

// Add appends items.
func (f *Feed) Add(items ...Item) *Feed {
	f.Items = append(f.Items, items...)
	return f
}

// Sort orders items newest first.
func (f *Feed) Sort() {
	slices.SortStableFunc(f.Items, func(a, b Item) int {
		return b.Created.Compare(a.Created)
	})
}

// RSS renders the feed as RSS 2.0.
func (f *Feed) RSS() (string, error) { return f.render(RSS) }

// Atom renders the feed as Atom 1.0.
func (f *Feed) Atom() (string, error) { return f.render(Atom) }

// JSON renders the feed as JSON Feed.
func (f *Feed) JSON() (string, error) { return f.render(JSON) }

func (f *Feed) render(format Format) (string, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf, format); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Write encodes the feed to w in the given format.
func (f *Feed) Write(w io.Writer, format Format) error {
	gf, err := f.build()
	if err != nil {
		return err
	}

	switch format {
	case RSS:
		err = gf.WriteRss(w)
	case Atom:
		err = gf.WriteAtom(w)
	case JSON:
		err = gf.WriteJSON(w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return nil
}

func (f *Feed) build() (*feeds.Feed, error) {
	if f.Title == "" {
		return nil, ErrNoTitle
	}
	if f.Link == "" {
		return nil, ErrNoLink
	}

	gf := &feeds.Feed{
		Title:       f.Title,
		Link:        &feeds.Link{Href: f.Link},
		Description: f.Description,
		Copyright:   f.Copyright,
		Id:          f.ID,
		Updated:     f.Updated,
	}
	if gf.Id == "" {
		gf.Id = stableID(f.Link)
	}
	if f.Author != "" || f.Email != "" {
		gf.Author = &feeds.Author{Name: f.Author, Email: f.Email}
	}
	if f.Image != "" {
		gf.Image = &feeds.Image{Url: f.Image, Title: f.Title, Link: f.Link}
	}

	for _, it := range f.Items {
		item := &feeds.Item{
			Title:       it.Title,
			Link:        &feeds.Link{Href: it.Link},
			Description: it.Description,
			Content:     it.Content,
			Id:          it.ID,
			Created:     it.Created,
			Updated:     it.Updated,
		}
		if item.Id == "" {
			item.Id = stableID(it.Link)
		}
		if it.Author != "" || it.Email != "" {
			item.Author = &feeds.Author{Name: it.Author, Email: it.Email}
		}
		if it.Enclosure != nil {
			item.Enclosure = &feeds.Enclosure{
				Url:    it.Enclosure.URL,
				Type:   it.Enclosure.Type,
				Length: strconv.FormatInt(it.Enclosure.Length, 10),
			}
		}
		gf.Items = append(gf.Items, item)

		if ts := latest(it.Created, it.Updated); ts.After(gf.Updated) && f.Updated.IsZero() {
			gf.Updated = ts
		}
	}
	return gf, nil
}

// stableID derives a name-based UUID so an item keeps its ID across renders.
func stableID(link string) string {
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(link)).String()
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
