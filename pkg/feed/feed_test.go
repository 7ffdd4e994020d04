package feed_test

import (
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ultralight/pkg/feed"
)

func sample() *feed.Feed {
	f := feed.New("Blog", "https://example.com", "Latest <articles>")
	f.Author = "Ann"
	f.Email = "ann@example.com"
	f.Add(
		feed.Item{
			Title:   "First",
			Link:    "https://example.com/articles/first",
			Created: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		},
		feed.Item{
			Title:       "Second & last",
			Link:        "https://example.com/articles/second",
			Description: "Summary",
			Created:     time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
			Enclosure:   &feed.Enclosure{URL: "https://example.com/ep.mp3", Type: "audio/mpeg", Length: 1024},
		},
	)
	return f
}

func TestFeed_RSS(t *testing.T) {
	t.Parallel()

	out, err := sample().RSS()
	require.NoError(t, err)

	var doc struct {
		XMLName xml.Name `xml:"rss"`
		Channel struct {
			Title       string `xml:"title"`
			Description string `xml:"description"`
			Items       []struct {
				Title string `xml:"title"`
				GUID  string `xml:"guid"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	require.NoError(t, xml.Unmarshal([]byte(out), &doc))
	require.Equal(t, "Blog", doc.Channel.Title)
	require.Equal(t, "Latest <articles>", doc.Channel.Description)
	require.Len(t, doc.Channel.Items, 2)
	require.Equal(t, "Second & last", doc.Channel.Items[1].Title)
	require.True(t, strings.HasPrefix(doc.Channel.Items[0].GUID, "urn:uuid:"))
	require.Contains(t, out, `url="https://example.com/ep.mp3"`)
}

func TestFeed_Atom(t *testing.T) {
	t.Parallel()

	out, err := sample().Atom()
	require.NoError(t, err)

	var doc struct {
		XMLName xml.Name `xml:"http://www.w3.org/2005/Atom feed"`
		Title   string   `xml:"title"`
		Updated string   `xml:"updated"`
		Entries []struct {
			Title string `xml:"title"`
		} `xml:"entry"`
	}
	require.NoError(t, xml.Unmarshal([]byte(out), &doc))
	require.Equal(t, "Blog", doc.Title)
	require.Equal(t, "2024-02-01T09:00:00Z", doc.Updated)
	require.Len(t, doc.Entries, 2)
}

func TestFeed_JSON(t *testing.T) {
	t.Parallel()

	out, err := sample().JSON()
	require.NoError(t, err)

	var doc struct {
		Title string `json:"title"`
		Items []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Equal(t, "Blog", doc.Title)
	require.Len(t, doc.Items, 2)
	require.Equal(t, "First", doc.Items[0].Title)
}

func TestFeed_StableIDs(t *testing.T) {
	t.Parallel()

	a, err := sample().RSS()
	require.NoError(t, err)
	b, err := sample().RSS()
	require.NoError(t, err)

	guid := func(s string) string {
		_, rest, _ := strings.Cut(s, "<guid")
		g, _, _ := strings.Cut(rest, "</guid>")
		return g
	}
	require.NotEmpty(t, guid(a))
	require.Equal(t, guid(a), guid(b))
}

func TestFeed_Sort(t *testing.T) {
	t.Parallel()

	f := sample()
	f.Sort()
	require.Equal(t, "Second & last", f.Items[0].Title)
}

func TestFeed_Errors(t *testing.T) {
	t.Parallel()

	_, err := feed.New("", "https://example.com", "").RSS()
	require.ErrorIs(t, err, feed.ErrNoTitle)

	_, err = feed.New("Blog", "", "").Atom()
	require.ErrorIs(t, err, feed.ErrNoLink)

	err = sample().Write(&strings.Builder{}, feed.Format("yaml"))
	require.ErrorIs(t, err, feed.ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]feed.Format{"": feed.RSS, "xml": feed.RSS, ".atom": feed.Atom, "JSON": feed.JSON} {
		got, err := feed.ParseFormat(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := feed.ParseFormat("csv")
	require.ErrorIs(t, err, feed.ErrUnknownFormat)

	require.Equal(t, "application/atom+xml; charset=utf-8", feed.ContentType(feed.Atom))
	require.Equal(t, "application/feed+json; charset=utf-8", feed.ContentType(feed.JSON))
	require.Equal(t, "application/rss+xml; charset=utf-8", feed.ContentType(feed.RSS))
}
