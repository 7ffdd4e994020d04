// Package feed writes RSS 2.0, Atom 1.0 and JSON Feed documents.
//
//	f := feed.New("Blog", "https://example.com", "Latest articles")
//	for _, a := range articles {
//	    f.Add(feed.Item{
//	        Title:       a.Title,
//	        Link:        "https://example.com/articles/" + a.Slug,
//	        Description: a.Summary,
//	        Created:     a.CreatedAt,
//	    })
//	}
//
//	format, err := feed.ParseFormat(c.Param("format"))
//	...
//	var buf bytes.Buffer
//	if err := f.Write(&buf, format); err != nil {
//	    return err
//	}
//	return c.Blob(http.StatusOK, feed.ContentType(format), buf.Bytes())
//
// Items without an ID get a UUID derived from their link, so readers do not
// see republished entries. The feed's updated time defaults to its newest item.
package feed
