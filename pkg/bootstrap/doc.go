// Package bootstrap renders Bootstrap 5 markup as templ components.
//
// Every helper returns a templ.Component, so the result can be passed to
// Context.Render, embedded in a view.Data value or nested inside another
// component:
//
//	card := bootstrap.Card(article.Title,
//	    bootstrap.Text(article.Summary),
//	    bootstrap.ButtonLink("Read", "/articles/"+article.Slug, bootstrap.Outline()),
//	)
//	return c.Render(http.StatusOK, card)
//
// Text content is HTML-escaped and links pass through templ.URL, which
// replaces unsafe schemes. Use Raw only for trusted markup.
//
// Pagination takes a URL builder and renders the first and last pages plus
// PageWindow pages around the current one:
//
//	bootstrap.Pagination(page, pages, func(p int) string {
//	    return fmt.Sprintf("/articles?page=%d", p)
//	})
package bootstrap
