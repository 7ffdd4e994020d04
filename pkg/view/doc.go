// Package view renders placeholder templates: plain HTML files where
// +name+ marks a value to insert.
//
//	<h1>+article.title+</h1>
//	<p class="meta">+article.created_at|date+ by +author|title+</p>
//	+article.body|md+
//	+@partials/comments.html+
//
// Values are HTML-escaped unless they are HTML, a Component (templ
// components, forms, bootstrap helpers) or passed through a filter that
// returns HTML such as md, nl2br or raw. Dotted names walk maps and struct
// fields, matching field names case-insensitively. Missing values render
// empty. ++ writes a literal plus sign, and a + that does not open a
// placeholder stays as text.
//
// # Engine
//
// An Engine loads templates from any fs.FS, usually an embed.FS, and keeps
// them parsed in a cache.Cache:
//
//	views, err := view.New(templates, view.WithLayout("layout.html"))
//	...
//	return c.Render(http.StatusOK, views.Page("articles/show.html", view.Data{
//	    "title":   a.Title,
//	    "article": a,
//	}))
//
// Page wraps the template in the layout, which receives the rendered body as
// +content+. A template may start with YAML front matter whose values are
// defaults for its data; the layout key picks another layout or "none":
//
//	---
//	title: Archive
//	layout: none
//	---
//	<ul>+items+</ul>
//
// During development, WithReload watches the template directory and drops the
// cache when a file changes:
//
//	views, err := view.New(os.DirFS("templates"), view.WithReload("templates"))
package view
