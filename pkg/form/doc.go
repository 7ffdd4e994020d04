// Package form builds HTML forms and binds submitted forms back into structs.
//
// Forms are built field by field or derived from a model, whose `db` and
// `model` tags give names, labels and constraints. An optional `form` tag
// adjusts presentation:
//
//	type Article struct {
//		ID     int64  `db:"id"`
//		Title  string `db:"title" model:"required;max:200" form:"placeholder:A catchy title"`
//		Body   string `db:"body" model:"type:text" form:"rows:12;help:Markdown is supported"`
//		Status string `db:"status" form:"type:select;options:draft=Draft|published=Published"`
//		Secret string `db:"secret" form:"-"`
//	}
//
//	f, err := form.FromModel(&article, "/articles/save",
//		form.WithMethod(http.MethodPut),
//		form.WithErrors(verrs),
//		form.WithCSRF(middlewares.CSRFToken(c)),
//	)
//	return c.Render(http.StatusOK, f)
//
// Form keys: type, label, placeholder, help, options, rows, class and "-"
// to leave the field out. Options are separated by "|" and may carry a
// label after "=".
//
// Forms render Bootstrap 5 markup. Every value and label is escaped. A form
// with a file field is sent as multipart/form-data. Methods other than GET
// and POST are sent as POST with a hidden _method field, which
// middlewares.MethodOverride turns back into the intended method.
//
// Bind is the reverse direction: it fills a struct from a urlencoded,
// multipart or JSON request.
package form
