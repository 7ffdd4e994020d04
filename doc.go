// Package ultralight is a small MVC web framework: convention-based
// controller dispatch, tag-driven models over database/sql, a query
// condition DSL, placeholder templates, form building and a set of
// content helpers (feeds, calendars, images, diffs, colors).
//
// # Quick Start
//
//	db, err := model.Open("sqlite", "blog.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	routes, err := dispatch.LoadRoutesFile(assets, "routes.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	app := ultralight.New(
//	    ultralight.WithLogger("blog"),
//	    ultralight.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    ultralight.WithHandlers(dispatch.New(
//	        dispatch.WithRoutes(routes...),
//	        dispatch.WithControllers(&controllers.Articles{DB: db}),
//	    )),
//	)
//
//	err = app.Run(":8080", ultralight.ShutdownHook(db.Shutdown()))
//
// # Handlers
//
// Anything implementing [Handler] can declare routes directly:
//
//	func (h *Pages) Routes(r ultralight.Router) {
//	    r.GET("/about", h.about)
//	}
//
// The dispatch package builds on this to map /controller/action/args
// paths onto controller methods.
//
// # Context
//
// Every handler receives a [Context]. It embeds context.Context and adds
// responders (String, HTML, JSON, Render, Redirect), form binding with
// model validation, signed and encrypted cookies, flash messages, job
// enqueueing and file storage.
//
// # Errors
//
// Return an [HTTPError] to choose the status code:
//
//	return c.Error(http.StatusNotFound, "no such article")
//
// Other errors become 500 responses through the configured [ErrorHandler].
//
// # Packages
//
//   - pkg/dispatch: controller routing and route tables
//   - pkg/model: struct tag schemas, validation, migrations and repositories
//   - pkg/query: the field|=value condition DSL and SQL builders
//   - pkg/view: +name+ placeholder templates with filters and hot reload
//   - pkg/form: form rendering from models, binding and CSRF tokens
//   - pkg/feed, pkg/ical: RSS/Atom and iCalendar writers
//   - pkg/imaging, pkg/diff, pkg/color, pkg/bootstrap, pkg/slug: helpers
package ultralight
