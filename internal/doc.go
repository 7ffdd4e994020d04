// Package internal holds the core types of the ultralight framework.
//
// Import "github.com/dmitrymomot/ultralight" instead; it re-exports the
// public API as type aliases and thin wrappers.
//
// # Core Types
//
//   - App: routing, middleware, health endpoints and graceful shutdown
//   - Context: request access, responders, binding, cookies, jobs and storage
//   - Router: route declaration used by handlers
//   - Handler: a type that declares routes on a Router
//   - HandlerFunc: a route handler returning an error
//   - Middleware: wraps a HandlerFunc
//   - ErrorHandler: renders errors returned by handlers
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed straight to a
// repository call:
//
//	func (h *Articles) show(c ultralight.Context) error {
//	    a, err := h.repo.Find(c, c.Param("id"))
//	    if model.IsNotFound(err) {
//	        return c.Error(http.StatusNotFound, "article not found")
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    return c.Render(http.StatusOK, views.Article(a))
//	}
//
// # Binding
//
// Bind decodes the form (or JSON body) into a struct using form tags and
// validates it against its model tags. Validation failures are returned
// separately from decoding errors:
//
//	var a Article
//	verrs, err := c.Bind(&a)
//	if err != nil {
//	    return c.Error(http.StatusBadRequest, "malformed form")
//	}
//	if len(verrs) > 0 {
//	    return c.Render(http.StatusUnprocessableEntity, views.Edit(&a, verrs))
//	}
//
// # Errors
//
// Handlers return *HTTPError (see Context.Error and the Err* constructors)
// to pick a status code. Anything else is a 500. Errors returned after the
// response has started are only logged.
//
// # Server Runtime
//
//	var sc internal.ServerConfig
//	_ = env.Parse(&sc)
//	err := app.Run(sc.Addr,
//	    internal.WithServerConfig(sc),
//	    internal.StartupHook(migrate),
//	    internal.ShutdownHook(db.Shutdown()),
//	)
//
// Run blocks until SIGINT, SIGTERM or cancellation of the WithContext
// context. It then drains the server and runs shutdown hooks in reverse
// registration order within the shutdown timeout. A configured job worker
// starts before the other startup hooks and stops before the other
// shutdown hooks run.
package internal
