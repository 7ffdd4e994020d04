// Package middlewares provides HTTP middleware for UltraLight applications.
//
// # Request ID
//
// RequestID assigns a unique ID to each request for tracing. It reuses an
// incoming X-Request-ID (or X-Correlation-ID) header, otherwise it generates a
// ULID. Pair it with RequestIDExtractor so every log line carries request_id:
//
//	app := ultralight.New(
//	    ultralight.WithLogger("blog", middlewares.RequestIDExtractor()),
//	    ultralight.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover turns a panic in a controller action into a *PanicError that the
// error handler renders:
//
//	ultralight.WithErrorHandler(func(c ultralight.Context, err error) error {
//	    if middlewares.IsPanicError(err) {
//	        return c.String(500, "Internal Server Error")
//	    }
//	    return ultralight.DefaultErrorHandler(c, err)
//	})
//
// # Method override
//
// HTML forms can only send GET and POST. MethodOverride routes a POST carrying
// _method=PUT|PATCH|DELETE (form.Form adds the field automatically) as that
// method. Register it with WithMiddleware so it runs before route matching.
//
// # CSRF
//
// CSRF keeps a random token in a signed cookie and rejects unsafe requests
// that do not echo it in the _csrf field or the X-CSRF-Token header. Pass the
// token to forms:
//
//	f, err := form.FromModel(article, "/articles", form.WithCSRF(middlewares.CSRFToken(c)))
//
// # Page cache
//
// Cache stores successful GET responses in any cache.Cache[Page]. It suits
// feeds and public pages; purge it on a schedule with cache.NewPurgeTask:
//
//	pages := cache.NewMemory[middlewares.Page]()
//	r.Route("/feed", func(r ultralight.Router) {
//	    r.Use(middlewares.Cache(pages, 10*time.Minute))
//	    r.GET("/rss", feedHandler)
//	})
//
// # Recommended order
//
//	ultralight.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.Recover(),
//	    middlewares.MethodOverride(),
//	    middlewares.CSRF(),
//	)
package middlewares
