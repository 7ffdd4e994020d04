package internal

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router is what a Handler declares its routes on. Per-route middleware
// runs in the order given, after the app and group middleware.
type Router interface {
	GET(path string, h HandlerFunc, mw ...Middleware)
	POST(path string, h HandlerFunc, mw ...Middleware)
	PUT(path string, h HandlerFunc, mw ...Middleware)
	PATCH(path string, h HandlerFunc, mw ...Middleware)
	DELETE(path string, h HandlerFunc, mw ...Middleware)
	HEAD(path string, h HandlerFunc, mw ...Middleware)
	OPTIONS(path string, h HandlerFunc, mw ...Middleware)

	// Group starts a sub-router without a path prefix, typically to scope
	// middleware.
	Group(fn func(r Router))
	// Route starts a sub-router under pattern.
	Route(pattern string, fn func(r Router))
	Use(mw ...Middleware)
	// Mount attaches a plain http.Handler under pattern.
	Mount(pattern string, h http.Handler)
}

type router struct {
	chi chi.Router
	app *App
}

func (r *router) GET(path string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodGet, path, h, mw)
}

func (r *router) POST(path string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodPost, path, h, mw)
}

func (r *router) PUT(path string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodPut, path, h, mw)
}

func (r *router) PATCH(path string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodPatch, path, h, mw)
}

func (r *router) DELETE(path string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodDelete, path, h, mw)
}

func (r *router) HEAD(path string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodHead, path, h, mw)
}

func (r *router) OPTIONS(path string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodOptions, path, h, mw)
}

func (r *router) handle(method, path string, h HandlerFunc, mw []Middleware) {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	r.chi.Method(method, path, r.app.handler(h))
}

func (r *router) Group(fn func(Router)) {
	r.chi.Group(func(sub chi.Router) { fn(&router{chi: sub, app: r.app}) })
}

func (r *router) Route(pattern string, fn func(Router)) {
	r.chi.Route(pattern, func(sub chi.Router) { fn(&router{chi: sub, app: r.app}) })
}

func (r *router) Use(mw ...Middleware) {
	for _, m := range mw {
		r.chi.Use(r.app.chiMiddleware(m))
	}
}

func (r *router) Mount(pattern string, h http.Handler) {
	r.chi.Mount(pattern, h)
}
