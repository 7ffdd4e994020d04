package dispatch

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrymomot/ultralight"
	"github.com/dmitrymomot/ultralight/pkg/logger"
)

const defaultAction = "index"

// Controller exposes named actions. Keys are action names, optionally
// prefixed with the methods they accept: "index", "POST save",
// "GET|POST edit". Unprefixed actions accept GET, HEAD and POST. The same
// name may appear under different methods ("GET edit", "POST edit"); each
// method then runs its own handler.
type Controller interface {
	Actions() map[string]ultralight.HandlerFunc
}

// Pather lets a controller choose its mount path when registered through
// WithControllers. Without it the path is derived from the type name.
type Pather interface {
	Path() string
}

// Match is the result of resolving a request path.
type Match struct {
	Params     map[string]string
	Controller string
	Action     string
	Args       []string
}

type action struct {
	handlers map[string]ultralight.HandlerFunc
	methods  []string
}

type entry struct {
	actions map[string]action
	path    string
}

// Dispatcher maps request paths onto controller actions. It implements
// ultralight.Handler.
type Dispatcher struct {
	logger      *slog.Logger
	controllers map[string]*entry
	routes      []Route
	mu          sync.RWMutex
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRoutes adds explicit routes.
func WithRoutes(routes ...Route) Option {
	return func(d *Dispatcher) {
		d.routes = append(d.routes, routes...)
	}
}

// WithController registers a controller at path.
func WithController(path string, c Controller) Option {
	return func(d *Dispatcher) {
		d.Register(path, c)
	}
}

// WithControllers registers controllers at the path they report through
// Pather, or at the lowercased type name without a "Controller" suffix.
// Types named Home or Index are mounted at "/".
func WithControllers(cs ...Controller) Option {
	return func(d *Dispatcher) {
		for _, c := range cs {
			d.Register(controllerPath(c), c)
		}
	}
}

// WithLogger sets the logger used for skipped routes and actions.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		logger:      logger.NewNope(),
		controllers: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register mounts c at path. A later registration at the same path replaces
// the earlier one. Action keys naming unknown methods are skipped and logged.
func (d *Dispatcher) Register(path string, c Controller) {
	e := &entry{path: cleanPath(path), actions: make(map[string]action)}
	for key, h := range c.Actions() {
		name, methods, err := parseActionKey(key)
		if err != nil {
			d.logger.Warn("skipping controller action", "controller", e.path, "error", err)
			continue
		}
		a := e.actions[name]
		if a.handlers == nil {
			a.handlers = make(map[string]ultralight.HandlerFunc, len(methods))
		}
		for _, m := range methods {
			if _, dup := a.handlers[m]; dup {
				d.logger.Warn("duplicate controller action", "controller", e.path, "action", name, "method", m)
			}
			a.handlers[m] = h
		}
		e.actions[name] = a
	}
	for name, a := range e.actions {
		a.methods = a.methods[:0]
		for m := range a.handlers {
			a.methods = append(a.methods, m)
		}
		slices.Sort(a.methods)
		e.actions[name] = a
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.controllers[e.path] = e
}

// Resolve finds the controller action for a request. The longest registered
// controller path that prefixes the request path wins, "/" being the
// fallback. The first remaining segment names the action when the controller
// has one by that name; otherwise the index action gets all remaining
// segments as arguments.
func (d *Dispatcher) Resolve(method, path string) (Match, error) {
	segs := splitPath(path)

	d.mu.RLock()
	defer d.mu.RUnlock()

	var (
		e    *entry
		rest []string
	)
	for i := len(segs); i >= 0; i-- {
		if found, ok := d.controllers["/"+strings.ToLower(strings.Join(segs[:i], "/"))]; ok {
			e, rest = found, segs[i:]
			break
		}
	}
	if e == nil {
		return Match{}, fmt.Errorf("%w: %s", ErrNoController, path)
	}

	name := defaultAction
	if len(rest) > 0 {
		if candidate := actionName(rest[0]); e.has(candidate) {
			name, rest = candidate, rest[1:]
		}
	}
	a, ok := e.actions[name]
	if !ok {
		return Match{}, fmt.Errorf("%w: %s %s", ErrNoAction, e.path, name)
	}
	if !a.allows(method) {
		return Match{}, fmt.Errorf("%w: %s %s/%s", ErrMethodNotAllowed, method, e.path, name)
	}
	if rest == nil {
		rest = []string{}
	}
	return Match{Controller: e.path, Action: name, Args: rest}, nil
}

// Routes registers the explicit routes and a catch-all that resolves every
// other path by prefix lookup. Routes pointing at unregistered controllers or
// actions are logged and skipped.
func (d *Dispatcher) Routes(r ultralight.Router) {
	for _, rt := range d.routes {
		if err := rt.normalize(); err != nil {
			d.logger.Warn("skipping route", "error", err)
			continue
		}
		h, err := d.routeHandler(rt)
		if err != nil {
			d.logger.Warn("skipping route", "pattern", rt.Pattern, "error", err)
			continue
		}
		for _, m := range rt.Methods {
			register(r, m, rt.Pattern, h)
		}
	}

	for _, m := range []string{
		http.MethodGet, http.MethodHead, http.MethodPost,
		http.MethodPut, http.MethodPatch, http.MethodDelete,
	} {
		register(r, m, "/*", d.serve)
	}
}

func (d *Dispatcher) routeHandler(rt Route) (ultralight.HandlerFunc, error) {
	d.mu.RLock()
	e, ok := d.controllers[rt.Controller]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownController, rt.Controller)
	}
	a, ok := e.actions[rt.Action]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrNoAction, rt.Controller, rt.Action)
	}
	params := rt.Params()

	return func(c ultralight.Context) error {
		h := a.handler(c.Request().Method)
		if h == nil {
			return ultralight.NewHTTPError(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		}
		m := Match{
			Controller: rt.Controller,
			Action:     rt.Action,
			Params:     make(map[string]string, len(params)),
			Args:       make([]string, 0, len(params)),
		}
		for _, p := range params {
			v := c.Param(p)
			m.Params[p] = v
			m.Args = append(m.Args, v)
		}
		c.Set(matchKey{}, m)
		return h(c)
	}, nil
}

func (d *Dispatcher) serve(c ultralight.Context) error {
	m, err := d.Resolve(c.Request().Method, "/"+c.Param("*"))
	switch {
	case errors.Is(err, ErrMethodNotAllowed):
		return ultralight.NewHTTPError(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	case err != nil:
		return ultralight.ErrNotFound(http.StatusText(http.StatusNotFound), ultralight.WithError(err))
	}

	d.mu.RLock()
	h := d.controllers[m.Controller].actions[m.Action].handler(c.Request().Method)
	d.mu.RUnlock()

	c.Set(matchKey{}, m)
	return h(c)
}

// Endpoint describes one reachable action, for listings.
type Endpoint struct {
	Pattern    string
	Controller string
	Action     string
	Methods    []string
}

// Endpoints lists explicit routes followed by every controller action, both
// sorted by path.
func (d *Dispatcher) Endpoints() []Endpoint {
	var out []Endpoint
	for _, rt := range d.routes {
		if rt.normalize() != nil {
			continue
		}
		out = append(out, Endpoint{Pattern: rt.Pattern, Controller: rt.Controller, Action: rt.Action, Methods: rt.Methods})
	}

	d.mu.RLock()
	var actions []Endpoint
	for _, e := range d.controllers {
		for name, a := range e.actions {
			pattern := e.path
			if name != defaultAction {
				pattern = strings.TrimSuffix(pattern, "/") + "/" + name
			}
			actions = append(actions, Endpoint{Pattern: pattern, Controller: e.path, Action: name, Methods: a.methods})
		}
	}
	d.mu.RUnlock()

	sort.Slice(actions, func(i, j int) bool { return actions[i].Pattern < actions[j].Pattern })
	return append(out, actions...)
}

func (e *entry) has(name string) bool {
	_, ok := e.actions[name]
	return ok
}

// handler returns the handler for method. HEAD falls back to GET.
func (a action) handler(method string) ultralight.HandlerFunc {
	if h, ok := a.handlers[method]; ok {
		return h
	}
	if method == http.MethodHead {
		return a.handlers[http.MethodGet]
	}
	return nil
}

func (a action) allows(method string) bool {
	return a.handler(method) != nil
}

func register(r ultralight.Router, method, pattern string, h ultralight.HandlerFunc) {
	switch method {
	case http.MethodGet:
		r.GET(pattern, h)
	case http.MethodHead:
		r.HEAD(pattern, h)
	case http.MethodPost:
		r.POST(pattern, h)
	case http.MethodPut:
		r.PUT(pattern, h)
	case http.MethodPatch:
		r.PATCH(pattern, h)
	case http.MethodDelete:
		r.DELETE(pattern, h)
	case http.MethodOptions:
		r.OPTIONS(pattern, h)
	}
}

func parseActionKey(key string) (string, []string, error) {
	fields := strings.Fields(key)
	switch len(fields) {
	case 1:
		return actionName(fields[0]), []string{http.MethodGet, http.MethodHead, http.MethodPost}, nil
	case 2:
		var methods []string
		for m := range strings.SplitSeq(strings.ToUpper(fields[0]), "|") {
			if !knownMethod(m) {
				return "", nil, fmt.Errorf("%w: %q", ErrInvalidAction, key)
			}
			methods = append(methods, m)
		}
		return actionName(fields[1]), methods, nil
	}
	return "", nil, fmt.Errorf("%w: %q", ErrInvalidAction, key)
}

func actionName(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}

func splitPath(p string) []string {
	var segs []string
	for s := range strings.SplitSeq(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func cleanPath(p string) string {
	return "/" + strings.ToLower(strings.Join(splitPath(p), "/"))
}

func controllerPath(c Controller) string {
	if p, ok := c.(Pather); ok {
		return p.Path()
	}
	t := reflect.TypeOf(c)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := strings.ToLower(strings.TrimSuffix(t.Name(), "Controller"))
	if name == "home" || name == "index" {
		return "/"
	}
	return "/" + name
}
