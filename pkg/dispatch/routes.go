package dispatch

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Route maps a chi pattern onto a controller action. Routes take precedence
// over prefix lookup.
type Route struct {
	Pattern    string   `yaml:"pattern"`
	Controller string   `yaml:"controller"`
	Action     string   `yaml:"action"`
	Methods    []string `yaml:"methods"`
}

// RouteTable is the YAML document read by LoadRoutes.
//
//	routes:
//	  - pattern: /blog/{year}/{slug}
//	    controller: /articles
//	    action: show
//	  - pattern: /feed.xml
//	    controller: /feeds
//	    action: rss
//	    methods: [GET]
type RouteTable struct {
	Routes []Route `yaml:"routes"`
}

var paramRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)(?::[^}]*)?\}`)

// LoadRoutes decodes and validates a route table.
func LoadRoutes(r io.Reader) ([]Route, error) {
	var table RouteTable
	if err := yaml.NewDecoder(r).Decode(&table); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("dispatch: decode routes: %w", err)
	}
	for i := range table.Routes {
		if err := table.Routes[i].normalize(); err != nil {
			return nil, fmt.Errorf("route %d: %w", i, err)
		}
	}
	return table.Routes, nil
}

// LoadRoutesFile reads a route table from fsys.
func LoadRoutesFile(fsys fs.FS, name string) ([]Route, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("dispatch: open routes: %w", err)
	}
	defer f.Close()
	return LoadRoutes(f)
}

func (rt *Route) normalize() error {
	if !strings.HasPrefix(rt.Pattern, "/") {
		return fmt.Errorf("%w: pattern %q must start with /", ErrInvalidRoute, rt.Pattern)
	}
	if strings.TrimSpace(rt.Controller) == "" {
		return fmt.Errorf("%w: %s has no controller", ErrInvalidRoute, rt.Pattern)
	}
	rt.Controller = cleanPath(rt.Controller)
	rt.Action = actionName(rt.Action)
	if rt.Action == "" {
		rt.Action = defaultAction
	}
	if len(rt.Methods) == 0 {
		rt.Methods = []string{http.MethodGet, http.MethodPost}
	}
	for i, m := range rt.Methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if !knownMethod(m) {
			return fmt.Errorf("%w: %s: unknown method %q", ErrInvalidRoute, rt.Pattern, m)
		}
		rt.Methods[i] = m
	}
	return nil
}

// Params returns the parameter names of the pattern in order.
func (rt Route) Params() []string {
	var names []string
	for _, m := range paramRe.FindAllStringSubmatch(rt.Pattern, -1) {
		names = append(names, m[1])
	}
	return names
}

func knownMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}
