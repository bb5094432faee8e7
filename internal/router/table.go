package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/payum-server/payum_server/internal/apperr"
)

// Route binds a method and path pattern to a handler reference. Name is used
// for reverse routing and must be unique within a Table.
type Route struct {
	Method  string
	Pattern string
	Handler string
	Name    string
}

// Params holds the path parameter values captured by a match.
type Params map[string]string

// Get returns the named parameter or "".
func (p Params) Get(name string) string {
	return p[name]
}

// URLGenerator builds paths for named routes.
type URLGenerator interface {
	URL(name string, params Params) (string, error)
}

// ErrUnknownRoute is returned by URL for names not present in the table.
var ErrUnknownRoute = errors.New("unknown route")

type segment struct {
	literal     string
	placeholder string
}

type compiledRoute struct {
	Route
	segments []segment
}

// Table is an immutable set of routes built once at startup.
type Table struct {
	routes []compiledRoute
	byName map[string]int
}

// NewTable validates routes and freezes them in registration order.
func NewTable(routes ...Route) (*Table, error) {
	t := &Table{byName: make(map[string]int, len(routes))}
	for _, r := range routes {
		if r.Name == "" {
			return nil, fmt.Errorf("route %s %s: name is required", r.Method, r.Pattern)
		}
		if _, exists := t.byName[r.Name]; exists {
			return nil, fmt.Errorf("route %q registered twice", r.Name)
		}
		switch r.Method {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		default:
			return nil, fmt.Errorf("route %q: unsupported method %q", r.Name, r.Method)
		}
		if r.Handler == "" {
			return nil, fmt.Errorf("route %q: handler is required", r.Name)
		}
		segs, err := compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", r.Name, err)
		}
		t.byName[r.Name] = len(t.routes)
		t.routes = append(t.routes, compiledRoute{Route: r, segments: segs})
	}
	return t, nil
}

// MustTable is NewTable for static route lists; it panics on invalid input.
func MustTable(routes ...Route) *Table {
	t, err := NewTable(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// Routes returns a copy of the registered routes in order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	for i, r := range t.routes {
		out[i] = r.Route
	}
	return out
}

// Match selects the first route matching method and path. It fails with a
// RouteNotFound error when no route matches the path under any method and
// with MethodNotAllowed when only other methods match.
func (t *Table) Match(method, path string) (Route, Params, error) {
	parts := split(path)
	lookup := method
	if lookup == http.MethodHead {
		lookup = http.MethodGet
	}

	var allowed []string
	for _, r := range t.routes {
		params, ok := r.match(parts)
		if !ok {
			continue
		}
		if r.Method == lookup {
			return r.Route, params, nil
		}
		allowed = appendUnique(allowed, r.Method)
	}

	if len(allowed) == 0 {
		return Route{}, nil, apperr.RouteNotFound(method, path)
	}
	return Route{}, nil, apperr.MethodNotAllowed(method, path, allowed)
}

// Allowed lists the methods of every route matching path, in registration
// order.
func (t *Table) Allowed(path string) []string {
	parts := split(path)
	var allowed []string
	for _, r := range t.routes {
		if _, ok := r.match(parts); ok {
			allowed = appendUnique(allowed, r.Method)
		}
	}
	return allowed
}

// URL builds the path of the named route, substituting params.
func (t *Table) URL(name string, params Params) (string, error) {
	i, ok := t.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}
	r := t.routes[i]
	if len(r.segments) == 0 {
		return "/", nil
	}

	var b strings.Builder
	for _, s := range r.segments {
		b.WriteByte('/')
		if s.placeholder == "" {
			b.WriteString(s.literal)
			continue
		}
		v, ok := params[s.placeholder]
		if !ok || v == "" {
			return "", fmt.Errorf("route %q: missing parameter %q", name, s.placeholder)
		}
		b.WriteString(url.PathEscape(v))
	}
	return b.String(), nil
}

func (r compiledRoute) match(parts []string) (Params, bool) {
	if len(parts) != len(r.segments) {
		return nil, false
	}
	var params Params
	for i, s := range r.segments {
		if s.placeholder == "" {
			if parts[i] != s.literal {
				return nil, false
			}
			continue
		}
		v, err := url.PathUnescape(parts[i])
		if err != nil || v == "" {
			return nil, false
		}
		if params == nil {
			params = make(Params, len(r.segments))
		}
		params[s.placeholder] = v
	}
	return params, true
}

func compile(pattern string) ([]segment, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("pattern %q must start with /", pattern)
	}
	parts := split(pattern)
	segs := make([]segment, 0, len(parts))
	seen := make(map[string]bool)
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("pattern %q has an empty segment", pattern)
		}
		if !strings.ContainsAny(p, "{}") {
			segs = append(segs, segment{literal: p})
			continue
		}
		if !strings.HasPrefix(p, "{") || !strings.HasSuffix(p, "}") || len(p) < 3 || strings.ContainsAny(p[1:len(p)-1], "{}/") {
			return nil, fmt.Errorf("pattern %q: malformed placeholder %q", pattern, p)
		}
		name := p[1 : len(p)-1]
		if seen[name] {
			return nil, fmt.Errorf("pattern %q: placeholder %q used twice", pattern, name)
		}
		seen[name] = true
		segs = append(segs, segment{placeholder: name})
	}
	return segs, nil
}

// split breaks a path into segments. "/" yields none and a trailing slash is
// ignored.
func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
