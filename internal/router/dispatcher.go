package router

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/payum-server/payum_server/internal/apperr"
)

// RouteLocal is the fiber local holding the matched Route.
const RouteLocal = "route"

// HandlerFunc serves a matched route.
type HandlerFunc func(c *fiber.Ctx, params Params) error

// Resolver looks up handlers by the reference a Route carries.
type Resolver interface {
	Resolve(ref string) (HandlerFunc, bool)
}

// Registry is a map backed Resolver.
type Registry map[string]HandlerFunc

// Resolve implements Resolver.
func (r Registry) Resolve(ref string) (HandlerFunc, bool) {
	h, ok := r[ref]
	return h, ok && h != nil
}

// Verify checks that every route in the table resolves to a handler.
func Verify(t *Table, resolver Resolver) error {
	var missing []string
	for _, r := range t.Routes() {
		if _, ok := resolver.Resolve(r.Handler); !ok {
			missing = append(missing, fmt.Sprintf("%s (%s)", r.Handler, r.Name))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("unresolved route handlers: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Dispatcher returns the terminal stage: it matches the request against the
// table and calls the bound handler exactly once, returning its result as is.
func Dispatcher(t *Table, resolver Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		route, params, err := t.Match(c.Method(), path)
		if err != nil {
			if e, ok := apperr.As(err); ok && e.Kind() == apperr.KindMethodNotAllowed {
				c.Set(fiber.HeaderAllow, strings.Join(t.Allowed(path), ", "))
			}
			return err
		}

		h, ok := resolver.Resolve(route.Handler)
		if !ok {
			return apperr.Internal(fmt.Errorf("no handler registered for %q", route.Handler))
		}

		c.Locals(RouteLocal, route)
		if params == nil {
			params = Params{}
		}
		return h(c, params)
	}
}

// Current returns the route matched for the request, if any.
func Current(c *fiber.Ctx) (Route, bool) {
	r, ok := c.Locals(RouteLocal).(Route)
	return r, ok
}
