package router

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payum-server/payum_server/internal/apperr"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(
		Route{Method: http.MethodGet, Pattern: "/", Handler: "root", Name: "api_root"},
		Route{Method: http.MethodGet, Pattern: "/payments/meta", Handler: "payment.meta", Name: "payment_meta"},
		Route{Method: http.MethodGet, Pattern: "/payments/{id}", Handler: "payment.get", Name: "payment_get"},
		Route{Method: http.MethodDelete, Pattern: "/payments/{id}", Handler: "payment.delete", Name: "payment_delete"},
		Route{Method: http.MethodPost, Pattern: "/payments", Handler: "payment.create", Name: "payment_create"},
		Route{Method: http.MethodGet, Pattern: "/payments", Handler: "payment.all", Name: "payment_all"},
	)
	require.NoError(t, err)
	return table
}

func TestNewTableRejectsInvalidRoutes(t *testing.T) {
	cases := []struct {
		name   string
		routes []Route
	}{
		{"duplicate name", []Route{
			{Method: http.MethodGet, Pattern: "/a", Handler: "a", Name: "same"},
			{Method: http.MethodGet, Pattern: "/b", Handler: "b", Name: "same"},
		}},
		{"unsupported method", []Route{{Method: http.MethodPatch, Pattern: "/a", Handler: "a", Name: "a"}}},
		{"missing name", []Route{{Method: http.MethodGet, Pattern: "/a", Handler: "a"}}},
		{"missing handler", []Route{{Method: http.MethodGet, Pattern: "/a", Name: "a"}}},
		{"relative pattern", []Route{{Method: http.MethodGet, Pattern: "a", Handler: "a", Name: "a"}}},
		{"malformed placeholder", []Route{{Method: http.MethodGet, Pattern: "/a/{id", Handler: "a", Name: "a"}}},
		{"partial placeholder", []Route{{Method: http.MethodGet, Pattern: "/a/x{id}", Handler: "a", Name: "a"}}},
		{"repeated placeholder", []Route{{Method: http.MethodGet, Pattern: "/a/{id}/{id}", Handler: "a", Name: "a"}}},
		{"empty segment", []Route{{Method: http.MethodGet, Pattern: "/a//b", Handler: "a", Name: "a"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTable(tc.routes...)
			assert.Error(t, err)
		})
	}
}

func TestMatch(t *testing.T) {
	table := sampleTable(t)

	cases := []struct {
		method string
		path   string
		name   string
		params Params
	}{
		{http.MethodGet, "/", "api_root", nil},
		{http.MethodGet, "/payments", "payment_all", nil},
		{http.MethodGet, "/payments/", "payment_all", nil},
		{http.MethodPost, "/payments", "payment_create", nil},
		{http.MethodGet, "/payments/meta", "payment_meta", nil},
		{http.MethodGet, "/payments/42", "payment_get", Params{"id": "42"}},
		{http.MethodHead, "/payments/42", "payment_get", Params{"id": "42"}},
		{http.MethodDelete, "/payments/a%20b", "payment_delete", Params{"id": "a b"}},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			route, params, err := table.Match(tc.method, tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.name, route.Name)
			if tc.params == nil {
				assert.Empty(t, params)
			} else {
				assert.Equal(t, tc.params, params)
			}
		})
	}
}

func TestMatchRouteNotFound(t *testing.T) {
	table := sampleTable(t)

	for _, path := range []string{"/nope", "/payments/42/extra", "/paymentz/42"} {
		_, _, err := table.Match(http.MethodGet, path)
		e, ok := apperr.As(err)
		require.True(t, ok, path)
		assert.Equal(t, apperr.KindRouteNotFound, e.Kind(), path)
		assert.Equal(t, http.StatusNotFound, e.StatusCode())
	}
}

func TestMatchMethodNotAllowed(t *testing.T) {
	table := sampleTable(t)

	_, _, err := table.Match(http.MethodPut, "/payments")
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindMethodNotAllowed, e.Kind())
	assert.Equal(t, `No route found for "PUT /payments": Method Not Allowed (Allow: POST, GET)`, e.Message())
	assert.Equal(t, []string{"POST", "GET"}, table.Allowed("/payments"))
}

func TestURL(t *testing.T) {
	table := sampleTable(t)

	u, err := table.URL("payment_get", Params{"id": "a/b"})
	require.NoError(t, err)
	assert.Equal(t, "/payments/a%2Fb", u)

	u, err = table.URL("api_root", nil)
	require.NoError(t, err)
	assert.Equal(t, "/", u)

	_, err = table.URL("payment_get", nil)
	assert.Error(t, err)

	_, err = table.URL("missing", nil)
	assert.True(t, errors.Is(err, ErrUnknownRoute))
}

func TestRoutesReturnsCopy(t *testing.T) {
	table := sampleTable(t)

	routes := table.Routes()
	routes[0].Name = "mutated"

	assert.Equal(t, "api_root", table.Routes()[0].Name)
	u, err := table.URL("api_root", nil)
	require.NoError(t, err)
	assert.Equal(t, "/", u)
}

func TestVerify(t *testing.T) {
	table := sampleTable(t)
	noop := func(c *fiber.Ctx, _ Params) error { return nil }

	reg := Registry{"root": noop, "payment.meta": noop}
	err := Verify(table, reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment.get (payment_get)")

	reg = Registry{}
	for _, r := range table.Routes() {
		reg[r.Handler] = noop
	}
	assert.NoError(t, Verify(table, reg))
}

func TestDispatcherCallsHandlerOnce(t *testing.T) {
	table := sampleTable(t)
	calls := 0
	var seen Params
	reg := Registry{
		"payment.get": func(c *fiber.Ctx, p Params) error {
			calls++
			seen = p
			route, _ := Current(c)
			return c.SendString(route.Name)
		},
	}

	app := fiber.New()
	app.Use(Dispatcher(table, reg))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/payments/42", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "payment_get", string(body))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "42", seen.Get("id"))
}

func TestDispatcherPropagatesHandlerError(t *testing.T) {
	table := sampleTable(t)
	failure := errors.New("domain failure")
	reg := Registry{"payment.all": func(*fiber.Ctx, Params) error { return failure }}

	var got error
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		got = err
		return c.SendStatus(http.StatusTeapot)
	}})
	app.Use(Dispatcher(table, reg))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/payments", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Same(t, failure, got)
}

func TestDispatcherMethodNotAllowedSetsAllow(t *testing.T) {
	table := sampleTable(t)

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		e, _ := apperr.As(err)
		return c.Status(e.StatusCode()).SendString(e.Message())
	}})
	app.Use(Dispatcher(table, Registry{}))

	resp, err := app.Test(httptest.NewRequest(http.MethodPut, "/payments", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "POST, GET", resp.Header.Get(fiber.HeaderAllow))
}
