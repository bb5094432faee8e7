package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payum-server/payum_server/internal/config"
	"github.com/payum-server/payum_server/internal/gateway"
	"github.com/payum-server/payum_server/internal/logging"
	"github.com/payum-server/payum_server/internal/middleware"
)

const origin = "https://shop.example"

type response struct {
	status int
	header http.Header
	body   string
}

func (r response) json(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.body), &out), r.body)
	return out
}

func newTestApp(t *testing.T, mutate func(*Deps)) *fiber.App {
	t.Helper()
	d := Deps{
		Cfg:    config.Config{AppEnv: "test", CORSAllowOrigins: []string{"*"}},
		Logger: logging.Discard(),
	}
	if mutate != nil {
		mutate(&d)
	}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	require.NoError(t, Setup(app, d))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, contentType, body string) response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderOrigin, origin)
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, header: resp.Header, body: string(raw)}
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) response {
	t.Helper()
	return do(t, app, method, path, fiber.MIMEApplicationJSON, body)
}

func assertCORS(t *testing.T, r response) {
	t.Helper()
	assert.Equal(t, "*", r.header.Get(fiber.HeaderAccessControlAllowOrigin))
}

func TestCORSHeadersWithoutOriginHeader(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/payments", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))

	req := httptest.NewRequest(fiber.MethodPost, "/payments", strings.NewReader("amount=1"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Contains(t, resp.Header.Get(fiber.HeaderAccessControlExposeHeaders), fiber.HeaderLocation)
}

func TestRejectsNonJSONContentType(t *testing.T) {
	app := newTestApp(t, nil)

	r := do(t, app, fiber.MethodPost, "/payments", fiber.MIMETextPlain, `{"totalAmount":1}`)
	assert.Equal(t, fiber.StatusBadRequest, r.status)
	assert.Equal(t, "The request content type is invalid. It must be application/json", r.body)
	assertCORS(t, r)
}

func TestRejectsMalformedJSON(t *testing.T) {
	app := newTestApp(t, nil)

	for _, body := range []string{"not-json", "null", "{\"gatewayName\":\"caf\xe9\"}"} {
		r := doJSON(t, app, fiber.MethodPost, "/payments", body)
		assert.Equal(t, fiber.StatusBadRequest, r.status, body)
		doc := r.json(t)
		assert.Equal(t, "MalformedJson", doc["exception"])
		assert.Equal(t, "The request content is not valid json.", doc["message"])
		assert.Equal(t, float64(0), doc["code"])
		for _, key := range []string{"file", "line", "stackTrace"} {
			assert.Contains(t, doc, key)
		}
		assertCORS(t, r)
	}
}

func TestUnknownPathSkipsContentValidation(t *testing.T) {
	app := newTestApp(t, nil)

	r := doJSON(t, app, fiber.MethodGet, "/paymnts/42", "not-json")
	assert.Equal(t, fiber.StatusNotFound, r.status)
	doc := r.json(t)
	assert.Equal(t, "RouteNotFound", doc["exception"])
	assert.Equal(t, `No route found for "GET /paymnts/42"`, doc["message"])
	assertCORS(t, r)
}

func TestMethodNotAllowed(t *testing.T) {
	app := newTestApp(t, nil)

	r := doJSON(t, app, fiber.MethodPatch, "/payments", `{}`)
	assert.Equal(t, fiber.StatusMethodNotAllowed, r.status)
	assert.Equal(t, "POST, GET", r.header.Get(fiber.HeaderAllow))
	assert.Equal(t, "MethodNotAllowed", r.json(t)["exception"])
}

type failingGateways struct {
	gateway.Repository
}

func (failingGateways) Create(context.Context, gateway.Config) error {
	return errors.New("storage offline")
}

func TestUnclassifiedHandlerFailure(t *testing.T) {
	app := newTestApp(t, func(d *Deps) {
		d.Gateways = failingGateways{Repository: gateway.NewMemoryRepository()}
	})

	r := doJSON(t, app, fiber.MethodPost, "/gateways", `{"gatewayName":"cash","factoryName":"offline"}`)
	assert.Equal(t, fiber.StatusInternalServerError, r.status)
	doc := r.json(t)
	assert.Equal(t, "errors.errorString", doc["exception"])
	assert.Equal(t, "storage offline", doc["message"])
	assert.NotEmpty(t, doc["stackTrace"])
	assertCORS(t, r)
}

func TestPaymentLifecycle(t *testing.T) {
	app := newTestApp(t, nil)

	r := doJSON(t, app, fiber.MethodPost, "/gateways", `{"gatewayName":"cash","factoryName":"offline"}`)
	require.Equal(t, fiber.StatusCreated, r.status, r.body)
	assert.Equal(t, "/gateways/cash", r.header.Get(fiber.HeaderLocation))

	r = doJSON(t, app, fiber.MethodPost, "/payments",
		`{"gatewayName":"cash","totalAmount":1250,"currencyCode":"usd","clientEmail":"buyer@example.com","details":{"cart":[1,2]}}`)
	require.Equal(t, fiber.StatusCreated, r.status, r.body)
	created := r.json(t)["payment"].(map[string]any)
	id := created["id"].(string)
	self := "/payments/" + id
	assert.Equal(t, self, r.header.Get(fiber.HeaderLocation))
	assert.Equal(t, "new", created["status"])
	assert.Equal(t, "USD", created["currencyCode"])
	assert.Equal(t, float64(1250), created["totalAmount"])
	assert.Equal(t, map[string]any{"cart": []any{float64(1), float64(2)}}, created["details"])
	assert.Equal(t, map[string]any{"self": self}, created["_links"])

	r = doJSON(t, app, fiber.MethodPut, self, `{"totalAmount":2000}`)
	require.Equal(t, fiber.StatusOK, r.status, r.body)
	updated := r.json(t)["payment"].(map[string]any)
	assert.Equal(t, float64(2000), updated["totalAmount"])
	assert.Equal(t, "buyer@example.com", updated["clientEmail"])

	r = do(t, app, fiber.MethodGet, self, "", "")
	require.Equal(t, fiber.StatusOK, r.status)
	assert.Equal(t, id, r.json(t)["payment"].(map[string]any)["id"])

	r = do(t, app, fiber.MethodGet, "/payments", "", "")
	require.Equal(t, fiber.StatusOK, r.status)
	assert.Len(t, r.json(t)["payments"], 1)

	r = do(t, app, fiber.MethodDelete, self, "", "")
	assert.Equal(t, fiber.StatusNoContent, r.status)
	assert.Empty(t, r.body)
	assertCORS(t, r)

	r = doJSON(t, app, fiber.MethodGet, self, "")
	assert.Equal(t, fiber.StatusNotFound, r.status)
	assert.Equal(t, "NotFound", r.json(t)["exception"])
}

func TestPaymentFormViolations(t *testing.T) {
	app := newTestApp(t, nil)

	r := doJSON(t, app, fiber.MethodPost, "/payments", `{"gatewayName":"ghost","totalAmount":"lots","extra":true}`)
	assert.Equal(t, fiber.StatusBadRequest, r.status)
	errs := r.json(t)["errors"].(map[string]any)
	assert.Contains(t, errs, "gatewayName")
	assert.Contains(t, errs, "totalAmount")
	assert.Contains(t, errs, "currencyCode")
	assert.Contains(t, errs, "form")
	assertCORS(t, r)
}

func TestGatewaySecretsAreMaskedAndDuplicatesConflict(t *testing.T) {
	app := newTestApp(t, func(d *Deps) {
		d.Cfg.GatewaySecretKey = []byte(strings.Repeat("k", 32))
	})
	body := `{"gatewayName":"stripe","factoryName":"stripe_checkout","config":{"publishable_key":"pk","secret_key":"sk"}}`

	r := doJSON(t, app, fiber.MethodPost, "/gateways", body)
	require.Equal(t, fiber.StatusCreated, r.status, r.body)
	cfg := r.json(t)["gateway"].(map[string]any)["config"].(map[string]any)
	assert.Equal(t, "********", cfg["secret_key"])
	assert.Equal(t, "pk", cfg["publishable_key"])

	r = doJSON(t, app, fiber.MethodPost, "/gateways", body)
	assert.Equal(t, fiber.StatusConflict, r.status)
	assert.Equal(t, "Conflict", r.json(t)["exception"])

	r = do(t, app, fiber.MethodGet, "/gateways", "", "")
	require.Equal(t, fiber.StatusOK, r.status)
	assert.Contains(t, r.json(t)["gateways"], "stripe")

	r = do(t, app, fiber.MethodDelete, "/gateways/stripe", "", "")
	assert.Equal(t, fiber.StatusNoContent, r.status)
}

func TestGatewayReservedSecretPrefixWithoutKey(t *testing.T) {
	app := newTestApp(t, nil)

	r := doJSON(t, app, fiber.MethodPost, "/gateways",
		`{"gatewayName":"s1","factoryName":"stripe_checkout","config":{"publishable_key":"pk","secret_key":"sealed:abc"}}`)
	assert.Equal(t, fiber.StatusBadRequest, r.status)
	assert.Equal(t, "InvalidInput", r.json(t)["exception"])

	r = do(t, app, fiber.MethodGet, "/gateways", "", "")
	require.Equal(t, fiber.StatusOK, r.status, r.body)
	assert.Empty(t, r.json(t)["gateways"])
}

func TestGatewayConfigViolations(t *testing.T) {
	app := newTestApp(t, nil)

	r := doJSON(t, app, fiber.MethodPost, "/gateways", `{"gatewayName":"pp","factoryName":"paypal_express_checkout","config":{"username":"u"}}`)
	assert.Equal(t, fiber.StatusBadRequest, r.status)
	errs := r.json(t)["errors"].(map[string]any)
	assert.Contains(t, errs, "config.password")
	assert.Contains(t, errs, "config.signature")
	assert.NotContains(t, errs, "config.username")
}

func TestMetaEndpoints(t *testing.T) {
	app := newTestApp(t, nil)

	r := do(t, app, fiber.MethodGet, "/gateways/meta", "", "")
	require.Equal(t, fiber.StatusOK, r.status)
	doc := r.json(t)
	assert.Contains(t, doc, "generic")
	meta := doc["meta"].(map[string]any)
	assert.Equal(t, "Stripe Checkout", meta["stripe_checkout"].(map[string]any)["title"])

	r = do(t, app, fiber.MethodGet, "/payments/meta", "", "")
	require.Equal(t, fiber.StatusOK, r.status)
	assert.Equal(t, "payment", r.json(t)["meta"].(map[string]any)["name"])
}

func TestRootLinks(t *testing.T) {
	app := newTestApp(t, nil)

	r := do(t, app, fiber.MethodGet, "/", "", "")
	require.Equal(t, fiber.StatusOK, r.status)
	links := r.json(t)["links"].(map[string]any)
	assert.Equal(t, "/payments", links["payment_all"])
	assert.Equal(t, "/gateways/meta", links["payment_factory_get_all"])
	assertCORS(t, r)
}

func TestDebugPrettyPrints(t *testing.T) {
	compact := do(t, newTestApp(t, nil), fiber.MethodGet, "/", "", "")
	pretty := do(t, newTestApp(t, func(d *Deps) { d.Cfg.Debug = true }), fiber.MethodGet, "/", "", "")

	assert.NotContains(t, compact.body, "\n")
	assert.Contains(t, pretty.body, "\n    \"links\": {")
	assert.JSONEq(t, compact.body, pretty.body)
}

func TestHealthAndIdempotencyWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	app := newTestApp(t, func(d *Deps) { d.Cache = cache })

	r := do(t, app, fiber.MethodGet, "/healthz", "", "")
	require.Equal(t, fiber.StatusOK, r.status)
	status := r.json(t)["status"].(map[string]any)
	assert.Equal(t, "ok", status["redis"])
	assert.Equal(t, "disabled", status["postgres"])

	send := func() response {
		req := httptest.NewRequest(fiber.MethodPost, "/gateways", strings.NewReader(`{"gatewayName":"cash","factoryName":"offline"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set("Idempotency-Key", "k-1")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return response{status: resp.StatusCode, header: resp.Header, body: string(raw)}
	}

	first := send()
	require.Equal(t, fiber.StatusCreated, first.status, first.body)
	second := send()
	assert.Equal(t, fiber.StatusCreated, second.status)
	assert.Equal(t, first.body, second.body)
	assert.Equal(t, "true", second.header.Get("Idempotent-Replayed"))
}

func TestSetupRequiresStoresOutsideDevelopment(t *testing.T) {
	app := fiber.New()
	err := Setup(app, Deps{Cfg: config.Config{AppEnv: "production"}, Logger: logging.Discard()})
	assert.Error(t, err)
}

func TestTableBindsEveryHandler(t *testing.T) {
	table := Table()
	registry, err := handlers(table, Deps{Cfg: config.Config{AppEnv: "test"}, Logger: logging.Discard()})
	require.NoError(t, err)
	assert.Len(t, table.Routes(), 13)
	assert.Len(t, registry, 13)
}
