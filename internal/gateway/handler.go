package gateway

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/gofiber/fiber/v2"

	"github.com/payum-server/payum_server/internal/apperr"
	"github.com/payum-server/payum_server/internal/form"
	"github.com/payum-server/payum_server/internal/middleware"
	"github.com/payum-server/payum_server/internal/router"
)

// Route names served by Handler.
const (
	RouteMeta   = "payment_factory_get_all"
	RouteAll    = "gateway_all"
	RouteGet    = "gateway_get"
	RouteDelete = "gateway_delete"
	RouteCreate = "gateway_create"
)

const (
	fieldGatewayName = "gatewayName"
	fieldFactoryName = "factoryName"
	fieldConfig      = "config"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]*$`)

// Handler exposes gateway endpoints.
type Handler struct {
	service *Service
	urls    router.URLGenerator
}

// NewHandler constructs a gateway handler.
func NewHandler(service *Service, urls router.URLGenerator) *Handler {
	return &Handler{service: service, urls: urls}
}

// NewForm builds the generic gateway form for the given factories.
func NewForm(factories *Registry) form.Form {
	return form.Form{
		Name: "gateway",
		Fields: []form.Field{
			{Name: fieldGatewayName, Type: form.TypeString, Required: true, Pattern: namePattern,
				Help: "Letters, digits, dashes and underscores."},
			{Name: fieldFactoryName, Type: form.TypeChoice, Required: true, Choices: factories.Names()},
			{Name: fieldConfig, Type: form.TypeMap},
		},
	}
}

type factoryMeta struct {
	Title  string    `json:"title"`
	Config form.Meta `json:"config"`
}

// Meta describes the generic gateway form and every factory's config form.
func (h *Handler) Meta(c *fiber.Ctx, _ router.Params) error {
	factories := h.service.Factories()
	meta := make(map[string]factoryMeta)
	for _, f := range factories.All() {
		meta[f.Name] = factoryMeta{Title: f.Title, Config: f.Form().Meta()}
	}
	return c.JSON(fiber.Map{
		"generic": NewForm(factories).Meta(),
		"meta":    meta,
	})
}

// All lists every gateway keyed by name.
func (h *Handler) All(c *fiber.Ctx, _ router.Params) error {
	configs, err := h.service.All(c.UserContext())
	if err != nil {
		return err
	}
	views := make(map[string]View, len(configs))
	for _, cfg := range configs {
		v, err := h.view(cfg)
		if err != nil {
			return err
		}
		views[cfg.GatewayName] = v
	}
	return c.JSON(fiber.Map{"gateways": views})
}

// Get renders one gateway.
func (h *Handler) Get(c *fiber.Ctx, params router.Params) error {
	cfg, err := h.service.Get(c.UserContext(), params.Get("name"))
	if err != nil {
		return notFound(err, params.Get("name"))
	}
	return h.render(c, fiber.StatusOK, cfg)
}

// Delete removes a gateway and answers with an empty body.
func (h *Handler) Delete(c *fiber.Ctx, params router.Params) error {
	if err := h.service.Delete(c.UserContext(), params.Get("name")); err != nil {
		return notFound(err, params.Get("name"))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Create validates the generic form, then the config against the chosen
// factory, and stores the gateway.
func (h *Handler) Create(c *fiber.Ctx, _ router.Params) error {
	factories := h.service.Factories()
	content, _ := middleware.Content(c)
	values, errs := NewForm(factories).Submit(content, false)
	if errs != nil {
		return form.Render(c, errs)
	}

	factory, _ := factories.Get(values.String(fieldFactoryName))
	submitted := values.Map(fieldConfig)
	if submitted == nil {
		submitted = map[string]any{}
	}
	options, errs := factory.Form().Submit(submitted, false)
	if errs != nil {
		return form.Render(c, errs.Prefix(fieldConfig))
	}

	cfg, err := h.service.Create(c.UserContext(), Config{
		GatewayName: values.String(fieldGatewayName),
		FactoryName: factory.Name,
		Config:      options,
	})
	switch {
	case errors.Is(err, ErrExists):
		return apperr.Conflict(err, fmt.Sprintf("Gateway %q already exists.", values.String(fieldGatewayName)))
	case errors.Is(err, ErrReservedPrefix), errors.Is(err, ErrUnknownFactory):
		return apperr.InvalidInput(err, err.Error())
	case err != nil:
		return err
	}

	self, err := h.urls.URL(RouteGet, router.Params{"name": cfg.GatewayName})
	if err != nil {
		return err
	}
	c.Location(self)
	return h.render(c, fiber.StatusCreated, cfg)
}

func (h *Handler) render(c *fiber.Ctx, status int, cfg Config) error {
	v, err := h.view(cfg)
	if err != nil {
		return err
	}
	return c.Status(status).JSON(fiber.Map{"gateway": v})
}

func (h *Handler) view(cfg Config) (View, error) {
	self, err := h.urls.URL(RouteGet, router.Params{"name": cfg.GatewayName})
	if err != nil {
		return View{}, err
	}
	factory, _ := h.service.Factories().Get(cfg.FactoryName)
	return NewView(cfg, factory, self), nil
}

func notFound(err error, name string) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound(err, fmt.Sprintf("Gateway %q was not found.", name))
	}
	return err
}
