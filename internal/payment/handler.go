package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/payum-server/payum_server/internal/apperr"
	"github.com/payum-server/payum_server/internal/form"
	"github.com/payum-server/payum_server/internal/middleware"
	"github.com/payum-server/payum_server/internal/router"
)

// Route names served by Handler.
const (
	RouteMeta   = "payment_meta"
	RouteGet    = "payment_get"
	RouteUpdate = "payment_update"
	RouteDelete = "payment_delete"
	RouteCreate = "payment_create"
	RouteAll    = "payment_all"
)

// GatewayLister reports the configured gateway names a payment may use.
type GatewayLister interface {
	Names(ctx context.Context) ([]string, error)
}

// Handler exposes payment endpoints.
type Handler struct {
	service  *Service
	gateways GatewayLister
	urls     router.URLGenerator
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service, gateways GatewayLister, urls router.URLGenerator) *Handler {
	return &Handler{service: service, gateways: gateways, urls: urls}
}

// Meta describes the payment form.
func (h *Handler) Meta(c *fiber.Ctx, _ router.Params) error {
	f, err := h.form(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"meta": f.Meta()})
}

// Get renders one payment.
func (h *Handler) Get(c *fiber.Ctx, params router.Params) error {
	p, err := h.service.Get(c.UserContext(), params.Get("id"))
	if err != nil {
		return notFound(err, params.Get("id"))
	}
	return h.render(c, fiber.StatusOK, p)
}

// Update applies a partial submission to a payment.
func (h *Handler) Update(c *fiber.Ctx, params router.Params) error {
	id := params.Get("id")
	if _, err := h.service.Get(c.UserContext(), id); err != nil {
		return notFound(err, id)
	}

	f, err := h.form(c.UserContext())
	if err != nil {
		return err
	}
	content, _ := middleware.Content(c)
	values, errs := f.Submit(content, true)
	if errs != nil {
		return form.Render(c, errs)
	}

	p, err := h.service.Update(c.UserContext(), id, updateInput(values))
	if err != nil {
		return notFound(err, id)
	}
	return h.render(c, fiber.StatusOK, p)
}

// Delete removes a payment and answers with an empty body.
func (h *Handler) Delete(c *fiber.Ctx, params router.Params) error {
	if err := h.service.Delete(c.UserContext(), params.Get("id")); err != nil {
		return notFound(err, params.Get("id"))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Create stores a submitted payment and points Location at it.
func (h *Handler) Create(c *fiber.Ctx, _ router.Params) error {
	f, err := h.form(c.UserContext())
	if err != nil {
		return err
	}
	content, _ := middleware.Content(c)
	values, errs := f.Submit(content, false)
	if errs != nil {
		return form.Render(c, errs)
	}

	p, err := h.service.Create(c.UserContext(), createInput(values))
	if err != nil {
		return err
	}
	self, err := h.urls.URL(RouteGet, router.Params{"id": p.ID})
	if err != nil {
		return err
	}
	c.Location(self)
	return h.render(c, fiber.StatusCreated, p)
}

// All lists every payment.
func (h *Handler) All(c *fiber.Ctx, _ router.Params) error {
	payments, err := h.service.All(c.UserContext())
	if err != nil {
		return err
	}
	views := make([]View, 0, len(payments))
	for _, p := range payments {
		self, err := h.urls.URL(RouteGet, router.Params{"id": p.ID})
		if err != nil {
			return err
		}
		views = append(views, NewView(p, self))
	}
	return c.JSON(fiber.Map{"payments": views})
}

func (h *Handler) render(c *fiber.Ctx, status int, p Payment) error {
	self, err := h.urls.URL(RouteGet, router.Params{"id": p.ID})
	if err != nil {
		return err
	}
	return c.Status(status).JSON(fiber.Map{"payment": NewView(p, self)})
}

func (h *Handler) form(ctx context.Context) (form.Form, error) {
	names, err := h.gateways.Names(ctx)
	if err != nil {
		return form.Form{}, fmt.Errorf("list gateways: %w", err)
	}
	return NewForm(names), nil
}

func notFound(err error, id string) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound(err, fmt.Sprintf("Payment %q was not found.", id))
	}
	return err
}
