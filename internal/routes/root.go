package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/payum-server/payum_server/internal/gateway"
	"github.com/payum-server/payum_server/internal/payment"
	"github.com/payum-server/payum_server/internal/router"
)

// rootLinks are the parameterless routes advertised by the API root.
var rootLinks = []string{
	payment.RouteAll,
	payment.RouteCreate,
	payment.RouteMeta,
	gateway.RouteAll,
	gateway.RouteCreate,
	gateway.RouteMeta,
}

func rootHandler(urls router.URLGenerator) router.HandlerFunc {
	return func(c *fiber.Ctx, _ router.Params) error {
		links := make(map[string]string, len(rootLinks))
		for _, name := range rootLinks {
			u, err := urls.URL(name, nil)
			if err != nil {
				return err
			}
			links[name] = u
		}
		return c.JSON(fiber.Map{"links": links})
	}
}
