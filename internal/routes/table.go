package routes

import (
	"net/http"

	"github.com/payum-server/payum_server/internal/gateway"
	"github.com/payum-server/payum_server/internal/payment"
	"github.com/payum-server/payum_server/internal/router"
)

// Handler references bound by the route table.
const (
	refRoot          = "root:index"
	refHealth        = "health:check"
	refPaymentMeta   = "payment:meta"
	refPaymentGet    = "payment:get"
	refPaymentUpdate = "payment:update"
	refPaymentDelete = "payment:delete"
	refPaymentCreate = "payment:create"
	refPaymentAll    = "payment:all"
	refGatewayMeta   = "gateway_meta:all"
	refGatewayAll    = "gateway:all"
	refGatewayGet    = "gateway:get"
	refGatewayDelete = "gateway:delete"
	refGatewayCreate = "gateway:create"
)

const (
	RouteRoot   = "api_root"
	RouteHealth = "health_check"
)

// Table returns the API route table. Literal routes are registered before the
// placeholder routes sharing their prefix so /payments/meta is not read as an id.
func Table() *router.Table {
	return router.MustTable(
		router.Route{Method: http.MethodGet, Pattern: "/", Handler: refRoot, Name: RouteRoot},
		router.Route{Method: http.MethodGet, Pattern: "/payments/meta", Handler: refPaymentMeta, Name: payment.RouteMeta},
		router.Route{Method: http.MethodGet, Pattern: "/payments/{id}", Handler: refPaymentGet, Name: payment.RouteGet},
		router.Route{Method: http.MethodPut, Pattern: "/payments/{id}", Handler: refPaymentUpdate, Name: payment.RouteUpdate},
		router.Route{Method: http.MethodDelete, Pattern: "/payments/{id}", Handler: refPaymentDelete, Name: payment.RouteDelete},
		router.Route{Method: http.MethodPost, Pattern: "/payments", Handler: refPaymentCreate, Name: payment.RouteCreate},
		router.Route{Method: http.MethodGet, Pattern: "/payments", Handler: refPaymentAll, Name: payment.RouteAll},

		router.Route{Method: http.MethodGet, Pattern: "/gateways/meta", Handler: refGatewayMeta, Name: gateway.RouteMeta},
		router.Route{Method: http.MethodGet, Pattern: "/gateways", Handler: refGatewayAll, Name: gateway.RouteAll},
		router.Route{Method: http.MethodGet, Pattern: "/gateways/{name}", Handler: refGatewayGet, Name: gateway.RouteGet},
		router.Route{Method: http.MethodDelete, Pattern: "/gateways/{name}", Handler: refGatewayDelete, Name: gateway.RouteDelete},
		router.Route{Method: http.MethodPost, Pattern: "/gateways", Handler: refGatewayCreate, Name: gateway.RouteCreate},

		router.Route{Method: http.MethodGet, Pattern: "/healthz", Handler: refHealth, Name: RouteHealth},
	)
}
