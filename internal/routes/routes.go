package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/payum-server/payum_server/internal/config"
	"github.com/payum-server/payum_server/internal/gateway"
	"github.com/payum-server/payum_server/internal/logging"
	"github.com/payum-server/payum_server/internal/middleware"
	"github.com/payum-server/payum_server/internal/notification"
	"github.com/payum-server/payum_server/internal/payment"
	"github.com/payum-server/payum_server/internal/router"
)

// Deps aggregates shared dependencies required to wire routes. Repositories
// and the notifier are optional; when nil they are derived from DB and Logger.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Logger   *slog.Logger
	Payments payment.Repository
	Gateways gateway.Repository
	Notifier notification.Notifier
}

// Setup installs the request pipeline on app. Stages run in slice order on
// the way in and in reverse on the way out, so a stage sees every response
// produced after it, error documents included.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDevelopment() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	if d.Logger == nil {
		d.Logger = logging.Discard()
	}

	table := Table()
	registry, err := handlers(table, d)
	if err != nil {
		return err
	}
	if err := router.Verify(table, registry); err != nil {
		return err
	}

	for _, stage := range Stages(d, table, registry) {
		app.Use(stage)
	}
	return nil
}

// Stages returns the ordered pipeline ending with the dispatcher.
func Stages(d Deps, table *router.Table, resolver router.Resolver) []fiber.Handler {
	stages := []fiber.Handler{middleware.RequestID()}
	if d.Cfg.AccessLog {
		stages = append(stages, logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	stages = append(stages,
		middleware.Audit(d.Logger),
		middleware.CORS(middleware.CORSOptions{
			AllowOrigins: d.Cfg.CORSAllowOrigins,
			AllowHeaders: d.Cfg.CORSAllowHeaders,
			MaxAge:       d.Cfg.CORSMaxAge,
		}),
		middleware.Format(d.Cfg.Debug),
		middleware.ErrorNormalize(d.Logger),
		middleware.Recover(),
		middleware.ContentValidation(),
	)
	if d.Cache != nil {
		stages = append(stages, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	return append(stages, router.Dispatcher(table, resolver))
}

func handlers(table *router.Table, d Deps) (router.Registry, error) {
	notifier := d.Notifier
	if notifier == nil {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}

	paymentRepo := d.Payments
	if paymentRepo == nil {
		if d.DB != nil {
			paymentRepo = payment.NewPostgresRepository(d.DB)
		} else {
			paymentRepo = payment.NewMemoryRepository()
		}
	}
	gatewayRepo := d.Gateways
	if gatewayRepo == nil {
		if d.DB != nil {
			gatewayRepo = gateway.NewPostgresRepository(d.DB)
		} else {
			gatewayRepo = gateway.NewMemoryRepository()
		}
	}

	var sealer *gateway.Sealer
	if len(d.Cfg.GatewaySecretKey) > 0 {
		var err error
		if sealer, err = gateway.NewSealer(d.Cfg.GatewaySecretKey); err != nil {
			return nil, err
		}
	}

	gatewaySvc := gateway.NewService(gatewayRepo, gateway.DefaultRegistry(), sealer, notifier, d.Logger)
	paymentSvc := payment.NewService(paymentRepo, notifier, d.Logger)
	gatewayHandler := gateway.NewHandler(gatewaySvc, table)
	paymentHandler := payment.NewHandler(paymentSvc, gatewaySvc, table)

	return router.Registry{
		refRoot:   rootHandler(table),
		refHealth: healthHandler(d),

		refPaymentMeta:   paymentHandler.Meta,
		refPaymentGet:    paymentHandler.Get,
		refPaymentUpdate: paymentHandler.Update,
		refPaymentDelete: paymentHandler.Delete,
		refPaymentCreate: paymentHandler.Create,
		refPaymentAll:    paymentHandler.All,

		refGatewayMeta:   gatewayHandler.Meta,
		refGatewayAll:    gatewayHandler.All,
		refGatewayGet:    gatewayHandler.Get,
		refGatewayDelete: gatewayHandler.Delete,
		refGatewayCreate: gatewayHandler.Create,
	}, nil
}
