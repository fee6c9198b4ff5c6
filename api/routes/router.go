package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/willowmarket/willow-backend/api/controllers"
	"github.com/willowmarket/willow-backend/api/middleware"
	"github.com/willowmarket/willow-backend/internal/notifications"
	"github.com/willowmarket/willow-backend/internal/orders"
	"github.com/willowmarket/willow-backend/internal/reports"
	"github.com/willowmarket/willow-backend/internal/settlement"
	"github.com/willowmarket/willow-backend/pkg/config"
	"github.com/willowmarket/willow-backend/pkg/enums"
	"github.com/willowmarket/willow-backend/pkg/logger"
	pkgredis "github.com/willowmarket/willow-backend/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            pinger
	Redis         *pkgredis.Client
	Orders        orders.Service
	Settlement    settlement.Service
	Notifications notifications.Service
	Reports       reports.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(deps.Orders, logg))
			r.Get("/{orderId}", controllers.AdminGetOrder(deps.Orders, logg))
			r.Post("/{orderId}/status", controllers.AdminUpdateOrderStatus(deps.Orders, logg))
			r.Post("/{orderId}/payment-status", controllers.AdminUpdatePaymentStatus(deps.Orders, logg))
			r.Post("/{orderId}/release", controllers.AdminReleasePayment(deps.Settlement, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})

		r.Get("/reports/settlement", controllers.AdminSettlementReport(deps.Reports, logg))
	})

	return r
}
