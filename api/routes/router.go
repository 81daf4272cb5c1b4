package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dinehub-mw/dinehub-backend/api/controllers"
	webhookcontrollers "github.com/dinehub-mw/dinehub-backend/api/controllers/webhooks"
	"github.com/dinehub-mw/dinehub-backend/api/middleware"
	"github.com/dinehub-mw/dinehub-backend/internal/ledger"
	"github.com/dinehub-mw/dinehub-backend/internal/orders"
	"github.com/dinehub-mw/dinehub-backend/internal/payments"
	"github.com/dinehub-mw/dinehub-backend/pkg/config"
	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
	"github.com/dinehub-mw/dinehub-backend/pkg/logger"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *prometheus.Registry

	ReadyChecks map[string]controllers.Pinger

	LedgerService   ledger.Service
	OrdersService   orders.Service
	PaymentsService payments.Service

	WebhookSecrets webhookcontrollers.SecretSource
	WebhookGuard   webhookcontrollers.Guard
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.ReadyChecks))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/paychangu", webhookcontrollers.PayChanguWebhook(deps.PaymentsService, deps.WebhookSecrets, deps.WebhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Post("/orders", controllers.PlaceOrder(deps.OrdersService, logg))
		r.Post("/payments", controllers.CreatePayment(deps.PaymentsService, logg))
		r.Get("/payments/{paymentID}/status", controllers.PaymentStatus(deps.PaymentsService, logg))

		r.Route("/dinecoins", func(r chi.Router) {
			r.Get("/balance", controllers.DineCoinsBalance(deps.LedgerService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.RoleSupervisor, logg))
				r.Post("/adjustments", controllers.DineCoinsAdjust(deps.LedgerService, logg))
				r.Get("/entries", controllers.DineCoinsEntries(deps.LedgerService, logg))
			})
		})
	})

	return r
}
