package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/trackwise-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/trackwise-backend/api/controllers/orders"
	webhookcontrollers "github.com/angelmondragon/trackwise-backend/api/controllers/webhooks"
	"github.com/angelmondragon/trackwise-backend/api/middleware"
	"github.com/angelmondragon/trackwise-backend/internal/auth"
	"github.com/angelmondragon/trackwise-backend/internal/leads"
	"github.com/angelmondragon/trackwise-backend/internal/orders"
	"github.com/angelmondragon/trackwise-backend/internal/payments"
	"github.com/angelmondragon/trackwise-backend/internal/settings"
	"github.com/angelmondragon/trackwise-backend/internal/stats"
	"github.com/angelmondragon/trackwise-backend/pkg/config"
	"github.com/angelmondragon/trackwise-backend/pkg/db"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
	"github.com/angelmondragon/trackwise-backend/pkg/redis"
)

// NewRouter mounts the public, webhook and admin routes. redisClient and
// metricsHandler may be nil.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	metricsHandler http.Handler,
	authService auth.Service,
	leadService leads.Service,
	paymentService payments.Service,
	webhookHandler webhookcontrollers.EventHandler,
	settingsService settings.Service,
	ordersService orders.Service,
	statsService stats.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.Origins),
	)

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	loginLimit := middleware.LoginRateLimit(cfg.AuthRateLimit.LoginWindow, cfg.AuthRateLimit.LoginIPLimit, nil, logg)
	if redisClient != nil {
		loginLimit = middleware.LoginRateLimit(cfg.AuthRateLimit.LoginWindow, cfg.AuthRateLimit.LoginIPLimit, redisClient, logg)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", controllers.Health(cfg, logg, dbP))
		r.With(loginLimit).Post("/login", controllers.AuthLogin(authService, logg))
		r.Get("/tracking/{code}", controllers.TrackingLookup(leadService, logg))

		r.Post("/payments", controllers.RegisterPayment(paymentService, logg))
		r.Put("/payments/{id}/confirm", controllers.ConfirmPayment(paymentService, logg))
		r.Get("/providers/{provider}/transactions/{id}", controllers.ProviderTransaction(paymentService, logg))

		r.Post("/webhooks/novaera", webhookcontrollers.NovaEraWebhook(webhookHandler, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Post("/import-csv", controllers.ImportCSV(leadService, cfg.Upload, logg))

			r.Route("/leads", func(r chi.Router) {
				r.Get("/", controllers.ListLeads(leadService, logg))
				r.Delete("/", controllers.DeleteAllLeads(leadService, logg))
				r.Put("/{id}", controllers.UpdateLead(leadService, logg))
				r.Delete("/{id}", controllers.DeleteLead(leadService, logg))
			})

			r.Get("/payments", controllers.ListPayments(paymentService, logg))
			r.Delete("/payments", controllers.DeleteAllPayments(paymentService, logg))

			r.Get("/stats", controllers.Stats(statsService, logg))

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", controllers.GetSettings(settingsService, logg))
				r.Post("/", controllers.UpdateSettings(settingsService, logg))
				r.Put("/", controllers.UpdateSettings(settingsService, logg))
				r.Post("/reload", controllers.ReloadSettings(settingsService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.List(ordersService, logg))
				r.Post("/", ordercontrollers.Create(ordersService, logg))
				r.Delete("/", ordercontrollers.DeleteAll(ordersService, logg))
				r.Get("/{id}", ordercontrollers.Detail(ordersService, logg))
				r.Put("/{id}", ordercontrollers.Update(ordersService, logg))
				r.Delete("/{id}", ordercontrollers.Delete(ordersService, logg))
			})
		})
	})

	return r
}
