package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/promolink/promolink-backend/api/controllers"
	"github.com/promolink/promolink-backend/api/middleware"
	"github.com/promolink/promolink-backend/internal/notifications"
	"github.com/promolink/promolink-backend/internal/offers"
	"github.com/promolink/promolink-backend/internal/requests"
	"github.com/promolink/promolink-backend/pkg/config"
	"github.com/promolink/promolink-backend/pkg/enums"
	"github.com/promolink/promolink-backend/pkg/logger"
	"github.com/promolink/promolink-backend/pkg/realtime"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	Offers        offers.Service
	Requests      requests.Service
	Notifications notifications.Service
	Hub           *realtime.Hub
	Pingers       map[string]controllers.Pinger
	Metrics       prometheus.Gatherer
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog.
		r.Get("/offers", controllers.ListOffers(deps.Offers, logg))
		r.Get("/offers/{offerId}", controllers.GetOffer(deps.Offers, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/supplier", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.ActorRoleSupplier), logg))
				r.Route("/offers", func(r chi.Router) {
					r.Get("/", controllers.SupplierListOffers(deps.Offers, logg))
					r.Post("/", controllers.SupplierCreateOffer(deps.Offers, logg))
					r.Patch("/{offerId}", controllers.SupplierUpdateOffer(deps.Offers, logg))
					r.Delete("/{offerId}", controllers.SupplierDeleteOffer(deps.Offers, logg))
				})
				r.Route("/requests", func(r chi.Router) {
					r.Get("/", controllers.SupplierListRequests(deps.Requests, logg))
					r.Post("/{requestId}/treat", controllers.SupplierTreatRequest(deps.Requests, logg))
				})
			})

			r.Route("/store", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.ActorRoleStore), logg))
				r.Route("/requests", func(r chi.Router) {
					r.Get("/", controllers.StoreListRequests(deps.Requests, logg))
					r.Post("/", controllers.StoreCreateRequest(deps.Requests, logg))
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
				r.Get("/unread-count", controllers.UnreadNotificationCount(deps.Notifications, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
				r.Get("/ws", controllers.NotificationSocket(deps.Hub, deps.Notifications, logg))
			})
		})
	})

	return r
}
