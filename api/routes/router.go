package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/havenwood-client/api/controllers"
	"github.com/angelmondragon/havenwood-client/api/middleware"
	"github.com/angelmondragon/havenwood-client/pkg/config"
	"github.com/angelmondragon/havenwood-client/pkg/logger"
)

// Params bundles everything the router serves.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Cart     controllers.CartEngine
	Wishlist controllers.WishlistEngine
	Session  controllers.SessionManager
	Store    controllers.Pinger
	Registry *prometheus.Registry
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.ExtraCORSOrigins...),
	)

	r.Get("/healthz", controllers.HealthLive(cfg))
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Store))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1/cart", func(r chi.Router) {
		r.Get("/", controllers.CartFetch(p.Cart, logg))
		r.Delete("/", controllers.CartClear(p.Cart, logg))
		r.Post("/items", controllers.CartAdd(p.Cart, logg))
		r.Patch("/items/{lineId}", controllers.CartUpdateQuantity(p.Cart, logg))
		r.Delete("/items/{lineId}", controllers.CartRemove(p.Cart, logg))
	})

	r.Route("/v1/wishlist", func(r chi.Router) {
		r.Get("/", controllers.WishlistFetch(p.Wishlist, logg))
		r.Delete("/", controllers.WishlistClear(p.Wishlist, logg))
		r.Post("/items", controllers.WishlistAdd(p.Wishlist, logg))
		r.Post("/toggle", controllers.WishlistToggle(p.Wishlist, logg))
		r.Delete("/items/{productId}", controllers.WishlistRemove(p.Wishlist, logg))
	})

	r.Route("/v1/session", func(r chi.Router) {
		r.Get("/", controllers.SessionStatus(p.Session, logg))
		r.Put("/", controllers.SessionSet(p.Session, logg))
		r.Delete("/", controllers.SessionClear(p.Session, logg))
	})

	return r
}
