package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/offgriddoc/cablebuilder/api/controllers"
	buildercontrollers "github.com/offgriddoc/cablebuilder/api/controllers/builder"
	storefrontcontrollers "github.com/offgriddoc/cablebuilder/api/controllers/storefront"
	"github.com/offgriddoc/cablebuilder/api/middleware"
	buildersvc "github.com/offgriddoc/cablebuilder/internal/builder"
	checkoutsvc "github.com/offgriddoc/cablebuilder/internal/checkout"
	"github.com/offgriddoc/cablebuilder/internal/pricing"
	"github.com/offgriddoc/cablebuilder/pkg/config"
	"github.com/offgriddoc/cablebuilder/pkg/logger"
	"github.com/offgriddoc/cablebuilder/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	pricingService pricing.Service,
	checkoutService checkoutsvc.Service,
	sessions *buildersvc.Sessions,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.SecurityHeaders(cfg.HTTP.FrameAncestors),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
		middleware.BuilderSession(logg),
	)

	var idempotencyStore redis.IdempotencyStore
	readiness := map[string]controllers.Pinger{}
	if redisClient != nil {
		idempotencyStore = redisClient
		readiness["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/prices", storefrontcontrollers.Prices(pricingService, logg))
		r.With(middleware.Idempotency(idempotencyStore, logg)).Post("/add-to-cart", storefrontcontrollers.AddToCart(checkoutService, logg))
		r.Post("/resolve-skus", storefrontcontrollers.ResolveSKUs(checkoutService, logg))

		r.Route("/v1", func(r chi.Router) {
			r.Get("/catalog", buildercontrollers.Catalog())
			if sessions != nil {
				r.Post("/quote", buildercontrollers.Quote(sessions, logg))
			}
		})
	})

	return r
}
