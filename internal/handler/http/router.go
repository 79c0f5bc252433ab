package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/service"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/health"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/middleware"
)

// RouterConfig collects everything the router needs beyond the services.
type RouterConfig struct {
	HealthHandler  *health.Handler
	Logger         *slog.Logger
	TokenValidator middleware.TokenValidator
	CORS           middleware.CORSConfig
	RateLimitRPS   int
	RateLimitBurst int
	PprofCIDRs     []string
}

// Services bundles the service-layer dependencies of the router.
type Services struct {
	Accounts     *service.AccountService
	Ratings      *service.RatingService
	Listings     *service.ListingService
	Products     *service.ProductService
	Appointments *service.AppointmentService
}

// NewRouter creates a chi router with all marketplace routes registered.
func NewRouter(svcs Services, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	logger := cfg.Logger

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("marketplace"))
	r.Use(middleware.Tracing("marketplace"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	}

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	accountHandler := NewAccountHandler(svcs.Accounts, logger)
	ratingHandler := NewRatingHandler(svcs.Ratings, logger)
	listingHandler := NewListingHandler(svcs.Listings, logger)
	productHandler := NewProductHandler(svcs.Products, logger)
	appointmentHandler := NewAppointmentHandler(svcs.Appointments, logger)

	authRequired := middleware.Auth(cfg.TokenValidator)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public endpoints.
		r.Post("/accounts", accountHandler.Register)
		r.Get("/accounts/{id}", accountHandler.GetAccount)
		r.Get("/providers", accountHandler.ListProviders)
		r.Get("/providers/{id}/ratings", ratingHandler.ListProviderRatings)
		r.Get("/listings", listingHandler.ListListings)
		r.Get("/listings/{id}", listingHandler.GetListing)
		r.Get("/products", productHandler.ListProducts)
		r.Get("/products/{id}", productHandler.GetProduct)

		// Authenticated endpoints.
		r.Group(func(r chi.Router) {
			r.Use(authRequired)

			r.Delete("/accounts/{id}", accountHandler.DeleteAccount)

			r.Post("/ratings", ratingHandler.SubmitRating)
			r.Delete("/ratings/{id}", ratingHandler.DeleteRating)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleFarmer, domain.RoleSeller, domain.RoleAdmin))
				r.Post("/listings", listingHandler.CreateListing)
				r.Post("/products", productHandler.CreateProduct)
			})
			r.Delete("/listings/{id}", listingHandler.DeleteListing)
			r.Delete("/products/{id}", productHandler.DeleteProduct)

			r.Post("/appointments", appointmentHandler.Book)
			r.Get("/appointments", appointmentHandler.ListMine)
			r.Get("/appointments/{id}", appointmentHandler.GetAppointment)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleVeterinarian))
				r.Put("/appointments/{id}/status", appointmentHandler.Transition)
				r.Get("/providers/{id}/stats", appointmentHandler.ProviderStats)
			})
		})
	})

	return r
}
