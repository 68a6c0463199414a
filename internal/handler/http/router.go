package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/service"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/health"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/middleware"
)

// RouterConfig carries the HTTP settings of the router.
type RouterConfig struct {
	ServiceName     string
	AdminCookieName string
	AdminJWTSecret  string
	CORS            middleware.CORSConfig
	PprofCIDRs      []string
	MaxUploadSize   int64

	// RateLimitRPS of zero disables per-admin rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a chi router with all catalog admin routes registered.
func NewRouter(
	filters *service.FilterService,
	intake *service.IntakeService,
	products *service.ProductService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.AdminSession(middleware.SessionConfig{
		CookieName: cfg.AdminCookieName,
		Secret:     cfg.AdminJWTSecret,
		Logger:     logger,
	}))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	filterHandler := NewFilterHandler(filters, logger)
	intakeHandler := NewIntakeHandler(intake, cfg.MaxUploadSize, logger)
	productHandler := NewProductHandler(products, intake, logger)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitRPS > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		}
		r.Use(ContentTypeJSON)

		r.Get("/filters", filterHandler.ListFilters)
		r.Get("/filters/{name}/options", filterHandler.ResolveOptions)

		r.Route("/intake", func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Get("/state", intakeHandler.GetState)
			r.Get("/draft", intakeHandler.GetDraft)
			r.Patch("/draft", intakeHandler.UpdateDraft)
			r.Delete("/draft", intakeHandler.ClearDraft)
			r.Post("/media/{slot}", intakeHandler.StageMedia)
			r.Delete("/media/{slot}", intakeHandler.RemoveMedia)
			r.Post("/next", intakeHandler.Next)
			r.Get("/metadata", intakeHandler.Metadata)
			r.Post("/previous", intakeHandler.Previous)
			r.Post("/submit", intakeHandler.Submit)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Get("/related", productHandler.RelatedProducts)
			r.With(middleware.RequireSession).Get("/{id}/edit", productHandler.LoadForEdit)
			r.With(middleware.RequireSession).Post("/{id}/next", intakeHandler.EditNext)
			r.With(middleware.RequireSession).Post("/{id}/submit", intakeHandler.EditSubmit)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})

		r.Get("/dashboard/summary", productHandler.Dashboard)
		r.With(middleware.RequireSession).Get("/activity", intakeHandler.Activity)
	})

	return r
}
