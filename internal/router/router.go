package router

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Options carries the non-handler dependencies of the router.
type Options struct {
	Auth        config.AuthConfig
	Session     config.SessionConfig
	Metrics     *metrics.Metrics
	MetricsPath string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	opts Options,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware order: RequestID -> Recovery -> Logging -> Metrics -> CORS
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(middleware.CORS)

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	if opts.MetricsPath != "" {
		r.Method(http.MethodGet, opts.MetricsPath, opts.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(opts.Session))

		r.Get("/basket", cartHandler.Get)
		r.Post("/basket", cartHandler.Add)
		r.Delete("/basket", cartHandler.Remove)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.Auth, logger))

			r.Get("/orders", orderHandler.List)
			r.Post("/orders", orderHandler.Submit)
			r.Get("/order/{id}", orderHandler.Get)
			r.Post("/order/{id}", orderHandler.Finalize)
			r.Post("/payment/{id}", orderHandler.Pay)
		})
	})

	return r
}
