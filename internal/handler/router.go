package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/staywell/staywell/internal/metrics"
	"github.com/staywell/staywell/internal/middleware"
)

// RateLimits configures the per-IP limits on credential and upload routes.
type RateLimits struct {
	Limiter middleware.IPRateLimiter
	Enabled bool
	RPS     int
	Burst   int
}

// RouterConfig collects everything the HTTP surface is built from.
type RouterConfig struct {
	Logger  *slog.Logger
	Guard   SessionResolver
	Metrics metrics.Recorder

	Sessions *SessionHandler
	Places   *PlaceHandler
	Bookings *BookingHandler
	Uploads  *UploadHandler
	Health   *HealthHandler
	Exporter *MetricsHandler

	RateLimits    RateLimits
	Security      middleware.SecurityConfig
	CORS          middleware.CORSConfig
	MaxBodySize   int64
	MaxUploadSize int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))

	// Health endpoints (no auth required)
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.Exporter != nil {
		r.Get("/metrics", cfg.Exporter.Metrics)
	}

	sessionCfg := middleware.SessionConfig{
		Logger:  cfg.Logger,
		Guard:   cfg.Guard,
		Metrics: cfg.Metrics,
	}
	rateLimit := func(scope string) func(http.Handler) http.Handler {
		return middleware.RateLimitIP(middleware.RateLimitConfig{
			Logger:  cfg.Logger,
			Limiter: cfg.RateLimits.Limiter,
			Enabled: cfg.RateLimits.Enabled,
			Scope:   scope,
			RPS:     cfg.RateLimits.RPS,
			Burst:   cfg.RateLimits.Burst,
		})
	}

	// JSON routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBodySize(cfg.MaxBodySize))

		r.With(rateLimit("auth")).Post("/register", cfg.Sessions.Register)
		r.With(rateLimit("auth")).Post("/login", cfg.Sessions.Login)
		r.Post("/logout", cfg.Sessions.Logout)
		r.With(middleware.OptionalSession(sessionCfg)).Get("/profile", cfg.Sessions.Profile)
		r.With(middleware.RequireSession(sessionCfg)).Get("/refreshtoken", cfg.Sessions.Refresh)

		// Public listing reads
		r.Get("/places", cfg.Places.List)
		r.Get("/places/{id}", cfg.Places.Get)

		// Session required
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(sessionCfg))

			r.Post("/places", cfg.Places.Create)
			r.Put("/places", cfg.Places.Update)
			r.Delete("/places/{id}", cfg.Places.Delete)
			r.Get("/user-places", cfg.Places.ListMine)

			r.Post("/bookings", cfg.Bookings.Create)
			r.Get("/bookings", cfg.Bookings.List)
		})

		r.With(rateLimit("upload")).Post("/uploadbylink", cfg.Uploads.ByLink)
	})

	// Multipart uploads get their own body limit
	r.With(middleware.MaxBodySize(cfg.MaxUploadSize), rateLimit("upload")).Post("/upload", cfg.Uploads.Upload)
	r.Get("/uploads/{name}", cfg.Uploads.Serve)

	// 404 and 405 handlers
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	return r
}
