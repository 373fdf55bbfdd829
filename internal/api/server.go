package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/Joshmanser1/last-man-standing/internal/api/handler"
	"github.com/Joshmanser1/last-man-standing/internal/config"
	"github.com/Joshmanser1/last-man-standing/internal/telemetry"
)

// NewRouter creates and configures the Chi router with all middleware and
// routes. deps carries the handler collaborators (store, engine, importer).
func NewRouter(deps handler.Deps, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS — the tick endpoint is called server-to-server, but the read
	// surface is consumed by the browser app.
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "Authorization"},
		ExposedHeaders:   []string{"X-Process-Time"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(deps, cfg)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
	})

	// Prometheus metrics
	r.Mount("/metrics", telemetry.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Scheduler trigger — the engine's only entry point
		r.Get("/tick", h.Tick)

		// Admin-triggered fixture import
		r.Get("/leagues/{leagueID}/import", h.ImportFixtures)

		// Read surface
		r.Get("/leagues/{leagueID}", h.GetLeague)

		// Pick submission
		r.Post("/leagues/{leagueID}/picks", h.SavePick)
	})

	return r
}
