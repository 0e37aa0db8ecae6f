// Package api provides the HTTP ops API for the health monitor.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/kmransom56/enhanced-network-api-corporate-sub001/internal/api/handler"
	"github.com/kmransom56/enhanced-network-api-corporate-sub001/internal/api/middleware"
	"github.com/kmransom56/enhanced-network-api-corporate-sub001/internal/health"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version string
	Logger  zerolog.Logger
	Monitor *health.Monitor

	// JWTSigningKey protects the mutating endpoints; empty disables auth.
	JWTSigningKey string
}

// NewRouter creates a chi router with the ops routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.Monitor)

	opsAuth := middleware.OpsAuth(cfg.JWTSigningKey)
	checkRateLimit := middleware.RateLimitByIP(middleware.CheckRateLimit)
	healRateLimit := middleware.RateLimitByIP(middleware.HealRateLimit)

	r.Route("/v1/ops", func(r chi.Router) {
		// Read endpoints (public)
		r.Get("/health", opsHandler.Liveness)
		r.Get("/status", opsHandler.Summary)
		r.Get("/history", opsHandler.History)

		// Mutating endpoints: authenticated and rate-limited
		r.With(opsAuth, checkRateLimit).Post("/check", opsHandler.RunCheck)
		r.With(opsAuth, healRateLimit).Post("/heal", opsHandler.Heal)
	})

	return r
}
