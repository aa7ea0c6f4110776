// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

// Package api exposes the feed ranking engine and seen-set management over
// HTTP using the chi router.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tastetrail/feedrank/internal/metrics"
	"github.com/tastetrail/feedrank/internal/middleware"
)

// RouterConfig holds the HTTP-layer settings the router needs.
type RouterConfig struct {
	// CORSAllowedOrigins is empty by default; cross-origin access must be
	// configured explicitly.
	CORSAllowedOrigins []string

	// RateLimitEnabled toggles per-IP rate limiting.
	RateLimitEnabled bool

	// RequestsPerMinute is the per-IP budget for feed reads. Seen-set
	// writes run at a third of it.
	RequestsPerMinute int
}

// DefaultRouterConfig returns the production defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RateLimitEnabled:  true,
		RequestsPerMinute: 120,
	}
}

// NewRouter assembles the full HTTP surface: feed endpoints under
// /api/v1, health probes, and Prometheus metrics.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order. CORS is global
	// so OPTIONS preflight requests are handled before routing.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", viewerIDHeader},
		MaxAge:         86400,
	}))

	// Health probes stay outside rate limiting so orchestrators are never
	// throttled away from them.
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/feed", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		// Read endpoints at the full budget.
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(cfg, cfg.RequestsPerMinute))
			r.Get("/", h.GetFeed)
			r.Get("/config", h.GetConfig)
			r.Get("/seen", h.GetSeen)
			r.Get("/seen/count", h.GetSeenCount)
		})

		// Write endpoints at a stricter budget.
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(cfg, writeBudget(cfg.RequestsPerMinute)))
			r.Post("/seen", h.MarkSeen)
			r.Delete("/seen", h.ClearSeen)
			r.Delete("/seen/{contentID}", h.RemoveSeen)
		})
	})

	return r
}

func rateLimit(cfg RouterConfig, requests int) func(http.Handler) http.Handler {
	if !cfg.RateLimitEnabled || requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requests, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.APIRateLimitHits.WithLabelValues(r.URL.Path).Inc()
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)
}

func writeBudget(requestsPerMinute int) int {
	budget := requestsPerMinute / 3
	if budget < 1 {
		budget = 1
	}
	return budget
}
