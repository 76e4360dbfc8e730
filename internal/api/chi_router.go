// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arlo-hs/reelay/internal/config"
)

// Router wires the handler set into a chi mux.
type Router struct {
	handler *Handler
	cfg     config.ServerConfig
}

// NewRouter creates the router.
func NewRouter(handler *Handler, cfg config.ServerConfig) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(AccessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// ========================
	// Health Endpoints
	// ========================
	// Permissive rate limiting so monitoring can poll freely.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, router.cfg.RateLimitWindow))
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Feed Endpoints
	// ========================
	r.Route("/api/v1/feed", func(r chi.Router) {
		r.Use(httprate.LimitByIP(router.cfg.RateLimitReqs, router.cfg.RateLimitWindow))
		r.Use(PrometheusMetrics)

		r.Get("/", router.handler.Feed)
		r.Get("/following", router.handler.FollowingFeed)
		r.Post("/refresh", router.handler.RefreshFeed)
	})

	// ========================
	// Interaction Endpoints
	// ========================
	r.Route("/api/v1/content/{id}", func(r chi.Router) {
		r.Use(httprate.LimitByIP(router.cfg.RateLimitReqs, router.cfg.RateLimitWindow))
		r.Use(PrometheusMetrics)

		r.Post("/like", router.handler.Like)
		r.Delete("/like", router.handler.Unlike)
		r.Post("/save", router.handler.Save)
		r.Delete("/save", router.handler.Unsave)
		r.Post("/share", router.handler.Share)
		r.Post("/view", router.handler.View)
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	return r
}
