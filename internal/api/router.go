// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/meetra-labs/recommend/internal/logging"
	"github.com/meetra-labs/recommend/internal/recommend"
)

// RouterConfig tunes the HTTP surface.
type RouterConfig struct {
	// Timeout bounds request handling via the request context.
	// Default: 10s.
	Timeout time.Duration

	// RateLimitReqs is the per-IP request budget per window. Default: 60.
	RateLimitReqs int

	// RateLimitWindow is the rate limit window. Default: 1m.
	RateLimitWindow time.Duration

	// RateLimitDisabled turns off per-IP rate limiting, for tests.
	RateLimitDisabled bool
}

func (c *RouterConfig) withDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.RateLimitReqs == 0 {
		c.RateLimitReqs = 60
	}
	if c.RateLimitWindow == 0 {
		c.RateLimitWindow = time.Minute
	}
}

// Router assembles the Chi router around a handler.
type Router struct {
	handler *Handler
	config  RouterConfig
	logger  zerolog.Logger
}

// NewRouter creates a router for the given engine and user directory.
func NewRouter(engine *recommend.Engine, users UserDirectory, cfg RouterConfig) *Router {
	cfg.withDefaults()
	return &Router{
		handler: NewHandler(engine, users),
		config:  cfg,
		logger:  logging.Component("api"),
	}
}

// Handler builds the complete HTTP handler: operational endpoints at the
// root, versioned API under /api/v1.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(securityHeaders)

	// Operational endpoints stay outside the rate limit so monitoring
	// never competes with clients for budget.
	r.Get("/healthz", rt.handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if !rt.config.RateLimitDisabled {
			r.Use(httprate.Limit(
				rt.config.RateLimitReqs,
				rt.config.RateLimitWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(rateLimitHandler),
			))
		}
		r.Use(chimiddleware.Timeout(rt.config.Timeout))
		r.Use(prometheusMetrics)
		r.Use(requestLogger(rt.logger))

		r.Get("/recommendations", rt.handler.GetRecommendations)
		r.Post("/recommendations", rt.handler.PostRecommendations)
		r.Get("/categories", rt.handler.Categories)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	return r
}
