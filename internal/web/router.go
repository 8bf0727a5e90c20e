// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cinematch/internal/middleware"
)

// slowRequest is the access log threshold for a warning.
const slowRequest = 2 * time.Second

// Routes builds the chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(h.corsHandler())
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(slowRequest))

	// Probes and metrics are not rate limited.
	r.Get("/healthz/live", h.HealthLive)
	r.Get("/healthz/ready", h.HealthReady)
	r.Handle("/metrics", promhttp.Handler())

	limit := h.rateLimit()

	// HTML pages are compressed; the websocket route must not be.
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Compress(5, "text/html"))
		r.Get("/", h.Index)
		r.With(limit).Get("/recommendations", h.Recommendations)
	})
	r.With(limit).Get("/ws/recommendations", h.Stream)

	return r
}

func (h *Handler) corsHandler() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: h.cfg.Security.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	})
}

// rateLimit returns one limiter shared by every route it wraps, keyed by
// client IP.
func (h *Handler) rateLimit() func(http.Handler) http.Handler {
	sec := h.cfg.Security
	if sec.RateLimitDisabled || sec.RateLimitReqs <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		sec.RateLimitReqs,
		sec.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Too many searches, slow down a little.", http.StatusTooManyRequests)
		}),
	)
}
