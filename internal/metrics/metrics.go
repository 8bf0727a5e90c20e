// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package metrics defines the Prometheus collectors Cinematch exports on
// /metrics, plus small Record helpers so callers do not deal with label
// ordering.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Query metrics
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_queries_total",
			Help: "Recommendation queries by mode and outcome",
		},
		[]string{"mode", "outcome"}, // outcome: ok, empty, not_found, invalid, error
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinematch_query_duration_seconds",
			Help:    "Time to resolve a query, excluding poster lookups",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"mode"},
	)

	DatasetMovies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinematch_dataset_movies",
			Help: "Number of movies in the loaded catalog",
		},
	)

	// Poster metrics
	PosterFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_poster_fetch_total",
			Help: "Poster lookups by outcome",
		},
		[]string{"outcome"}, // found, absent, error, rejected, cancelled, disabled
	)

	PosterFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinematch_poster_fetch_duration_seconds",
			Help:    "Duration of TMDB poster requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	PosterCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_poster_cache_total",
			Help: "Poster cache lookups by result",
		},
		[]string{"layer", "result"}, // layer: memory, store; result: hit, miss
	)

	EnrichDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinematch_enrich_duration_seconds",
			Help:    "Time to attach posters to one result list",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	WebSocketStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_streams_active",
			Help: "Open progress websocket streams",
		},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Persistent store metrics
	StoreGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_store_gc_runs_total",
			Help: "Poster store value-log GC passes by result",
		},
		[]string{"result"}, // rewritten, nothing, error
	)
)

// RecordQuery records one resolved query.
func RecordQuery(mode, outcome string, duration time.Duration) {
	QueriesTotal.WithLabelValues(mode, outcome).Inc()
	QueryDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordPosterFetch records one poster lookup that reached TMDB or was
// refused before it.
func RecordPosterFetch(outcome string, duration time.Duration) {
	PosterFetchTotal.WithLabelValues(outcome).Inc()
	if duration > 0 {
		PosterFetchDuration.Observe(duration.Seconds())
	}
}

// RecordPosterCache records a cache lookup on the given layer.
func RecordPosterCache(layer string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	PosterCacheTotal.WithLabelValues(layer, result).Inc()
}

// RecordAPIRequest records an HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge up or down.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
