// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package middleware provides the HTTP middleware Cinematch adds on top of
chi's own.

Key Components:

  - RequestID: accepts a sane upstream X-Request-ID or generates a UUID, and
    puts it (plus a correlation ID) into the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled by
    chi route pattern so path values do not explode cardinality
  - AccessLog: one structured log line per request, at warn level when the
    request was slow

Middleware Stack:

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(time.Second))

All wrappers keep http.Hijacker and http.Flusher working so the websocket
endpoint can sit behind them.
*/
package middleware
