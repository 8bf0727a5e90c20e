// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/logging"
)

// AccessLog logs every request once it completes. Requests slower than slow
// are logged at warn level, server errors at error level, the rest at debug.
// A non-positive slow disables the slow-request warning.
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			var ev *zerolog.Event
			log := logging.Ctx(r.Context())
			switch {
			case rec.statusCode >= http.StatusInternalServerError:
				ev = log.Error()
			case slow > 0 && duration > slow:
				ev = log.Warn().Bool("slow", true)
			default:
				ev = log.Debug()
			}
			ev.Str("method", r.Method).
				Str("route", routePattern(r)).
				Int("status", rec.statusCode).
				Int("bytes", rec.bytes).
				Int64("duration_ms", duration.Milliseconds()).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP request")
		})
	}
}
