// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package web

import (
	"net/http"
	"time"
)

type liveResponse struct {
	Alive         bool    `json:"alive"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

type readyResponse struct {
	Status         string     `json:"status"`
	Movies         int        `json:"movies"`
	LoadedAt       *time.Time `json:"loaded_at,omitempty"`
	PostersEnabled bool       `json:"posters_enabled"`
	UptimeSeconds  float64    `json:"uptime_seconds"`
}

// HealthLive handles liveness probes. It answers 200 while the process runs.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, liveResponse{
		Alive:         true,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probes: 200 once the dataset is loaded,
// 503 before.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	resp := readyResponse{
		Status:         "not_ready",
		PostersEnabled: h.posters,
		UptimeSeconds:  time.Since(h.startTime).Seconds(),
	}
	status := http.StatusServiceUnavailable

	if st := h.state.Load(); st != nil {
		resp.Status = "ready"
		resp.Movies = st.movies
		if !st.loadedAt.IsZero() {
			loaded := st.loadedAt
			resp.LoadedAt = &loaded
		}
		status = http.StatusOK
	}
	respondJSON(w, status, resp)
}
