// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"time"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// GarbageCollector is satisfied by *poster.BadgerStore.
type GarbageCollector interface {
	RunGC() (rewritten bool, err error)
}

// StoreGCService runs value-log GC on the poster store every interval.
// GC errors are logged and counted; they do not stop the service.
type StoreGCService struct {
	store    GarbageCollector
	interval time.Duration
}

// NewStoreGCService creates the GC service. A non-positive interval becomes
// 10 minutes.
func NewStoreGCService(store GarbageCollector, interval time.Duration) *StoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StoreGCService{store: store, interval: interval}
}

// Serve implements suture.Service.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *StoreGCService) runOnce() {
	rewritten, err := s.store.RunGC()
	switch {
	case err != nil:
		metrics.StoreGCRuns.WithLabelValues("error").Inc()
		logging.Warn().Err(err).Msg("Poster store GC failed")
	case rewritten:
		metrics.StoreGCRuns.WithLabelValues("rewritten").Inc()
		logging.Debug().Msg("Poster store value log rewritten")
	default:
		metrics.StoreGCRuns.WithLabelValues("nothing").Inc()
	}
}

func (s *StoreGCService) String() string {
	return "poster-store-gc"
}
