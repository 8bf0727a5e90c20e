// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package poster

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/metrics"
)

func testPosterConfig() config.PosterConfig {
	return config.PosterConfig{
		Workers:     4,
		CacheSize:   64,
		CacheTTL:    time.Hour,
		NegativeTTL: time.Minute,
	}
}

// tmdbServer fakes /movie/{id}: ids in posters answer with that path, the
// rest with 404. calls counts every request.
func tmdbServer(t *testing.T, posters map[string]string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		id := strings.TrimPrefix(r.URL.Path, "/movie/")
		path, ok := posters[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status_code":34}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":` + id + `,"poster_path":"` + path + `"}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetcher_FoundAndCached(t *testing.T) {
	var calls atomic.Int32
	server := tmdbServer(t, map[string]string{"603": "/matrix.jpg"}, &calls)
	f := NewFetcher(testTMDBConfig(server.URL), testPosterConfig())

	for i := 0; i < 3; i++ {
		url, ok := f.Fetch(context.Background(), 603)
		if !ok || url != "https://image.tmdb.org/t/p/w500/matrix.jpg" {
			t.Fatalf("Fetch(603) = %q,%v", url, ok)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("TMDB called %d times, want 1", n)
	}
}

func TestFetcher_AbsentIsNegativelyCached(t *testing.T) {
	var calls atomic.Int32
	server := tmdbServer(t, nil, &calls)
	f := NewFetcher(testTMDBConfig(server.URL), testPosterConfig())

	before := testutil.ToFloat64(metrics.PosterFetchTotal.WithLabelValues(OutcomeAbsent))
	for i := 0; i < 2; i++ {
		if url, ok := f.Fetch(context.Background(), 1); ok || url != "" {
			t.Fatalf("Fetch = %q,%v, want absent", url, ok)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("TMDB called %d times, want 1", n)
	}
	if d := testutil.ToFloat64(metrics.PosterFetchTotal.WithLabelValues(OutcomeAbsent)) - before; d != 1 {
		t.Errorf("absent delta = %v, want 1", d)
	}
}

func TestFetcher_FailuresAreAbsentAndNotCached(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"poster_path":`))
		}},
		{"rate limited upstream", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				tt.handler(w, r)
			}))
			defer server.Close()

			f := NewFetcher(testTMDBConfig(server.URL), testPosterConfig())
			for i := 0; i < 2; i++ {
				if _, ok := f.Fetch(context.Background(), 42); ok {
					t.Fatal("expected absent")
				}
			}
			if n := calls.Load(); n != 2 {
				t.Errorf("TMDB called %d times, want 2 (errors are not cached)", n)
			}
		})
	}
}

func TestFetcher_Disabled(t *testing.T) {
	var calls atomic.Int32
	server := tmdbServer(t, map[string]string{"603": "/matrix.jpg"}, &calls)
	cfg := testTMDBConfig(server.URL)
	cfg.APIKey = ""

	f := NewFetcher(cfg, testPosterConfig())
	if f.Enabled() {
		t.Error("Enabled() = true without API key")
	}
	if _, ok := f.Fetch(context.Background(), 603); ok {
		t.Error("disabled fetcher returned a poster")
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("TMDB called %d times, want 0", n)
	}
}

func TestFetcher_CancelledContext(t *testing.T) {
	var calls atomic.Int32
	server := tmdbServer(t, map[string]string{"603": "/matrix.jpg"}, &calls)
	cfg := testTMDBConfig(server.URL)
	cfg.RateLimit = 1
	cfg.RateBurst = 1
	f := NewFetcher(cfg, testPosterConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := f.Fetch(ctx, 603); ok {
		t.Error("cancelled fetch returned a poster")
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("TMDB called %d times, want 0", n)
	}
}

func TestFetcher_OpenCircuitIsAbsent(t *testing.T) {
	src := &scriptedSource{err: errors.New("dial tcp: connection refused")}
	f := NewFetcher(testTMDBConfig("http://unused.invalid"), testPosterConfig(),
		WithSource(src, BreakerSettings{MinRequests: 3, FailureRatio: 0.5, Timeout: time.Hour}))

	for i := 1; i <= 3; i++ {
		_, _ = f.Fetch(context.Background(), i)
	}
	before := testutil.ToFloat64(metrics.PosterFetchTotal.WithLabelValues(OutcomeRejected))

	if url, ok := f.Fetch(context.Background(), 4); ok || url != "" {
		t.Errorf("Fetch with open circuit = %q,%v", url, ok)
	}
	if n := src.calls.Load(); n != 3 {
		t.Errorf("source called %d times, want 3", n)
	}
	if d := testutil.ToFloat64(metrics.PosterFetchTotal.WithLabelValues(OutcomeRejected)) - before; d != 1 {
		t.Errorf("rejected delta = %v, want 1", d)
	}
}

func TestFetcher_StoreLayerSurvivesRestart(t *testing.T) {
	store := openTestStore(t)

	var calls atomic.Int32
	server := tmdbServer(t, map[string]string{"27205": "/inception.jpg"}, &calls)
	first := NewFetcher(testTMDBConfig(server.URL), testPosterConfig(), WithStore(store))
	if _, ok := first.Fetch(context.Background(), 27205); !ok {
		t.Fatal("first fetch should find the poster")
	}
	if _, ok := first.Fetch(context.Background(), 999); ok {
		t.Fatal("unknown movie should be absent")
	}

	// A fresh fetcher has an empty memory layer; TMDB is down.
	down := &scriptedSource{err: errors.New("unreachable")}
	second := NewFetcher(testTMDBConfig(server.URL), testPosterConfig(), WithStore(store), WithSource(down, BreakerSettings{}))

	url, ok := second.Fetch(context.Background(), 27205)
	if !ok || url != "https://image.tmdb.org/t/p/w500/inception.jpg" {
		t.Errorf("Fetch from store = %q,%v", url, ok)
	}
	if _, ok := second.Fetch(context.Background(), 999); ok {
		t.Error("negative entry should come back from the store")
	}
	if n := down.calls.Load(); n != 0 {
		t.Errorf("source called %d times, want 0", n)
	}

	// The store hit was copied into memory.
	if path, found, _ := second.stores[0].Get(27205); !found || path != "/inception.jpg" {
		t.Errorf("memory backfill = %q,%v", path, found)
	}
}
