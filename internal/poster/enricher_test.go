// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package poster

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/cinematch/internal/catalog"
)

// delayFetcher answers after a per-movie delay and tracks concurrency.
type delayFetcher struct {
	delay func(id int) time.Duration

	mu      sync.Mutex
	order   []int
	active  int
	peak    int
	missing map[int]bool
}

func (d *delayFetcher) Fetch(ctx context.Context, id int) (string, bool) {
	d.mu.Lock()
	d.order = append(d.order, id)
	d.active++
	if d.active > d.peak {
		d.peak = d.active
	}
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.active--
		d.mu.Unlock()
	}()

	if d.delay != nil {
		select {
		case <-time.After(d.delay(id)):
		case <-ctx.Done():
			return "", false
		}
	}
	if d.missing[id] {
		return "", false
	}
	return "https://img.test/" + strconv.Itoa(id) + ".jpg", true
}

func testMovies(n int) []catalog.Movie {
	movies := make([]catalog.Movie, n)
	for i := range movies {
		movies[i] = catalog.Movie{ID: i + 1, Title: "Movie " + strconv.Itoa(i+1)}
	}
	return movies
}

func TestEnricher_PreservesOrderUnderOutOfOrderCompletion(t *testing.T) {
	movies := testMovies(10)
	// Earlier movies take longer, so completions arrive in reverse.
	f := &delayFetcher{
		delay:   func(id int) time.Duration { return time.Duration(11-id) * 3 * time.Millisecond },
		missing: map[int]bool{4: true},
	}
	e := NewEnricher(f, 4)

	var progress []int
	items := e.Enrich(context.Background(), movies, func(done, total int) {
		if total != 10 {
			t.Errorf("total = %d, want 10", total)
		}
		progress = append(progress, done)
	})

	if len(items) != len(movies) {
		t.Fatalf("len(items) = %d", len(items))
	}
	for i, it := range items {
		id := movies[i].ID
		if id == 4 {
			if it.OK || it.URL != "" {
				t.Errorf("item %d = %+v, want absent", i, it)
			}
			continue
		}
		want := "https://img.test/" + strconv.Itoa(id) + ".jpg"
		if !it.OK || it.URL != want {
			t.Errorf("item %d = %+v, want %s", i, it, want)
		}
	}
	for i, done := range progress {
		if done != i+1 {
			t.Fatalf("progress = %v, want 1..10", progress)
		}
	}
	if len(progress) != 10 {
		t.Errorf("progress calls = %d, want 10", len(progress))
	}
	if f.peak > 4 {
		t.Errorf("peak concurrency = %d, want <= 4", f.peak)
	}
}

func TestEnricher_SingleWorkerIsSequential(t *testing.T) {
	movies := testMovies(6)
	f := &delayFetcher{}
	items := NewEnricher(f, 0).Enrich(context.Background(), movies, nil)

	if f.peak != 1 {
		t.Errorf("peak concurrency = %d, want 1", f.peak)
	}
	for i, id := range f.order {
		if id != i+1 {
			t.Fatalf("fetch order = %v, want input order", f.order)
		}
	}
	for i, it := range items {
		if !it.OK {
			t.Errorf("item %d absent", i)
		}
	}
}

func TestEnricher_CancelledContext(t *testing.T) {
	movies := testMovies(8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var last atomic.Int32
	items := NewEnricher(&delayFetcher{}, 3).Enrich(ctx, movies, func(done, total int) {
		last.Store(int32(done))
	})
	for i, it := range items {
		if it.OK {
			t.Errorf("item %d has a poster after cancellation", i)
		}
	}
	if last.Load() != 8 {
		t.Errorf("progress ended at %d, want 8", last.Load())
	}
}

func TestEnricher_Empty(t *testing.T) {
	called := false
	items := NewEnricher(&delayFetcher{}, 4).Enrich(context.Background(), nil, func(int, int) { called = true })
	if len(items) != 0 || called {
		t.Errorf("empty enrich = %v, progress called %v", items, called)
	}
}
