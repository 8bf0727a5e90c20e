// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package poster

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// Item is the poster outcome for one movie.
type Item struct {
	URL string
	OK  bool
}

// ProgressFunc observes enrichment. done runs from 1 to total, each value
// exactly once, and calls never overlap.
type ProgressFunc func(done, total int)

// URLFetcher is the lookup the Enricher fans out.
type URLFetcher interface {
	Fetch(ctx context.Context, movieID int) (string, bool)
}

// Enricher attaches posters to a list of movies using a bounded pool.
type Enricher struct {
	fetcher URLFetcher
	workers int
}

// NewEnricher creates an Enricher running at most workers lookups at once.
// workers below 1 is treated as 1 (sequential).
func NewEnricher(fetcher URLFetcher, workers int) *Enricher {
	if workers < 1 {
		workers = 1
	}
	return &Enricher{fetcher: fetcher, workers: workers}
}

// Enrich returns one Item per movie, in input order. If ctx is cancelled
// the remaining movies are reported absent; progress still reaches total.
func (e *Enricher) Enrich(ctx context.Context, movies []catalog.Movie, progress ProgressFunc) []Item {
	items := make([]Item, len(movies))
	if len(movies) == 0 {
		return items
	}
	start := time.Now()

	var (
		mu   sync.Mutex
		done int
	)
	report := func() {
		mu.Lock()
		defer mu.Unlock()
		done++
		if progress != nil {
			progress(done, len(movies))
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(e.workers)
	for i := range movies {
		g.Go(func() error {
			defer report()
			if ctx.Err() != nil {
				return nil
			}
			url, ok := e.fetcher.Fetch(ctx, movies[i].ID)
			items[i] = Item{URL: url, OK: ok}
			return nil
		})
	}
	_ = g.Wait() // workers never return an error

	elapsed := time.Since(start)
	metrics.EnrichDuration.Observe(elapsed.Seconds())
	logging.Ctx(ctx).Debug().
		Int("movies", len(movies)).
		Int("workers", e.workers).
		Dur("elapsed", elapsed).
		Msg("Posters attached")
	return items
}
