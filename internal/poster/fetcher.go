// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package poster resolves TMDB poster image URLs for movies.
//
// Lookups are tolerant: a poster is either present or absent, and every
// failure on the way (network, timeout, bad status, malformed body, open
// circuit, cancelled rate-limit wait) is reported as absent. Results are
// cached in memory and optionally in a BadgerDB store so that a restart does
// not empty the cache.
package poster

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// Fetch outcomes, used as metric labels.
const (
	OutcomeFound     = "found"
	OutcomeAbsent    = "absent"
	OutcomeError     = "error"
	OutcomeRejected  = "rejected"
	OutcomeCancelled = "cancelled"
	OutcomeDisabled  = "disabled"
)

// Fetcher looks up poster URLs through a cache chain, a rate limiter and a
// circuit breaker.
type Fetcher struct {
	enabled   bool
	imageBase string
	size      string

	source  *breakerSource
	limiter *rate.Limiter
	stores  []Store

	ttl         time.Duration
	negativeTTL time.Duration
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithStore appends a cache layer consulted after the memory cache.
func WithStore(s Store) FetcherOption {
	return func(f *Fetcher) {
		if s != nil {
			f.stores = append(f.stores, s)
		}
	}
}

// WithSource replaces the TMDB client. Tests use it to count calls.
func WithSource(src PathSource, s BreakerSettings) FetcherOption {
	return func(f *Fetcher) {
		f.source = newBreakerSource(src, s)
	}
}

// NewFetcher builds a Fetcher. When tmdb has no API key every lookup is
// absent and no request is made.
func NewFetcher(tmdb config.TMDBConfig, pc config.PosterConfig, opts ...FetcherOption) *Fetcher {
	limit := rate.Inf
	if tmdb.RateLimit > 0 {
		limit = rate.Limit(tmdb.RateLimit)
	}
	burst := tmdb.RateBurst
	if burst <= 0 {
		burst = 1
	}

	f := &Fetcher{
		enabled:     tmdb.Enabled(),
		imageBase:   tmdb.ImageBase,
		size:        tmdb.PosterSize,
		source:      newBreakerSource(NewClient(tmdb), BreakerSettings{}),
		limiter:     rate.NewLimiter(limit, burst),
		stores:      []Store{NewMemoryStore(pc.CacheSize, pc.CacheTTL)},
		ttl:         pc.CacheTTL,
		negativeTTL: pc.NegativeTTL,
	}
	for _, opt := range opts {
		opt(f)
	}

	if !f.enabled {
		logging.Info().Msg("TMDB API key not set, posters disabled")
	} else {
		logging.Info().
			Str("api_key", logging.Redact(tmdb.APIKey)).
			Str("api_base", tmdb.APIBase).
			Float64("rate_limit", tmdb.RateLimit).
			Int("cache_layers", len(f.stores)).
			Msg("Poster fetcher configured")
	}
	return f
}

// Enabled reports whether posters are looked up at all.
func (f *Fetcher) Enabled() bool {
	return f.enabled
}

// Fetch returns the poster URL for a movie. ok is false whenever no poster
// could be obtained, for whatever reason. Fetch never fails.
func (f *Fetcher) Fetch(ctx context.Context, movieID int) (url string, ok bool) {
	if !f.enabled {
		metrics.RecordPosterFetch(OutcomeDisabled, 0)
		return "", false
	}

	if path, found := f.cached(movieID); found {
		return f.url(path)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		metrics.RecordPosterFetch(OutcomeCancelled, 0)
		logging.Ctx(ctx).Warn().Err(err).Int("movie_id", movieID).Msg("Poster lookup cancelled while rate limited")
		return "", false
	}

	start := time.Now()
	path, err := f.source.PosterPath(ctx, movieID)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		metrics.RecordPosterFetch(OutcomeFound, elapsed)
		f.remember(movieID, path, f.ttl)
		return f.url(path)

	case isAbsence(err):
		metrics.RecordPosterFetch(OutcomeAbsent, elapsed)
		logging.Ctx(ctx).Debug().Err(err).Int("movie_id", movieID).Msg("No poster on TMDB")
		f.remember(movieID, "", f.negativeTTL)

	case isRejected(err):
		metrics.RecordPosterFetch(OutcomeRejected, 0)
		logging.Ctx(ctx).Warn().Err(err).Int("movie_id", movieID).Msg("Poster lookup rejected by circuit breaker")

	case ctx.Err() != nil:
		metrics.RecordPosterFetch(OutcomeCancelled, elapsed)
		logging.Ctx(ctx).Warn().Err(err).Int("movie_id", movieID).Msg("Poster lookup cancelled")

	default:
		metrics.RecordPosterFetch(OutcomeError, elapsed)
		logging.Ctx(ctx).Warn().Err(err).Int("movie_id", movieID).Msg("Poster lookup failed")
	}
	return "", false
}

// cached walks the store chain. A hit in a later layer is copied into the
// layers before it.
func (f *Fetcher) cached(movieID int) (string, bool) {
	for i, s := range f.stores {
		path, found, err := s.Get(movieID)
		if err != nil {
			logging.Warn().Err(err).Str("layer", s.Name()).Int("movie_id", movieID).Msg("Poster cache read failed")
		}
		metrics.RecordPosterCache(s.Name(), found)
		if !found {
			continue
		}
		ttl := f.ttl
		if path == "" {
			ttl = f.negativeTTL
		}
		for _, earlier := range f.stores[:i] {
			_ = earlier.Set(movieID, path, ttl)
		}
		return path, true
	}
	return "", false
}

func (f *Fetcher) remember(movieID int, path string, ttl time.Duration) {
	for _, s := range f.stores {
		if err := s.Set(movieID, path, ttl); err != nil {
			logging.Warn().Err(err).Str("layer", s.Name()).Int("movie_id", movieID).Msg("Poster cache write failed")
		}
	}
}

func (f *Fetcher) url(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	return PosterURL(f.imageBase, f.size, path), true
}
