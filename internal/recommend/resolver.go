// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package recommend turns a (mode, value) query into an ordered list of up to
// ten movies.
//
// Three lookups exist:
//
//   - ByTitle ranks every movie by its similarity score to the queried title
//     and drops the queried movie itself.
//   - ByGenre keeps movies whose genre text contains the value, ignoring case,
//     and ranks them by rating.
//   - ByYear keeps movies released in exactly that year and ranks them by
//     rating.
//
// All ranking uses a stable sort, so equal scores keep catalog order and
// repeated queries return identical results. The Resolver holds no mutable
// state and is safe for concurrent use.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// Resolver answers queries against one dataset.
type Resolver struct {
	ds        *catalog.Dataset
	limit     int
	suggester *Suggester
	logger    zerolog.Logger
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithLimit overrides DefaultLimit.
func WithLimit(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.limit = n
		}
	}
}

// NewResolver builds a resolver over ds.
func NewResolver(ds *catalog.Dataset, opts ...Option) *Resolver {
	r := &Resolver{
		ds:        ds,
		limit:     DefaultLimit,
		suggester: NewSuggester(ds.Catalog),
		logger:    logging.WithComponent("recommend"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dataset returns the dataset the resolver reads.
func (r *Resolver) Dataset() *catalog.Dataset {
	return r.ds
}

// Resolve dispatches q to the lookup for its mode.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()
	res, err := r.resolve(ctx, q)

	label := "unknown"
	if m, perr := ParseMode(string(q.Mode)); perr == nil {
		label = string(m)
	}
	metrics.RecordQuery(label, outcome(res, err), time.Since(start))
	return res, err
}

func (r *Resolver) resolve(ctx context.Context, q Query) (*Result, error) {
	mode, err := ParseMode(string(q.Mode))
	if err != nil {
		return nil, err
	}
	switch mode {
	case ModeTitle:
		return r.ByTitle(ctx, q.Value)
	case ModeGenre:
		return r.ByGenre(ctx, q.Value)
	default:
		year, err := strconv.Atoi(strings.TrimSpace(q.Value))
		if err != nil {
			return nil, fmt.Errorf("%w: year %q is not a number", ErrInvalidQuery, q.Value)
		}
		return r.ByYear(ctx, year)
	}
}

// ByTitle returns the movies most similar to title. The first catalog entry
// with that exact title is used when titles repeat.
func (r *Resolver) ByTitle(ctx context.Context, title string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx, ok := r.ds.Catalog.IndexOf(title)
	if !ok {
		return nil, &NotFoundError{Title: title, Suggestions: r.suggester.Suggest(title, maxSuggestions)}
	}
	if r.ds.Catalog.Duplicates() > 0 {
		r.logger.Debug().Str("title", title).Int("index", idx).Msg("Resolved title to first catalog match")
	}

	row := r.ds.Matrix.Row(idx)
	order := make([]int, len(row))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return row[order[a]] > row[order[b]]
	})

	res := &Result{Query: Query{Mode: ModeTitle, Value: title}}
	for _, i := range order {
		if i == idx {
			continue
		}
		if len(res.Candidates) == r.limit {
			break
		}
		res.Candidates = append(res.Candidates, Candidate{
			Index: i,
			Movie: r.ds.Catalog.At(i),
			Score: row[i],
		})
	}
	return res, nil
}

// ByGenre returns the best rated movies whose genre text contains genre,
// compared case-insensitively as a plain substring.
func (r *Resolver) ByGenre(ctx context.Context, genre string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(genre)
	res := r.topRated(func(m catalog.Movie) bool {
		return strings.Contains(strings.ToLower(m.GenreText()), needle)
	})
	res.Query = Query{Mode: ModeGenre, Value: genre}
	return res, nil
}

// ByYear returns the best rated movies released in year.
func (r *Resolver) ByYear(ctx context.Context, year int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := r.topRated(func(m catalog.Movie) bool {
		return m.ReleaseYear == year
	})
	res.Query = Query{Mode: ModeYear, Value: strconv.Itoa(year)}
	return res, nil
}

func (r *Resolver) topRated(keep func(catalog.Movie) bool) *Result {
	var matched []Candidate
	r.ds.Catalog.Each(func(i int, m catalog.Movie) bool {
		if keep(m) {
			matched = append(matched, Candidate{Index: i, Movie: m, Score: m.Rating})
		}
		return true
	})
	sort.SliceStable(matched, func(a, b int) bool {
		return matched[a].Score > matched[b].Score
	})
	if len(matched) > r.limit {
		matched = matched[:r.limit]
	}
	return &Result{Candidates: matched}
}

func outcome(res *Result, err error) string {
	switch {
	case err == nil && res.Empty():
		return "empty"
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidQuery):
		return "invalid"
	default:
		return "error"
	}
}
