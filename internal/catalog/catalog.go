// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package catalog holds the static movie table and the precomputed
// similarity matrix, and loads both from disk exactly once.
//
// A Dataset is immutable after Load returns. It is safe to share between
// goroutines without locking and is passed explicitly to the components that
// need it:
//
//	loader := catalog.NewLoader(cfg.Data.CatalogPath, cfg.Data.MatrixPath)
//	ds, err := loader.Load(ctx)
//	if err != nil {
//	    // errors.Is(err, catalog.ErrLoad)
//	}
//	resolver := recommend.NewResolver(ds)
package catalog

import (
	"slices"
	"sort"
	"strings"
)

// Catalog is an ordered, read-only table of movies addressed by position.
type Catalog struct {
	movies     []Movie
	firstIndex map[string]int
	duplicates int
}

// New builds a catalog from movies in their source order. The slice is
// copied.
func New(movies []Movie) *Catalog {
	c := &Catalog{
		movies:     make([]Movie, len(movies)),
		firstIndex: make(map[string]int, len(movies)),
	}
	for i, m := range movies {
		m.Genres = slices.Clone(m.Genres)
		c.movies[i] = m
		if _, seen := c.firstIndex[m.Title]; seen {
			c.duplicates++
			continue
		}
		c.firstIndex[m.Title] = i
	}
	return c
}

// Len returns the number of movies.
func (c *Catalog) Len() int {
	return len(c.movies)
}

// At returns the movie at position i. It panics when i is out of range, like
// a slice index.
func (c *Catalog) At(i int) Movie {
	return c.movies[i]
}

// IndexOf returns the position of the first movie whose title equals title
// exactly.
func (c *Catalog) IndexOf(title string) (int, bool) {
	i, ok := c.firstIndex[title]
	return i, ok
}

// Duplicates counts movies whose title already appeared earlier.
func (c *Catalog) Duplicates() int {
	return c.duplicates
}

// Each calls fn for every movie in catalog order until fn returns false.
func (c *Catalog) Each(fn func(i int, m Movie) bool) {
	for i, m := range c.movies {
		if !fn(i, m) {
			return
		}
	}
}

// Options are the values a user can pick from for each search mode.
type Options struct {
	Titles []string
	Genres []string
	Years  []int
}

// Options returns sorted unique titles, genres and years. Movies without a
// known release year contribute no year option.
func (c *Catalog) Options() Options {
	titles := make(map[string]struct{}, len(c.movies))
	genres := make(map[string]struct{})
	years := make(map[int]struct{})

	for _, m := range c.movies {
		titles[m.Title] = struct{}{}
		for _, g := range m.Genres {
			genres[g] = struct{}{}
		}
		// Unknown years load as 0 and cannot be searched.
		if m.ReleaseYear > 0 {
			years[m.ReleaseYear] = struct{}{}
		}
	}

	opts := Options{
		Titles: keys(titles),
		Genres: keys(genres),
		Years:  make([]int, 0, len(years)),
	}
	for y := range years {
		opts.Years = append(opts.Years, y)
	}
	sort.Ints(opts.Years)
	return opts
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		if strings.TrimSpace(k) == "" {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
