// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/cinematch/internal/catalog"
)

// DefaultLimit is the number of movies returned per query.
const DefaultLimit = 10

// Mode selects how a query value is interpreted.
type Mode string

const (
	ModeTitle Mode = "title"
	ModeGenre Mode = "genre"
	ModeYear  Mode = "year"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeTitle, ModeGenre, ModeYear}

// ParseMode accepts a mode name in any case.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeTitle, ModeGenre, ModeYear:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidQuery, s)
	}
}

// Label is the capitalized name shown in the mode selector.
func (m Mode) Label() string {
	switch m {
	case ModeTitle:
		return "Title"
	case ModeGenre:
		return "Genre"
	case ModeYear:
		return "Year"
	default:
		return string(m)
	}
}

// Query is a user's search request.
type Query struct {
	Mode  Mode
	Value string
}

// Candidate is one recommended movie. Score is the similarity to the queried
// title in title mode and the movie's rating otherwise.
type Candidate struct {
	Index int
	Movie catalog.Movie
	Score float64
}

// Result is the ordered outcome of a query, at most Limit candidates long.
type Result struct {
	Query      Query
	Candidates []Candidate
}

// Empty reports whether the query matched nothing.
func (r *Result) Empty() bool {
	return r == nil || len(r.Candidates) == 0
}

// Movies returns the candidate movies in order.
func (r *Result) Movies() []catalog.Movie {
	out := make([]catalog.Movie, len(r.Candidates))
	for i, c := range r.Candidates {
		out[i] = c.Movie
	}
	return out
}

var (
	// ErrNotFound is matched when a title query has no exact catalog match.
	ErrNotFound = errors.New("title not found")

	// ErrInvalidQuery is matched for unknown modes and unparsable values.
	ErrInvalidQuery = errors.New("invalid query")
)

// NotFoundError carries the missing title and close catalog titles.
type NotFoundError struct {
	Title       string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("title %q not found", e.Title)
}

// Is makes errors.Is(err, ErrNotFound) true.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
