// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"strings"
)

// GenreSeparator joins genre names in the source data and in display.
const GenreSeparator = ", "

// Movie is one catalog record. ID is the TMDB movie id.
type Movie struct {
	ID          int
	Title       string
	Genres      []string
	ReleaseYear int
	Rating      float64

	// GenreField is the genres column exactly as the catalog stores it.
	// Empty when the source held a list rather than a string.
	GenreField string
}

// GenreText returns the genres as the catalog stores them. Genre search and
// display both use it. Without a stored string the names are joined with
// GenreSeparator.
func (m Movie) GenreText() string {
	if m.GenreField != "" {
		return m.GenreField
	}
	return strings.Join(m.Genres, GenreSeparator)
}

// ParseGenres splits a comma-delimited genre field, trimming blanks and
// dropping empty entries.
func ParseGenres(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
