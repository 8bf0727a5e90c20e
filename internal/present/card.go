// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package present turns query results into what the user sees: cards for
// the web page, a plain text layout for the terminal, and progress output
// while posters are fetched.
package present

import (
	"strconv"
	"strings"

	"github.com/tomtom215/cinematch/internal/poster"
	"github.com/tomtom215/cinematch/internal/recommend"
)

const (
	// NoPoster replaces the image when a movie has no poster.
	NoPoster = "No poster available"

	// NoResults is shown for a query that matched nothing.
	NoResults = "No recommendations found."

	// ResultsHeader heads a non-empty result list.
	ResultsHeader = "### Recommendations:"

	// Separator closes each movie block.
	Separator = "---"

	// DefaultLinkBase is the TMDB movie page prefix.
	DefaultLinkBase = "https://www.themoviedb.org/movie/"
)

// Card is the view model for one recommended movie.
type Card struct {
	MovieID   int     `json:"id"`
	Title     string  `json:"title"`
	Link      string  `json:"link"`
	PosterURL string  `json:"poster_url,omitempty"`
	HasPoster bool    `json:"has_poster"`
	Genres    string  `json:"genres"`
	Year      int     `json:"release_year"`
	Rating    float64 `json:"rating"`
}

// PosterText is the poster URL, or the placeholder when there is none.
func (c Card) PosterText() string {
	if !c.HasPoster {
		return NoPoster
	}
	return c.PosterURL
}

// RatingText formats the rating for display.
func (c Card) RatingText() string {
	return FormatRating(c.Rating)
}

// Cards builds one card per candidate. posters is matched by position; a
// short or nil slice leaves the remaining cards without a poster.
func Cards(res *recommend.Result, posters []poster.Item, linkBase string) []Card {
	if res.Empty() {
		return []Card{}
	}
	if linkBase == "" {
		linkBase = DefaultLinkBase
	}

	cards := make([]Card, len(res.Candidates))
	for i, c := range res.Candidates {
		m := c.Movie
		card := Card{
			MovieID: m.ID,
			Title:   m.Title,
			Link:    MovieLink(linkBase, m.ID),
			Genres:  m.GenreText(),
			Year:    m.ReleaseYear,
			Rating:  m.Rating,
		}
		if i < len(posters) && posters[i].OK && posters[i].URL != "" {
			card.PosterURL = posters[i].URL
			card.HasPoster = true
		}
		cards[i] = card
	}
	return cards
}

// MovieLink returns the TMDB page for a movie id.
func MovieLink(linkBase string, id int) string {
	return linkBase + strconv.Itoa(id)
}

// FormatRating prints a rating with the fewest digits that round-trip, but
// always with a decimal point: 8 prints as "8.0".
func FormatRating(r float64) string {
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
