// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package present

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/tomtom215/cinematch/internal/poster"
)

// RenderText writes cards in the terminal layout:
//
//	### Recommendations:
//
//	Poster: https://image.tmdb.org/t/p/w500/...
//	Title: The Matrix (https://www.themoviedb.org/movie/603)
//	Genres: Action, Science Fiction
//	Release Year: 1999
//	Rating: 8.2
//	---
func RenderText(w io.Writer, cards []Card) error {
	bw := bufio.NewWriter(w)
	if len(cards) == 0 {
		fmt.Fprintln(bw, NoResults)
		return bw.Flush()
	}

	fmt.Fprintln(bw, ResultsHeader)
	fmt.Fprintln(bw)
	for _, c := range cards {
		fmt.Fprintf(bw, "Poster: %s\n", c.PosterText())
		fmt.Fprintf(bw, "Title: %s (%s)\n", c.Title, c.Link)
		fmt.Fprintf(bw, "Genres: %s\n", c.Genres)
		fmt.Fprintf(bw, "Release Year: %d\n", c.Year)
		fmt.Fprintf(bw, "Rating: %s\n", c.RatingText())
		fmt.Fprintln(bw, Separator)
	}
	return bw.Flush()
}

// RenderSuggestions writes the not-found message and close titles.
func RenderSuggestions(w io.Writer, title string, suggestions []string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Movie %q is not in the catalog.\n", title)
	if len(suggestions) > 0 {
		fmt.Fprintln(bw, "Did you mean:")
		for _, s := range suggestions {
			fmt.Fprintf(bw, "  - %s\n", s)
		}
	}
	return bw.Flush()
}

// ProgressMessage is the text shown while posters are fetched.
func ProgressMessage(done, total int) string {
	return fmt.Sprintf("Fetching movie recommendations: %d/%d", done, total)
}

// TextProgress returns a progress callback that rewrites one line on w and
// ends it when done reaches total.
func TextProgress(w io.Writer) poster.ProgressFunc {
	var mu sync.Mutex
	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "\r%s", ProgressMessage(done, total))
		if done >= total {
			fmt.Fprintln(w)
		}
	}
}
