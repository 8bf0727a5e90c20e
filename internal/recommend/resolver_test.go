// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// newDataset builds a dataset from movies and a matrix. A nil matrix becomes
// the identity.
func newDataset(t *testing.T, movies []catalog.Movie, rows [][]float64) *catalog.Dataset {
	t.Helper()
	if rows == nil {
		rows = make([][]float64, len(movies))
		for i := range rows {
			rows[i] = make([]float64, len(movies))
			rows[i][i] = 1
		}
	}
	m, err := catalog.NewMatrix(rows)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	ds, err := catalog.NewDataset(catalog.New(movies), m)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	return ds
}

func numberedMovies(n int) []catalog.Movie {
	movies := make([]catalog.Movie, n)
	for i := range movies {
		movies[i] = catalog.Movie{
			ID:          1000 + i,
			Title:       fmt.Sprintf("Movie %d", i),
			Genres:      []string{"Drama"},
			ReleaseYear: 2000,
			Rating:      5,
		}
	}
	return movies
}

func indices(res *Result) []int {
	out := make([]int, len(res.Candidates))
	for i, c := range res.Candidates {
		out[i] = c.Index
	}
	return out
}

func TestByTitle_RanksBySimilarityExcludingSelf(t *testing.T) {
	movies := numberedMovies(13)
	movies[5].Title = "Inception"

	rows := make([][]float64, 13)
	for i := range rows {
		rows[i] = make([]float64, 13)
		rows[i][i] = 1
	}
	rows[5] = []float64{0.1, 0.9, 0.05, 0.2, 0.99, 1.0, 0.8, 0.3, 0.4, 0.5, 0.6, 0.7, 0.01}

	r := NewResolver(newDataset(t, movies, rows))
	res, err := r.ByTitle(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("ByTitle() error = %v", err)
	}

	want := []int{4, 1, 6, 11, 10, 9, 8, 7, 3, 0}
	if got := indices(res); !reflect.DeepEqual(got, want) {
		t.Errorf("ByTitle order = %v, want %v", got, want)
	}
	if res.Candidates[0].Score < 0.98 || res.Candidates[0].Movie.ID != 1004 {
		t.Errorf("first candidate = %+v", res.Candidates[0])
	}
	for _, c := range res.Candidates {
		if c.Index == 5 {
			t.Fatal("queried movie included in its own recommendations")
		}
	}
}

func TestByTitle_TiesKeepCatalogOrder(t *testing.T) {
	movies := numberedMovies(6)
	rows := [][]float64{
		{1, 0.5, 0.5, 0.7, 0.5, 0.7},
		{0, 1, 0, 0, 0, 0},
		{0, 0, 1, 0, 0, 0},
		{0, 0, 0, 1, 0, 0},
		{0, 0, 0, 0, 1, 0},
		{0, 0, 0, 0, 0, 1},
	}
	r := NewResolver(newDataset(t, movies, rows))

	res, err := r.ByTitle(context.Background(), "Movie 0")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := indices(res), []int{3, 5, 1, 2, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestByTitle_SelfNotTopScore(t *testing.T) {
	movies := numberedMovies(3)
	rows := [][]float64{
		{0.2, 0.9, 0.5},
		{0, 1, 0},
		{0, 0, 1},
	}
	r := NewResolver(newDataset(t, movies, rows))

	res, err := r.ByTitle(context.Background(), "Movie 0")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := indices(res), []int{1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestByTitle_CloseScoresKeepOrder(t *testing.T) {
	movies := numberedMovies(3)
	rows := [][]float64{
		{1, 0.30000001, 0.30000002},
		{0, 1, 0},
		{0, 0, 1},
	}
	r := NewResolver(newDataset(t, movies, rows))

	res, err := r.ByTitle(context.Background(), "Movie 0")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := indices(res), []int{2, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if res.Candidates[0].Score != 0.30000002 {
		t.Errorf("score = %v, want 0.30000002", res.Candidates[0].Score)
	}
}

func TestByTitle_LimitAndSmallCatalog(t *testing.T) {
	big := NewResolver(newDataset(t, numberedMovies(30), nil))
	res, err := big.ByTitle(context.Background(), "Movie 7")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Candidates) != DefaultLimit {
		t.Errorf("len = %d, want %d", len(res.Candidates), DefaultLimit)
	}

	small := NewResolver(newDataset(t, numberedMovies(4), nil))
	res, err = small.ByTitle(context.Background(), "Movie 0")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Candidates) != 3 {
		t.Errorf("small catalog len = %d, want 3", len(res.Candidates))
	}

	limited := NewResolver(newDataset(t, numberedMovies(30), nil), WithLimit(3))
	res, _ = limited.ByTitle(context.Background(), "Movie 0")
	if len(res.Candidates) != 3 {
		t.Errorf("WithLimit(3) len = %d", len(res.Candidates))
	}
}

func TestByTitle_DuplicateTitleUsesFirst(t *testing.T) {
	movies := numberedMovies(3)
	movies[2].Title = "Movie 0"
	rows := [][]float64{
		{1, 0.1, 0.9},
		{0.1, 1, 0.4},
		{0.9, 0.4, 1},
	}
	r := NewResolver(newDataset(t, movies, rows))

	res, err := r.ByTitle(context.Background(), "Movie 0")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := indices(res), []int{2, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v (row of first match)", got, want)
	}
}

func TestByTitle_NotFound(t *testing.T) {
	movies := numberedMovies(3)
	movies[1].Title = "The Matrix Reloaded"
	r := NewResolver(newDataset(t, movies, nil))

	_, err := r.ByTitle(context.Background(), "Matrix")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err %T is not *NotFoundError", err)
	}
	if nf.Title != "Matrix" {
		t.Errorf("Title = %q", nf.Title)
	}
	if len(nf.Suggestions) == 0 || nf.Suggestions[0] != "The Matrix Reloaded" {
		t.Errorf("Suggestions = %v", nf.Suggestions)
	}
}

func genreMovies() []catalog.Movie {
	return []catalog.Movie{
		{ID: 1, Title: "A", Genres: []string{"Science Fiction", "Action"}, ReleaseYear: 1999, Rating: 7.5},
		{ID: 2, Title: "B", Genres: []string{"Drama"}, ReleaseYear: 1999, Rating: 9.0},
		{ID: 3, Title: "C", Genres: []string{"action"}, ReleaseYear: 2001, Rating: 8.0},
		{ID: 4, Title: "D", Genres: []string{"Comedy"}, ReleaseYear: 1999, Rating: 8.0},
		{ID: 5, Title: "E", Genres: []string{"Action", "Thriller"}, ReleaseYear: 2005, Rating: 8.0},
		{ID: 6, Title: "F", Genres: nil, ReleaseYear: 2005, Rating: 9.9},
	}
}

func TestByGenre(t *testing.T) {
	r := NewResolver(newDataset(t, genreMovies(), nil))

	tests := []struct {
		genre string
		want  []int
	}{
		{"Action", []int{3, 5, 1}},
		{"ACTION", []int{3, 5, 1}},
		{"fiction", []int{1}},
		{"ion", []int{3, 5, 1}},
		{"Western", nil},
		{"Science Fiction, Action", []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.genre, func(t *testing.T) {
			res, err := r.ByGenre(context.Background(), tt.genre)
			if err != nil {
				t.Fatalf("ByGenre() error = %v", err)
			}
			var got []int
			for _, c := range res.Candidates {
				got = append(got, c.Movie.ID)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ByGenre(%q) = %v, want %v", tt.genre, got, tt.want)
			}
			if res.Query.Mode != ModeGenre || res.Query.Value != tt.genre {
				t.Errorf("Query = %+v", res.Query)
			}
		})
	}
}

func TestByGenre_MetacharactersAreLiteral(t *testing.T) {
	movies := []catalog.Movie{
		{ID: 1, Title: "A", Genres: []string{"Sci+Fi"}, Rating: 1},
		{ID: 2, Title: "B", Genres: []string{"SciiiFi"}, Rating: 2},
	}
	r := NewResolver(newDataset(t, movies, nil))

	res, err := r.ByGenre(context.Background(), "Sci+Fi")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Candidates) != 1 || res.Candidates[0].Movie.ID != 1 {
		t.Errorf("ByGenre(Sci+Fi) = %+v, want only ID 1", res.Candidates)
	}
}

func TestByGenre_MatchesStoredGenreText(t *testing.T) {
	movies := []catalog.Movie{
		{ID: 1, Title: "A", Genres: catalog.ParseGenres("Action,Drama"), GenreField: "Action,Drama", Rating: 1},
		{ID: 2, Title: "B", Genres: []string{"Action", "Drama"}, Rating: 2},
	}
	r := NewResolver(newDataset(t, movies, nil))

	res, err := r.ByGenre(context.Background(), "n,D")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Candidates) != 1 || res.Candidates[0].Movie.ID != 1 {
		t.Errorf("ByGenre(n,D) = %+v, want only ID 1", res.Candidates)
	}

	res, err = r.ByGenre(context.Background(), "n, D")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Candidates) != 1 || res.Candidates[0].Movie.ID != 2 {
		t.Errorf("ByGenre(n, D) = %+v, want only ID 2", res.Candidates)
	}
}

func TestByGenre_CapsAtLimit(t *testing.T) {
	movies := numberedMovies(25)
	for i := range movies {
		movies[i].Rating = float64(i % 7)
	}
	r := NewResolver(newDataset(t, movies, nil))

	res, err := r.ByGenre(context.Background(), "drama")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Candidates) != DefaultLimit {
		t.Fatalf("len = %d, want %d", len(res.Candidates), DefaultLimit)
	}
	for i := 1; i < len(res.Candidates); i++ {
		prev, cur := res.Candidates[i-1], res.Candidates[i]
		if prev.Score < cur.Score {
			t.Errorf("not sorted by rating at %d: %v < %v", i, prev.Score, cur.Score)
		}
		if prev.Score == cur.Score && prev.Index > cur.Index {
			t.Errorf("tie at %d not in catalog order: %d > %d", i, prev.Index, cur.Index)
		}
	}
}

func TestByYear(t *testing.T) {
	r := NewResolver(newDataset(t, genreMovies(), nil))

	res, err := r.ByYear(context.Background(), 1999)
	if err != nil {
		t.Fatal(err)
	}
	var ratings []float64
	for _, c := range res.Candidates {
		ratings = append(ratings, c.Movie.Rating)
	}
	if want := []float64{9.0, 8.0, 7.5}; !reflect.DeepEqual(ratings, want) {
		t.Errorf("ratings = %v, want %v", ratings, want)
	}

	res, err = r.ByYear(context.Background(), 1888)
	if err != nil {
		t.Fatalf("empty year should not error: %v", err)
	}
	if !res.Empty() {
		t.Errorf("ByYear(1888) = %+v, want empty", res.Candidates)
	}
}

func TestResolve_Dispatch(t *testing.T) {
	r := NewResolver(newDataset(t, genreMovies(), nil))
	ctx := context.Background()

	tests := []struct {
		name    string
		q       Query
		wantLen int
		wantErr error
	}{
		{"title", Query{Mode: ModeTitle, Value: "A"}, 5, nil},
		{"genre upper mode", Query{Mode: "GENRE", Value: "drama"}, 1, nil},
		{"year", Query{Mode: ModeYear, Value: " 2005 "}, 2, nil},
		{"bad year", Query{Mode: ModeYear, Value: "nineteen"}, 0, ErrInvalidQuery},
		{"bad mode", Query{Mode: "actor", Value: "x"}, 0, ErrInvalidQuery},
		{"missing title", Query{Mode: ModeTitle, Value: "Z"}, 0, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Resolve(ctx, tt.q)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if len(res.Candidates) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(res.Candidates), tt.wantLen)
			}
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	r := NewResolver(newDataset(t, genreMovies(), nil))
	q := Query{Mode: ModeGenre, Value: "action"}

	first, err := r.Resolve(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := r.Resolve(context.Background(), q)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(indices(first), indices(again)) {
			t.Fatalf("run %d: %v != %v", i, indices(again), indices(first))
		}
	}
}

func TestResolve_CancelledContext(t *testing.T) {
	r := NewResolver(newDataset(t, genreMovies(), nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Resolve(ctx, Query{Mode: ModeGenre, Value: "drama"}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestResolve_RecordsMetrics(t *testing.T) {
	r := NewResolver(newDataset(t, genreMovies(), nil))
	ok := metrics.QueriesTotal.WithLabelValues("year", "ok")
	empty := metrics.QueriesTotal.WithLabelValues("year", "empty")
	notFound := metrics.QueriesTotal.WithLabelValues("title", "not_found")
	unknown := metrics.QueriesTotal.WithLabelValues("unknown", "invalid")

	before := []float64{testutil.ToFloat64(ok), testutil.ToFloat64(empty), testutil.ToFloat64(notFound), testutil.ToFloat64(unknown)}

	_, _ = r.Resolve(context.Background(), Query{Mode: ModeYear, Value: "1999"})
	_, _ = r.Resolve(context.Background(), Query{Mode: ModeYear, Value: "1800"})
	_, _ = r.Resolve(context.Background(), Query{Mode: ModeTitle, Value: "nope"})
	_, _ = r.Resolve(context.Background(), Query{Mode: "bogus", Value: "x"})

	after := []float64{testutil.ToFloat64(ok), testutil.ToFloat64(empty), testutil.ToFloat64(notFound), testutil.ToFloat64(unknown)}
	for i := range before {
		if after[i]-before[i] != 1 {
			t.Errorf("counter %d moved by %v, want 1", i, after[i]-before[i])
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"title", "Title", " YEAR "} {
		if _, err := ParseMode(s); err != nil {
			t.Errorf("ParseMode(%q) error = %v", s, err)
		}
	}
	if _, err := ParseMode("director"); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("ParseMode(director) err = %v", err)
	}
	if ModeGenre.Label() != "Genre" {
		t.Errorf("Label() = %q", ModeGenre.Label())
	}
}
