// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
)

// readTabular loads a CSV, TSV or Parquet catalog through an in-memory
// DuckDB connection. Row order follows the file.
func readTabular(ctx context.Context, path string) ([]Movie, error) {
	db, err := sql.Open("duckdb", ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer func() { _ = db.Close() }()

	// A single connection keeps the SET below in effect for the query.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "SET preserve_insertion_order = true"); err != nil {
		return nil, fmt.Errorf("configure duckdb: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT
			CAST(id AS BIGINT),
			COALESCE(CAST(title AS VARCHAR), ''),
			COALESCE(CAST(genres AS VARCHAR), ''),
			COALESCE(CAST(release_year AS BIGINT), 0),
			COALESCE(CAST(rating AS DOUBLE), 0)
		FROM %s`, tableFunction(path))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var movies []Movie
	for rows.Next() {
		var (
			id, year      int64
			title, genres string
			rating        float64
		)
		if err := rows.Scan(&id, &title, &genres, &year, &rating); err != nil {
			return nil, fmt.Errorf("scan catalog row %d: %w", len(movies), err)
		}
		movies = append(movies, Movie{
			ID:          int(id),
			Title:       title,
			Genres:      ParseGenres(genres),
			ReleaseYear: int(year),
			Rating:      rating,
			GenreField:  genres,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read catalog rows: %w", err)
	}
	return movies, nil
}

func tableFunction(path string) string {
	lit := sqlString(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return "read_parquet(" + lit + ")"
	case ".tsv":
		return "read_csv_auto(" + lit + ", delim = '\t', header = true)"
	default:
		return "read_csv_auto(" + lit + ", header = true)"
	}
}

// sqlString quotes s as a DuckDB string literal.
func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
