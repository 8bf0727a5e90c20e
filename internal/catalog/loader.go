// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/logging"
)

// ErrLoad is matched by every dataset load failure.
var ErrLoad = errors.New("dataset load failed")

// LoadError describes which artifact failed to load and why.
type LoadError struct {
	Artifact string // "catalog", "matrix" or "dataset"
	Path     string
	Err      error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load %s: %v", e.Artifact, e.Err)
	}
	return fmt.Sprintf("load %s %s: %v", e.Artifact, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrLoad) true for any *LoadError.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// Dataset is the immutable pair of catalog and matrix.
type Dataset struct {
	Catalog *Catalog
	Matrix  *Matrix

	CatalogPath string
	MatrixPath  string
	LoadedAt    time.Time
}

// NewDataset pairs a catalog with a matrix after checking that the matrix
// has one row and column per movie.
func NewDataset(c *Catalog, m *Matrix) (*Dataset, error) {
	if c == nil || m == nil {
		return nil, &LoadError{Artifact: "dataset", Err: errors.New("catalog and matrix are required")}
	}
	if m.Dim() != c.Len() {
		return nil, &LoadError{
			Artifact: "dataset",
			Err:      fmt.Errorf("matrix is %dx%d but catalog has %d movies", m.Dim(), m.Dim(), c.Len()),
		}
	}
	return &Dataset{Catalog: c, Matrix: m, LoadedAt: time.Now()}, nil
}

// Loader reads the dataset from disk on its first Load call and returns the
// same result, including a failure, on every later call.
type Loader struct {
	catalogPath string
	matrixPath  string

	once sync.Once
	ds   *Dataset
	err  error
}

// NewLoader returns a loader for the two artifact paths. Nothing is read
// until Load.
func NewLoader(catalogPath, matrixPath string) *Loader {
	return &Loader{catalogPath: catalogPath, matrixPath: matrixPath}
}

// Load parses both artifacts once. ctx only bounds the first call.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	l.once.Do(func() {
		l.ds, l.err = l.load(ctx)
	})
	return l.ds, l.err
}

func (l *Loader) load(ctx context.Context) (*Dataset, error) {
	start := time.Now()

	movies, err := readCatalog(ctx, l.catalogPath)
	if err != nil {
		return nil, &LoadError{Artifact: "catalog", Path: l.catalogPath, Err: err}
	}
	cat := New(movies)

	mat, err := readMatrixFile(l.matrixPath)
	if err != nil {
		return nil, &LoadError{Artifact: "matrix", Path: l.matrixPath, Err: err}
	}

	ds, err := NewDataset(cat, mat)
	if err != nil {
		return nil, err
	}
	ds.CatalogPath = l.catalogPath
	ds.MatrixPath = l.matrixPath

	logging.Info().
		Int("movies", cat.Len()).
		Int("duplicate_titles", cat.Duplicates()).
		Str("catalog", l.catalogPath).
		Str("matrix", l.matrixPath).
		Dur("took", time.Since(start)).
		Msg("Dataset loaded")
	return ds, nil
}

func readCatalog(ctx context.Context, path string) ([]Movie, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return decodeCatalogJSON(data)
	case ".csv", ".tsv", ".parquet":
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
		return readTabular(ctx, path)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
}

func readMatrixFile(path string) (*Matrix, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".sim", ".bin":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return ReadMatrix(f)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var rows [][]float64
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("decode matrix: %w", err)
		}
		return NewMatrix(rows)
	default:
		return nil, fmt.Errorf("unsupported matrix format %q", ext)
	}
}

// movieRecord is the JSON catalog row. genres may be a comma-delimited
// string or an array of names.
type movieRecord struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Genres      genreField `json:"genres"`
	ReleaseYear int        `json:"release_year"`
	Rating      float64    `json:"rating"`
}

// genreField keeps the parsed names and, for the string form, the text
// as written.
type genreField struct {
	names []string
	text  string
}

func (g *genreField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*g = genreField{}
		return nil
	}
	if b[0] == '[' {
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*g = genreField{names: ParseGenres(strings.Join(list, ","))}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*g = genreField{names: ParseGenres(s), text: s}
	return nil
}

func decodeCatalogJSON(data []byte) ([]Movie, error) {
	var records []movieRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	movies := make([]Movie, len(records))
	for i, r := range records {
		movies[i] = Movie{
			ID:          r.ID,
			Title:       r.Title,
			Genres:      r.Genres.names,
			ReleaseYear: r.ReleaseYear,
			Rating:      r.Rating,
			GenreField:  r.Genres.text,
		}
	}
	return movies, nil
}
