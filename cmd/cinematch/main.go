// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Command cinematch prints movie recommendations to the terminal.
//
//	cinematch -mode title -value "The Dark Knight"
//	cinematch -mode genre -value comedy
//	cinematch -mode year -list
//
// It reads the same configuration as the server. Progress goes to stderr,
// results to stdout. Exit status is 1 for configuration, load and input
// errors and 2 when the title is not in the catalog.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/poster"
	"github.com/tomtom215/cinematch/internal/present"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/validation"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitNotFound = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cinematch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	mode := fs.String("mode", string(recommend.ModeTitle), "search by: title, genre or year")
	value := fs.String("value", "", "movie title, genre or release year")
	list := fs.Bool("list", false, "print the values available for -mode and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFailure
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "cinematch: %v\n", err)
		return exitFailure
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    stderr,
	})

	m, err := recommend.ParseMode(*mode)
	if err != nil {
		fmt.Fprintf(stderr, "cinematch: %v\n", err)
		return exitFailure
	}

	ds, err := catalog.NewLoader(cfg.Data.CatalogPath, cfg.Data.MatrixPath).Load(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "cinematch: %v\n", err)
		return exitFailure
	}

	if *list {
		printOptions(stdout, ds.Catalog.Options(), m)
		return exitOK
	}

	form := validation.QueryForm{Mode: string(m), Value: *value}
	if verr := validation.ValidateStruct(&form); verr != nil {
		fmt.Fprintf(stderr, "cinematch: %v\n", verr)
		return exitFailure
	}

	res, err := recommend.NewResolver(ds).Resolve(ctx, recommend.Query{Mode: m, Value: form.Value})
	if err != nil {
		var nf *recommend.NotFoundError
		if errors.As(err, &nf) {
			_ = present.RenderSuggestions(stderr, nf.Title, nf.Suggestions)
			return exitNotFound
		}
		fmt.Fprintf(stderr, "cinematch: %v\n", err)
		return exitFailure
	}

	enricher, closeStore, err := newEnricher(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "cinematch: %v\n", err)
		return exitFailure
	}
	defer closeStore()

	movies := res.Movies()
	items := enricher.Enrich(ctx, movies, present.TextProgress(stderr))
	if err := present.RenderText(stdout, present.Cards(res, items, cfg.TMDB.LinkBase)); err != nil {
		fmt.Fprintf(stderr, "cinematch: %v\n", err)
		return exitFailure
	}
	return exitOK
}

// newEnricher builds the poster pipeline, sharing the server's persistent
// store when one is configured.
func newEnricher(cfg *config.Config) (*poster.Enricher, func(), error) {
	var opts []poster.FetcherOption
	closeStore := func() {}
	if cfg.Poster.StorePath != "" {
		store, err := poster.OpenBadgerStore(cfg.Poster.StorePath)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, poster.WithStore(store))
		closeStore = func() { _ = store.Close() }
	}
	fetcher := poster.NewFetcher(cfg.TMDB, cfg.Poster, opts...)
	return poster.NewEnricher(fetcher, cfg.Poster.Workers), closeStore, nil
}

func printOptions(w io.Writer, opts catalog.Options, m recommend.Mode) {
	switch m {
	case recommend.ModeGenre:
		for _, g := range opts.Genres {
			fmt.Fprintln(w, g)
		}
	case recommend.ModeYear:
		for _, y := range opts.Years {
			fmt.Fprintln(w, y)
		}
	default:
		for _, t := range opts.Titles {
			fmt.Fprintln(w, t)
		}
	}
}
