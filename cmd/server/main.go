// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package main is the Cinematch web server.
//
// Startup order:
//
//  1. Configuration: koanf v2 layers (defaults, config.yaml, environment)
//  2. Logging: zerolog, JSON or console
//  3. Poster pipeline: TMDB client, circuit breaker, memory cache and the
//     optional BadgerDB store
//  4. Web handler: chi router, templates, websocket progress stream
//  5. Supervisor tree: dataset loader and store GC in the data layer, the
//     HTTP server in the api layer
//
// The server answers /healthz/live immediately and reports ready once the
// dataset has loaded. A dataset that cannot be loaded stops the process
// with exit code 1. SIGINT and SIGTERM shut down gracefully.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/poster"
	"github.com/tomtom215/cinematch/internal/supervisor"
	"github.com/tomtom215/cinematch/internal/supervisor/services"
	"github.com/tomtom215/cinematch/internal/web"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("catalog", cfg.Data.CatalogPath).
		Str("matrix", cfg.Data.MatrixPath).
		Bool("posters", cfg.TMDB.Enabled()).
		Str("poster_store", cfg.Poster.StorePath).
		Msg("Starting Cinematch")

	var opts []poster.FetcherOption
	var store *poster.BadgerStore
	if cfg.Poster.StorePath != "" {
		store, err = poster.OpenBadgerStore(cfg.Poster.StorePath)
		if err != nil {
			logging.Error().Err(err).Msg("Failed to open poster store")
			return 1
		}
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing poster store")
			}
		}()
		opts = append(opts, poster.WithStore(store))
	}

	fetcher := poster.NewFetcher(cfg.TMDB, cfg.Poster, opts...)
	enricher := poster.NewEnricher(fetcher, cfg.Poster.Workers)

	handler, err := web.New(cfg, enricher, fetcher.Enabled())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to build web handler")
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})

	// Data layer
	var loadFailed atomic.Bool
	loader := catalog.NewLoader(cfg.Data.CatalogPath, cfg.Data.MatrixPath)
	tree.AddDataService(services.NewDatasetService(loader,
		func(ds *catalog.Dataset) { handler.SetDataset(ds) },
		func(error) {
			loadFailed.Store(true)
			cancel()
		},
	))
	if store != nil {
		tree.AddDataService(services.NewStoreGCService(store, cfg.Poster.StoreGCInterval))
	}

	// API layer
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// Websocket streams and poster lookups run under cfg.Server.Timeout;
		// the write timeout leaves room to flush the final message.
		WriteTimeout: cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	if err := tree.Run(ctx); err != nil {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if loadFailed.Load() {
		return 1
	}
	logging.Info().Msg("Cinematch stopped")
	return 0
}
