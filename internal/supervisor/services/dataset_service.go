// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/logging"
)

// DatasetLoader is satisfied by *catalog.Loader.
type DatasetLoader interface {
	Load(ctx context.Context) (*catalog.Dataset, error)
}

// DatasetService loads the dataset once in the background and passes it to
// ready. On failure it calls failed instead. Either way the service
// finishes with suture.ErrDoNotRestart: the loader caches its result, so a
// restart could not change the outcome.
type DatasetService struct {
	loader DatasetLoader
	ready  func(*catalog.Dataset)
	failed func(error)
}

// NewDatasetService creates the loader service. failed may be nil.
func NewDatasetService(loader DatasetLoader, ready func(*catalog.Dataset), failed func(error)) *DatasetService {
	return &DatasetService{loader: loader, ready: ready, failed: failed}
}

// Serve implements suture.Service.
func (d *DatasetService) Serve(ctx context.Context) error {
	start := time.Now()
	ds, err := d.loader.Load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Error().Err(err).Msg("Dataset load failed")
		if d.failed != nil {
			d.failed(err)
		}
		return errors.Join(suture.ErrDoNotRestart, fmt.Errorf("load dataset: %w", err))
	}

	logging.Info().
		Int("movies", ds.Catalog.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("Dataset loaded")
	d.ready(ds)
	return suture.ErrDoNotRestart
}

func (d *DatasetService) String() string {
	return "dataset-loader"
}
