// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package web serves the Cinematch front-end over HTTP: the search page,
// rendered results, a websocket stream reporting poster progress, and the
// health and metrics endpoints.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/poster"
	"github.com/tomtom215/cinematch/internal/present"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/validation"
)

// errNotReady is returned while the dataset is still loading.
var errNotReady = errors.New("dataset is still loading")

// state is everything derived from a loaded dataset. It is swapped in once.
type state struct {
	resolver *recommend.Resolver
	options  catalog.Options
	movies   int
	loadedAt time.Time
}

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	cfg      *config.Config
	enricher *poster.Enricher
	posters  bool
	renderer *present.Renderer
	upgrader websocket.Upgrader

	state     atomic.Pointer[state]
	startTime time.Time
}

// New creates a Handler. The dataset is attached later with SetDataset so
// the server can answer probes while loading.
func New(cfg *config.Config, enricher *poster.Enricher, postersEnabled bool) (*Handler, error) {
	renderer, err := present.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	h := &Handler{
		cfg:       cfg,
		enricher:  enricher,
		posters:   postersEnabled,
		renderer:  renderer,
		startTime: time.Now(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
	return h, nil
}

// SetDataset makes the handler ready to answer queries.
func (h *Handler) SetDataset(ds *catalog.Dataset, opts ...recommend.Option) {
	st := &state{
		resolver: recommend.NewResolver(ds, opts...),
		options:  ds.Catalog.Options(),
		movies:   ds.Catalog.Len(),
		loadedAt: ds.LoadedAt,
	}
	h.state.Store(st)
	metrics.DatasetMovies.Set(float64(st.movies))
	logging.Info().Int("movies", st.movies).Msg("Web handler ready")
}

// Ready reports whether a dataset is attached.
func (h *Handler) Ready() bool {
	return h.state.Load() != nil
}

// outcome is a resolved and enriched query.
type outcome struct {
	query  recommend.Query
	result *recommend.Result
	cards  []present.Card
}

// parseForm normalizes and validates the mode and value inputs. Titles are
// matched exactly, so a title value keeps its surrounding whitespace unless
// it is blank.
func parseForm(r *http.Request) (validation.QueryForm, *validation.RequestValidationError) {
	form := validation.QueryForm{
		Mode:  strings.ToLower(strings.TrimSpace(r.URL.Query().Get("mode"))),
		Value: r.URL.Query().Get("value"),
	}
	if form.Mode != string(recommend.ModeTitle) || strings.TrimSpace(form.Value) == "" {
		form.Value = strings.TrimSpace(form.Value)
	}
	return form, validation.ValidateStruct(&form)
}

// runQuery resolves form and attaches posters, reporting poster progress.
func (h *Handler) runQuery(ctx context.Context, form validation.QueryForm, progress poster.ProgressFunc) (*outcome, error) {
	st := h.state.Load()
	if st == nil {
		return nil, errNotReady
	}

	q := recommend.Query{Mode: recommend.Mode(form.Mode), Value: form.Value}
	res, err := st.resolver.Resolve(ctx, q)
	if err != nil {
		return &outcome{query: q}, err
	}

	items := h.enricher.Enrich(ctx, res.Movies(), progress)
	return &outcome{
		query:  q,
		result: res,
		cards:  present.Cards(res, items, h.cfg.TMDB.LinkBase),
	}, nil
}

// page builds a Page for the current dataset. Before the dataset loads the
// selectors are empty.
func (h *Handler) page(q recommend.Query) *present.Page {
	var opts catalog.Options
	if st := h.state.Load(); st != nil {
		opts = st.options
	}
	p := present.NewPage(opts, q)
	p.PostersEnabled = h.posters
	return p
}

// requestTimeout bounds a full query including poster lookups.
func (h *Handler) requestTimeout() time.Duration {
	if h.cfg.Server.Timeout > 0 {
		return h.cfg.Server.Timeout
	}
	return 30 * time.Second
}

// errorStatus maps a query error to an HTTP status.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, recommend.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, recommend.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, errNotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
