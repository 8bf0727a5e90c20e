// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package web

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/present"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// Index renders the search form and welcome text.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if !h.Ready() {
		h.renderError(w, r, http.StatusServiceUnavailable, "Cinematch is still loading its movie catalog. Try again in a moment.")
		return
	}
	h.render(w, r, http.StatusOK, present.PageIndex, h.page(recommend.Query{}))
}

// Recommendations resolves ?mode=&value=, fetches posters and renders the
// result list. An unknown title renders suggestions with 404; an empty
// result is a normal 200 page.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	form, verr := parseForm(r)
	if verr != nil {
		h.renderError(w, r, http.StatusBadRequest, verr.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout())
	defer cancel()

	out, err := h.runQuery(ctx, form, nil)
	if err != nil {
		h.renderQueryError(w, r, out, err)
		return
	}

	p := h.page(out.query)
	p.Cards = out.cards
	h.render(w, r, http.StatusOK, present.PageResults, p)
}

func (h *Handler) renderQueryError(w http.ResponseWriter, r *http.Request, out *outcome, err error) {
	status := errorStatus(err)

	var nf *recommend.NotFoundError
	if errors.As(err, &nf) {
		p := h.page(out.query)
		p.NotFoundTitle = nf.Title
		p.Suggestions = nf.Suggestions
		h.render(w, r, status, present.PageNotFound, p)
		return
	}

	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Query failed")
		msg = "Something went wrong while looking up recommendations."
	case http.StatusServiceUnavailable:
		msg = "Cinematch is still loading its movie catalog. Try again in a moment."
	}
	h.renderError(w, r, status, msg)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	p := h.page(recommend.Query{})
	p.Error = msg
	h.render(w, r, status, present.PageError, p)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, p *present.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page, p); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("page", page).Msg("Template render failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
