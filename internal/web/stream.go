// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/present"
	"github.com/tomtom215/cinematch/internal/recommend"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4 * 1024
)

// Stream message types
const (
	MessageTypeProgress = "progress"
	MessageTypeResult   = "result"
	MessageTypeError    = "error"
)

// Error codes carried by error messages.
const (
	ErrorCodeInvalid     = "invalid_query"
	ErrorCodeNotFound    = "not_found"
	ErrorCodeUnavailable = "unavailable"
	ErrorCodeInternal    = "internal"
)

// ProgressMessage reports one more poster lookup finished.
type ProgressMessage struct {
	Type  string `json:"type"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
}

// ResultMessage carries the final cards. Cards is empty, never null, when
// nothing matched.
type ResultMessage struct {
	Type  string         `json:"type"`
	Mode  string         `json:"mode"`
	Value string         `json:"value"`
	Cards []present.Card `json:"cards"`
	Empty bool           `json:"empty"`
}

// ErrorMessage ends a stream that could not produce results.
type ErrorMessage struct {
	Type        string   `json:"type"`
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Stream upgrades to a websocket, runs the query from ?mode=&value=, sends
// a progress message per poster lookup and finishes with one result or
// error message before closing.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied with an HTTP error.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	metrics.WebSocketStreams.Inc()
	defer metrics.WebSocketStreams.Dec()

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout())
	defer cancel()
	go watchClose(conn, cancel)

	log := logging.Ctx(ctx)
	send := func(msg interface{}) error {
		body, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return conn.WriteMessage(websocket.TextMessage, body)
	}

	form, verr := parseForm(r)
	if verr != nil {
		_ = send(ErrorMessage{Type: MessageTypeError, Code: ErrorCodeInvalid, Message: verr.Error()})
		closeStream(conn, websocket.CloseNormalClosure)
		return
	}

	// Progress is called serially by the enricher, so writes never overlap.
	progress := func(done, total int) {
		if err := send(ProgressMessage{Type: MessageTypeProgress, Done: done, Total: total}); err != nil {
			log.Debug().Err(err).Msg("Progress write failed")
			cancel()
		}
	}

	out, err := h.runQuery(ctx, form, progress)
	if err != nil {
		_ = send(streamError(err))
		if errorStatus(err) == http.StatusInternalServerError {
			log.Error().Err(err).Msg("Query failed")
		}
		closeStream(conn, websocket.CloseNormalClosure)
		return
	}

	if err := send(ResultMessage{
		Type:  MessageTypeResult,
		Mode:  string(out.query.Mode),
		Value: out.query.Value,
		Cards: out.cards,
		Empty: len(out.cards) == 0,
	}); err != nil {
		log.Debug().Err(err).Msg("Result write failed")
		return
	}
	closeStream(conn, websocket.CloseNormalClosure)
}

func streamError(err error) ErrorMessage {
	msg := ErrorMessage{Type: MessageTypeError, Message: err.Error()}
	var nf *recommend.NotFoundError
	switch {
	case errors.As(err, &nf):
		msg.Code = ErrorCodeNotFound
		msg.Suggestions = nf.Suggestions
	case errors.Is(err, recommend.ErrInvalidQuery):
		msg.Code = ErrorCodeInvalid
	case errors.Is(err, errNotReady):
		msg.Code = ErrorCodeUnavailable
	default:
		msg.Code = ErrorCodeInternal
		msg.Message = "internal error"
	}
	return msg
}

// watchClose drains client frames so close and ping control frames are
// processed, and cancels the query when the client goes away.
func watchClose(conn *websocket.Conn, cancel context.CancelFunc) {
	conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			cancel()
			return
		}
	}
}

func closeStream(conn *websocket.Conn, code int) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, ""),
		time.Now().Add(writeWait))
}

// checkWebSocketOrigin accepts same-origin requests and configured CORS
// origins. Browsers always send Origin on websocket handshakes, so a missing
// header is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}
	for _, allowed := range h.cfg.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// sanitizeLogValue truncates and strips control characters.
func sanitizeLogValue(s string) string {
	const maxLen = 128
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		out = append(out, r)
		if len(out) == maxLen {
			break
		}
	}
	return string(out)
}
