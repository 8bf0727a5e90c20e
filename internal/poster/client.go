// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
client.go - TMDB REST API Client

Only one endpoint is used: the movie details call, from which the
poster_path field is read.

API Reference: https://developer.themoviedb.org/reference/movie-details
*/

package poster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/logging"
)

// ErrNoPoster is returned when TMDB knows the movie but has no poster for it.
var ErrNoPoster = errors.New("tmdb: movie has no poster")

// StatusError is returned for any non-200 response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("tmdb returned status %d", e.Code)
	}
	return fmt.Sprintf("tmdb returned status %d: %s", e.Code, e.Body)
}

// NotFound reports whether TMDB has no record of the movie.
func (e *StatusError) NotFound() bool {
	return e.Code == http.StatusNotFound
}

// maxErrorBody caps how much of an error response is kept for logging.
const maxErrorBody = 256

// movieDetails is the subset of /movie/{id} that Cinematch reads.
type movieDetails struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
}

// Client talks to the TMDB v3 API.
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
}

// NewClient creates a TMDB client from config. The API key is sent as a
// query parameter on every request.
func NewClient(cfg config.TMDBConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimSuffix(cfg.APIBase, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// PosterPath returns the poster_path of a movie, e.g. "/f89U3ADr1oiB1s9GkdPOEpXUk5H.jpg".
func (c *Client) PosterPath(ctx context.Context, movieID int) (string, error) {
	resp, err := c.doRequest(ctx, "/movie/"+strconv.Itoa(movieID))
	if err != nil {
		return "", fmt.Errorf("tmdb details request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var details movieDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return "", fmt.Errorf("failed to decode tmdb details: %w", err)
	}
	if details.PosterPath == "" {
		return "", ErrNoPoster
	}
	return details.PosterPath, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string) (*http.Response, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.redact(err)
	}
	return resp, nil
}

// redact strips the API key from transport errors, which embed the full
// request URL.
func (c *Client) redact(err error) error {
	var urlErr *url.Error
	if c.apiKey == "" || !errors.As(err, &urlErr) {
		return err
	}
	return &url.Error{
		Op:  urlErr.Op,
		URL: strings.ReplaceAll(urlErr.URL, c.apiKey, logging.Redact(c.apiKey)),
		Err: urlErr.Err,
	}
}

// PosterURL joins the image base, the size segment and a poster path.
func PosterURL(imageBase, size, posterPath string) string {
	return strings.TrimSuffix(imageBase, "/") + "/" + size + posterPath
}
