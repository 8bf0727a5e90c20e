// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/cinematch/internal/logging"
)

// Validate checks that required configuration is present and sane.
func (c *Config) Validate() error {
	if err := c.validateData(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validatePoster(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateData() error {
	if strings.TrimSpace(c.Data.CatalogPath) == "" {
		return fmt.Errorf("CATALOG_PATH is required")
	}
	if strings.TrimSpace(c.Data.MatrixPath) == "" {
		return fmt.Errorf("SIMILARITY_PATH is required")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	for _, f := range []struct {
		name, value string
	}{
		{"TMDB_API_BASE", c.TMDB.APIBase},
		{"TMDB_IMAGE_BASE", c.TMDB.ImageBase},
		{"TMDB_LINK_BASE", c.TMDB.LinkBase},
	} {
		if err := validateHTTPURL(f.value, f.name); err != nil {
			return err
		}
	}
	if c.TMDB.PosterSize == "" || strings.Contains(c.TMDB.PosterSize, "/") {
		return fmt.Errorf("TMDB_POSTER_SIZE must be a single path segment such as w500, got %q", c.TMDB.PosterSize)
	}
	if c.TMDB.Timeout <= 0 {
		return fmt.Errorf("TMDB_TIMEOUT must be positive")
	}
	if c.TMDB.RateLimit < 0 {
		return fmt.Errorf("TMDB_RATE_LIMIT must not be negative")
	}
	if c.TMDB.RateLimit > 0 && c.TMDB.RateBurst < 1 {
		return fmt.Errorf("TMDB_RATE_BURST must be at least 1 when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validatePoster() error {
	if c.Poster.Workers < 1 || c.Poster.Workers > 64 {
		return fmt.Errorf("POSTER_WORKERS must be between 1 and 64, got %d", c.Poster.Workers)
	}
	if c.Poster.CacheSize < 1 {
		return fmt.Errorf("POSTER_CACHE_SIZE must be positive")
	}
	if c.Poster.CacheTTL <= 0 || c.Poster.NegativeTTL <= 0 {
		return fmt.Errorf("POSTER_CACHE_TTL and POSTER_NEGATIVE_TTL must be positive")
	}
	if c.Poster.StorePath != "" && c.Poster.StoreGCInterval <= 0 {
		return fmt.Errorf("POSTER_STORE_GC_INTERVAL must be positive when POSTER_STORE_PATH is set")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a known level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

// validateHTTPURL checks for an http(s) URL with a host and no query string.
// Paths are allowed because TMDB bases carry a version or size prefix.
func validateHTTPURL(rawURL, fieldName string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %q", fieldName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, u.RawQuery)
	}
	return nil
}
