// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package config loads Cinematch configuration from built-in defaults, an
// optional YAML file and environment variables, in that order of precedence
// (environment wins). A .env file in the working directory is read into the
// process environment first without overriding variables that are already
// set.
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Invalid configuration")
//	}
//	loader := catalog.NewLoader(cfg.Data.CatalogPath, cfg.Data.MatrixPath)
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Data     DataConfig     `koanf:"data"`
	TMDB     TMDBConfig     `koanf:"tmdb"`
	Poster   PosterConfig   `koanf:"poster"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DataConfig points at the two precomputed artifacts.
type DataConfig struct {
	// CatalogPath is the movie table: .json, .csv or .parquet.
	CatalogPath string `koanf:"catalog_path"`

	// MatrixPath is the similarity matrix: .sim (binary) or .json.
	MatrixPath string `koanf:"matrix_path"`
}

// TMDBConfig configures the poster lookup against The Movie Database.
type TMDBConfig struct {
	// APIKey authenticates requests. Empty disables poster lookups entirely;
	// every movie then renders with the placeholder.
	APIKey string `koanf:"api_key"`

	APIBase    string `koanf:"api_base"`
	ImageBase  string `koanf:"image_base"`
	PosterSize string `koanf:"poster_size"`
	Language   string `koanf:"language"`

	// LinkBase prefixes the movie id to build the title link.
	LinkBase string `koanf:"link_base"`

	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is requests per second; RateBurst the token bucket size.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
}

// Enabled reports whether poster lookups should be attempted.
func (t TMDBConfig) Enabled() bool {
	return t.APIKey != ""
}

// PosterConfig controls enrichment concurrency and caching.
type PosterConfig struct {
	// Workers bounds concurrent TMDB calls per query. 1 fetches sequentially.
	Workers int `koanf:"workers"`

	CacheSize   int           `koanf:"cache_size"`
	CacheTTL    time.Duration `koanf:"cache_ttl"`
	NegativeTTL time.Duration `koanf:"negative_ttl"`

	// StorePath enables the BadgerDB poster store when non-empty.
	StorePath string `koanf:"store_path"`

	// StoreGCInterval is how often the store's value log is garbage collected.
	StoreGCInterval time.Duration `koanf:"store_gc_interval"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds browser-facing protections.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
