// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinematch/config.yaml",
	"/etc/cinematch/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvFile is loaded into the environment before the env layer is read.
var DotEnvFile = ".env"

func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			CatalogPath: "data/movies.json",
			MatrixPath:  "data/similarity.sim",
		},
		TMDB: TMDBConfig{
			APIBase:    "https://api.themoviedb.org/3",
			ImageBase:  "https://image.tmdb.org/t/p",
			PosterSize: "w500",
			Language:   "en-US",
			LinkBase:   "https://www.themoviedb.org/movie/",
			Timeout:    10 * time.Second,
			RateLimit:  40,
			RateBurst:  10,
		},
		Poster: PosterConfig{
			Workers:         4,
			CacheSize:       2048,
			CacheTTL:        24 * time.Hour,
			NegativeTTL:     10 * time.Minute,
			StoreGCInterval: 10 * time.Minute,
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8501,
			Timeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{},
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the first config file found
// and the environment, then validates it.
func Load() (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadDotEnv reads path into the environment. A missing file is not an error
// and variables already present are left alone.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	"catalog_path":    "data.catalog_path",
	"similarity_path": "data.matrix_path",

	"tmdb_api_key":     "tmdb.api_key",
	"tmdb_api_base":    "tmdb.api_base",
	"tmdb_image_base":  "tmdb.image_base",
	"tmdb_poster_size": "tmdb.poster_size",
	"tmdb_language":    "tmdb.language",
	"tmdb_link_base":   "tmdb.link_base",
	"tmdb_timeout":     "tmdb.timeout",
	"tmdb_rate_limit":  "tmdb.rate_limit",
	"tmdb_rate_burst":  "tmdb.rate_burst",

	"poster_workers":           "poster.workers",
	"poster_cache_size":        "poster.cache_size",
	"poster_cache_ttl":         "poster.cache_ttl",
	"poster_negative_ttl":      "poster.negative_ttl",
	"poster_store_path":        "poster.store_path",
	"poster_store_gc_interval": "poster.store_gc_interval",

	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc turns TMDB_API_KEY into tmdb.api_key and so on.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
