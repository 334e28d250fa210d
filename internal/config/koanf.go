// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/meetra-recommend/config.yaml",
	"/etc/meetra-recommend/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from layered sources:
//  1. struct defaults
//  2. optional YAML config file
//  3. environment variables (highest priority)
//
// The result is validated before being returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// RECOMMEND_PORT -> server.port etc; unmapped vars are skipped so
	// unrelated environment noise cannot leak into the config.
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
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

// findConfigFile returns the first existing config path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps flat environment variable names to koanf paths. Only
// listed variables are honored.
var envMappings = map[string]string{
	// Server
	"recommend_host":              "server.host",
	"recommend_port":              "server.port",
	"recommend_timeout":           "server.timeout",
	"recommend_rate_limit_reqs":   "server.rate_limit_reqs",
	"recommend_rate_limit_window": "server.rate_limit_window",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Engine limits
	"engine_default_limit": "engine.limits.default_limit",
	"engine_max_limit":     "engine.limits.max_limit",
	"engine_score_workers": "engine.limits.score_workers",

	// Engine pool and profiler
	"engine_max_pool_size":     "engine.pool.max_pool_size",
	"engine_pool_cache_ttl":    "engine.pool.cache_ttl",
	"engine_event_window":      "engine.profiler.event_window",
	"engine_profile_cache_ttl": "engine.profiler.cache_ttl",
	"engine_category_cap":      "engine.diversity.category_cap",
	"engine_cohort_max_size":   "engine.social.cohort_max_size",
	"engine_cohort_age_spread": "engine.social.age_spread",
	"engine_experiment_salt":   "engine.experiment.salt",

	// Resilience
	"resilience_enabled":         "resilience.enabled",
	"resilience_failure_ratio":   "resilience.failure_ratio",
	"resilience_min_requests":    "resilience.min_requests",
	"resilience_open_timeout":    "resilience.open_timeout",
	"resilience_rate_per_second": "resilience.rate_per_second",

	// Demo data
	"demo_bulk_candidates": "demo.bulk_candidates",
}

// envTransformFunc maps environment variable names to koanf paths; unmapped
// names return "" and are dropped.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// WatchConfigFile invokes callback whenever the config file changes. The
// caller owns reload semantics and locking.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)
	return provider.Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
