// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

// Package config loads the reference binary's configuration with Koanf v2
// layered sources: struct defaults, then an optional YAML file, then
// environment variables. The engine section embeds recommend.Config, so the
// whole weight table and every operational limit are tunable without a
// rebuild.
package config

import (
	"fmt"
	"time"

	"github.com/meetra-labs/recommend/internal/recommend"
)

// Config is the root configuration for the reference binary.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Engine     recommend.Config `koanf:"engine"`
	Resilience ResilienceConfig `koanf:"resilience"`
	Demo       DemoConfig       `koanf:"demo"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Host is the bind address. Default: 0.0.0.0
	Host string `koanf:"host"`

	// Port is the listen port. Default: 8600
	Port int `koanf:"port"`

	// Timeout bounds request handling end to end. Default: 10s
	Timeout time.Duration `koanf:"timeout"`

	// RateLimitReqs is the per-IP request budget per window. Default: 60
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limit window. Default: 1m
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level. Default: info
	Level string `koanf:"level"`

	// Format is json or console. Default: json
	Format string `koanf:"format"`

	// Caller includes file:line in log entries. Default: false
	Caller bool `koanf:"caller"`
}

// ResilienceConfig tunes the circuit breakers around the degradable
// upstreams (event log, social graph).
type ResilienceConfig struct {
	// Enabled wraps the upstreams in breakers. Default: true
	Enabled bool `koanf:"enabled"`

	// FailureRatio at which a breaker opens. Default: 0.6
	FailureRatio float64 `koanf:"failure_ratio"`

	// MinRequests before the ratio is considered. Default: 10
	MinRequests uint32 `koanf:"min_requests"`

	// OpenTimeout before an open breaker probes again. Default: 2m
	OpenTimeout time.Duration `koanf:"open_timeout"`

	// RatePerSecond caps upstream calls per second. Zero disables.
	RatePerSecond float64 `koanf:"rate_per_second"`
}

// DemoConfig controls the seeded fixture data.
type DemoConfig struct {
	// BulkCandidates adds this many synthetic candidates on top of the
	// curated fixtures. Default: 0
	BulkCandidates int `koanf:"bulk_candidates"`
}

// defaultConfig returns a Config with all defaults applied.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8600,
			Timeout:         10 * time.Second,
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Engine: *recommend.DefaultConfig(),
		Resilience: ResilienceConfig{
			Enabled:      true,
			FailureRatio: 0.6,
			MinRequests:  10,
			OpenTimeout:  2 * time.Minute,
		},
		Demo: DemoConfig{},
	}
}

// Validate checks the configuration, including the embedded engine section.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1,65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Server.RateLimitReqs < 1 {
		return fmt.Errorf("server.rate_limit_reqs must be positive, got %d", c.Server.RateLimitReqs)
	}
	if c.Resilience.FailureRatio <= 0 || c.Resilience.FailureRatio > 1 {
		return fmt.Errorf("resilience.failure_ratio must be in (0,1], got %f", c.Resilience.FailureRatio)
	}
	if c.Demo.BulkCandidates < 0 {
		return fmt.Errorf("demo.bulk_candidates must be non-negative, got %d", c.Demo.BulkCandidates)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}
