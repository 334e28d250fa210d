// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

// Command recommendd runs the recommendation engine behind an HTTP API,
// backed by in-memory stores seeded with demo fixtures. Swap the stores for
// real implementations of the engine's provider interfaces to run it
// against production data.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meetra-labs/recommend/internal/api"
	"github.com/meetra-labs/recommend/internal/cache"
	"github.com/meetra-labs/recommend/internal/config"
	"github.com/meetra-labs/recommend/internal/logging"
	"github.com/meetra-labs/recommend/internal/recommend"
	"github.com/meetra-labs/recommend/internal/recommend/resilience"
	"github.com/meetra-labs/recommend/internal/recommend/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("starting recommendd")

	engine, err := buildEngine(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build engine")
	}

	memCache := cache.NewMemory()
	defer memCache.Close()
	engine.SetCache(memCache)

	fixtures := seedStores(cfg, engine)

	router := api.NewRouter(engine, fixtures.Users, api.RouterConfig{
		Timeout:         cfg.Server.Timeout,
		RateLimitReqs:   cfg.Server.RateLimitReqs,
		RateLimitWindow: cfg.Server.RateLimitWindow,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("received shutdown signal")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
	logging.Info().Msg("recommendd stopped gracefully")
}

// buildEngine constructs the engine from the loaded configuration.
func buildEngine(cfg *config.Config) (*recommend.Engine, error) {
	engineCfg := cfg.Engine
	return recommend.NewEngine(&engineCfg)
}

// seedStores builds the in-memory providers, seeds the demo fixtures and
// wires them into the engine, optionally behind circuit breakers.
func seedStores(cfg *config.Config, engine *recommend.Engine) *storage.Fixtures {
	fixtures := storage.SeedFixtures()
	if cfg.Demo.BulkCandidates > 0 {
		fixtures.SeedBulkCandidates(cfg.Demo.BulkCandidates)
		logging.Info().Int("count", cfg.Demo.BulkCandidates).Msg("seeded bulk candidates")
	}

	providers := recommend.Providers{
		Candidates: fixtures.Candidates,
		Events:     fixtures.Events,
		Social:     fixtures.Social,
	}

	if cfg.Resilience.Enabled {
		settings := resilience.Settings{
			FailureRatio:  cfg.Resilience.FailureRatio,
			MinRequests:   cfg.Resilience.MinRequests,
			Timeout:       cfg.Resilience.OpenTimeout,
			RatePerSecond: cfg.Resilience.RatePerSecond,
		}
		providers.Events = resilience.NewEventLog(fixtures.Events, settings)
		providers.Social = resilience.NewSocialGraph(fixtures.Social, settings)
		logging.Info().Msg("upstream circuit breakers enabled")
	}

	engine.SetProviders(providers)
	return fixtures
}
