// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

// Package metrics provides Prometheus instrumentation for the
// recommendation engine. Every degraded path required to be observable by
// the error-handling design (profiler fallback, social snapshot fallback,
// per-candidate scoring drops) has a counter here.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation request metrics
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"status"}, // "ok", "invalid_input", "pool_unavailable", "canceled", "error"
	)

	RequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_request_duration_seconds",
			Help:    "End-to-end recommendation request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	PoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_pool_size",
			Help:    "Number of candidates in the pool after hard filtering",
			Buckets: []float64{0, 5, 10, 25, 50, 75, 100},
		},
	)

	// Degraded-path metrics: upstream reads that fell back to neutral
	// defaults instead of failing the request.
	DegradedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_degraded_total",
			Help: "Total number of degraded upstream reads served by neutral defaults",
		},
		[]string{"component"}, // "profiler", "social"
	)

	// CandidatesDropped counts candidates excluded from a ranking for
	// reasons other than filtering or the diversity cap.
	CandidatesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_candidates_dropped_total",
			Help: "Total number of candidates dropped during scoring",
		},
		[]string{"reason"}, // "malformed", "scorer_panic"
	)

	// Engine cache metrics (injected cache fronting pool + profiler)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_cache_hits_total",
			Help: "Total number of engine cache hits",
		},
		[]string{"kind"}, // "pool", "profile"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_cache_misses_total",
			Help: "Total number of engine cache misses",
		},
		[]string{"kind"},
	)

	// Circuit breaker metrics for upstream collaborators
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"upstream"},
	)

	BreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"upstream", "from", "to"},
	)

	BreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_breaker_requests_total",
			Help: "Total number of upstream requests through circuit breakers",
		},
		[]string{"upstream", "result"}, // "success", "failure", "rejected"
	)

	// API metrics for the reference HTTP harness
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)
)
