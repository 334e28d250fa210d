// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

// Package resilience wraps the engine's degradable upstreams (event log,
// social graph) with circuit breakers and rate limiting. When an upstream
// misbehaves the breaker opens and calls fail fast; the engine then serves
// its neutral defaults instead of stacking timeouts. The candidate store is
// deliberately not wrapped: its failure is fatal to the request, so hiding
// it behind a breaker would only change the error, not the outcome.
//
// DETERMINISM NOTE: breakers use real time for their interval and timeout
// windows. That is the point in production; unit tests should exercise the
// wrapped provider directly or drive the breaker through failures.
package resilience

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/meetra-labs/recommend/internal/logging"
	"github.com/meetra-labs/recommend/internal/metrics"
	"github.com/meetra-labs/recommend/internal/recommend"
)

// ErrRateLimited is returned when an upstream's rate budget is exhausted.
// The engine treats it like any other upstream failure and degrades.
var ErrRateLimited = errors.New("upstream rate limit exceeded")

// Settings tunes a breaker-wrapped upstream.
type Settings struct {
	// Name labels the upstream in logs and metrics.
	Name string

	// MaxRequests allowed through in half-open state. Default: 3.
	MaxRequests uint32

	// Interval resets the closed-state counts. Default: 1m.
	Interval time.Duration

	// Timeout before an open breaker probes again. Default: 2m.
	Timeout time.Duration

	// MinRequests before the failure ratio is considered. Default: 10.
	MinRequests uint32

	// FailureRatio at which the breaker opens. Default: 0.6.
	FailureRatio float64

	// RatePerSecond caps upstream calls. Zero disables rate limiting.
	RatePerSecond float64

	// Burst is the rate limiter burst size. Default: max(1, RatePerSecond).
	Burst int
}

func (s *Settings) withDefaults() {
	if s.MaxRequests == 0 {
		s.MaxRequests = 3
	}
	if s.Interval == 0 {
		s.Interval = time.Minute
	}
	if s.Timeout == 0 {
		s.Timeout = 2 * time.Minute
	}
	if s.MinRequests == 0 {
		s.MinRequests = 10
	}
	if s.FailureRatio == 0 {
		s.FailureRatio = 0.6
	}
	if s.Burst == 0 && s.RatePerSecond > 0 {
		s.Burst = int(s.RatePerSecond)
		if s.Burst < 1 {
			s.Burst = 1
		}
	}
}

// breaker bundles the circuit breaker and optional rate limiter shared by
// the typed wrappers below.
type breaker struct {
	cb      *gobreaker.CircuitBreaker[any]
	limiter *rate.Limiter
	name    string
}

func newBreaker(s Settings) *breaker {
	s.withDefaults()

	metrics.BreakerState.WithLabelValues(s.Name).Set(0) // closed

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= s.FailureRatio {
				logging.Warn().
					Str("upstream", s.Name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().
				Str("upstream", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("circuit breaker state transition")
			metrics.BreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.BreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	var limiter *rate.Limiter
	if s.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.RatePerSecond), s.Burst)
	}

	return &breaker{cb: cb, limiter: limiter, name: s.Name}
}

// execute runs fn through the rate limiter and circuit breaker, recording
// per-result metrics.
func (b *breaker) execute(fn func() (any, error)) (any, error) {
	if b.limiter != nil && !b.limiter.Allow() {
		metrics.BreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		return nil, ErrRateLimited
	}

	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.BreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		} else {
			metrics.BreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.BreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// castResult type-asserts a breaker result.
func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, errors.New("circuit breaker: unexpected result type")
	}
	return typed, nil
}

// EventLog wraps a recommend.EventLog with breaker protection.
type EventLog struct {
	inner recommend.EventLog
	b     *breaker
}

// NewEventLog wraps an event log. Settings.Name defaults to "eventlog".
func NewEventLog(inner recommend.EventLog, s Settings) *EventLog {
	if s.Name == "" {
		s.Name = "eventlog"
	}
	return &EventLog{inner: inner, b: newBreaker(s)}
}

// RecentEvents delegates through the breaker.
func (l *EventLog) RecentEvents(ctx context.Context, userID string, window int) ([]recommend.Event, error) {
	return castResult[[]recommend.Event](l.b.execute(func() (any, error) {
		return l.inner.RecentEvents(ctx, userID, window)
	}))
}

// SocialGraph wraps a recommend.SocialGraph with breaker protection. Both
// reads share one breaker: if the graph is down for connections it is down
// for participation too.
type SocialGraph struct {
	inner recommend.SocialGraph
	b     *breaker
}

// NewSocialGraph wraps a social graph. Settings.Name defaults to "socialgraph".
func NewSocialGraph(inner recommend.SocialGraph, s Settings) *SocialGraph {
	if s.Name == "" {
		s.Name = "socialgraph"
	}
	return &SocialGraph{inner: inner, b: newBreaker(s)}
}

// Connections delegates through the breaker.
func (g *SocialGraph) Connections(ctx context.Context, userID string) ([]recommend.Connection, error) {
	return castResult[[]recommend.Connection](g.b.execute(func() (any, error) {
		return g.inner.Connections(ctx, userID)
	}))
}

// CohortParticipation delegates through the breaker.
func (g *SocialGraph) CohortParticipation(ctx context.Context, cohort []string) (map[string]int, error) {
	return castResult[map[string]int](g.b.execute(func() (any, error) {
		return g.inner.CohortParticipation(ctx, cohort)
	}))
}

// Interface conformance.
var (
	_ recommend.EventLog    = (*EventLog)(nil)
	_ recommend.SocialGraph = (*SocialGraph)(nil)
)
