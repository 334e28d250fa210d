// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

// Package recommend implements the multi-signal recommendation engine:
// nine independent scorers fused by a validated weight table, followed by
// deterministic ranking, a per-category diversity cap and human-readable
// explanations. The engine is stateless between requests; persistence,
// caching policy and transport belong to the caller.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meetra-labs/recommend/internal/cache"
	"github.com/meetra-labs/recommend/internal/geo"
	"github.com/meetra-labs/recommend/internal/logging"
	"github.com/meetra-labs/recommend/internal/metrics"
)

// Degraded-component labels reported in response metadata and metrics.
const (
	componentProfiler = "profiler"
	componentSocial   = "social"
)

// Engine computes ranked, explained recommendations. Construct with
// NewEngine, wire collaborators with SetProviders, then call Recommend.
// Safe for concurrent use once wired.
type Engine struct {
	config    *Config
	logger    zerolog.Logger
	providers Providers
	cache     cache.Cache
	validate  *validator.Validate
}

// NewEngine creates an engine with the given configuration. A nil config
// uses defaults. The configuration is validated and cloned, so later caller
// mutations cannot skew live scoring.
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	return &Engine{
		config:   cfg.Clone(),
		logger:   logging.Component("engine"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// SetProviders wires the external collaborators. Candidates is required;
// Events and Social may be nil, in which case their signals stay neutral.
func (e *Engine) SetProviders(p Providers) {
	e.providers = p
}

// SetCache injects an optional cache fronting the pool builder and the
// behavior profiler. Nil disables caching.
func (e *Engine) SetCache(c cache.Cache) {
	e.cache = c
}

// SetLogger replaces the engine's logger, mainly for tests.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (e *Engine) SetLogger(l zerolog.Logger) {
	e.logger = l
}

// Recommend is the engine's sole public operation: validate the request,
// build the candidate pool, derive the behavior profile, take the social
// snapshot, score every candidate concurrently, then rank, diversify,
// truncate and explain.
//
// Upstream failures are asymmetric: a candidate store failure fails the
// request (there is nothing to recommend from), while event log and social
// graph failures degrade those signals to neutral and are reported in
// Metadata.Degraded. Context cancellation fails the request; there are
// never partial results.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := e.recommend(ctx, req)

	metrics.RequestDuration.Observe(time.Since(start).Seconds())
	metrics.RequestsTotal.WithLabelValues(statusLabel(err)).Inc()

	if err != nil {
		return nil, err
	}

	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	return resp, nil
}

func (e *Engine) recommend(ctx context.Context, req Request) (*Response, error) {
	req, err := e.prepareRequest(req)
	if err != nil {
		return nil, err
	}

	if e.providers.Candidates == nil {
		return nil, ErrNoCandidateStore
	}

	origin := requestOrigin(req.User, req.Context)

	pool, droppedMalformed, err := e.buildPool(ctx, req.Filters, origin)
	if err != nil {
		return nil, err
	}
	metrics.PoolSize.Observe(float64(len(pool)))

	var degraded []string

	behavior, profilerDegraded := e.behaviorProfile(ctx, req.User.ID)
	if profilerDegraded {
		degraded = append(degraded, componentProfiler)
	}

	social, socialDegraded := e.socialSnapshot(ctx, req.User)
	if socialDegraded {
		degraded = append(degraded, componentSocial)
	}

	weights, variant := e.config.weightsForUser(req.User.ID)

	items, droppedScoring := e.scorePool(req, pool, behavior, social, weights)

	// Cancellation mid-scoring must not surface a partial ranking.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rankItems(items)
	items = applyDiversityCap(items, e.config.Diversity.CategoryCap)
	items = truncateItems(items, req.Limit)

	dropped := droppedMalformed + droppedScoring
	e.logger.Debug().
		Str("request_id", req.RequestID).
		Str("user_id", req.User.ID).
		Str("variant", variant).
		Int("pool", len(pool)).
		Int("returned", len(items)).
		Int("dropped", dropped).
		Strs("degraded", degraded).
		Msg("recommendation computed")

	return &Response{
		Items:           items,
		TotalCandidates: len(pool),
		Profile:         behavior,
		Metadata: ResponseMetadata{
			RequestID:         req.RequestID,
			UserID:            req.User.ID,
			WeightVariant:     variant,
			Degraded:          degraded,
			DroppedCandidates: dropped,
			Timestamp:         time.Now().UTC(),
		},
	}, nil
}

// prepareRequest fills defaults (request ID, reference time, limit) and
// validates the request. Runs before any upstream read.
func (e *Engine) prepareRequest(req Request) (Request, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Context.Timestamp.IsZero() {
		req.Context.Timestamp = time.Now().UTC()
	}
	if req.Limit == 0 {
		req.Limit = e.config.Limits.DefaultLimit
	}

	if req.Limit < 0 {
		return req, fmt.Errorf("%w: limit must be non-negative", ErrInvalidInput)
	}
	if req.Limit > e.config.Limits.MaxLimit {
		req.Limit = e.config.Limits.MaxLimit
	}
	if req.User.ID == "" {
		return req, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if req.Filters.Category != "" && !req.Filters.Category.Valid() {
		return req, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, req.Filters.Category)
	}

	if err := e.validate.Struct(req); err != nil {
		return req, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	return req, nil
}

// buildPool fetches candidates through the optional cache, re-applies the
// hard filters and caps the pool. A store failure is fatal to the request.
func (e *Engine) buildPool(ctx context.Context, filters PoolFilters, origin geo.Point) ([]Candidate, int, error) {
	var key string
	if e.cache != nil {
		key = cache.GenerateKey("pool", filters, origin, e.config.Pool.MaxPoolSize)
		if v, ok := e.cache.Get(key); ok {
			if pool, ok := v.([]Candidate); ok {
				metrics.CacheHits.WithLabelValues("pool").Inc()
				return pool, 0, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("pool").Inc()
	}

	fetched, err := e.providers.Candidates.FetchPool(ctx, filters, e.config.Pool.MaxPoolSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrPoolUnavailable, err)
	}

	pool, dropped := filterPool(fetched, filters, origin, e.config.Pool.MaxPoolSize)
	if dropped > 0 {
		metrics.CandidatesDropped.WithLabelValues("malformed").Add(float64(dropped))
		e.logger.Warn().Int("count", dropped).Msg("dropped malformed candidates from pool")
	}

	if e.cache != nil {
		e.cache.Set(key, pool, e.config.Pool.CacheTTL)
	}
	return pool, dropped, nil
}

// behaviorProfile derives the user's behavior profile from the event log,
// through the optional cache. A missing provider yields the neutral profile
// silently; a failing one yields it with a degraded flag.
func (e *Engine) behaviorProfile(ctx context.Context, userID string) (BehaviorProfile, bool) {
	if e.providers.Events == nil {
		return NeutralBehaviorProfile(), false
	}

	var key string
	if e.cache != nil {
		key = cache.GenerateKey("profile", userID, e.config.Profiler.EventWindow)
		if v, ok := e.cache.Get(key); ok {
			if profile, ok := v.(BehaviorProfile); ok {
				metrics.CacheHits.WithLabelValues("profile").Inc()
				return profile, false
			}
		}
		metrics.CacheMisses.WithLabelValues("profile").Inc()
	}

	events, err := e.providers.Events.RecentEvents(ctx, userID, e.config.Profiler.EventWindow)
	if err != nil {
		metrics.DegradedTotal.WithLabelValues(componentProfiler).Inc()
		e.logger.Warn().Err(err).Str("user_id", userID).
			Msg("event log unavailable, using neutral profile")
		return NeutralBehaviorProfile(), true
	}

	profile := BuildBehaviorProfile(events)
	if e.cache != nil {
		e.cache.Set(key, profile, e.config.Profiler.CacheTTL)
	}
	return profile, false
}

// socialSnapshot performs the request's two social reads: the user's
// connections, then cohort participation for the similarity cohort derived
// from them. Either read failing degrades the snapshot to what was gathered
// so far.
func (e *Engine) socialSnapshot(ctx context.Context, user UserProfile) (SocialSnapshot, bool) {
	if e.providers.Social == nil {
		return SocialSnapshot{}, false
	}

	connections, err := e.providers.Social.Connections(ctx, user.ID)
	if err != nil {
		metrics.DegradedTotal.WithLabelValues(componentSocial).Inc()
		e.logger.Warn().Err(err).Str("user_id", user.ID).
			Msg("social graph unavailable, social signal neutral")
		return SocialSnapshot{}, true
	}

	cohort := buildCohort(user, connections, e.config.Social)
	if len(cohort) == 0 {
		return SocialSnapshot{Connections: connections}, false
	}

	participation, err := e.providers.Social.CohortParticipation(ctx, cohort)
	if err != nil {
		metrics.DegradedTotal.WithLabelValues(componentSocial).Inc()
		e.logger.Warn().Err(err).Str("user_id", user.ID).
			Msg("cohort participation unavailable, using connections only")
		return SocialSnapshot{Connections: connections}, true
	}

	return SocialSnapshot{
		Connections:   connections,
		CohortSize:    len(cohort),
		Participation: participation,
	}, false
}

// buildCohort selects the similarity cohort from the user's connections:
// members within the configured age band who share at least one interest,
// in connection order, capped. Connections without an age pass the age
// check; similarity then rests on interests alone.
func buildCohort(user UserProfile, connections []Connection, cfg SocialConfig) []string {
	cohort := make([]string, 0, cfg.CohortMaxSize)
	for _, conn := range connections {
		if len(cohort) >= cfg.CohortMaxSize {
			break
		}
		if user.Age > 0 && conn.Age > 0 && abs(user.Age-conn.Age) > cfg.AgeSpread {
			continue
		}
		if tagOverlap(user.Interests, conn.Interests) == 0 {
			continue
		}
		cohort = append(cohort, conn.ID)
	}
	return cohort
}

// scorePool scores every candidate concurrently with a bounded worker pool.
// A panicking scorer drops only its candidate; everything else proceeds.
func (e *Engine) scorePool(req Request, pool []Candidate, behavior BehaviorProfile, social SocialSnapshot, weights SignalWeights) ([]RankedItem, int) {
	if len(pool) == 0 {
		return []RankedItem{}, 0
	}

	workers := e.config.Limits.ScoreWorkers
	if workers > len(pool) {
		workers = len(pool)
	}

	scored := make([]*RankedItem, len(pool))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i := range pool {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			item, ok := e.scoreCandidate(req, pool[idx], behavior, social, weights)
			if ok {
				scored[idx] = &item
			}
		}(i)
	}
	wg.Wait()

	items := make([]RankedItem, 0, len(pool))
	dropped := 0
	for _, item := range scored {
		if item == nil {
			dropped++
			continue
		}
		items = append(items, *item)
	}
	return items, dropped
}

// scoreCandidate runs the nine scorers, fuses, and explains one candidate,
// converting a scorer panic into a dropped candidate.
func (e *Engine) scoreCandidate(req Request, c Candidate, behavior BehaviorProfile, social SocialSnapshot, weights SignalWeights) (item RankedItem, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			metrics.CandidatesDropped.WithLabelValues("scorer_panic").Inc()
			e.logger.Error().
				Str("candidate_id", c.ID).
				Interface("panic", r).
				Msg("scorer panicked, dropping candidate")
			ok = false
		}
	}()

	components := scoreComponents(req.User, c, req.Context, behavior, social)

	return RankedItem{
		Candidate: c,
		Score: SignalScore{
			Components: components,
			Total:      fuseScores(components, weights),
			Confidence: scoreConfidence(req.User, c, behavior),
			Reasons:    explainScore(components),
		},
	}, true
}

// statusLabel maps an engine error to its request-counter label.
func statusLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrPoolUnavailable), errors.Is(err, ErrNoCandidateStore):
		return "pool_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
