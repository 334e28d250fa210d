// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

package recommend

import (
	"fmt"
	"math"
	"time"
)

// Signal component names, used as keys in SignalScore.Components and in the
// reason table.
const (
	SignalPersonalPreference  = "personalPreference"
	SignalBehavioralMatch     = "behavioralMatch"
	SignalContextualRelevance = "contextualRelevance"
	SignalSocialFactors       = "socialFactors"
	SignalNoveltyFactor       = "noveltyFactor"
	SignalTimeOptimality      = "timeOptimality"
	SignalWeatherSuitability  = "weatherSuitability"
	SignalPopularityBoost     = "popularityBoost"
	SignalSeasonalRelevance   = "seasonalRelevance"
)

// weightSumTolerance is the float tolerance when validating that a weight
// table sums to exactly 1.0.
const weightSumTolerance = 1e-9

// SignalWeights defines the contribution of each signal to the fused total.
// Unlike tunable ranking systems these weights are a contract: they must
// sum to exactly 1.0 and are validated, not normalized.
type SignalWeights struct {
	PersonalPreference  float64 `json:"personal_preference" koanf:"personal_preference"`
	BehavioralMatch     float64 `json:"behavioral_match" koanf:"behavioral_match"`
	ContextualRelevance float64 `json:"contextual_relevance" koanf:"contextual_relevance"`
	SocialFactors       float64 `json:"social_factors" koanf:"social_factors"`
	NoveltyFactor       float64 `json:"novelty_factor" koanf:"novelty_factor"`
	TimeOptimality      float64 `json:"time_optimality" koanf:"time_optimality"`
	WeatherSuitability  float64 `json:"weather_suitability" koanf:"weather_suitability"`
	PopularityBoost     float64 `json:"popularity_boost" koanf:"popularity_boost"`
	SeasonalRelevance   float64 `json:"seasonal_relevance" koanf:"seasonal_relevance"`
}

// Sum returns the total of all nine weights.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w SignalWeights) Sum() float64 {
	return w.PersonalPreference + w.BehavioralMatch + w.ContextualRelevance +
		w.SocialFactors + w.NoveltyFactor + w.TimeOptimality +
		w.WeatherSuitability + w.PopularityBoost + w.SeasonalRelevance
}

// ToMap returns the weights keyed by signal name.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w SignalWeights) ToMap() map[string]float64 {
	return map[string]float64{
		SignalPersonalPreference:  w.PersonalPreference,
		SignalBehavioralMatch:     w.BehavioralMatch,
		SignalContextualRelevance: w.ContextualRelevance,
		SignalSocialFactors:       w.SocialFactors,
		SignalNoveltyFactor:       w.NoveltyFactor,
		SignalTimeOptimality:      w.TimeOptimality,
		SignalWeatherSuitability:  w.WeatherSuitability,
		SignalPopularityBoost:     w.PopularityBoost,
		SignalSeasonalRelevance:   w.SeasonalRelevance,
	}
}

// DefaultSignalWeights returns the contractual weight table.
func DefaultSignalWeights() SignalWeights {
	return SignalWeights{
		PersonalPreference:  0.25,
		BehavioralMatch:     0.20,
		ContextualRelevance: 0.15,
		SocialFactors:       0.12,
		NoveltyFactor:       0.10,
		TimeOptimality:      0.08,
		WeatherSuitability:  0.05,
		PopularityBoost:     0.03,
		SeasonalRelevance:   0.02,
	}
}

// PoolConfig bounds the candidate pool builder.
type PoolConfig struct {
	// MaxPoolSize caps how many candidates are scored per request.
	// Default: 100.
	MaxPoolSize int `json:"max_pool_size" koanf:"max_pool_size"`

	// CacheTTL is how long a fetched pool may be served from the injected
	// cache. Default: 1m.
	CacheTTL time.Duration `json:"cache_ttl" koanf:"cache_ttl"`
}

// ProfilerConfig bounds the behavior profiler.
type ProfilerConfig struct {
	// EventWindow is how many recent events to aggregate.
	// Default: 200.
	EventWindow int `json:"event_window" koanf:"event_window"`

	// CacheTTL is how long a derived profile may be served from the
	// injected cache. Default: 5m.
	CacheTTL time.Duration `json:"cache_ttl" koanf:"cache_ttl"`
}

// DiversityConfig bounds per-category representation in the output.
type DiversityConfig struct {
	// CategoryCap is the maximum number of same-category items in one
	// ranked output. Default: 3.
	CategoryCap int `json:"category_cap" koanf:"category_cap"`
}

// SocialConfig parameterizes the similarity cohort heuristic.
type SocialConfig struct {
	// CohortMaxSize caps the similarity cohort. Default: 10.
	CohortMaxSize int `json:"cohort_max_size" koanf:"cohort_max_size"`

	// AgeSpread is the ± age band for cohort membership. Default: 5.
	AgeSpread int `json:"age_spread" koanf:"age_spread"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultLimit is the number of items returned when the request
	// doesn't specify one. Default: 20.
	DefaultLimit int `json:"default_limit" koanf:"default_limit"`

	// MaxLimit is the maximum allowed request limit. Default: 100.
	MaxLimit int `json:"max_limit" koanf:"max_limit"`

	// ScoreWorkers bounds the concurrent candidate-scoring goroutines.
	// Default: 8.
	ScoreWorkers int `json:"score_workers" koanf:"score_workers"`
}

// WeightVariant is one experiment arm with its own weight table.
type WeightVariant struct {
	// Name identifies the variant in response metadata.
	Name string `json:"name" koanf:"name"`

	// Percent is this variant's share of the [0,100) bucket space.
	Percent int `json:"percent" koanf:"percent"`

	// Weights is the variant's weight table. Must sum to 1.0.
	Weights SignalWeights `json:"weights" koanf:"weights"`
}

// ExperimentConfig optionally reassigns users to alternative weight tables
// via deterministic bucketing. Users outside all variant slices get the
// default weights.
type ExperimentConfig struct {
	// Salt isolates this experiment's bucketing from any other use of the
	// bucket function. Empty salt disables experiments.
	Salt string `json:"salt" koanf:"salt"`

	// Variants are the experiment arms, assigned in order from bucket 0.
	Variants []WeightVariant `json:"variants" koanf:"variants"`
}

// defaultVariantName labels the built-in weight table in metadata.
const defaultVariantName = "default"

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights is the default signal weight table. Must sum to 1.0.
	Weights SignalWeights `json:"weights" koanf:"weights"`

	// Pool bounds the candidate pool builder.
	Pool PoolConfig `json:"pool" koanf:"pool"`

	// Profiler bounds the behavior profiler.
	Profiler ProfilerConfig `json:"profiler" koanf:"profiler"`

	// Diversity bounds per-category representation.
	Diversity DiversityConfig `json:"diversity" koanf:"diversity"`

	// Social parameterizes the similarity cohort.
	Social SocialConfig `json:"social" koanf:"social"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// Experiment optionally reassigns weight tables per user.
	Experiment ExperimentConfig `json:"experiment" koanf:"experiment"`
}

// DefaultConfig returns a Config with the contractual defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: DefaultSignalWeights(),
		Pool: PoolConfig{
			MaxPoolSize: 100,
			CacheTTL:    time.Minute,
		},
		Profiler: ProfilerConfig{
			EventWindow: 200,
			CacheTTL:    5 * time.Minute,
		},
		Diversity: DiversityConfig{
			CategoryCap: 3,
		},
		Social: SocialConfig{
			CohortMaxSize: 10,
			AgeSpread:     5,
		},
		Limits: LimitsConfig{
			DefaultLimit: 20,
			MaxLimit:     100,
			ScoreWorkers: 8,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := validateWeights(c.Weights, "weights"); err != nil {
		return err
	}

	if c.Pool.MaxPoolSize < 1 {
		return fmt.Errorf("pool.max_pool_size must be positive, got %d", c.Pool.MaxPoolSize)
	}
	if c.Profiler.EventWindow < 1 {
		return fmt.Errorf("profiler.event_window must be positive, got %d", c.Profiler.EventWindow)
	}
	if c.Diversity.CategoryCap < 1 {
		return fmt.Errorf("diversity.category_cap must be positive, got %d", c.Diversity.CategoryCap)
	}
	if c.Social.CohortMaxSize < 1 {
		return fmt.Errorf("social.cohort_max_size must be positive, got %d", c.Social.CohortMaxSize)
	}
	if c.Social.AgeSpread < 0 {
		return fmt.Errorf("social.age_spread must be non-negative, got %d", c.Social.AgeSpread)
	}
	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= limits.default_limit, got %d < %d",
			c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}
	if c.Limits.ScoreWorkers < 1 {
		return fmt.Errorf("limits.score_workers must be positive, got %d", c.Limits.ScoreWorkers)
	}

	return c.validateExperiment()
}

// validateExperiment checks variant percentages and weight tables.
func (c *Config) validateExperiment() error {
	if c.Experiment.Salt == "" && len(c.Experiment.Variants) > 0 {
		return fmt.Errorf("experiment.salt required when variants are configured")
	}

	totalPercent := 0
	for i, v := range c.Experiment.Variants {
		if v.Name == "" || v.Name == defaultVariantName {
			return fmt.Errorf("experiment.variants[%d].name must be non-empty and not %q", i, defaultVariantName)
		}
		if v.Percent < 1 || v.Percent > 100 {
			return fmt.Errorf("experiment.variants[%d].percent must be in [1,100], got %d", i, v.Percent)
		}
		totalPercent += v.Percent
		if err := validateWeights(v.Weights, fmt.Sprintf("experiment.variants[%d].weights", i)); err != nil {
			return err
		}
	}
	if totalPercent > 100 {
		return fmt.Errorf("experiment variant percents sum to %d, must be <= 100", totalPercent)
	}

	return nil
}

// validateWeights checks that a weight table is non-negative and sums to
// exactly 1.0 within float tolerance.
//
//nolint:gocritic // hugeParam: value copy keeps the check side-effect free
func validateWeights(w SignalWeights, field string) error {
	for name, weight := range w.ToMap() {
		if weight < 0 {
			return fmt.Errorf("%s.%s must be non-negative, got %f", field, name, weight)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%s must sum to 1.0, got %.12f", field, sum)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if len(c.Experiment.Variants) > 0 {
		clone.Experiment.Variants = make([]WeightVariant, len(c.Experiment.Variants))
		copy(clone.Experiment.Variants, c.Experiment.Variants)
	}
	return &clone
}

// weightsForUser selects the weight table for a user: experiment variants
// claim contiguous bucket slices from zero, everyone else gets defaults.
// Returns the table and the variant name for response metadata.
func (c *Config) weightsForUser(userID string) (SignalWeights, string) {
	if c.Experiment.Salt == "" || len(c.Experiment.Variants) == 0 {
		return c.Weights, defaultVariantName
	}

	b := Bucket(userID, c.Experiment.Salt)
	lower := 0
	for _, v := range c.Experiment.Variants {
		upper := lower + v.Percent
		if b >= lower && b < upper {
			return v.Weights, v.Name
		}
		lower = upper
	}

	return c.Weights, defaultVariantName
}
