// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

package recommend

import (
	"strings"
	"time"

	"github.com/meetra-labs/recommend/internal/geo"
)

// Category classifies an activity candidate. The category drives the
// time-of-day, weather, seasonal and popularity tables consulted by the
// signal scorers.
type Category string

const (
	CategoryOutdoor       Category = "outdoor"
	CategoryIndoor        Category = "indoor"
	CategoryDining        Category = "dining"
	CategorySports        Category = "sports"
	CategoryCultural      Category = "cultural"
	CategoryEntertainment Category = "entertainment"
	CategorySocial        Category = "social"
	CategoryWellness      Category = "wellness"
	CategoryLearning      Category = "learning"
	CategoryNightlife     Category = "nightlife"
)

// Categories lists all known categories in a fixed order.
var Categories = []Category{
	CategoryOutdoor, CategoryIndoor, CategoryDining, CategorySports,
	CategoryCultural, CategoryEntertainment, CategorySocial,
	CategoryWellness, CategoryLearning, CategoryNightlife,
}

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// EnergyLevel is a user's or candidate's declared energy preference.
type EnergyLevel string

const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
)

// rank maps an energy level to its position on the 3-level scale.
// Returns -1 for unknown or empty values.
func (e EnergyLevel) rank() int {
	switch e {
	case EnergyLow:
		return 0
	case EnergyMedium:
		return 1
	case EnergyHigh:
		return 2
	default:
		return -1
	}
}

// TimeWindow is one of the four daily activity windows used by the
// behavior profiler and the time-optimality scorer.
type TimeWindow string

const (
	WindowMorning   TimeWindow = "morning"   // 05:00-11:59
	WindowAfternoon TimeWindow = "afternoon" // 12:00-16:59
	WindowEvening   TimeWindow = "evening"   // 17:00-21:59
	WindowNight     TimeWindow = "night"     // 22:00-04:59
)

// timeWindowOrder fixes the tie-break order when window frequencies match.
var timeWindowOrder = []TimeWindow{WindowMorning, WindowAfternoon, WindowEvening, WindowNight}

// TimeWindowOf buckets a timestamp into its daily window.
func TimeWindowOf(t time.Time) TimeWindow {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return WindowMorning
	case h >= 12 && h < 17:
		return WindowAfternoon
	case h >= 17 && h < 22:
		return WindowEvening
	default:
		return WindowNight
	}
}

// Weather is an optional observed weather condition. The empty string means
// unknown, which scores as the neutral baseline.
type Weather string

const (
	WeatherUnknown Weather = ""
	WeatherSunny   Weather = "sunny"
	WeatherCloudy  Weather = "cloudy"
	WeatherRainy   Weather = "rainy"
	WeatherSnowy   Weather = "snowy"
)

// Season is an optional season hint. The empty string means unknown.
type Season string

const (
	SeasonUnknown Season = ""
	SeasonSpring  Season = "spring"
	SeasonSummer  Season = "summer"
	SeasonAutumn  Season = "autumn"
	SeasonWinter  Season = "winter"
)

// Status is a candidate's lifecycle state. Only active candidates are
// eligible for recommendation.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// EventType classifies a behavioral event.
type EventType string

const (
	EventAccepted EventType = "accepted"
	EventRejected EventType = "rejected"
	EventMessaged EventType = "messaged"
)

// Event is one entry from the external behavioral event log.
type Event struct {
	// Type is the user's action on the referenced candidate.
	Type EventType `json:"type"`

	// CandidateID references the candidate the action targeted.
	CandidateID string `json:"candidate_id"`

	// Category is the referenced candidate's category at event time.
	Category Category `json:"category"`

	// MultiParticipant records whether the candidate was a group activity.
	MultiParticipant bool `json:"multi_participant"`

	// Timestamp is when the action occurred.
	Timestamp time.Time `json:"timestamp"`
}

// socialTags mark a candidate as a group activity regardless of capacity.
var socialTags = map[string]struct{}{
	"social": {},
	"group":  {},
	"party":  {},
	"meetup": {},
}

// Candidate is an item eligible for recommendation. It is immutable from
// the engine's point of view and owned by the external store.
type Candidate struct {
	// ID is the unique candidate identifier.
	ID string `json:"id"`

	// Category is the candidate's activity category.
	Category Category `json:"category"`

	// Location is the candidate's geographic point.
	Location geo.Point `json:"location"`

	// Tags is the candidate's declared tag set.
	Tags []string `json:"tags"`

	// EnergyLevel is the exertion level the activity implies.
	EnergyLevel EnergyLevel `json:"energy_level"`

	// Capacity is the maximum participant count. Zero means unlimited.
	Capacity int `json:"capacity"`

	// ParticipantCount is the current number of participants.
	ParticipantCount int `json:"participant_count"`

	// RatingCount is how many users have rated this candidate.
	RatingCount int `json:"rating_count"`

	// PriceLevel is the cost bracket (0 = free, 4 = premium).
	PriceLevel int `json:"price_level"`

	// MinAge and MaxAge bound the intended audience. Zero means unbounded.
	MinAge int `json:"min_age,omitempty"`
	MaxAge int `json:"max_age,omitempty"`

	// CreatedAt is when the candidate was created. Newest wins score ties.
	CreatedAt time.Time `json:"created_at"`

	// Status is the candidate's lifecycle state.
	Status Status `json:"status"`
}

// IsGroupActivity reports whether the candidate suits sociable users:
// either its capacity allows more than two participants or it carries a
// social tag.
func (c Candidate) IsGroupActivity() bool {
	if c.Capacity > 2 {
		return true
	}
	for _, tag := range c.Tags {
		if _, ok := socialTags[strings.ToLower(tag)]; ok {
			return true
		}
	}
	return false
}

// HasOpenSlots reports whether the candidate can be joined right now.
func (c Candidate) HasOpenSlots() bool {
	return c.Status == StatusActive && (c.Capacity == 0 || c.ParticipantCount < c.Capacity)
}

// ParticipationRatio returns filled capacity in [0,1], or 0 when the
// candidate has unlimited capacity.
func (c Candidate) ParticipationRatio() float64 {
	if c.Capacity <= 0 {
		return 0
	}
	r := float64(c.ParticipantCount) / float64(c.Capacity)
	if r > 1 {
		r = 1
	}
	return r
}

// UserProfile is the requesting user's declared profile. Read-only input.
type UserProfile struct {
	// ID is the user identifier.
	ID string `json:"id" validate:"required"`

	// Interests is the user's declared interest tags.
	Interests []string `json:"interests"`

	// EnergyLevel is the user's declared energy preference.
	EnergyLevel EnergyLevel `json:"energy_level,omitempty" validate:"omitempty,oneof=low medium high"`

	// Age is the user's age in years.
	Age int `json:"age,omitempty" validate:"omitempty,gte=13,lte=120"`

	// PreferredRadiusMeters is the user's preferred search radius.
	PreferredRadiusMeters float64 `json:"preferred_radius_meters,omitempty" validate:"gte=0"`

	// Location is the user's home point.
	Location geo.Point `json:"location"`
}

// BehaviorProfile is the derived, ephemeral summary of a user's recent
// accept/reject/message history. It is rebuilt per request and never
// persisted by the engine.
type BehaviorProfile struct {
	// PreferredCategories holds at most three categories, most frequently
	// accepted first.
	PreferredCategories []Category `json:"preferred_categories"`

	// ActiveTimeWindows holds at most two windows, most frequent first.
	ActiveTimeWindows []TimeWindow `json:"active_time_windows"`

	// SociabilityIndex is the share of accepted events that were group
	// activities, in [0,1]. 0.5 means no signal.
	SociabilityIndex float64 `json:"sociability_index"`

	// SampleSize is the number of events the profile was derived from.
	// It drives the fuser's confidence, not any score.
	SampleSize int `json:"sample_size"`
}

// PrefersCategory reports whether the category is among the user's
// preferred categories.
func (b BehaviorProfile) PrefersCategory(c Category) bool {
	for _, pc := range b.PreferredCategories {
		if pc == c {
			return true
		}
	}
	return false
}

// NeutralBehaviorProfile returns the profile used when history is empty or
// unavailable: no category preference, afternoon activity, neutral
// sociability, zero sample size.
func NeutralBehaviorProfile() BehaviorProfile {
	return BehaviorProfile{
		PreferredCategories: nil,
		ActiveTimeWindows:   []TimeWindow{WindowAfternoon},
		SociabilityIndex:    0.5,
		SampleSize:          0,
	}
}

// Context is the ephemeral per-request situation. It is never persisted.
type Context struct {
	// Timestamp is the request's reference time. Zero means "now", filled
	// in during request preparation so scoring stays deterministic.
	Timestamp time.Time `json:"timestamp"`

	// Location is the user's live position, if known. Falls back to the
	// profile's home point when nil.
	Location *geo.Point `json:"location,omitempty"`

	// Weather is the observed condition, if known.
	Weather Weather `json:"weather,omitempty" validate:"omitempty,oneof=sunny cloudy rainy snowy"`

	// Season is the current season, if known.
	Season Season `json:"season,omitempty" validate:"omitempty,oneof=spring summer autumn winter"`
}

// Connection is a social-graph neighbor with the fields the similarity
// cohort heuristic needs.
type Connection struct {
	ID        string   `json:"id"`
	Interests []string `json:"interests"`
	Age       int      `json:"age"`
}

// SocialSnapshot holds the request-scoped social-graph reads. It is fetched
// exactly once per request and reused across all candidates.
type SocialSnapshot struct {
	// Connections is the user's social graph neighborhood.
	Connections []Connection

	// CohortSize is the size of the similarity cohort (≤ configured cap).
	CohortSize int

	// Participation maps candidate ID to how many cohort members
	// participate in it.
	Participation map[string]int
}

// SignalScore is the per-candidate scoring outcome.
type SignalScore struct {
	// Components maps each signal name to its value in [0,1].
	Components map[string]float64 `json:"components"`

	// Total is the weighted combination in [0,1].
	Total float64 `json:"total"`

	// Confidence is the engine's self-reported certainty in [0,1].
	Confidence float64 `json:"confidence"`

	// Reasons lists human-readable justifications for strong components,
	// ordered by signal weight.
	Reasons []string `json:"reasons"`
}

// PriceRange bounds candidate price levels in pool filtering.
type PriceRange struct {
	Min int `json:"min" validate:"gte=0,lte=4"`
	Max int `json:"max" validate:"gte=0,lte=4,gtefield=Min"`
}

// PoolFilters are the hard filters the pool builder applies before scoring.
// All fields are optional; zero values disable the corresponding filter.
type PoolFilters struct {
	// Category restricts the pool to one category.
	Category Category `json:"category,omitempty"`

	// RadiusMeters restricts the pool to candidates within this distance
	// of the request origin. Zero disables the radius filter.
	RadiusMeters float64 `json:"radius_meters,omitempty" validate:"gte=0"`

	// Price bounds candidate price levels. Nil disables price filtering.
	Price *PriceRange `json:"price,omitempty"`
}

// Request is the sole public entry point's input.
type Request struct {
	// User is the requesting user's profile.
	User UserProfile `json:"user" validate:"required"`

	// Context is the per-request situational input.
	Context Context `json:"context"`

	// Filters are the hard pool filters.
	Filters PoolFilters `json:"filters"`

	// Limit is the maximum number of items to return.
	// Defaults to Config.Limits.DefaultLimit if zero.
	Limit int `json:"limit,omitempty" validate:"gte=0"`

	// RequestID is a unique identifier for tracing. Generated if empty.
	RequestID string `json:"request_id,omitempty"`
}

// RankedItem is one entry of the final ranked output.
type RankedItem struct {
	// Candidate is the recommended item.
	Candidate Candidate `json:"candidate"`

	// Score is the fused scoring outcome with breakdown and reasons.
	Score SignalScore `json:"score"`
}

// Response is the ranked, explained, diversity-capped recommendation list.
type Response struct {
	// Items is the final ordered list.
	Items []RankedItem `json:"items"`

	// TotalCandidates is the pool size considered after hard filtering.
	TotalCandidates int `json:"total_candidates"`

	// Profile is the behavior profile used for scoring, returned for
	// diagnostics.
	Profile BehaviorProfile `json:"profile"`

	// Metadata carries timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata carries timing and diagnostic information.
type ResponseMetadata struct {
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id"`

	// UserID is the user the recommendations are for.
	UserID string `json:"user_id"`

	// WeightVariant names the weight table used ("default" unless an
	// experiment variant matched).
	WeightVariant string `json:"weight_variant"`

	// Degraded lists components that fell back to neutral defaults
	// because an upstream read failed.
	Degraded []string `json:"degraded,omitempty"`

	// DroppedCandidates counts candidates excluded for malformed data or
	// scoring failures.
	DroppedCandidates int `json:"dropped_candidates,omitempty"`

	// LatencyMS is the total request latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}
