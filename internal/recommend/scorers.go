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

// The nine signal scorers. Each is a pure function mapping
// (user, candidate, context, behavior profile) to [0,1], with 0.5 as the
// neutral "no signal" baseline so missing data never biases toward zero.
// Scorers accumulate bonuses on top of the baseline and clamp; they hold no
// state and perform no I/O — the social snapshot is fetched once per
// request by the engine and passed in.

// neutralScore is the value a signal returns when it has no basis to
// prefer or penalize a candidate.
const neutralScore = 0.5

const (
	// ContextualRelevance: linear inverse-distance bonus cutoff.
	proximityCutoffMeters = 5000.0

	// NoveltyFactor: candidates younger than this get the freshness bonus.
	noveltyWindow = 7 * 24 * time.Hour

	// SocialFactors: per-connection overlap bonus and its cap.
	mutualOverlapBonus = 0.1
	mutualOverlapCap   = 0.3

	// BehavioralMatch: sociability thresholds for group-size matching.
	sociableThreshold = 0.6
	soloThreshold     = 0.4
)

// categoryTimeWindows maps each category to its preferred daily windows.
var categoryTimeWindows = map[Category][]TimeWindow{
	CategoryOutdoor:       {WindowMorning, WindowAfternoon},
	CategoryIndoor:        {WindowAfternoon, WindowEvening},
	CategoryDining:        {WindowAfternoon, WindowEvening},
	CategorySports:        {WindowMorning, WindowEvening},
	CategoryCultural:      {WindowAfternoon},
	CategoryEntertainment: {WindowEvening, WindowNight},
	CategorySocial:        {WindowEvening, WindowNight},
	CategoryWellness:      {WindowMorning},
	CategoryLearning:      {WindowMorning, WindowAfternoon},
	CategoryNightlife:     {WindowNight},
}

// weatherSuitable maps each known weather condition to the categories that
// suit it best.
var weatherSuitable = map[Weather][]Category{
	WeatherSunny:  {CategoryOutdoor, CategorySports, CategorySocial, CategoryDining},
	WeatherCloudy: {CategoryIndoor, CategoryCultural, CategoryLearning, CategoryWellness},
	// Rainy and snowy conditions have no first-class categories; sheltered
	// categories score through the fallback below instead.
}

// shelteredCategories score acceptably under rainy or snowy conditions.
var shelteredCategories = map[Category]struct{}{
	CategoryIndoor:        {},
	CategoryCultural:      {},
	CategoryEntertainment: {},
}

// seasonCategories maps each season to its most relevant categories.
var seasonCategories = map[Season][]Category{
	SeasonSpring: {CategoryOutdoor, CategorySports, CategoryWellness},
	SeasonSummer: {CategoryOutdoor, CategorySports, CategorySocial, CategoryNightlife},
	SeasonAutumn: {CategoryCultural, CategoryLearning, CategoryDining},
	SeasonWinter: {CategoryIndoor, CategoryCultural, CategoryEntertainment, CategoryWellness},
}

// baseCategoryPopularity is each category's base popularity weight.
// Values below 1 mark niche categories, which earn a novelty bonus.
var baseCategoryPopularity = map[Category]float64{
	CategoryDining:        1.3,
	CategorySocial:        1.2,
	CategoryEntertainment: 1.1,
	CategoryOutdoor:       1.05,
	CategorySports:        1.0,
	CategoryNightlife:     0.95,
	CategoryIndoor:        0.9,
	CategoryCultural:      0.85,
	CategoryWellness:      0.8,
	CategoryLearning:      0.7,
}

// clampScore bounds a score to [0,1].
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// ScorePersonalPreference scores declared-preference fit: interest-tag
// overlap, energy-level proximity and age-range containment.
func ScorePersonalPreference(user UserProfile, c Candidate) float64 {
	score := neutralScore

	// Interest-tag overlap ratio, worth up to 0.3.
	if len(user.Interests) > 0 {
		overlap := tagOverlap(user.Interests, c.Tags)
		ratio := float64(overlap) / float64(len(user.Interests))
		if ratio > 1 {
			ratio = 1
		}
		score += 0.3 * ratio
	}

	// Energy-level match on the 3-level scale: identical 1.0, adjacent
	// 0.33, opposite 0. Worth up to 0.2.
	if ur, cr := user.EnergyLevel.rank(), c.EnergyLevel.rank(); ur >= 0 && cr >= 0 {
		switch abs(ur - cr) {
		case 0:
			score += 0.2
		case 1:
			score += 0.2 * 0.33
		}
	}

	// Age-range containment bonus. Only candidates that declare a bound
	// carry a signal; an unbounded candidate says nothing about fit.
	if user.Age > 0 && (c.MinAge > 0 || c.MaxAge > 0) && ageInRange(user.Age, c.MinAge, c.MaxAge) {
		score += 0.1
	}

	return clampScore(score)
}

// ScoreBehavioralMatch scores fit against the derived behavior profile:
// preferred category, active time windows and group-size class.
func ScoreBehavioralMatch(c Candidate, behavior BehaviorProfile) float64 {
	score := neutralScore

	if behavior.PrefersCategory(c.Category) {
		score += 0.3
	}

	if windowsIntersect(categoryTimeWindows[c.Category], behavior.ActiveTimeWindows) {
		score += 0.2
	}

	// Group-size class match. The middle sociability band carries no
	// signal either way.
	switch {
	case behavior.SociabilityIndex > sociableThreshold && c.IsGroupActivity():
		score += 0.2
	case behavior.SociabilityIndex < soloThreshold && !c.IsGroupActivity():
		score += 0.2
	}

	return clampScore(score)
}

// ScoreContextualRelevance scores situational fit: proximity to the request
// origin (linear inverse distance within 5 km) and immediate availability.
func ScoreContextualRelevance(user UserProfile, c Candidate, rctx Context) float64 {
	score := neutralScore

	origin := requestOrigin(user, rctx)
	if !origin.IsZero() && !c.Location.IsZero() {
		if d := geo.Distance(origin, c.Location); d < proximityCutoffMeters {
			score += 0.3 * (1 - d/proximityCutoffMeters)
		}
	}

	if c.HasOpenSlots() {
		score += 0.2
	}

	return clampScore(score)
}

// ScoreSocialFactors scores social proof from the request-scoped snapshot:
// connections whose interests overlap the candidate's tags, and cohort
// participation.
func ScoreSocialFactors(c Candidate, social SocialSnapshot) float64 {
	score := neutralScore

	// Mutual-connection interest overlap, +0.1 per connection, capped.
	overlapBonus := 0.0
	for _, conn := range social.Connections {
		if tagOverlap(conn.Interests, c.Tags) > 0 {
			overlapBonus += mutualOverlapBonus
			if overlapBonus >= mutualOverlapCap {
				overlapBonus = mutualOverlapCap
				break
			}
		}
	}
	score += overlapBonus

	// Participation within the similarity cohort, scaled to +0.2.
	if social.CohortSize > 0 {
		participation := float64(social.Participation[c.ID]) / float64(social.CohortSize)
		if participation > 1 {
			participation = 1
		}
		score += 0.2 * participation
	}

	return clampScore(score)
}

// ScoreNoveltyFactor rewards fresh candidates and niche categories.
func ScoreNoveltyFactor(c Candidate, now time.Time) float64 {
	score := neutralScore

	if !c.CreatedAt.IsZero() && now.Sub(c.CreatedAt) < noveltyWindow {
		score += 0.3
	}

	if w, ok := baseCategoryPopularity[c.Category]; ok && w < 1 {
		score += 0.2
	}

	return clampScore(score)
}

// ScoreTimeOptimality scores whether the request's time of day falls in the
// category's preferred windows.
func ScoreTimeOptimality(c Candidate, rctx Context) float64 {
	current := TimeWindowOf(rctx.Timestamp)
	for _, w := range categoryTimeWindows[c.Category] {
		if w == current {
			return 0.8
		}
	}
	return 0.3
}

// ScoreWeatherSuitability scores weather fit. Unknown weather is the
// neutral baseline; sheltered categories hold up under rain and snow.
func ScoreWeatherSuitability(c Candidate, rctx Context) float64 {
	if rctx.Weather == WeatherUnknown {
		return neutralScore
	}

	for _, cat := range weatherSuitable[rctx.Weather] {
		if cat == c.Category {
			return 0.8
		}
	}

	if rctx.Weather == WeatherRainy || rctx.Weather == WeatherSnowy {
		if _, ok := shelteredCategories[c.Category]; ok {
			return 0.7
		}
	}

	return 0.4
}

// ScorePopularityBoost rewards healthy participation: partially filled
// activities rank above empty ones, and nearly full ones are demoted since
// they are hard to join.
func ScorePopularityBoost(c Candidate) float64 {
	switch ratio := c.ParticipationRatio(); {
	case ratio >= 0.4 && ratio <= 0.8:
		return 0.8
	case ratio < 0.4:
		return 0.6
	default:
		return 0.3
	}
}

// ScoreSeasonalRelevance gives a mild boost to seasonally relevant
// categories. Unknown season is the neutral baseline.
func ScoreSeasonalRelevance(c Candidate, rctx Context) float64 {
	if rctx.Season == SeasonUnknown {
		return neutralScore
	}
	for _, cat := range seasonCategories[rctx.Season] {
		if cat == c.Category {
			return 0.7
		}
	}
	return neutralScore
}

// scoreComponents runs all nine scorers for one candidate.
func scoreComponents(user UserProfile, c Candidate, rctx Context, behavior BehaviorProfile, social SocialSnapshot) map[string]float64 {
	return map[string]float64{
		SignalPersonalPreference:  ScorePersonalPreference(user, c),
		SignalBehavioralMatch:     ScoreBehavioralMatch(c, behavior),
		SignalContextualRelevance: ScoreContextualRelevance(user, c, rctx),
		SignalSocialFactors:       ScoreSocialFactors(c, social),
		SignalNoveltyFactor:       ScoreNoveltyFactor(c, rctx.Timestamp),
		SignalTimeOptimality:      ScoreTimeOptimality(c, rctx),
		SignalWeatherSuitability:  ScoreWeatherSuitability(c, rctx),
		SignalPopularityBoost:     ScorePopularityBoost(c),
		SignalSeasonalRelevance:   ScoreSeasonalRelevance(c, rctx),
	}
}

// requestOrigin resolves the proximity origin: live location when present,
// otherwise the profile's home point.
func requestOrigin(user UserProfile, rctx Context) geo.Point {
	if rctx.Location != nil && !rctx.Location.IsZero() {
		return *rctx.Location
	}
	return user.Location
}

// tagOverlap counts case-insensitive shared entries between two tag sets.
func tagOverlap(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[strings.ToLower(t)] = struct{}{}
	}
	overlap := 0
	seen := make(map[string]struct{}, len(b))
	for _, t := range b {
		lt := strings.ToLower(t)
		if _, dup := seen[lt]; dup {
			continue
		}
		seen[lt] = struct{}{}
		if _, ok := set[lt]; ok {
			overlap++
		}
	}
	return overlap
}

// windowsIntersect reports whether two window lists share an entry.
func windowsIntersect(a, b []TimeWindow) bool {
	for _, wa := range a {
		for _, wb := range b {
			if wa == wb {
				return true
			}
		}
	}
	return false
}

// ageInRange checks containment with zero meaning unbounded on that side.
func ageInRange(age, minAge, maxAge int) bool {
	if minAge > 0 && age < minAge {
		return false
	}
	if maxAge > 0 && age > maxAge {
		return false
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
