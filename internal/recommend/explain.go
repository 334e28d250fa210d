// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

package recommend

// reasonThreshold is the component value above which a signal earns a
// human-readable reason.
const reasonThreshold = 0.7

// signalReasons maps each signal to its user-facing explanation.
var signalReasons = map[string]string{
	SignalPersonalPreference:  "Matches your interests and preferences",
	SignalBehavioralMatch:     "Based on your activity patterns",
	SignalContextualRelevance: "Perfect for your current location and time",
	SignalSocialFactors:       "Popular among people like you",
	SignalNoveltyFactor:       "Something new to try",
	SignalTimeOptimality:      "Great timing for this activity",
	SignalWeatherSuitability:  "Perfect for current weather",
	SignalPopularityBoost:     "Trending activity",
	SignalSeasonalRelevance:   "Seasonal favorite",
}

// reasonOrder lists signals by descending default weight, so the strongest
// drivers of the total are explained first.
var reasonOrder = []string{
	SignalPersonalPreference,
	SignalBehavioralMatch,
	SignalContextualRelevance,
	SignalSocialFactors,
	SignalNoveltyFactor,
	SignalTimeOptimality,
	SignalWeatherSuitability,
	SignalPopularityBoost,
	SignalSeasonalRelevance,
}

// explainScore returns a reason per component exceeding the threshold,
// ordered by signal weight. A candidate with no strong component gets no
// reasons rather than a fabricated one.
func explainScore(components map[string]float64) []string {
	var reasons []string
	for _, name := range reasonOrder {
		if components[name] > reasonThreshold {
			reasons = append(reasons, signalReasons[name])
		}
	}
	return reasons
}
