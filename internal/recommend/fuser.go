// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

package recommend

// fuseScores combines the nine signal components into one total using the
// given weight table. The total is the weighted sum clamped to [0,1]; since
// weights sum to 1.0 and components live in [0,1] the clamp only guards
// against float drift.
//
//nolint:gocritic // hugeParam: value copy keeps fusion side-effect free
func fuseScores(components map[string]float64, weights SignalWeights) float64 {
	total := 0.0
	for name, weight := range weights.ToMap() {
		total += weight * components[name]
	}
	return clampScore(total)
}

// scoreConfidence estimates how much data backed a candidate's score.
// Baseline 0.5; a declared interest list, a behavior profile derived from
// more than ten events, and a meaningful rating count each add certainty.
func scoreConfidence(user UserProfile, c Candidate, behavior BehaviorProfile) float64 {
	confidence := 0.5

	if len(user.Interests) > 0 {
		confidence += 0.2
	}
	if behavior.SampleSize > 10 {
		confidence += 0.2
	}
	if c.RatingCount >= 5 {
		confidence += 0.1
	}

	return clampScore(confidence)
}
