// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

package recommend

import "context"

// Note: this package has no dependencies on concrete storage. The provider
// interfaces below are the engine's only view of the outside world, which
// keeps it stateless and lets callers swap stores, event logs and social
// graphs without touching scoring.

// CandidateStore is the read-only storage query for candidate pools.
// Implementations may apply the radius filter themselves when they can do
// it efficiently; the pool builder re-applies it either way, so partial
// support is fine.
type CandidateStore interface {
	// FetchPool returns candidates matching the hard filters, at most
	// limit entries, in a stable order.
	FetchPool(ctx context.Context, filters PoolFilters, limit int) ([]Candidate, error)
}

// EventLog is the read-only behavioral event log.
type EventLog interface {
	// RecentEvents returns up to window most recent events for the user,
	// ordered newest first.
	RecentEvents(ctx context.Context, userID string, window int) ([]Event, error)
}

// SocialGraph provides the two social reads the social-factors scorer is
// permitted. Each is issued once per request, never per candidate.
type SocialGraph interface {
	// Connections returns the user's social-graph neighbors.
	Connections(ctx context.Context, userID string) ([]Connection, error)

	// CohortParticipation returns, for the given cohort member IDs, how
	// many of them participate in each candidate (candidate ID -> count).
	CohortParticipation(ctx context.Context, cohort []string) (map[string]int, error)
}

// Providers bundles the external collaborators the engine consumes.
// Candidates is required; Events and Social are optional and degrade to
// neutral defaults when nil or failing.
type Providers struct {
	Candidates CandidateStore
	Events     EventLog
	Social     SocialGraph
}
