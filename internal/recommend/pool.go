// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

package recommend

import "github.com/meetra-labs/recommend/internal/geo"

// filterPool applies the hard filters to a fetched pool and caps its size.
// It always re-applies every filter even when the store claims to have done
// so: the filters are idempotent and the engine's invariants must not depend
// on store behavior. Malformed candidates (empty ID or unknown category) are
// dropped and counted rather than failing the request.
func filterPool(candidates []Candidate, filters PoolFilters, origin geo.Point, maxSize int) (pool []Candidate, dropped int) {
	pool = make([]Candidate, 0, min(len(candidates), maxSize))

	for _, c := range candidates {
		if len(pool) >= maxSize {
			break
		}

		if c.ID == "" || !c.Category.Valid() {
			dropped++
			continue
		}

		if c.Status != StatusActive {
			continue
		}
		if filters.Category != "" && c.Category != filters.Category {
			continue
		}
		if p := filters.Price; p != nil && (c.PriceLevel < p.Min || c.PriceLevel > p.Max) {
			continue
		}
		if filters.RadiusMeters > 0 && !origin.IsZero() && !c.Location.IsZero() {
			if geo.Distance(origin, c.Location) > filters.RadiusMeters {
				continue
			}
		}

		pool = append(pool, c)
	}

	return pool, dropped
}
