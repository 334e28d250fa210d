// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

package recommend

import "sort"

// rankItems sorts scored items into the deterministic output order:
// total descending, then creation time newest-first, then ID ascending.
// The full chain guarantees identical inputs produce identical output
// orderings, byte for byte.
func rankItems(items []RankedItem) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score.Total != b.Score.Total {
			return a.Score.Total > b.Score.Total
		}
		if !a.Candidate.CreatedAt.Equal(b.Candidate.CreatedAt) {
			return a.Candidate.CreatedAt.After(b.Candidate.CreatedAt)
		}
		return a.Candidate.ID < b.Candidate.ID
	})
}

// applyDiversityCap walks the ranked list in order, admitting each item
// unless its category already hit the cap. Relative order of admitted items
// is preserved; excess same-category items are skipped, not reordered.
func applyDiversityCap(items []RankedItem, categoryCap int) []RankedItem {
	if categoryCap < 1 || len(items) == 0 {
		return items
	}

	perCategory := make(map[Category]int, len(Categories))
	kept := make([]RankedItem, 0, len(items))
	for _, item := range items {
		if perCategory[item.Candidate.Category] >= categoryCap {
			continue
		}
		perCategory[item.Candidate.Category]++
		kept = append(kept, item)
	}
	return kept
}

// truncateItems bounds the final list to the requested limit.
func truncateItems(items []RankedItem, limit int) []RankedItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
