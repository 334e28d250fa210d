// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

package recommend

import "sort"

// maxPreferredCategories bounds the derived category preference list.
const maxPreferredCategories = 3

// maxActiveTimeWindows bounds the derived activity window list.
const maxActiveTimeWindows = 2

// BuildBehaviorProfile aggregates a bounded, recent event window into a
// compact preference summary. It is a pure function: same events, same
// profile. Empty input yields the neutral default, never an error — a user
// with no history still gets recommendations, just with lower confidence.
func BuildBehaviorProfile(events []Event) BehaviorProfile {
	if len(events) == 0 {
		return NeutralBehaviorProfile()
	}

	categoryCounts := make(map[Category]int)
	windowCounts := make(map[TimeWindow]int)
	accepted := 0
	acceptedGroup := 0

	for _, ev := range events {
		windowCounts[TimeWindowOf(ev.Timestamp)]++

		if ev.Type != EventAccepted {
			continue
		}
		accepted++
		if ev.Category.Valid() {
			categoryCounts[ev.Category]++
		}
		if ev.MultiParticipant {
			acceptedGroup++
		}
	}

	sociability := 0.5 // no accepted events, no signal
	if accepted > 0 {
		sociability = float64(acceptedGroup) / float64(accepted)
	}

	return BehaviorProfile{
		PreferredCategories: topCategories(categoryCounts, maxPreferredCategories),
		ActiveTimeWindows:   topWindows(windowCounts, maxActiveTimeWindows),
		SociabilityIndex:    sociability,
		SampleSize:          len(events),
	}
}

// topCategories returns the n most frequent categories, frequency-ordered.
// Ties break alphabetically so the profile is deterministic.
func topCategories(counts map[Category]int, n int) []Category {
	if len(counts) == 0 {
		return nil
	}

	cats := make([]Category, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if counts[cats[i]] != counts[cats[j]] {
			return counts[cats[i]] > counts[cats[j]]
		}
		return cats[i] < cats[j]
	})

	if len(cats) > n {
		cats = cats[:n]
	}
	return cats
}

// topWindows returns the n most frequent time windows, frequency-ordered.
// Ties break in fixed daily order (morning first). Falls back to the
// neutral afternoon window when no events carried timestamps.
func topWindows(counts map[TimeWindow]int, n int) []TimeWindow {
	if len(counts) == 0 {
		return []TimeWindow{WindowAfternoon}
	}

	windows := make([]TimeWindow, 0, len(counts))
	for _, w := range timeWindowOrder {
		if counts[w] > 0 {
			windows = append(windows, w)
		}
	}
	sort.SliceStable(windows, func(i, j int) bool {
		return counts[windows[i]] > counts[windows[j]]
	})

	if len(windows) > n {
		windows = windows[:n]
	}
	return windows
}
