// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

package recommend

import (
	"reflect"
	"testing"
	"time"
)

func eventAt(t EventType, cat Category, group bool, hour int) Event {
	return Event{
		Type:             t,
		CandidateID:      "c",
		Category:         cat,
		MultiParticipant: group,
		Timestamp:        time.Date(2026, 6, 15, hour, 0, 0, 0, time.UTC),
	}
}

func TestBuildBehaviorProfileEmptyIsNeutral(t *testing.T) {
	got := BuildBehaviorProfile(nil)
	want := NeutralBehaviorProfile()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildBehaviorProfile(nil) = %+v, want %+v", got, want)
	}
	if got.SociabilityIndex != 0.5 {
		t.Errorf("neutral sociability = %v, want 0.5", got.SociabilityIndex)
	}
	if got.SampleSize != 0 {
		t.Errorf("neutral sample size = %d, want 0", got.SampleSize)
	}
}

func TestBuildBehaviorProfile(t *testing.T) {
	tests := []struct {
		name            string
		events          []Event
		wantCategories  []Category
		wantWindows     []TimeWindow
		wantSociability float64
		wantSampleSize  int
	}{
		{
			name: "only rejections yield no category preference",
			events: []Event{
				eventAt(EventRejected, CategoryDining, false, 13),
				eventAt(EventRejected, CategoryDining, false, 13),
			},
			wantCategories:  nil,
			wantWindows:     []TimeWindow{WindowAfternoon},
			wantSociability: 0.5, // no accepts, no signal
			wantSampleSize:  2,
		},
		{
			name: "accepted categories ranked by frequency",
			events: []Event{
				eventAt(EventAccepted, CategoryDining, false, 13),
				eventAt(EventAccepted, CategoryDining, false, 13),
				eventAt(EventAccepted, CategoryDining, false, 13),
				eventAt(EventAccepted, CategoryOutdoor, false, 9),
				eventAt(EventAccepted, CategoryOutdoor, false, 9),
				eventAt(EventAccepted, CategorySports, false, 9),
				eventAt(EventAccepted, CategoryCultural, false, 14),
			},
			wantCategories:  []Category{CategoryDining, CategoryOutdoor, CategoryCultural},
			wantWindows:     []TimeWindow{WindowAfternoon, WindowMorning},
			wantSociability: 0,
			wantSampleSize:  7,
		},
		{
			name: "category tie breaks alphabetically",
			events: []Event{
				eventAt(EventAccepted, CategorySports, false, 13),
				eventAt(EventAccepted, CategoryDining, false, 13),
			},
			wantCategories:  []Category{CategoryDining, CategorySports},
			wantWindows:     []TimeWindow{WindowAfternoon},
			wantSociability: 0,
			wantSampleSize:  2,
		},
		{
			name: "sociability is share of accepted group events",
			events: []Event{
				eventAt(EventAccepted, CategorySocial, true, 19),
				eventAt(EventAccepted, CategorySocial, true, 19),
				eventAt(EventAccepted, CategorySocial, true, 19),
				eventAt(EventAccepted, CategoryDining, false, 19),
				eventAt(EventRejected, CategoryDining, true, 19), // rejects don't count
			},
			wantCategories:  []Category{CategorySocial, CategoryDining},
			wantWindows:     []TimeWindow{WindowEvening},
			wantSociability: 0.75,
			wantSampleSize:  5,
		},
		{
			name: "all event types count toward windows",
			events: []Event{
				eventAt(EventRejected, CategoryDining, false, 9),
				eventAt(EventMessaged, CategoryDining, false, 9),
				eventAt(EventAccepted, CategoryDining, false, 19),
			},
			wantCategories:  []Category{CategoryDining},
			wantWindows:     []TimeWindow{WindowMorning, WindowEvening},
			wantSociability: 0,
			wantSampleSize:  3,
		},
		{
			name: "window tie breaks in daily order",
			events: []Event{
				eventAt(EventAccepted, CategoryDining, false, 23),
				eventAt(EventAccepted, CategoryDining, false, 9),
				eventAt(EventAccepted, CategoryDining, false, 14),
			},
			wantCategories:  []Category{CategoryDining},
			wantWindows:     []TimeWindow{WindowMorning, WindowAfternoon},
			wantSociability: 0,
			wantSampleSize:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildBehaviorProfile(tt.events)
			if !reflect.DeepEqual(got.PreferredCategories, tt.wantCategories) {
				t.Errorf("PreferredCategories = %v, want %v", got.PreferredCategories, tt.wantCategories)
			}
			if !reflect.DeepEqual(got.ActiveTimeWindows, tt.wantWindows) {
				t.Errorf("ActiveTimeWindows = %v, want %v", got.ActiveTimeWindows, tt.wantWindows)
			}
			if !almostEqual(got.SociabilityIndex, tt.wantSociability) {
				t.Errorf("SociabilityIndex = %v, want %v", got.SociabilityIndex, tt.wantSociability)
			}
			if got.SampleSize != tt.wantSampleSize {
				t.Errorf("SampleSize = %d, want %d", got.SampleSize, tt.wantSampleSize)
			}
		})
	}
}

func TestBuildBehaviorProfileDeterministic(t *testing.T) {
	events := []Event{
		eventAt(EventAccepted, CategoryDining, true, 13),
		eventAt(EventAccepted, CategoryOutdoor, false, 9),
		eventAt(EventAccepted, CategorySports, false, 19),
		eventAt(EventRejected, CategoryCultural, false, 23),
	}

	first := BuildBehaviorProfile(events)
	for i := 0; i < 10; i++ {
		if got := BuildBehaviorProfile(events); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestBuildBehaviorProfileCaps(t *testing.T) {
	var events []Event
	cats := []Category{
		CategoryDining, CategoryOutdoor, CategorySports,
		CategoryCultural, CategoryWellness,
	}
	for i, cat := range cats {
		for j := 0; j <= i; j++ { // distinct frequencies
			events = append(events, eventAt(EventAccepted, cat, false, 5+i*4))
		}
	}

	got := BuildBehaviorProfile(events)
	if len(got.PreferredCategories) > maxPreferredCategories {
		t.Errorf("PreferredCategories has %d entries, cap is %d",
			len(got.PreferredCategories), maxPreferredCategories)
	}
	if len(got.ActiveTimeWindows) > maxActiveTimeWindows {
		t.Errorf("ActiveTimeWindows has %d entries, cap is %d",
			len(got.ActiveTimeWindows), maxActiveTimeWindows)
	}
}

func TestTimeWindowOf(t *testing.T) {
	tests := []struct {
		hour int
		want TimeWindow
	}{
		{5, WindowMorning},
		{11, WindowMorning},
		{12, WindowAfternoon},
		{16, WindowAfternoon},
		{17, WindowEvening},
		{21, WindowEvening},
		{22, WindowNight},
		{2, WindowNight},
		{4, WindowNight},
	}

	for _, tt := range tests {
		ts := time.Date(2026, 6, 15, tt.hour, 30, 0, 0, time.UTC)
		if got := TimeWindowOf(ts); got != tt.want {
			t.Errorf("TimeWindowOf(hour=%d) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}
