// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

package recommend

import (
	"math"
	"testing"
	"time"

	"github.com/meetra-labs/recommend/internal/geo"
)

const scoreEpsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < scoreEpsilon
}

func TestScorePersonalPreference(t *testing.T) {
	tests := []struct {
		name      string
		user      UserProfile
		candidate Candidate
		want      float64
	}{
		{
			name:      "no data stays neutral",
			user:      UserProfile{ID: "u1"},
			candidate: Candidate{ID: "c1", Category: CategoryOutdoor},
			want:      0.5,
		},
		{
			name: "full interest overlap",
			user: UserProfile{ID: "u1", Interests: []string{"hiking", "climbing"}},
			candidate: Candidate{
				ID: "c1", Category: CategoryOutdoor,
				Tags: []string{"hiking", "climbing", "nature"},
			},
			want: 0.8,
		},
		{
			name: "half interest overlap",
			user: UserProfile{ID: "u1", Interests: []string{"hiking", "chess"}},
			candidate: Candidate{
				ID: "c1", Category: CategoryOutdoor,
				Tags: []string{"hiking"},
			},
			want: 0.65,
		},
		{
			name: "overlap is case-insensitive",
			user: UserProfile{ID: "u1", Interests: []string{"Hiking"}},
			candidate: Candidate{
				ID: "c1", Category: CategoryOutdoor,
				Tags: []string{"HIKING"},
			},
			want: 0.8,
		},
		{
			name:      "identical energy",
			user:      UserProfile{ID: "u1", EnergyLevel: EnergyHigh},
			candidate: Candidate{ID: "c1", EnergyLevel: EnergyHigh},
			want:      0.7,
		},
		{
			name:      "adjacent energy",
			user:      UserProfile{ID: "u1", EnergyLevel: EnergyHigh},
			candidate: Candidate{ID: "c1", EnergyLevel: EnergyMedium},
			want:      0.5 + 0.2*0.33,
		},
		{
			name:      "opposite energy",
			user:      UserProfile{ID: "u1", EnergyLevel: EnergyHigh},
			candidate: Candidate{ID: "c1", EnergyLevel: EnergyLow},
			want:      0.5,
		},
		{
			name:      "age in declared range",
			user:      UserProfile{ID: "u1", Age: 30},
			candidate: Candidate{ID: "c1", MinAge: 25, MaxAge: 35},
			want:      0.6,
		},
		{
			name:      "age outside declared range",
			user:      UserProfile{ID: "u1", Age: 40},
			candidate: Candidate{ID: "c1", MinAge: 25, MaxAge: 35},
			want:      0.5,
		},
		{
			name:      "unbounded candidate earns no age bonus",
			user:      UserProfile{ID: "u1", Age: 30},
			candidate: Candidate{ID: "c1"},
			want:      0.5,
		},
		{
			name: "all bonuses accumulate",
			user: UserProfile{
				ID: "u1", Interests: []string{"hiking"},
				EnergyLevel: EnergyHigh, Age: 30,
			},
			candidate: Candidate{
				ID: "c1", Tags: []string{"hiking"},
				EnergyLevel: EnergyHigh, MinAge: 18, MaxAge: 99,
			},
			want: 1.0, // 0.5+0.3+0.2+0.1 clamped
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScorePersonalPreference(tt.user, tt.candidate)
			if !almostEqual(got, tt.want) {
				t.Errorf("ScorePersonalPreference() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScorePersonalPreferenceMonotonicInOverlap(t *testing.T) {
	user := UserProfile{ID: "u1", Interests: []string{"hiking", "yoga", "jazz"}}
	base := Candidate{ID: "c1", Category: CategoryOutdoor}

	prev := -1.0
	for _, tags := range [][]string{
		nil,
		{"hiking"},
		{"hiking", "yoga"},
		{"hiking", "yoga", "jazz"},
	} {
		c := base
		c.Tags = tags
		got := ScorePersonalPreference(user, c)
		if got <= prev {
			t.Fatalf("score not strictly increasing: %v after %v (tags=%v)", got, prev, tags)
		}
		prev = got
	}
}

func TestScoreBehavioralMatch(t *testing.T) {
	tests := []struct {
		name      string
		candidate Candidate
		behavior  BehaviorProfile
		want      float64
	}{
		{
			name:      "neutral profile neutral candidate",
			candidate: Candidate{ID: "c1", Category: CategorySports},
			behavior:  BehaviorProfile{SociabilityIndex: 0.5},
			want:      0.5,
		},
		{
			name:      "preferred category",
			candidate: Candidate{ID: "c1", Category: CategoryDining},
			behavior: BehaviorProfile{
				PreferredCategories: []Category{CategoryDining},
				SociabilityIndex:    0.5,
			},
			want: 0.8,
		},
		{
			name:      "active window intersects category windows",
			candidate: Candidate{ID: "c1", Category: CategoryNightlife},
			behavior: BehaviorProfile{
				ActiveTimeWindows: []TimeWindow{WindowNight},
				SociabilityIndex:  0.5,
			},
			want: 0.7,
		},
		{
			name:      "sociable user group activity",
			candidate: Candidate{ID: "c1", Category: CategorySports, Capacity: 10},
			behavior:  BehaviorProfile{SociabilityIndex: 0.9},
			want:      0.7,
		},
		{
			name:      "solo user solo activity",
			candidate: Candidate{ID: "c1", Category: CategorySports, Capacity: 1},
			behavior:  BehaviorProfile{SociabilityIndex: 0.1},
			want:      0.7,
		},
		{
			name:      "sociable user solo activity no bonus",
			candidate: Candidate{ID: "c1", Category: CategorySports, Capacity: 1},
			behavior:  BehaviorProfile{SociabilityIndex: 0.9},
			want:      0.5,
		},
		{
			name:      "middle sociability band carries no signal",
			candidate: Candidate{ID: "c1", Category: CategorySports, Capacity: 10},
			behavior:  BehaviorProfile{SociabilityIndex: 0.5},
			want:      0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreBehavioralMatch(tt.candidate, tt.behavior)
			if !almostEqual(got, tt.want) {
				t.Errorf("ScoreBehavioralMatch() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreContextualRelevance(t *testing.T) {
	berlin := geo.Point{Lat: 52.52, Lon: 13.405}

	tests := []struct {
		name      string
		user      UserProfile
		candidate Candidate
		rctx      Context
		want      float64
	}{
		{
			name:      "no locations no slots info",
			user:      UserProfile{ID: "u1"},
			candidate: Candidate{ID: "c1"},
			want:      0.5,
		},
		{
			name:      "same point active unlimited",
			user:      UserProfile{ID: "u1", Location: berlin},
			candidate: Candidate{ID: "c1", Location: berlin, Status: StatusActive},
			want:      1.0, // 0.5 + 0.3 + 0.2
		},
		{
			name:      "beyond cutoff only open slots",
			user:      UserProfile{ID: "u1", Location: berlin},
			candidate: Candidate{ID: "c1", Location: geo.Point{Lat: 48.8566, Lon: 2.3522}, Status: StatusActive},
			want:      0.7,
		},
		{
			name:      "full candidate near",
			user:      UserProfile{ID: "u1", Location: berlin},
			candidate: Candidate{ID: "c1", Location: berlin, Status: StatusActive, Capacity: 4, ParticipantCount: 4},
			want:      0.8,
		},
		{
			name: "live location preferred over home",
			user: UserProfile{ID: "u1", Location: geo.Point{Lat: 48.8566, Lon: 2.3522}},
			candidate: Candidate{
				ID: "c1", Location: berlin,
				Status: StatusActive, Capacity: 4, ParticipantCount: 4,
			},
			rctx: Context{Location: &berlin},
			want: 0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreContextualRelevance(tt.user, tt.candidate, tt.rctx)
			if !almostEqual(got, tt.want) {
				t.Errorf("ScoreContextualRelevance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreContextualRelevanceDecaysWithDistance(t *testing.T) {
	origin := geo.Point{Lat: 52.52, Lon: 13.405}
	user := UserProfile{ID: "u1", Location: origin}

	near := Candidate{ID: "near", Location: geo.Point{Lat: 52.521, Lon: 13.405}, Status: StatusActive}
	far := Candidate{ID: "far", Location: geo.Point{Lat: 52.55, Lon: 13.405}, Status: StatusActive}

	if ScoreContextualRelevance(user, near, Context{}) <= ScoreContextualRelevance(user, far, Context{}) {
		t.Error("nearer candidate should outscore farther one")
	}
}

func TestScoreSocialFactors(t *testing.T) {
	tests := []struct {
		name      string
		candidate Candidate
		social    SocialSnapshot
		want      float64
	}{
		{
			name:      "empty snapshot neutral",
			candidate: Candidate{ID: "c1", Tags: []string{"hiking"}},
			social:    SocialSnapshot{},
			want:      0.5,
		},
		{
			name:      "one overlapping connection",
			candidate: Candidate{ID: "c1", Tags: []string{"hiking"}},
			social: SocialSnapshot{
				Connections: []Connection{{ID: "f1", Interests: []string{"hiking"}}},
			},
			want: 0.6,
		},
		{
			name:      "overlap bonus capped at five connections worth",
			candidate: Candidate{ID: "c1", Tags: []string{"hiking"}},
			social: SocialSnapshot{
				Connections: []Connection{
					{ID: "f1", Interests: []string{"hiking"}},
					{ID: "f2", Interests: []string{"hiking"}},
					{ID: "f3", Interests: []string{"hiking"}},
					{ID: "f4", Interests: []string{"hiking"}},
					{ID: "f5", Interests: []string{"hiking"}},
				},
			},
			want: 0.8,
		},
		{
			name:      "cohort participation scaled",
			candidate: Candidate{ID: "c1"},
			social: SocialSnapshot{
				CohortSize:    10,
				Participation: map[string]int{"c1": 5},
			},
			want: 0.6,
		},
		{
			name:      "full cohort participation",
			candidate: Candidate{ID: "c1"},
			social: SocialSnapshot{
				CohortSize:    4,
				Participation: map[string]int{"c1": 4},
			},
			want: 0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreSocialFactors(tt.candidate, tt.social)
			if !almostEqual(got, tt.want) {
				t.Errorf("ScoreSocialFactors() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreNoveltyFactor(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		candidate Candidate
		want      float64
	}{
		{
			name:      "fresh popular category",
			candidate: Candidate{ID: "c1", Category: CategoryDining, CreatedAt: now.Add(-time.Hour)},
			want:      0.8,
		},
		{
			name:      "stale popular category",
			candidate: Candidate{ID: "c1", Category: CategoryDining, CreatedAt: now.Add(-60 * 24 * time.Hour)},
			want:      0.5,
		},
		{
			name:      "fresh niche category",
			candidate: Candidate{ID: "c1", Category: CategoryLearning, CreatedAt: now.Add(-time.Hour)},
			want:      1.0,
		},
		{
			name:      "stale niche category",
			candidate: Candidate{ID: "c1", Category: CategoryLearning, CreatedAt: now.Add(-60 * 24 * time.Hour)},
			want:      0.7,
		},
		{
			name:      "exactly seven days is not fresh",
			candidate: Candidate{ID: "c1", Category: CategoryDining, CreatedAt: now.Add(-7 * 24 * time.Hour)},
			want:      0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreNoveltyFactor(tt.candidate, now)
			if !almostEqual(got, tt.want) {
				t.Errorf("ScoreNoveltyFactor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreTimeOptimality(t *testing.T) {
	morning := Context{Timestamp: time.Date(2026, 6, 15, 8, 0, 0, 0, time.UTC)}
	night := Context{Timestamp: time.Date(2026, 6, 15, 23, 0, 0, 0, time.UTC)}

	tests := []struct {
		name      string
		candidate Candidate
		rctx      Context
		want      float64
	}{
		{"outdoor in the morning", Candidate{Category: CategoryOutdoor}, morning, 0.8},
		{"outdoor at night", Candidate{Category: CategoryOutdoor}, night, 0.3},
		{"nightlife at night", Candidate{Category: CategoryNightlife}, night, 0.8},
		{"nightlife in the morning", Candidate{Category: CategoryNightlife}, morning, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreTimeOptimality(tt.candidate, tt.rctx)
			if !almostEqual(got, tt.want) {
				t.Errorf("ScoreTimeOptimality() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreWeatherSuitability(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		weather  Weather
		want     float64
	}{
		{"unknown weather is neutral", CategoryOutdoor, WeatherUnknown, 0.5},
		{"sunny outdoor", CategoryOutdoor, WeatherSunny, 0.8},
		{"sunny indoor", CategoryIndoor, WeatherSunny, 0.4},
		{"rainy indoor sheltered", CategoryIndoor, WeatherRainy, 0.7},
		{"rainy cultural sheltered", CategoryCultural, WeatherRainy, 0.7},
		{"rainy outdoor penalized", CategoryOutdoor, WeatherRainy, 0.4},
		{"snowy entertainment sheltered", CategoryEntertainment, WeatherSnowy, 0.7},
		{"cloudy learning", CategoryLearning, WeatherCloudy, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreWeatherSuitability(Candidate{Category: tt.category}, Context{Weather: tt.weather})
			if !almostEqual(got, tt.want) {
				t.Errorf("ScoreWeatherSuitability() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScorePopularityBoost(t *testing.T) {
	tests := []struct {
		name         string
		capacity     int
		participants int
		want         float64
	}{
		{"healthy fill", 10, 6, 0.8},
		{"lower bound of healthy band", 10, 4, 0.8},
		{"upper bound of healthy band", 10, 8, 0.8},
		{"nearly empty", 10, 1, 0.6},
		{"nearly full", 10, 9, 0.3},
		{"unlimited capacity counts as empty", 0, 50, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Candidate{Capacity: tt.capacity, ParticipantCount: tt.participants}
			got := ScorePopularityBoost(c)
			if !almostEqual(got, tt.want) {
				t.Errorf("ScorePopularityBoost() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreSeasonalRelevance(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		season   Season
		want     float64
	}{
		{"unknown season neutral", CategoryOutdoor, SeasonUnknown, 0.5},
		{"summer outdoor", CategoryOutdoor, SeasonSummer, 0.7},
		{"winter indoor", CategoryIndoor, SeasonWinter, 0.7},
		{"summer indoor neutral", CategoryIndoor, SeasonSummer, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreSeasonalRelevance(Candidate{Category: tt.category}, Context{Season: tt.season})
			if !almostEqual(got, tt.want) {
				t.Errorf("ScoreSeasonalRelevance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreComponentsBounds(t *testing.T) {
	// Every component must land in [0,1] even for adversarial inputs.
	user := UserProfile{
		ID:          "u1",
		Interests:   []string{"hiking", "yoga"},
		EnergyLevel: EnergyHigh,
		Age:         30,
		Location:    geo.Point{Lat: 52.52, Lon: 13.405},
	}
	c := Candidate{
		ID:               "c1",
		Category:         CategoryLearning,
		Location:         geo.Point{Lat: 52.52, Lon: 13.405},
		Tags:             []string{"hiking", "yoga", "group"},
		EnergyLevel:      EnergyHigh,
		Capacity:         10,
		ParticipantCount: 6,
		MinAge:           18,
		MaxAge:           99,
		CreatedAt:        time.Now(),
		Status:           StatusActive,
	}
	rctx := Context{Timestamp: time.Now(), Weather: WeatherSunny, Season: SeasonSummer}
	behavior := BehaviorProfile{
		PreferredCategories: []Category{CategoryLearning},
		ActiveTimeWindows:   []TimeWindow{WindowMorning, WindowAfternoon},
		SociabilityIndex:    0.9,
		SampleSize:          50,
	}
	social := SocialSnapshot{
		Connections:   []Connection{{ID: "f1", Interests: []string{"hiking"}}},
		CohortSize:    1,
		Participation: map[string]int{"c1": 1},
	}

	for name, v := range scoreComponents(user, c, rctx, behavior, social) {
		if v < 0 || v > 1 {
			t.Errorf("component %s = %v, outside [0,1]", name, v)
		}
	}
}
