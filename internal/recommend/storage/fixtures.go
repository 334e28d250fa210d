// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/meetra-labs/recommend/internal/geo"
	"github.com/meetra-labs/recommend/internal/recommend"
)

// MemoryUserDirectory resolves user IDs to profiles for the reference
// binary. The engine itself never looks profiles up; it receives them in the
// request.
type MemoryUserDirectory struct {
	mu    sync.RWMutex
	users map[string]recommend.UserProfile
}

// NewMemoryUserDirectory creates an empty directory.
func NewMemoryUserDirectory() *MemoryUserDirectory {
	return &MemoryUserDirectory{users: make(map[string]recommend.UserProfile)}
}

// Put inserts or replaces a profile.
func (d *MemoryUserDirectory) Put(u recommend.UserProfile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

// Lookup returns the profile for a user ID.
func (d *MemoryUserDirectory) Lookup(ctx context.Context, userID string) (recommend.UserProfile, bool) {
	if ctx.Err() != nil {
		return recommend.UserProfile{}, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[userID]
	return u, ok
}

// Fixtures bundles seeded stores for the reference binary.
type Fixtures struct {
	Candidates *MemoryCandidateStore
	Events     *MemoryEventLog
	Social     *MemorySocialGraph
	Users      *MemoryUserDirectory
}

// SeedFixtures builds demo stores centered on Berlin: a spread of
// categories, a user with hiking history, and a small social neighborhood.
func SeedFixtures() *Fixtures {
	now := time.Now().UTC()
	berlin := geo.Point{Lat: 52.52, Lon: 13.405}

	f := &Fixtures{
		Candidates: NewMemoryCandidateStore(),
		Events:     NewMemoryEventLog(),
		Social:     NewMemorySocialGraph(),
		Users:      NewMemoryUserDirectory(),
	}

	seedCandidates := []recommend.Candidate{
		{
			ID: "act-hike-grunewald", Category: recommend.CategoryOutdoor,
			Location: geo.Point{Lat: 52.484, Lon: 13.227},
			Tags:     []string{"hiking", "nature", "group"},
			EnergyLevel: recommend.EnergyHigh, Capacity: 12, ParticipantCount: 7,
			RatingCount: 23, PriceLevel: 0,
			CreatedAt: now.Add(-2 * 24 * time.Hour), Status: recommend.StatusActive,
		},
		{
			ID: "act-museum-island", Category: recommend.CategoryCultural,
			Location: geo.Point{Lat: 52.516, Lon: 13.402},
			Tags:     []string{"art", "history"},
			EnergyLevel: recommend.EnergyLow, Capacity: 0, ParticipantCount: 0,
			RatingCount: 87, PriceLevel: 2,
			CreatedAt: now.Add(-200 * 24 * time.Hour), Status: recommend.StatusActive,
		},
		{
			ID: "act-ramen-night", Category: recommend.CategoryDining,
			Location: geo.Point{Lat: 52.53, Lon: 13.41},
			Tags:     []string{"food", "japanese", "social"},
			EnergyLevel: recommend.EnergyMedium, Capacity: 8, ParticipantCount: 5,
			RatingCount: 12, PriceLevel: 2,
			CreatedAt: now.Add(-3 * 24 * time.Hour), Status: recommend.StatusActive,
		},
		{
			ID: "act-bouldering-intro", Category: recommend.CategorySports,
			Location: geo.Point{Lat: 52.50, Lon: 13.45},
			Tags:     []string{"climbing", "beginner", "group"},
			EnergyLevel: recommend.EnergyHigh, Capacity: 10, ParticipantCount: 9,
			RatingCount: 4, PriceLevel: 1,
			CreatedAt: now.Add(-40 * 24 * time.Hour), Status: recommend.StatusActive,
		},
		{
			ID: "act-jazz-keller", Category: recommend.CategoryNightlife,
			Location: geo.Point{Lat: 52.49, Lon: 13.39},
			Tags:     []string{"jazz", "music", "drinks"},
			EnergyLevel: recommend.EnergyMedium, Capacity: 40, ParticipantCount: 18,
			RatingCount: 31, PriceLevel: 3,
			CreatedAt: now.Add(-10 * 24 * time.Hour), Status: recommend.StatusActive,
		},
		{
			ID: "act-yoga-sunrise", Category: recommend.CategoryWellness,
			Location: geo.Point{Lat: 52.531, Lon: 13.384},
			Tags:     []string{"yoga", "meditation"},
			EnergyLevel: recommend.EnergyLow, Capacity: 15, ParticipantCount: 6,
			RatingCount: 9, PriceLevel: 1,
			CreatedAt: now.Add(-36 * time.Hour), Status: recommend.StatusActive,
		},
		{
			ID: "act-pottery-workshop", Category: recommend.CategoryLearning,
			Location: geo.Point{Lat: 52.54, Lon: 13.42},
			Tags:     []string{"crafts", "pottery"},
			EnergyLevel: recommend.EnergyLow, Capacity: 6, ParticipantCount: 3,
			RatingCount: 2, PriceLevel: 2,
			CreatedAt: now.Add(-12 * time.Hour), Status: recommend.StatusActive,
		},
		{
			ID: "act-retired-walking-tour", Category: recommend.CategoryOutdoor,
			Location: geo.Point{Lat: 52.51, Lon: 13.38},
			Tags:     []string{"walking", "history"},
			EnergyLevel: recommend.EnergyLow,
			CreatedAt:   now.Add(-400 * 24 * time.Hour), Status: recommend.StatusInactive,
		},
	}
	for _, c := range seedCandidates {
		f.Candidates.Put(c)
	}

	f.Users.Put(recommend.UserProfile{
		ID:          "demo-user",
		Interests:   []string{"hiking", "food", "music"},
		EnergyLevel: recommend.EnergyMedium,
		Age:         29,
		Location:    berlin,
	})

	// Recent history: leans outdoor, mostly group activities, evenings.
	history := []recommend.Event{
		{Type: recommend.EventAccepted, CandidateID: "act-hike-grunewald", Category: recommend.CategoryOutdoor, MultiParticipant: true, Timestamp: now.Add(-5 * 24 * time.Hour)},
		{Type: recommend.EventAccepted, CandidateID: "act-ramen-night", Category: recommend.CategoryDining, MultiParticipant: true, Timestamp: now.Add(-8 * 24 * time.Hour)},
		{Type: recommend.EventAccepted, CandidateID: "act-hike-grunewald", Category: recommend.CategoryOutdoor, MultiParticipant: true, Timestamp: now.Add(-15 * 24 * time.Hour)},
		{Type: recommend.EventRejected, CandidateID: "act-jazz-keller", Category: recommend.CategoryNightlife, MultiParticipant: true, Timestamp: now.Add(-6 * 24 * time.Hour)},
		{Type: recommend.EventMessaged, CandidateID: "act-yoga-sunrise", Category: recommend.CategoryWellness, Timestamp: now.Add(-2 * 24 * time.Hour)},
	}
	for _, ev := range history {
		f.Events.Append("demo-user", ev)
	}

	neighbors := []recommend.Connection{
		{ID: "friend-anna", Interests: []string{"hiking", "yoga"}, Age: 31},
		{ID: "friend-ben", Interests: []string{"food", "jazz"}, Age: 27},
		{ID: "friend-chen", Interests: []string{"chess"}, Age: 52},
	}
	for _, n := range neighbors {
		f.Social.Connect("demo-user", n)
	}
	f.Social.Join("friend-anna", "act-hike-grunewald")
	f.Social.Join("friend-anna", "act-yoga-sunrise")
	f.Social.Join("friend-ben", "act-ramen-night")

	return f
}

// SeedBulkCandidates adds count synthetic active candidates cycling through
// all categories, for load-shaped tests and demos.
func (f *Fixtures) SeedBulkCandidates(count int) {
	now := time.Now().UTC()
	for i := 0; i < count; i++ {
		cat := recommend.Categories[i%len(recommend.Categories)]
		f.Candidates.Put(recommend.Candidate{
			ID:       fmt.Sprintf("bulk-%04d", i),
			Category: cat,
			Location: geo.Point{Lat: 52.50 + float64(i%20)*0.005, Lon: 13.38 + float64(i%20)*0.005},
			Tags:     []string{string(cat)},
			Capacity: 10, ParticipantCount: i % 10,
			PriceLevel: i % 5,
			CreatedAt:  now.Add(-time.Duration(i) * time.Hour),
			Status:     recommend.StatusActive,
		})
	}
}
