// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/meetra-labs/recommend/internal/recommend"
)

type flakyEventLog struct {
	err   error
	calls int
}

func (f *flakyEventLog) RecentEvents(_ context.Context, _ string, _ int) ([]recommend.Event, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []recommend.Event{{Type: recommend.EventAccepted, CandidateID: "c1"}}, nil
}

type flakySocialGraph struct {
	err error
}

func (f *flakySocialGraph) Connections(_ context.Context, _ string) ([]recommend.Connection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []recommend.Connection{{ID: "f1"}}, nil
}

func (f *flakySocialGraph) CohortParticipation(_ context.Context, _ []string) (map[string]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return map[string]int{"c1": 1}, nil
}

// uniqueName keeps breaker metric labels distinct across subtests.
var nameSeq int

func uniqueName(prefix string) string {
	nameSeq++
	return fmt.Sprintf("%s-%d", prefix, nameSeq)
}

func TestEventLogPassThrough(t *testing.T) {
	inner := &flakyEventLog{}
	wrapped := NewEventLog(inner, Settings{Name: uniqueName("el")})

	events, err := wrapped.RecentEvents(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("RecentEvents() error: %v", err)
	}
	if len(events) != 1 || events[0].CandidateID != "c1" {
		t.Errorf("events = %+v, want the inner log's result", events)
	}
}

func TestEventLogPropagatesErrors(t *testing.T) {
	sentinel := errors.New("log down")
	wrapped := NewEventLog(&flakyEventLog{err: sentinel}, Settings{Name: uniqueName("el")})

	if _, err := wrapped.RecentEvents(context.Background(), "u1", 10); !errors.Is(err, sentinel) {
		t.Fatalf("RecentEvents() error = %v, want wrapped sentinel", err)
	}
}

func TestBreakerOpensAndFailsFast(t *testing.T) {
	inner := &flakyEventLog{err: errors.New("log down")}
	wrapped := NewEventLog(inner, Settings{
		Name:         uniqueName("el"),
		MinRequests:  5,
		FailureRatio: 0.6,
		Timeout:      time.Hour, // stays open for the whole test
	})

	// Drive the breaker open.
	for i := 0; i < 10; i++ {
		_, _ = wrapped.RecentEvents(context.Background(), "u1", 10)
	}

	before := inner.calls
	_, err := wrapped.RecentEvents(context.Background(), "u1", 10)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("RecentEvents() error = %v, want ErrOpenState", err)
	}
	if inner.calls != before {
		t.Error("open breaker still reached the inner log")
	}
}

func TestBreakerRecovers(t *testing.T) {
	inner := &flakyEventLog{err: errors.New("log down")}
	wrapped := NewEventLog(inner, Settings{
		Name:         uniqueName("el"),
		MinRequests:  3,
		FailureRatio: 0.5,
		Timeout:      50 * time.Millisecond,
	})

	for i := 0; i < 5; i++ {
		_, _ = wrapped.RecentEvents(context.Background(), "u1", 10)
	}
	if _, err := wrapped.RecentEvents(context.Background(), "u1", 10); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("breaker not open: %v", err)
	}

	// Upstream heals; after the timeout the half-open probe succeeds.
	inner.err = nil
	time.Sleep(80 * time.Millisecond)

	if _, err := wrapped.RecentEvents(context.Background(), "u1", 10); err != nil {
		t.Fatalf("RecentEvents() after recovery error: %v", err)
	}
}

func TestRateLimiting(t *testing.T) {
	wrapped := NewEventLog(&flakyEventLog{}, Settings{
		Name:          uniqueName("el"),
		RatePerSecond: 1,
		Burst:         2,
	})

	limited := 0
	for i := 0; i < 5; i++ {
		if _, err := wrapped.RecentEvents(context.Background(), "u1", 10); errors.Is(err, ErrRateLimited) {
			limited++
		}
	}
	if limited == 0 {
		t.Error("burst of 5 calls against burst budget 2 never hit the rate limit")
	}
}

func TestSocialGraphSharesBreaker(t *testing.T) {
	inner := &flakySocialGraph{err: errors.New("graph down")}
	wrapped := NewSocialGraph(inner, Settings{
		Name:         uniqueName("sg"),
		MinRequests:  4,
		FailureRatio: 0.5,
		Timeout:      time.Hour,
	})

	// Failures via Connections open the breaker for both operations.
	for i := 0; i < 6; i++ {
		_, _ = wrapped.Connections(context.Background(), "u1")
	}

	if _, err := wrapped.CohortParticipation(context.Background(), []string{"f1"}); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("CohortParticipation() error = %v, want ErrOpenState shared with Connections", err)
	}
}

func TestSocialGraphPassThrough(t *testing.T) {
	wrapped := NewSocialGraph(&flakySocialGraph{}, Settings{Name: uniqueName("sg")})

	conns, err := wrapped.Connections(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Connections() error: %v", err)
	}
	if len(conns) != 1 {
		t.Errorf("connections = %d, want 1", len(conns))
	}

	counts, err := wrapped.CohortParticipation(context.Background(), []string{"f1"})
	if err != nil {
		t.Fatalf("CohortParticipation() error: %v", err)
	}
	if counts["c1"] != 1 {
		t.Errorf("participation = %v, want c1:1", counts)
	}
}

func TestEngineDegradesBehindOpenBreaker(t *testing.T) {
	// End to end: a tripped event log breaker must surface as a degraded
	// profiler, not a failed request.
	eventLog := NewEventLog(&flakyEventLog{err: errors.New("down")}, Settings{
		Name:         uniqueName("el"),
		MinRequests:  3,
		FailureRatio: 0.5,
		Timeout:      time.Hour,
	})
	for i := 0; i < 5; i++ {
		_, _ = eventLog.RecentEvents(context.Background(), "u1", 10)
	}

	engine, err := recommend.NewEngine(nil)
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	engine.SetProviders(recommend.Providers{
		Candidates: staticStore{recommend.Candidate{
			ID:       "c1",
			Category: recommend.CategoryDining,
			Status:   recommend.StatusActive,
		}},
		Events: eventLog,
	})

	resp, err := engine.Recommend(context.Background(), recommend.Request{
		User: recommend.UserProfile{ID: "u1"},
	})
	if err != nil {
		t.Fatalf("Recommend() error: %v, want degraded success", err)
	}
	if len(resp.Metadata.Degraded) == 0 {
		t.Error("response not marked degraded behind open breaker")
	}
	if resp.Profile.SampleSize != 0 {
		t.Errorf("profile sample size = %d, want neutral 0", resp.Profile.SampleSize)
	}
}

type staticStore []recommend.Candidate

func (s staticStore) FetchPool(_ context.Context, _ recommend.PoolFilters, _ int) ([]recommend.Candidate, error) {
	return s, nil
}
