// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

// Package storage provides in-memory implementations of the engine's
// provider interfaces. They back the reference binary and tests; a real
// deployment implements the same interfaces against its own stores.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/meetra-labs/recommend/internal/recommend"
)

// MemoryCandidateStore is a thread-safe in-memory CandidateStore. Candidates
// are returned in insertion order, so pool fetches are stable across calls.
type MemoryCandidateStore struct {
	mu         sync.RWMutex
	candidates []recommend.Candidate
	index      map[string]int
}

// NewMemoryCandidateStore creates an empty candidate store.
func NewMemoryCandidateStore() *MemoryCandidateStore {
	return &MemoryCandidateStore{index: make(map[string]int)}
}

// Put inserts or replaces a candidate by ID.
func (s *MemoryCandidateStore) Put(c recommend.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[c.ID]; ok {
		s.candidates[i] = c
		return
	}
	s.index[c.ID] = len(s.candidates)
	s.candidates = append(s.candidates, c)
}

// Len returns the number of stored candidates.
func (s *MemoryCandidateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candidates)
}

// FetchPool returns active candidates matching the hard filters, in
// insertion order, at most limit entries. The radius filter is left to the
// pool builder, which knows the request origin.
func (s *MemoryCandidateStore) FetchPool(ctx context.Context, filters recommend.PoolFilters, limit int) ([]recommend.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	pool := make([]recommend.Candidate, 0, limit)
	for _, c := range s.candidates {
		if limit > 0 && len(pool) >= limit {
			break
		}
		if c.Status != recommend.StatusActive {
			continue
		}
		if filters.Category != "" && c.Category != filters.Category {
			continue
		}
		if p := filters.Price; p != nil && (c.PriceLevel < p.Min || c.PriceLevel > p.Max) {
			continue
		}
		pool = append(pool, c)
	}
	return pool, nil
}

// MemoryEventLog is a thread-safe in-memory EventLog keyed by user.
type MemoryEventLog struct {
	mu     sync.RWMutex
	events map[string][]recommend.Event
}

// NewMemoryEventLog creates an empty event log.
func NewMemoryEventLog() *MemoryEventLog {
	return &MemoryEventLog{events: make(map[string][]recommend.Event)}
}

// Append records an event for a user.
func (l *MemoryEventLog) Append(userID string, ev recommend.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events[userID] = append(l.events[userID], ev)
}

// RecentEvents returns up to window most recent events for the user, newest
// first. Unknown users have empty histories, not errors.
func (l *MemoryEventLog) RecentEvents(ctx context.Context, userID string, window int) ([]recommend.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	stored := l.events[userID]
	recent := make([]recommend.Event, len(stored))
	copy(recent, stored)

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if window > 0 && len(recent) > window {
		recent = recent[:window]
	}
	return recent, nil
}

// MemorySocialGraph is a thread-safe in-memory SocialGraph.
type MemorySocialGraph struct {
	mu          sync.RWMutex
	connections map[string][]recommend.Connection

	// participation maps a member ID to the candidate IDs they joined.
	participation map[string][]string
}

// NewMemorySocialGraph creates an empty social graph.
func NewMemorySocialGraph() *MemorySocialGraph {
	return &MemorySocialGraph{
		connections:   make(map[string][]recommend.Connection),
		participation: make(map[string][]string),
	}
}

// Connect records a connection from userID to conn.
func (g *MemorySocialGraph) Connect(userID string, conn recommend.Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connections[userID] = append(g.connections[userID], conn)
}

// Join records that a member participates in a candidate.
func (g *MemorySocialGraph) Join(memberID, candidateID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.participation[memberID] = append(g.participation[memberID], candidateID)
}

// Connections returns the user's neighbors in insertion order.
func (g *MemorySocialGraph) Connections(ctx context.Context, userID string) ([]recommend.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	conns := make([]recommend.Connection, len(g.connections[userID]))
	copy(conns, g.connections[userID])
	return conns, nil
}

// CohortParticipation counts, per candidate, how many cohort members
// participate in it. A member participating twice in the same candidate
// still counts once.
func (g *MemorySocialGraph) CohortParticipation(ctx context.Context, cohort []string) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	counts := make(map[string]int)
	for _, member := range cohort {
		seen := make(map[string]struct{})
		for _, candidateID := range g.participation[member] {
			if _, dup := seen[candidateID]; dup {
				continue
			}
			seen[candidateID] = struct{}{}
			counts[candidateID]++
		}
	}
	return counts, nil
}

// Interface conformance.
var (
	_ recommend.CandidateStore = (*MemoryCandidateStore)(nil)
	_ recommend.EventLog       = (*MemoryEventLog)(nil)
	_ recommend.SocialGraph    = (*MemorySocialGraph)(nil)
)
