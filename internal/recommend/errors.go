// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

package recommend

import "errors"

var (
	// ErrInvalidInput marks a malformed request: missing user, bad
	// context values, negative limits. The request is rejected before any
	// upstream read; there is never a partial result.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPoolUnavailable marks a failed candidate store read. Unlike the
	// profiler and social reads there is nothing to degrade to, so this
	// fails the whole request.
	ErrPoolUnavailable = errors.New("candidate pool unavailable")

	// ErrNoCandidateStore is returned when Recommend is called before a
	// candidate store has been wired.
	ErrNoCandidateStore = errors.New("candidate store not set")
)
