// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

package recommend

import "hash/fnv"

// Bucket deterministically assigns an identifier to a bucket in [0,100).
// The same (id, salt) pair always maps to the same bucket across processes
// and releases; changing the salt reshuffles the whole population. Used for
// experiment-variant assignment, independent of scoring.
func Bucket(id, salt string) int {
	h := fnv.New64a()
	// fnv never errors on Write
	_, _ = h.Write([]byte(id))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(salt))
	return int(h.Sum64() % 100)
}
