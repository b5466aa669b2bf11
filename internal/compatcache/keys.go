// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package compatcache

import (
	"crypto/sha256"
	"fmt"
)

// EntityKey builds the cache key for a single entity's resolved vector
// state.
func EntityKey(entityID string) string {
	return fmt.Sprintf("state:%s", entityID)
}

// PairKey builds a deterministic, order-independent key for a pairwise
// result: PairKey(a, b, d) == PairKey(b, a, d) for every domain d.
// Ids are length-delimited before hashing so distinct pairs can never
// collide by concatenation.
func PairKey(entityA, entityB, domain string) string {
	lo, hi := entityA, entityB
	if hi < lo {
		lo, hi = hi, lo
	}
	digest := sha256.Sum256([]byte(lo + "\x00" + hi + "\x00" + domain))
	return fmt.Sprintf("pair:%x", digest[:16])
}
