// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

// Package compatcache provides the engine's two bounded TTL caches: one for
// resolved single-entity vector states (long TTL) and one for pairwise
// compatibility results (short TTL, order-independent keys).
//
// Entries are disposable, non-owning copies keyed by a deterministic request
// signature. Expiry is logical: an expired entry is a miss, evicted on read
// or by the periodic sweep. When a write arrives at capacity, the entry
// nearest expiration is evicted to make room.
package compatcache
