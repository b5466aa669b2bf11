// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package engine

import (
	"time"

	"github.com/kindredapp/resonance/internal/vector"
)

// Kind identifies what an entity snapshot describes.
type Kind string

const (
	KindUser     Kind = "user"
	KindEvent    Kind = "event"
	KindBusiness Kind = "business"
	KindBrand    Kind = "brand"
	KindSpot     Kind = "spot"
)

// Valid reports whether k names a known entity kind.
func (k Kind) Valid() bool {
	switch k {
	case KindUser, KindEvent, KindBusiness, KindBrand, KindSpot:
		return true
	}
	return false
}

// Pairing names the domain a compatibility request belongs to.
type Pairing string

const (
	PairingUserSpot     Pairing = "user-spot"
	PairingUserBusiness Pairing = "user-business"
	PairingUserBrand    Pairing = "user-brand"
	PairingUserEvent    Pairing = "user-event"
)

// Valid reports whether p names a known pairing domain.
func (p Pairing) Valid() bool {
	switch p {
	case PairingUserSpot, PairingUserBusiness, PairingUserBrand, PairingUserEvent:
		return true
	}
	return false
}

// Method identifies how a compatibility score was produced.
type Method string

const (
	// MethodClassical is the baseline vector similarity path.
	MethodClassical Method = "classical"

	// MethodHybrid blends the entangled score with the classical baseline.
	MethodHybrid Method = "hybrid"

	// MethodEntangled is the pure alternative score, reported in the
	// breakdown when the hybrid path runs.
	MethodEntangled Method = "entangled"
)

// Snapshot is an immutable capture of one entity's vectors. Snapshots are
// replaced wholesale when inputs change, never patched.
type Snapshot struct {
	// ID is the privacy-scoped entity identifier.
	ID string `json:"id"`

	// Kind is the entity kind.
	Kind Kind `json:"kind"`

	// Personality is the entity's personality vector, if any.
	Personality vector.Vector `json:"personality,omitempty"`

	// Vibe is the compiled vibe vector used for similarity.
	Vibe vector.Vector `json:"vibe,omitempty"`

	// Location holds resolved coordinate dimensions, if available.
	Location vector.Vector `json:"location,omitempty"`

	// Timing holds availability/timing dimensions, if available.
	Timing vector.Vector `json:"timing,omitempty"`

	// TimingFlexibility in [0,1] relaxes timing mismatch; 0 is strict.
	TimingFlexibility float64 `json:"timing_flexibility,omitempty"`

	// CapturedAt is when the snapshot was assembled.
	CapturedAt time.Time `json:"captured_at"`
}

// Result is an immutable compatibility outcome.
type Result struct {
	// Score is the final compatibility in [0,1].
	Score float64 `json:"score"`

	// Method is the scoring path that produced the score.
	Method Method `json:"method"`

	// Breakdown holds the weighted sub-scores that fed the final score.
	Breakdown map[string]float64 `json:"breakdown"`

	// ComputedAt is when the score was computed.
	ComputedAt time.Time `json:"computed_at"`
}
