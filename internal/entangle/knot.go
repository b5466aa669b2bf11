// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package entangle

import (
	"context"
	"errors"
	"math"

	"github.com/kindredapp/resonance/internal/vector"
)

// ErrNoFingerprint is returned by a FingerprintLookup when no topological
// fingerprint exists for an entity. The coordinator treats it as "bonus
// unavailable" (bonus 0), never as a scoring failure.
var ErrNoFingerprint = errors.New("entangle: no topological fingerprint")

// Fingerprint is a compact topological summary of an actor's vibe structure:
// named invariant values plus a scalar complexity measure.
type Fingerprint struct {
	// Invariants maps invariant names to their values.
	Invariants vector.Vector `json:"invariants"`

	// Complexity is a non-negative structural complexity measure.
	Complexity float64 `json:"complexity"`
}

// BonusProvider supplies the optional topological-compatibility bonus for an
// entity pair. Implementations must return a bonus in [0, 1]; any error is
// interpreted by the caller as "signal unavailable" and scored as 0.
type BonusProvider interface {
	Bonus(ctx context.Context, entityA, entityB string) (float64, error)
}

// FingerprintLookup resolves an entity's topological fingerprint.
type FingerprintLookup func(ctx context.Context, entityID string) (Fingerprint, error)

// FingerprintBonus computes the topological bonus from invariant
// fingerprints: 70% invariant similarity, 30% complexity similarity.
type FingerprintBonus struct {
	lookup FingerprintLookup
	calc   *vector.Calculator
}

// Bonus weighting between invariant-structure similarity and complexity
// similarity. Fixed policy constants, not tuning knobs.
const (
	topologyWeight   = 0.7
	complexityWeight = 0.3
)

// NewFingerprintBonus returns a BonusProvider backed by the given lookup.
func NewFingerprintBonus(lookup FingerprintLookup) *FingerprintBonus {
	return &FingerprintBonus{
		lookup: lookup,
		calc:   vector.NewCalculator(),
	}
}

// Bonus implements BonusProvider.
func (f *FingerprintBonus) Bonus(ctx context.Context, entityA, entityB string) (float64, error) {
	fpA, err := f.lookup(ctx, entityA)
	if err != nil {
		return 0, err
	}
	fpB, err := f.lookup(ctx, entityB)
	if err != nil {
		return 0, err
	}

	topoSim := f.calc.Similarity(fpA.Invariants, fpB.Invariants)
	compSim := complexitySimilarity(fpA.Complexity, fpB.Complexity)

	return vector.Clamp01(topologyWeight*topoSim + complexityWeight*compSim), nil
}

// complexitySimilarity maps the relative gap between two complexity values
// to [0, 1]; equal complexities score 1, and the score decays toward 0 as
// the larger value dominates the smaller.
func complexitySimilarity(a, b float64) float64 {
	a, b = math.Abs(a), math.Abs(b)
	max := math.Max(a, b)
	if max == 0 {
		return 1
	}
	return vector.Clamp01(1 - math.Abs(a-b)/max)
}
