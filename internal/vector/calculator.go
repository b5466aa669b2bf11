// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package vector

import "math"

// Calculator computes pairwise similarity and contextual compatibility over
// dimensional vectors. All methods are pure, total, and clamp their output
// to [0, 1]; they never fail on malformed or disjoint input.
//
// The zero value is ready to use. Calculator is stateless and safe for
// concurrent use.
type Calculator struct{}

// NewCalculator returns a stateless compatibility calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Similarity returns the squared normalized inner product of a and b over
// the union of their dimensions. Absent dimensions contribute zero.
//
// The result is symmetric and bounded to [0, 1]. Vector pairs with no shared
// non-zero dimension degenerate to 0.
func (c *Calculator) Similarity(a, b Vector) float64 {
	var inner, normA, normB float64
	for _, dim := range Union(a, b) {
		va := a.Get(dim)
		vb := b.Get(dim)
		inner += va * vb
		normA += va * va
		normB += vb * vb
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	cos := inner / (math.Sqrt(normA) * math.Sqrt(normB))
	return Clamp01(cos * cos)
}

// LocationCompatibility returns 1 minus the clamped Euclidean distance
// between two normalized location vectors. Callers are expected to provide
// coordinates pre-scaled so that a distance of 1.0 means "too far to matter".
func (c *Calculator) LocationCompatibility(a, b Vector) float64 {
	var sum float64
	for _, dim := range Union(a, b) {
		d := a.Get(dim) - b.Get(dim)
		sum += d * d
	}
	return Clamp01(1 - Clamp(math.Sqrt(sum), 0, 1))
}

// TimingCompatibility returns 1 minus the averaged absolute difference
// across the union of timing dimensions, relaxed by a flexibility factor.
//
// flexibility is clamped to [0, 1]; 0 applies the full mismatch penalty and
// 1 forgives any timing mismatch entirely. Two empty timing vectors are a
// perfect match.
func (c *Calculator) TimingCompatibility(a, b Vector, flexibility float64) float64 {
	dims := Union(a, b)
	if len(dims) == 0 {
		return 1
	}

	var total float64
	for _, dim := range dims {
		total += math.Abs(a.Get(dim) - b.Get(dim))
	}
	avg := total / float64(len(dims))

	flex := Clamp01(flexibility)
	return Clamp01(1 - avg*(1-flex))
}

// WeightedAggregate combines named sub-scores by weight. Weights are
// normalized at call time so they need not sum to 1; scores missing a weight
// contribute nothing. With no positive weight the aggregate is 0.
func (c *Calculator) WeightedAggregate(scores, weights map[string]float64) float64 {
	var sum, weightSum float64
	for name, w := range weights {
		if w <= 0 {
			continue
		}
		weightSum += w
		sum += w * scores[name]
	}

	if weightSum == 0 {
		return 0
	}
	return Clamp01(sum / weightSum)
}
