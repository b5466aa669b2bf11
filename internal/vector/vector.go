// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package vector

import (
	"math"
	"sort"
)

// Vector is a dimensional vibe vector: a mapping of fixed named dimensions
// (e.g. "energy", "novelty", "warmth") to real-valued affinities.
//
// Vectors are open-shaped: an unrecognized or missing dimension contributes
// zero to every computation and is never an error. A nil Vector behaves like
// an empty one.
type Vector map[string]float64

// Get returns the value for a dimension, or zero if absent.
func (v Vector) Get(dim string) float64 {
	if v == nil {
		return 0
	}
	return v[dim]
}

// Clone returns an independent copy of the vector.
// Clone of a nil vector returns an empty, non-nil vector.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for dim, val := range v {
		out[dim] = val
	}
	return out
}

// Magnitude returns the Euclidean norm of the vector.
func (v Vector) Magnitude() float64 {
	var sum float64
	for _, val := range v {
		sum += val * val
	}
	return math.Sqrt(sum)
}

// IsZero reports whether the vector has no non-zero dimension.
func (v Vector) IsZero() bool {
	for _, val := range v {
		if val != 0 {
			return false
		}
	}
	return true
}

// Dimensions returns the vector's dimension names in sorted order.
// Sorted output keeps derived composite states and cache keys deterministic.
func (v Vector) Dimensions() []string {
	dims := make([]string, 0, len(v))
	for dim := range v {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	return dims
}

// Union returns the sorted union of both vectors' dimension names.
func Union(a, b Vector) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for dim := range a {
		seen[dim] = struct{}{}
	}
	for dim := range b {
		seen[dim] = struct{}{}
	}

	dims := make([]string, 0, len(seen))
	for dim := range seen {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	return dims
}

// Clamp01 clamps x to [0, 1], guarding against floating-point drift.
func Clamp01(x float64) float64 {
	switch {
	case x < 0 || math.IsNaN(x):
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}

// Clamp clamps x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	switch {
	case x < lo || math.IsNaN(x):
		return lo
	case x > hi:
		return hi
	default:
		return x
	}
}
