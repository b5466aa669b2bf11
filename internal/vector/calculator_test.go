// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package vector

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestSimilaritySymmetry(t *testing.T) {
	calc := NewCalculator()

	pairs := []struct {
		name string
		a, b Vector
	}{
		{"identical", Vector{"energy": 0.8, "warmth": 0.4}, Vector{"energy": 0.8, "warmth": 0.4}},
		{"overlapping", Vector{"energy": 0.9, "novelty": 0.2}, Vector{"energy": 0.3, "warmth": 0.7}},
		{"disjoint", Vector{"energy": 1.0}, Vector{"warmth": 1.0}},
		{"negative values", Vector{"energy": -0.5, "warmth": 0.3}, Vector{"energy": 0.5, "warmth": -0.3}},
		{"nil against populated", nil, Vector{"energy": 0.6}},
	}

	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			ab := calc.Similarity(tt.a, tt.b)
			ba := calc.Similarity(tt.b, tt.a)
			if !almostEqual(ab, ba) {
				t.Errorf("similarity not symmetric: ab=%v ba=%v", ab, ba)
			}
		})
	}
}

func TestSimilarityBounds(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name string
		a, b Vector
		want float64
		// exact indicates the score must equal want rather than just be bounded
		exact bool
	}{
		{"identical unit vectors", Vector{"energy": 1.0}, Vector{"energy": 1.0}, 1.0, true},
		{"identical scaled", Vector{"energy": 0.5, "warmth": 0.5}, Vector{"energy": 1.0, "warmth": 1.0}, 1.0, true},
		{"disjoint dimensions", Vector{"energy": 1.0}, Vector{"warmth": 1.0}, 0.0, true},
		{"empty both", Vector{}, Vector{}, 0.0, true},
		{"nil both", nil, nil, 0.0, true},
		{"zero vector", Vector{"energy": 0.0}, Vector{"energy": 1.0}, 0.0, true},
		{"opposite sign", Vector{"energy": 1.0}, Vector{"energy": -1.0}, 1.0, true},
		{"large values", Vector{"energy": 1e9, "warmth": -1e9}, Vector{"energy": 1e-9}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Similarity(tt.a, tt.b)
			if got < 0 || got > 1 {
				t.Fatalf("similarity out of bounds: %v", got)
			}
			if tt.exact && !almostEqual(got, tt.want) {
				t.Errorf("similarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimilarityOrthogonalIsHalfwayFree(t *testing.T) {
	calc := NewCalculator()

	// 45-degree vectors: cosine is sqrt(2)/2, squared is 0.5.
	got := calc.Similarity(Vector{"x": 1}, Vector{"x": 1, "y": 1})
	if !almostEqual(got, 0.5) {
		t.Errorf("similarity = %v, want 0.5", got)
	}
}

func TestLocationCompatibility(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{"same point", Vector{"lat": 0.2, "lon": 0.4}, Vector{"lat": 0.2, "lon": 0.4}, 1.0},
		{"half unit apart", Vector{"lat": 0.0}, Vector{"lat": 0.5}, 0.5},
		{"beyond unit distance clamps", Vector{"lat": 0.0}, Vector{"lat": 5.0}, 0.0},
		{"both absent", nil, nil, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.LocationCompatibility(tt.a, tt.b)
			if !almostEqual(got, tt.want) {
				t.Errorf("location compatibility = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimingCompatibility(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name        string
		a, b        Vector
		flexibility float64
		want        float64
	}{
		{"perfect match", Vector{"evening": 1.0}, Vector{"evening": 1.0}, 0, 1.0},
		{"full mismatch", Vector{"evening": 1.0}, Vector{"evening": 0.0}, 0, 0.0},
		{"half mismatch", Vector{"evening": 1.0, "weekend": 0.0}, Vector{"evening": 0.0, "weekend": 0.0}, 0, 0.5},
		{"full flexibility forgives", Vector{"evening": 1.0}, Vector{"evening": 0.0}, 1.0, 1.0},
		{"half flexibility halves penalty", Vector{"evening": 1.0}, Vector{"evening": 0.0}, 0.5, 0.5},
		{"flexibility clamped", Vector{"evening": 1.0}, Vector{"evening": 0.0}, 7.0, 1.0},
		{"no timing dimensions", Vector{}, Vector{}, 0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.TimingCompatibility(tt.a, tt.b, tt.flexibility)
			if !almostEqual(got, tt.want) {
				t.Errorf("timing compatibility = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeightedAggregate(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name    string
		scores  map[string]float64
		weights map[string]float64
		want    float64
	}{
		{
			name:    "normalizes weights",
			scores:  map[string]float64{"vibe": 1.0, "location": 0.0},
			weights: map[string]float64{"vibe": 5, "location": 5},
			want:    0.5,
		},
		{
			name:    "ignores non-positive weights",
			scores:  map[string]float64{"vibe": 1.0, "location": 0.0},
			weights: map[string]float64{"vibe": 1, "location": 0},
			want:    1.0,
		},
		{
			name:    "missing score contributes zero",
			scores:  map[string]float64{},
			weights: map[string]float64{"vibe": 1},
			want:    0.0,
		},
		{
			name:    "no weights degenerates to zero",
			scores:  map[string]float64{"vibe": 1.0},
			weights: map[string]float64{},
			want:    0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.WeightedAggregate(tt.scores, tt.weights)
			if !almostEqual(got, tt.want) {
				t.Errorf("aggregate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.1, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.1, 1},
		{math.NaN(), 0},
		{math.Inf(1), 1},
		{math.Inf(-1), 0},
	}

	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVectorClone(t *testing.T) {
	orig := Vector{"energy": 0.8}
	clone := orig.Clone()
	clone["energy"] = 0.1

	if orig["energy"] != 0.8 {
		t.Error("clone mutated the original vector")
	}

	var nilVec Vector
	if nilVec.Clone() == nil {
		t.Error("clone of nil vector should be non-nil")
	}
}

func TestUnionSorted(t *testing.T) {
	dims := Union(Vector{"b": 1, "a": 1}, Vector{"c": 1, "a": 1})
	want := []string{"a", "b", "c"}
	if len(dims) != len(want) {
		t.Fatalf("union = %v, want %v", dims, want)
	}
	for i := range want {
		if dims[i] != want[i] {
			t.Fatalf("union = %v, want %v", dims, want)
		}
	}
}
