// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package entangle

import (
	"errors"
	"math"
	"sort"

	"github.com/kindredapp/resonance/internal/vector"
)

// ErrDegenerateState is returned when a composite state cannot be built
// because every contributing vector is empty or zero.
var ErrDegenerateState = errors.New("entangle: degenerate state, no non-zero amplitudes")

// State is a transient normalized composite of one or more entity vectors.
// It composes multiple entities' dimensions into a single joint state before
// scoring, instead of comparing the entities dimension by dimension.
//
// States are built per scoring request and discarded; they are never
// persisted or shared across goroutines.
type State struct {
	dims       []string
	amplitudes []float64
}

// Compose builds a normalized joint state from the given vectors.
//
// The state spans the sorted union of all contributing dimensions; each
// amplitude is the mean of the contributing values for that dimension,
// normalized to unit length. Returns ErrDegenerateState when no dimension
// carries a non-zero amplitude.
func Compose(vectors ...vector.Vector) (*State, error) {
	seen := make(map[string]struct{})
	for _, v := range vectors {
		for dim := range v {
			seen[dim] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil, ErrDegenerateState
	}

	dims := make([]string, 0, len(seen))
	for dim := range seen {
		dims = append(dims, dim)
	}
	sort.Strings(dims)

	amplitudes := make([]float64, len(dims))
	n := float64(len(vectors))
	for i, dim := range dims {
		var sum float64
		for _, v := range vectors {
			sum += v.Get(dim)
		}
		amplitudes[i] = sum / n
	}

	var norm float64
	for _, a := range amplitudes {
		norm += a * a
	}
	if norm == 0 {
		return nil, ErrDegenerateState
	}
	norm = math.Sqrt(norm)
	for i := range amplitudes {
		amplitudes[i] /= norm
	}

	return &State{dims: dims, amplitudes: amplitudes}, nil
}

// Dimensions returns the state's dimension names in order.
func (s *State) Dimensions() []string {
	out := make([]string, len(s.dims))
	copy(out, s.dims)
	return out
}

// Fidelity returns the squared inner product |<s|other>|^2 of two states,
// aligned by dimension name. Dimensions absent from either state contribute
// zero. The result is bounded to [0, 1].
func (s *State) Fidelity(other *State) float64 {
	if s == nil || other == nil {
		return 0
	}

	idx := make(map[string]int, len(other.dims))
	for i, dim := range other.dims {
		idx[dim] = i
	}

	var inner float64
	for i, dim := range s.dims {
		if j, ok := idx[dim]; ok {
			inner += s.amplitudes[i] * other.amplitudes[j]
		}
	}

	return vector.Clamp01(inner * inner)
}
