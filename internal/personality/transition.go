// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package personality

import (
	"fmt"
	"strings"
	"time"

	"github.com/kindredapp/resonance/internal/metrics"
	"github.com/kindredapp/resonance/internal/vector"
)

const (
	// minTransitionDeltas is the minimum number of recent deltas needed
	// before a transition can be considered.
	minTransitionDeltas = 5

	// transitionWindow bounds how far back deltas count toward detection.
	transitionWindow = 14 * 24 * time.Hour

	// authenticityThreshold is the minimum authenticity to instantiate a
	// transition.
	authenticityThreshold = 0.7

	// consistencyThreshold is the minimum consistency to instantiate a
	// transition.
	consistencyThreshold = 0.6

	dominantDimensionCount = 3
)

// DetectTransition examines the recent delta history and instantiates a
// transition when a sustained, consistent, authentic-looking shift is
// present. It returns nil when no transition qualifies. priorAuthenticity
// carries forward the authenticity of the actor's previous transition
// (use 0.5 when there is none).
func DetectTransition(deltas []Delta, now time.Time, priorAuthenticity float64) *Transition {
	recent := deltas[:0:0]
	cutoff := now.Add(-transitionWindow)
	for _, d := range deltas {
		if !d.At.Before(cutoff) {
			recent = append(recent, d)
		}
	}
	if len(recent) < minTransitionDeltas {
		return nil
	}

	aggregate := aggregateMean(recent)
	if aggregate.IsZero() {
		return nil
	}

	windowDays := transitionWindow.Hours() / 24
	velocity := aggregate.Magnitude() / windowDays
	consistency := signConsistency(recent, aggregate)
	authenticity := vector.Clamp01(
		0.4*(1-vector.Clamp01(velocity)) + 0.4*consistency + 0.2*priorAuthenticity,
	)

	if authenticity < authenticityThreshold || consistency < consistencyThreshold {
		return nil
	}

	direction := vector.Vector{}
	for dim, v := range aggregate {
		switch {
		case v > 0:
			direction[dim] = 1
		case v < 0:
			direction[dim] = -1
		}
	}

	metrics.TransitionsDetected.Inc()
	return &Transition{
		StartedAt:    now,
		Direction:    direction,
		Velocity:     velocity,
		Consistency:  consistency,
		Authenticity: authenticity,
		Triggers:     dominantDimensions(aggregate, dominantDimensionCount),
	}
}

// CompleteTransition closes the actor's current life phase and opens a new
// one with the given core vector. The closed phase records an end reason
// derived from the transition's triggers; both entries are appended without
// rewriting existing history. The transition itself is cleared.
func CompleteTransition(state *State, newCore vector.Vector, now time.Time) {
	tr := state.Transition
	if tr == nil {
		return
	}

	reason := "transition completed"
	if len(tr.Triggers) > 0 {
		reason = fmt.Sprintf("transition completed: %s", strings.Join(tr.Triggers, ", "))
	}

	if n := len(state.Phases); n > 0 && state.Phases[n-1].EndedAt.IsZero() {
		state.Phases[n-1].EndedAt = now
		state.Phases[n-1].EndReason = reason
	} else {
		// No open phase to close: record the pre-transition core as a
		// completed phase so history stays contiguous.
		state.Phases = append(state.Phases, LifePhase{
			Name:               fmt.Sprintf("phase-%d", len(state.Phases)+1),
			EndedAt:            now,
			EndReason:          reason,
			Core:               state.Core.Clone(),
			DominantDimensions: dominantDimensions(state.Core, dominantDimensionCount),
		})
	}

	state.Phases = append(state.Phases, LifePhase{
		Name:               fmt.Sprintf("phase-%d", len(state.Phases)+1),
		StartedAt:          now,
		Core:               newCore.Clone(),
		DominantDimensions: dominantDimensions(newCore, dominantDimensionCount),
	})

	state.Core = newCore.Clone()
	state.Transition = nil
	state.UpdatedAt = now
}

// aggregateMean returns the per-dimension mean across all deltas.
func aggregateMean(deltas []Delta) vector.Vector {
	sums := vector.Vector{}
	for _, d := range deltas {
		for dim, v := range d.Dimensions {
			sums[dim] += v
		}
	}
	n := float64(len(deltas))
	for dim := range sums {
		sums[dim] /= n
	}
	return sums
}

// signConsistency averages, over the aggregate's dimensions, the fraction
// of deltas whose movement on that dimension shares the aggregate's sign.
func signConsistency(deltas []Delta, aggregate vector.Vector) float64 {
	dims := aggregate.Dimensions()
	if len(dims) == 0 {
		return 0
	}
	total := 0.0
	for _, dim := range dims {
		agree := 0
		for _, d := range deltas {
			if sameSign(d.Dimensions[dim], aggregate[dim]) {
				agree++
			}
		}
		total += float64(agree) / float64(len(deltas))
	}
	return total / float64(len(dims))
}
