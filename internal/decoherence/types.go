// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package decoherence

import (
	"time"

	"github.com/kindredapp/resonance/internal/vector"
)

// Phase classifies an actor's current stability regime.
type Phase string

const (
	// PhaseExploration marks fast-moving, unstable preferences.
	PhaseExploration Phase = "exploration"

	// PhaseSettling marks preferences converging but not yet stable.
	PhaseSettling Phase = "settling"

	// PhaseSettled marks slow-moving, highly stable preferences.
	PhaseSettled Phase = "settled"
)

// Observation is a single decoherence measurement at a point in time.
// Factor is the scalar drift from the actor's prior baseline vector,
// clamped to [0, 1]; Coherence is its complement.
type Observation struct {
	Timestamp time.Time `json:"timestamp"`
	Factor    float64   `json:"factor"`
	Coherence float64   `json:"coherence"`
}

// TemporalPatterns holds per-bucket averages of observed factors. Every
// observation lands in exactly one time-of-day bucket, one weekday bucket,
// and one season bucket.
type TemporalPatterns struct {
	TimeOfDay map[string]float64 `json:"time_of_day"`
	Weekday   map[string]float64 `json:"weekday"`
	Season    map[string]float64 `json:"season"`
}

// Pattern is the per-actor decoherence record: an append-only timeline of
// observations plus metrics derived from it. It is created on the first
// observation, only ever extended, and cleared solely by an explicit
// privacy-control request.
type Pattern struct {
	// ActorID is the privacy-scoped actor identifier.
	ActorID string `json:"actor_id"`

	// Timeline holds observations in append order.
	Timeline []Observation `json:"timeline"`

	// Rate is the per-hour change between the two latest observations,
	// clamped to [-1, 1]. Zero with fewer than two observations.
	Rate float64 `json:"rate"`

	// Stability is 1 minus the variance of all observed factors, clamped
	// to [0, 1]. Defaults to 1.0 with fewer than two observations.
	Stability float64 `json:"stability"`

	// Phase is the behavior phase derived from Rate and Stability.
	Phase Phase `json:"phase"`

	// Temporal holds the bucket averages recomputed on every append.
	Temporal TemporalPatterns `json:"temporal"`

	// LastUpdated is the timestamp of the latest applied observation.
	LastUpdated time.Time `json:"last_updated"`
}

// NewPattern returns an empty pattern for an actor. Initial stability is
// 1.0: with no evidence of drift the actor is treated as stable.
func NewPattern(actorID string) *Pattern {
	return &Pattern{
		ActorID:   actorID,
		Stability: 1.0,
		Phase:     PhaseSettled,
		Temporal: TemporalPatterns{
			TimeOfDay: map[string]float64{},
			Weekday:   map[string]float64{},
			Season:    map[string]float64{},
		},
	}
}

// Append extends the timeline with a new observation and recomputes all
// derived metrics. The factor is clamped to [0, 1].
func (p *Pattern) Append(at time.Time, factor float64) {
	factor = vector.Clamp01(factor)
	p.Timeline = append(p.Timeline, Observation{
		Timestamp: at,
		Factor:    factor,
		Coherence: 1 - factor,
	})
	p.LastUpdated = at

	p.Rate = p.computeRate()
	p.Stability = p.computeStability()
	p.Phase = detectPhase(p.Rate, p.Stability)
	p.Temporal = p.computeTemporal()
}
