// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package personality

import (
	"math"
	"time"

	"github.com/kindredapp/resonance/internal/vector"
)

// Source identifies where a personality delta originated.
type Source string

const (
	// SourceUserAction marks a delta caused directly by the user's own
	// action. User intent is always treated as authentic.
	SourceUserAction Source = "user_action"

	// SourcePeer marks a delta learned from peers or the social network.
	SourcePeer Source = "peer"

	// SourceServer marks a delta learned server-side from behavior.
	SourceServer Source = "server"
)

// Verdict is the classifier's decision for a delta.
type Verdict string

const (
	// VerdictCore applies the delta to the durable core vector.
	VerdictCore Verdict = "core"

	// VerdictContext applies the delta to the active transient context
	// vector only.
	VerdictContext Verdict = "context"

	// VerdictResist rejects the delta entirely.
	VerdictResist Verdict = "resist"
)

// Delta is a proposed change to an actor's personality vector.
type Delta struct {
	// Dimensions holds the per-dimension change values.
	Dimensions vector.Vector `json:"dimensions"`

	// Source is the origin of the delta.
	Source Source `json:"source"`

	// At is when the delta was observed.
	At time.Time `json:"at"`
}

// Magnitude returns the Euclidean norm of the delta.
func (d Delta) Magnitude() float64 {
	return d.Dimensions.Magnitude()
}

// Transition records a long-running life-phase shift in progress.
type Transition struct {
	// StartedAt is when the transition was instantiated.
	StartedAt time.Time `json:"started_at"`

	// Direction holds the sign (+1/-1) of the aggregate movement per
	// dimension. Dimensions with no net movement are omitted.
	Direction vector.Vector `json:"direction"`

	// Velocity is the aggregate magnitude divided by the window in days.
	Velocity float64 `json:"velocity"`

	// Consistency is the average per-dimension same-sign fraction of the
	// deltas the transition was detected from.
	Consistency float64 `json:"consistency"`

	// Authenticity scores how likely the shift reflects genuine change
	// rather than noise or outside pressure.
	Authenticity float64 `json:"authenticity"`

	// Triggers names the dimensions driving the transition.
	Triggers []string `json:"triggers"`
}

// LifePhase is one named, time-bounded epoch of an actor's core
// personality. History entries are never rewritten once appended.
type LifePhase struct {
	Name               string        `json:"name"`
	StartedAt          time.Time     `json:"started_at"`
	EndedAt            time.Time     `json:"ended_at,omitempty"`
	EndReason          string        `json:"end_reason,omitempty"`
	Core               vector.Vector `json:"core"`
	DominantDimensions []string      `json:"dominant_dimensions"`
}

// State is an actor's full personality record: the durable core vector,
// named transient context vectors, the optional in-flight transition, and
// the append-only history of completed life phases.
type State struct {
	// ActorID is the privacy-scoped actor identifier.
	ActorID string `json:"actor_id"`

	// Core is the durable personality vector. It mutates only via a
	// core classifier verdict or a completed transition.
	Core vector.Vector `json:"core"`

	// Contexts holds named transient vectors ("morning", "work", ...).
	Contexts map[string]vector.Vector `json:"contexts,omitempty"`

	// ActiveContext names the currently active context vector;
	// empty means the default (core) layer is active.
	ActiveContext string `json:"active_context,omitempty"`

	// Transition is the active life-phase transition, if any.
	Transition *Transition `json:"transition,omitempty"`

	// Phases is the append-only history of life phases.
	Phases []LifePhase `json:"phases,omitempty"`

	// UpdatedAt is the time of the last applied delta.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState returns an empty personality state for an actor.
func NewState(actorID string) *State {
	return &State{
		ActorID:  actorID,
		Core:     vector.Vector{},
		Contexts: map[string]vector.Vector{},
	}
}

// activeVector returns the vector the active layer resolves to: the active
// context vector when one is set, else the core.
func (s *State) activeVector() vector.Vector {
	if s.ActiveContext == "" {
		return s.Core
	}
	if s.Contexts == nil {
		s.Contexts = map[string]vector.Vector{}
	}
	ctx, ok := s.Contexts[s.ActiveContext]
	if !ok {
		ctx = vector.Vector{}
		s.Contexts[s.ActiveContext] = ctx
	}
	return ctx
}

// dominantDimensions returns the top-n dimension names of v by absolute
// value, largest first.
func dominantDimensions(v vector.Vector, n int) []string {
	dims := v.Dimensions()
	// Selection by absolute value; dimension counts are small.
	for i := 0; i < len(dims) && i < n; i++ {
		best := i
		for j := i + 1; j < len(dims); j++ {
			if math.Abs(v[dims[j]]) > math.Abs(v[dims[best]]) {
				best = j
			}
		}
		dims[i], dims[best] = dims[best], dims[i]
	}
	if len(dims) > n {
		dims = dims[:n]
	}
	return dims
}
