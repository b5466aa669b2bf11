// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package privacy

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kindredapp/resonance/internal/logging"
	"github.com/kindredapp/resonance/internal/metrics"
	"github.com/kindredapp/resonance/internal/vector"
)

// Context is the sharing context a projection is produced for.
type Context string

const (
	// ContextPublic shares the exact state.
	ContextPublic Context = "public"

	// ContextLimited shares a noised state that preserves shape but not
	// exact values.
	ContextLimited Context = "limited"

	// ContextPrivate exposes topology only and is never shareable.
	ContextPrivate Context = "private"

	// ContextAnonymous shares a noised state under a synthetic identity.
	ContextAnonymous Context = "anonymous"
)

// Valid reports whether c names a known sharing context.
func (c Context) Valid() bool {
	switch c {
	case ContextPublic, ContextLimited, ContextPrivate, ContextAnonymous:
		return true
	}
	return false
}

// CanShare reports whether projections built for this context may leave
// the service. Only the private context withholds sharing.
func (c Context) CanShare() bool {
	return c.Valid() && c != ContextPrivate
}

// limitedNoiseFraction bounds per-dimension noise relative to the
// dimension's magnitude under the limited context.
const limitedNoiseFraction = 0.05

// Projection is a context-appropriate view of an actor's state. The
// source state is never mutated; every projection is an independent copy.
type Projection struct {
	// ActorID is the identity the projection is shared under. It is a
	// synthetic identifier in the anonymous context and empty in the
	// private context.
	ActorID string `json:"actor_id,omitempty"`

	// Context names the sharing context the projection was built for.
	Context Context `json:"context"`

	// State holds the projected vector. Nil in the private context.
	State vector.Vector `json:"state,omitempty"`

	// Topology names the state's dimensions without values. Only set in
	// the private context.
	Topology []string `json:"topology,omitempty"`

	// Shareable reports whether the projection may leave the service.
	Shareable bool `json:"shareable"`
}

// Anonymizer produces privacy projections of actor state.
type Anonymizer struct {
	logger zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAnonymizer creates an anonymizer seeded from the given source.
func NewAnonymizer(seed int64) *Anonymizer {
	return &Anonymizer{
		logger: logging.With().Str("component", "privacy").Logger(),
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // not used for secrets
	}
}

// Project returns a projection of the actor's state appropriate for the
// given context. The input vector is never modified.
func (a *Anonymizer) Project(actorID string, state vector.Vector, ctx Context) (Projection, error) {
	if !ctx.Valid() {
		return Projection{}, fmt.Errorf("unknown privacy context %q", ctx)
	}
	metrics.Projections.WithLabelValues(string(ctx)).Inc()

	switch ctx {
	case ContextPublic:
		return Projection{
			ActorID:   actorID,
			Context:   ctx,
			State:     state.Clone(),
			Shareable: ctx.CanShare(),
		}, nil

	case ContextLimited:
		return Projection{
			ActorID:   actorID,
			Context:   ctx,
			State:     a.noised(state),
			Shareable: ctx.CanShare(),
		}, nil

	case ContextPrivate:
		return Projection{
			Context:   ctx,
			Topology:  state.Dimensions(),
			Shareable: ctx.CanShare(),
		}, nil

	default: // ContextAnonymous
		return Projection{
			ActorID:   uuid.NewString(),
			Context:   ctx,
			State:     a.noised(state),
			Shareable: ctx.CanShare(),
		}, nil
	}
}

// noised returns a copy of v with each dimension perturbed by up to
// limitedNoiseFraction of its own magnitude. The sign of every dimension
// is preserved so the projection keeps the state's shape.
func (a *Anonymizer) noised(v vector.Vector) vector.Vector {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := vector.Vector{}
	for dim, val := range v {
		noise := (a.rng.Float64()*2 - 1) * limitedNoiseFraction * math.Abs(val)
		projected := val + noise
		if !sameSign(projected, val) {
			projected = val
		}
		out[dim] = projected
	}
	return out
}

func sameSign(a, b float64) bool {
	return (a >= 0) == (b >= 0)
}
