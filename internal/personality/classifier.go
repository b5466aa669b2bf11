// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package personality

import (
	"github.com/rs/zerolog"

	"github.com/kindredapp/resonance/internal/logging"
	"github.com/kindredapp/resonance/internal/metrics"
	"github.com/kindredapp/resonance/internal/vector"
)

const (
	// lowMagnitudeThreshold marks deltas small enough to fold into the
	// active layer without further scrutiny.
	lowMagnitudeThreshold = 0.15

	// peerResistThreshold marks peer-sourced deltas large enough to
	// reject as outside pressure.
	peerResistThreshold = 0.5

	// transitionAgreementFraction is the minimum fraction of dimensions
	// that must agree in sign with the active transition's direction for
	// a large delta to reach the core.
	transitionAgreementFraction = 0.6
)

// Classifier decides whether personality deltas reach the durable core,
// the active context layer, or are rejected.
type Classifier struct {
	logger zerolog.Logger
}

// NewClassifier creates a classifier with a component-scoped logger.
func NewClassifier() *Classifier {
	return &Classifier{
		logger: logging.With().Str("component", "personality").Logger(),
	}
}

// Classify returns the verdict for a delta against the given state. It
// never mutates the state; use Apply to materialize the verdict.
func (c *Classifier) Classify(state *State, delta Delta) Verdict {
	verdict := c.classify(state, delta)
	metrics.ClassifierVerdicts.WithLabelValues(string(delta.Source), string(verdict)).Inc()
	return verdict
}

func (c *Classifier) classify(state *State, delta Delta) Verdict {
	mag := delta.Magnitude()

	// Small drift folds into wherever the actor currently is.
	if mag < lowMagnitudeThreshold {
		if state.ActiveContext != "" {
			return VerdictContext
		}
		return VerdictCore
	}

	// Large peer-sourced deltas are social pressure, not the actor.
	if delta.Source == SourcePeer && mag > peerResistThreshold {
		return VerdictResist
	}

	// Deliberate user action is authentic by definition.
	if delta.Source == SourceUserAction {
		if state.ActiveContext != "" {
			return VerdictContext
		}
		return VerdictCore
	}

	// A large passive delta reaches the core only when it moves in the
	// same direction as an active transition.
	if state.Transition != nil && directionAgreement(delta.Dimensions, state.Transition.Direction) >= transitionAgreementFraction {
		return VerdictCore
	}
	if state.ActiveContext != "" {
		return VerdictContext
	}
	return VerdictResist
}

// Apply materializes a verdict: core verdicts add the delta to the core
// vector, context verdicts add it to the active context vector, resist
// verdicts leave the state untouched.
func (c *Classifier) Apply(state *State, delta Delta, verdict Verdict) {
	switch verdict {
	case VerdictCore:
		addInto(state.Core, delta.Dimensions)
	case VerdictContext:
		addInto(state.activeVector(), delta.Dimensions)
	case VerdictResist:
		c.logger.Debug().
			Str("actor_id", state.ActorID).
			Str("source", string(delta.Source)).
			Float64("magnitude", delta.Magnitude()).
			Msg("Delta resisted")
		return
	}
	state.UpdatedAt = delta.At
}

// directionAgreement returns the fraction of dimensions shared between
// the delta and the transition direction whose signs match. Dimensions
// present in only one of the two vectors are ignored; with no shared
// dimensions the delta says nothing about the transition, so the
// agreement is 0.
func directionAgreement(delta, direction vector.Vector) float64 {
	shared := 0
	agree := 0
	for dim, v := range delta {
		if v == 0 {
			continue
		}
		d, ok := direction[dim]
		if !ok || d == 0 {
			continue
		}
		shared++
		if sameSign(v, d) {
			agree++
		}
	}
	if shared == 0 {
		return 0
	}
	return float64(agree) / float64(shared)
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func addInto(dst, src vector.Vector) {
	for dim, v := range src {
		dst[dim] += v
	}
}
