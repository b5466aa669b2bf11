// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

// Package entangle implements the alternative "entangled" scoring method:
// instead of comparing two entities dimension by dimension, it composes
// their vectors into one normalized joint state and scores the squared
// inner product (fidelity) between joint states.
//
// The package also carries the optional topological-compatibility signal,
// derived from knot-invariant fingerprints, which the scoring coordinator
// folds in as a bounded bonus term. Both signals are strictly optional:
// every failure mode here maps to "signal unavailable" in the coordinator,
// never to a failed score.
package entangle
