// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

// Package engine coordinates hybrid compatibility scoring. The classical
// vector baseline is always computed; the entangled alternative runs only
// when its feature flag is enabled, context suffices, and the circuit
// breaker admits it, and the two are blended 0.7/0.3. A bounded
// topological bonus may top up the blend. Scoring never fails the caller:
// every internal failure degrades to the classical score or, when no
// input is usable, to a neutral 0.5.
package engine
