// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

// Package vector provides the dimensional vibe vector type and the pure
// pairwise compatibility calculator every other engine component builds on.
//
// All calculator functions are total over arbitrary finite input: absent
// dimensions contribute zero, disjoint vectors degenerate to a score of 0,
// and every result is clamped to [0, 1] to guard against floating-point
// drift. Nothing in this package performs I/O or holds state.
package vector
