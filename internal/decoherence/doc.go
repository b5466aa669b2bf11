// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

// Package decoherence tracks how fast and how stably each actor's vibe
// vector drifts over time.
//
// Every observation appends to a per-actor timeline and recomputes three
// derived views: the per-hour drift rate (from the two latest entries),
// stability (one minus the variance of all factors), and a behavior phase
// classifying the actor's current regime (exploration, settling, settled).
// Observations are also bucketed by time of day, weekday, and season to
// expose temporal rhythm.
//
// The whole package is best-effort by contract: recording never blocks or
// fails the caller, and persistence errors degrade to a skipped update.
package decoherence
