// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

// Package personality classifies incoming personality deltas into core,
// context, or resist verdicts, detects long-running life-phase
// transitions from delta history, and maintains the append-only phase
// record for each actor.
package personality
