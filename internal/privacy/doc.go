// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

// Package privacy projects actor state into context-appropriate views:
// exact for public sharing, noised for limited sharing, topology-only
// for private use, and noised under a synthetic identity for anonymous
// sharing. Projections are one-way; the original state cannot be
// reconstructed from a noised view.
package privacy
