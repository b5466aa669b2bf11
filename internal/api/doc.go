// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

// Package api provides the HTTP surface using the chi router: scoring,
// decoherence intake and phase lookup, personality deltas, privacy
// projections, and the privacy-control erasure endpoint.
package api
