// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

// Package supervisor builds the suture supervision tree: a data layer
// holding the decoherence tracker and the cache sweeper, and an api layer
// holding the HTTP server. Layers restart independently on failure.
package supervisor
