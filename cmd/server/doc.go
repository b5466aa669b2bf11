// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

// Command server runs the Resonance vibe compatibility service: the
// hybrid scoring engine, the decoherence tracker, the personality
// classifier, and the privacy anonymizer behind one HTTP API, supervised
// by a suture tree.
package main
