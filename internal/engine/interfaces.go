// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package engine

import (
	"context"

	"github.com/kindredapp/resonance/internal/vector"
)

// ProfileProvider supplies the current personality vector for an actor.
// Absence is reported with ok=false, not an error.
type ProfileProvider interface {
	CurrentPersonality(ctx context.Context, actorID string) (vector.Vector, bool, error)
}

// VibeCompiler derives a vibe vector from an actor's personality.
type VibeCompiler interface {
	CompileVibe(ctx context.Context, actorID string, personality vector.Vector) (vector.Vector, error)
}

// LocationSource resolves coordinate dimensions for an entity, when
// available.
type LocationSource interface {
	Location(ctx context.Context, entityID string) (vector.Vector, bool, error)
}
