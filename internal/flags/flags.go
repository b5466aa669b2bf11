// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

// Package flags defines the feature-flag lookup consumed by the scoring
// engine, plus a static map-backed source for configuration and tests.
// Flag delivery infrastructure stays an external collaborator.
package flags

import (
	"context"
	"sync"
)

// Source answers whether a feature flag is enabled for an actor. A
// source that cannot answer returns the caller's default.
type Source interface {
	IsEnabled(ctx context.Context, flag, actorID string, def bool) bool
}

// Static is a map-backed flag source. Unlisted flags resolve to the
// caller's default.
type Static struct {
	mu    sync.RWMutex
	flags map[string]bool
}

// NewStatic creates a static source from the given flag map.
func NewStatic(values map[string]bool) *Static {
	flags := make(map[string]bool, len(values))
	for k, v := range values {
		flags[k] = v
	}
	return &Static{flags: flags}
}

// IsEnabled implements Source.
func (s *Static) IsEnabled(_ context.Context, flag, _ string, def bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.flags[flag]; ok {
		return v
	}
	return def
}

// Set updates a flag value at runtime.
func (s *Static) Set(flag string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[flag] = enabled
}
