// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

// Package store defines the persistence boundary for durable engine state
// (decoherence patterns, personality states) and provides a BadgerDB
// implementation plus an in-memory fake honoring the same contract.
//
// Keys are always privacy-scoped actor ids composed with a type prefix;
// never a raw user id. Values are opaque to this package.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value. Callers surface
// it to the engine as "absent", never as a failure.
var ErrNotFound = errors.New("store: key not found")

// KV is the key-value persistence contract the engine depends on.
// Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any prior value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases underlying resources.
	Close() error
}
