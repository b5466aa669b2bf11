// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

// Package config loads the layered service configuration: struct
// defaults, then an optional YAML file, then RESONANCE_-prefixed
// environment variables.
package config
