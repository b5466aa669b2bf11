// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package supervisor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kindredapp/resonance/internal/logging"
)

// Sweepable is anything with expirable entries to purge.
type Sweepable interface {
	Sweep()
}

// Sweeper periodically purges expired cache entries. It runs as a suture
// service in the data layer.
type Sweeper struct {
	target   Sweepable
	interval time.Duration
	logger   zerolog.Logger
}

// NewSweeper creates a sweeper over target firing every interval.
func NewSweeper(target Sweepable, interval time.Duration) *Sweeper {
	return &Sweeper{
		target:   target,
		interval: interval,
		logger:   logging.With().Str("component", "sweeper").Logger(),
	}
}

// Serve runs the sweep loop until the context is canceled.
func (s *Sweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.target.Sweep()
			s.logger.Debug().Msg("Cache sweep completed")
		}
	}
}

func (s *Sweeper) String() string {
	return "cache-sweeper"
}
