// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package decoherence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/kindredapp/resonance/internal/clock"
	"github.com/kindredapp/resonance/internal/metrics"
	"github.com/kindredapp/resonance/internal/store"
)

// keyPrefix namespaces pattern records in the shared KV store. Keys carry
// privacy-scoped actor ids only.
const keyPrefix = "decoherence:"

// DefaultQueueSize bounds the number of pending observations. Past this,
// new observations are dropped: tracking prioritizes availability over
// completeness and must never block the caller's primary action.
const DefaultQueueSize = 1024

// pendingObservation is one queued, not-yet-applied observation.
type pendingObservation struct {
	actorID string
	factor  float64
	at      time.Time
}

// Tracker records decoherence observations per actor and derives drift
// rate, stability, behavior phase, and temporal bucket averages.
//
// Recording is fire-and-forget: Record enqueues and returns immediately,
// and a single supervised worker (Serve) applies observations. Observations
// for one actor are additionally serialized by a per-actor lock so the rate
// calculation always sees the immediately prior entry.
type Tracker struct {
	kv     store.KV
	clk    clock.Clock
	logger zerolog.Logger

	queue chan pendingObservation

	lockMu     sync.Mutex
	actorLocks map[string]*sync.Mutex
}

// NewTracker creates a tracker backed by kv. A nil clk defaults to the
// system clock; queueSize <= 0 defaults to DefaultQueueSize.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTracker(kv store.KV, clk clock.Clock, queueSize int, logger zerolog.Logger) *Tracker {
	if clk == nil {
		clk = clock.System{}
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Tracker{
		kv:         kv,
		clk:        clk,
		logger:     logger.With().Str("component", "decoherence").Logger(),
		queue:      make(chan pendingObservation, queueSize),
		actorLocks: make(map[string]*sync.Mutex),
	}
}

// Record enqueues an observation for actorID. It never blocks and never
// fails the caller: with a full queue the observation is dropped and
// counted.
func (t *Tracker) Record(actorID string, factor float64) {
	if actorID == "" {
		metrics.ObservationsDropped.WithLabelValues("invalid").Inc()
		return
	}

	obs := pendingObservation{actorID: actorID, factor: factor, at: t.clk.Now()}
	select {
	case t.queue <- obs:
		metrics.ObservationsRecorded.Inc()
		metrics.ObservationQueueDepth.Set(float64(len(t.queue)))
	default:
		metrics.ObservationsDropped.WithLabelValues("queue_full").Inc()
		t.logger.Warn().
			Str("actor_id", actorID).
			Msg("observation queue full, dropping observation")
	}
}

// Serve drains the observation queue until ctx is canceled. It implements
// suture.Service and returns ctx.Err() on shutdown.
func (t *Tracker) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case obs := <-t.queue:
			metrics.ObservationQueueDepth.Set(float64(len(t.queue)))
			t.apply(ctx, obs)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (t *Tracker) String() string {
	return "decoherence-tracker"
}

// apply loads, extends, and persists one actor's pattern. Failures are
// logged and the update skipped; apply never propagates an error.
func (t *Tracker) apply(ctx context.Context, obs pendingObservation) {
	lock := t.actorLock(obs.actorID)
	lock.Lock()
	defer lock.Unlock()

	pattern, err := t.load(ctx, obs.actorID)
	if err != nil {
		metrics.ObservationsDropped.WithLabelValues("store_error").Inc()
		t.logger.Error().Err(err).
			Str("actor_id", obs.actorID).
			Msg("failed to load pattern, skipping observation")
		return
	}
	if pattern == nil {
		pattern = NewPattern(obs.actorID)
	}

	pattern.Append(obs.at, obs.factor)

	if err := t.save(ctx, pattern); err != nil {
		metrics.ObservationsDropped.WithLabelValues("store_error").Inc()
		t.logger.Error().Err(err).
			Str("actor_id", obs.actorID).
			Msg("failed to persist pattern, observation lost")
		return
	}

	t.logger.Debug().
		Str("actor_id", obs.actorID).
		Float64("factor", obs.factor).
		Float64("rate", pattern.Rate).
		Float64("stability", pattern.Stability).
		Str("phase", string(pattern.Phase)).
		Msg("observation applied")
}

// Pattern returns the actor's decoherence pattern, or (nil, false) when no
// observation has been recorded. Store errors also surface as absent.
func (t *Tracker) Pattern(ctx context.Context, actorID string) (*Pattern, bool) {
	pattern, err := t.load(ctx, actorID)
	if err != nil {
		t.logger.Error().Err(err).Str("actor_id", actorID).Msg("failed to load pattern")
		return nil, false
	}
	if pattern == nil {
		return nil, false
	}
	return pattern, true
}

// BehaviorPhase returns the actor's current behavior phase, or
// (_, false) when the actor has no recorded pattern.
func (t *Tracker) BehaviorPhase(ctx context.Context, actorID string) (Phase, bool) {
	pattern, ok := t.Pattern(ctx, actorID)
	if !ok {
		return "", false
	}
	return pattern.Phase, true
}

// Clear erases the actor's pattern. This is the only way a timeline is ever
// removed, reserved for explicit privacy-control requests.
func (t *Tracker) Clear(ctx context.Context, actorID string) error {
	if err := t.kv.Delete(ctx, keyPrefix+actorID); err != nil {
		return fmt.Errorf("clear pattern for %s: %w", actorID, err)
	}

	t.lockMu.Lock()
	delete(t.actorLocks, actorID)
	t.lockMu.Unlock()

	t.logger.Info().Str("actor_id", actorID).Msg("decoherence pattern erased")
	return nil
}

// load fetches a pattern; (nil, nil) means absent.
func (t *Tracker) load(ctx context.Context, actorID string) (*Pattern, error) {
	data, err := t.kv.Get(ctx, keyPrefix+actorID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load pattern for %s: %w", actorID, err)
	}

	var pattern Pattern
	if err := json.Unmarshal(data, &pattern); err != nil {
		return nil, fmt.Errorf("decode pattern for %s: %w", actorID, err)
	}
	return &pattern, nil
}

// save persists a pattern.
func (t *Tracker) save(ctx context.Context, pattern *Pattern) error {
	data, err := json.Marshal(pattern)
	if err != nil {
		return fmt.Errorf("encode pattern for %s: %w", pattern.ActorID, err)
	}
	return t.kv.Put(ctx, keyPrefix+pattern.ActorID, data)
}

// actorLock returns the serialization lock for one actor, creating it on
// first use.
func (t *Tracker) actorLock(actorID string) *sync.Mutex {
	t.lockMu.Lock()
	defer t.lockMu.Unlock()

	lock, ok := t.actorLocks[actorID]
	if !ok {
		lock = &sync.Mutex{}
		t.actorLocks[actorID] = lock
	}
	return lock
}
