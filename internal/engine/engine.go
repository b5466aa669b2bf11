// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/kindredapp/resonance/internal/clock"
	"github.com/kindredapp/resonance/internal/compatcache"
	"github.com/kindredapp/resonance/internal/entangle"
	"github.com/kindredapp/resonance/internal/flags"
	"github.com/kindredapp/resonance/internal/logging"
	"github.com/kindredapp/resonance/internal/metrics"
	"github.com/kindredapp/resonance/internal/vector"
)

var errInsufficientContext = errors.New("insufficient context for entangled scoring")

// Engine is the hybrid scoring coordinator. It computes compatibility
// between two entity snapshots, blending the entangled alternative with
// the classical baseline when the alternative is enabled and context
// permits, and always degrades safely instead of failing the caller.
type Engine struct {
	cfg     Config
	calc    *vector.Calculator
	flagSrc flags.Source
	bonus   entangle.BonusProvider
	clk     clock.Clock
	logger  zerolog.Logger

	profiles  ProfileProvider
	vibes     VibeCompiler
	locations LocationSource

	entityCache *compatcache.Cache[Snapshot]
	pairCache   *compatcache.Cache[Result]
	breaker     *gobreaker.CircuitBreaker[float64]
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithBonusProvider attaches a topological bonus source.
func WithBonusProvider(p entangle.BonusProvider) Option {
	return func(e *Engine) { e.bonus = p }
}

// WithProviders attaches the snapshot-resolution collaborators.
func WithProviders(profiles ProfileProvider, vibes VibeCompiler, locations LocationSource) Option {
	return func(e *Engine) {
		e.profiles = profiles
		e.vibes = vibes
		e.locations = locations
	}
}

// New creates a scoring engine. The configuration must already be
// validated.
func New(cfg Config, flagSrc flags.Source, clk clock.Clock, opts ...Option) *Engine {
	e := &Engine{
		cfg:         cfg,
		calc:        vector.NewCalculator(),
		flagSrc:     flagSrc,
		clk:         clk,
		logger:      logging.With().Str("component", "engine").Logger(),
		entityCache: compatcache.New[Snapshot](cfg.EntityMaxSize, cfg.EntityTTL, clk, "entity"),
		pairCache:   compatcache.New[Result](cfg.PairMaxSize, cfg.PairTTL, clk, "pair"),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.breaker = gobreaker.NewCircuitBreaker[float64](gobreaker.Settings{
		Name:        "entangled-scoring",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.Set(breakerStateValue(to))
			e.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})
	return e
}

// ComputeCompatibility scores two entity snapshots for the given pairing
// domain. It never returns an error: internal failures degrade to the
// classical baseline, and when even that input is unusable the neutral
// score is returned with a logged diagnostic.
func (e *Engine) ComputeCompatibility(ctx context.Context, a, b Snapshot, pairing Pairing) Result {
	start := time.Now()
	key := compatcache.PairKey(a.ID, b.ID, string(pairing))

	if cached, ok := e.pairCache.Get(key); ok {
		metrics.CompatibilityRequests.WithLabelValues(string(pairing), string(cached.Method)).Inc()
		return cached
	}

	result := e.compute(ctx, a, b, pairing)

	if a.ID != "" && b.ID != "" {
		e.pairCache.Set(key, result)
	}
	metrics.CompatibilityRequests.WithLabelValues(string(pairing), string(result.Method)).Inc()
	metrics.CompatibilityDuration.Observe(time.Since(start).Seconds())
	return result
}

func (e *Engine) compute(ctx context.Context, a, b Snapshot, pairing Pairing) Result {
	breakdown := map[string]float64{}

	classical, ok := e.classical(a, b, breakdown)
	if !ok {
		e.logger.Warn().
			Str("pairing", string(pairing)).
			Str("entity_a", a.ID).
			Str("entity_b", b.ID).
			Msg("No usable vectors, returning neutral score")
		return Result{
			Score:      e.cfg.NeutralScore,
			Method:     MethodClassical,
			Breakdown:  map[string]float64{"neutral": e.cfg.NeutralScore},
			ComputedAt: e.clk.Now(),
		}
	}

	final := classical
	method := MethodClassical

	if alt, err := e.alternative(ctx, a, b, pairing); err == nil {
		breakdown[string(MethodEntangled)] = alt
		final = e.cfg.AlternativeWeight*alt + e.cfg.ClassicalWeight*classical
		method = MethodHybrid
	}

	if e.bonus != nil {
		if bonus, err := e.bonus.Bonus(ctx, a.ID, b.ID); err == nil && bonus != 0 {
			breakdown["bonus"] = bonus * e.cfg.BonusScale
			final += bonus * e.cfg.BonusScale
		} else if err != nil && !errors.Is(err, entangle.ErrNoFingerprint) {
			e.logger.Debug().Err(err).Msg("Topological bonus unavailable")
		}
	}

	return Result{
		Score:      vector.Clamp01(final),
		Method:     method,
		Breakdown:  breakdown,
		ComputedAt: e.clk.Now(),
	}
}

// classical computes the baseline score. When both snapshots carry
// location or timing context, the multi-factor combination replaces the
// vibe-only term so context is not double counted. Returns ok=false when
// neither snapshot contributes a usable vibe vector.
func (e *Engine) classical(a, b Snapshot, breakdown map[string]float64) (float64, bool) {
	if a.Vibe.IsZero() && b.Vibe.IsZero() {
		return 0, false
	}

	vibe := e.calc.Similarity(a.Vibe, b.Vibe)
	breakdown["vibe"] = vibe

	hasLocation := !a.Location.IsZero() && !b.Location.IsZero()
	hasTiming := len(a.Timing) > 0 && len(b.Timing) > 0
	if !hasLocation && !hasTiming {
		breakdown[string(MethodClassical)] = vibe
		return vibe, true
	}

	scores := map[string]float64{"vibe": vibe}
	weights := map[string]float64{"vibe": e.cfg.VibeWeight}
	if hasLocation {
		loc := e.calc.LocationCompatibility(a.Location, b.Location)
		scores["location"] = loc
		weights["location"] = e.cfg.LocationWeight
		breakdown["location"] = loc
	}
	if hasTiming {
		flex := (a.TimingFlexibility + b.TimingFlexibility) / 2
		timing := e.calc.TimingCompatibility(a.Timing, b.Timing, flex)
		scores["timing"] = timing
		weights["timing"] = e.cfg.TimingWeight
		breakdown["timing"] = timing
	}

	combined := e.calc.WeightedAggregate(scores, weights)
	breakdown[string(MethodClassical)] = combined
	return combined, true
}

// alternative runs the entangled scoring path behind the feature flag,
// the context-sufficiency gate, the circuit breaker, and a timeout. Every
// failure mode maps to a fallback reason counter and a classical result.
func (e *Engine) alternative(ctx context.Context, a, b Snapshot, pairing Pairing) (float64, error) {
	if !e.flagSrc.IsEnabled(ctx, e.cfg.AlternativeFlag, a.ID, e.cfg.AlternativeDefault) {
		metrics.AlternativeFallbacks.WithLabelValues("disabled").Inc()
		return 0, errInsufficientContext
	}
	if a.Vibe.IsZero() || b.Vibe.IsZero() || a.Location.IsZero() || b.Location.IsZero() {
		metrics.AlternativeFallbacks.WithLabelValues("insufficient_context").Inc()
		return 0, errInsufficientContext
	}

	score, err := e.breaker.Execute(func() (float64, error) {
		return e.entangledScore(ctx, a, b)
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.AlternativeFallbacks.WithLabelValues("breaker_open").Inc()
		case errors.Is(err, context.DeadlineExceeded):
			metrics.AlternativeFallbacks.WithLabelValues("timeout").Inc()
		default:
			metrics.AlternativeFallbacks.WithLabelValues("error").Inc()
		}
		e.logger.Debug().
			Err(err).
			Str("pairing", string(pairing)).
			Msg("Entangled scoring fell back to classical")
		return 0, err
	}
	return score, nil
}

// entangledScore composes each entity's joint state and measures their
// fidelity, bounded by the configured timeout.
func (e *Engine) entangledScore(ctx context.Context, a, b Snapshot) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.AlternativeTimeout)
	defer cancel()

	type outcome struct {
		score float64
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		stateA, err := entangle.Compose(a.Vibe, a.Location, a.Timing)
		if err != nil {
			done <- outcome{err: fmt.Errorf("compose state for %s: %w", a.ID, err)}
			return
		}
		stateB, err := entangle.Compose(b.Vibe, b.Location, b.Timing)
		if err != nil {
			done <- outcome{err: fmt.Errorf("compose state for %s: %w", b.ID, err)}
			return
		}
		done <- outcome{score: stateA.Fidelity(stateB)}
	}()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case out := <-done:
		return out.score, out.err
	}
}

// Resolve returns the entity's snapshot, serving from the entity cache
// when fresh and otherwise assembling one from the profile, vibe, and
// location collaborators.
func (e *Engine) Resolve(ctx context.Context, entityID string, kind Kind) (Snapshot, error) {
	if e.profiles == nil || e.vibes == nil {
		return Snapshot{}, errors.New("snapshot resolution not configured")
	}

	key := compatcache.EntityKey(entityID)
	if snap, ok := e.entityCache.Get(key); ok {
		return snap, nil
	}

	personality, found, err := e.profiles.CurrentPersonality(ctx, entityID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("resolve personality for %s: %w", entityID, err)
	}
	if !found {
		personality = vector.Vector{}
	}

	vibe, err := e.vibes.CompileVibe(ctx, entityID, personality)
	if err != nil {
		return Snapshot{}, fmt.Errorf("compile vibe for %s: %w", entityID, err)
	}

	snap := Snapshot{
		ID:          entityID,
		Kind:        kind,
		Personality: personality,
		Vibe:        vibe,
		CapturedAt:  e.clk.Now(),
	}
	if e.locations != nil {
		if loc, ok, err := e.locations.Location(ctx, entityID); err == nil && ok {
			snap.Location = loc
		}
	}

	e.entityCache.Set(key, snap)
	return snap, nil
}

// InvalidateEntity drops the entity's cached snapshot.
func (e *Engine) InvalidateEntity(entityID string) {
	e.entityCache.Delete(compatcache.EntityKey(entityID))
}

// Sweep purges expired entries from both caches.
func (e *Engine) Sweep() {
	e.entityCache.Sweep()
	e.pairCache.Sweep()
}

// CacheStats returns current entity and pair cache counters.
func (e *Engine) CacheStats() (entity, pair compatcache.Stats) {
	return e.entityCache.GetStats(), e.pairCache.GetStats()
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 2
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 0
	}
}
