// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kindredapp/resonance/internal/clock"
	"github.com/kindredapp/resonance/internal/flags"
	"github.com/kindredapp/resonance/internal/vector"
)

// countingBonus counts lookups so cache idempotence is observable.
type countingBonus struct {
	calls atomic.Int64
	bonus float64
	err   error
}

func (c *countingBonus) Bonus(_ context.Context, _, _ string) (float64, error) {
	c.calls.Add(1)
	return c.bonus, c.err
}

func testSnapshot(id string, vibe vector.Vector) Snapshot {
	return Snapshot{
		ID:         id,
		Kind:       KindUser,
		Vibe:       vibe,
		CapturedAt: time.Now(),
	}
}

func newTestEngine(t *testing.T, flagValues map[string]bool, opts ...Option) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	return New(cfg, flags.NewStatic(flagValues), clock.System{}, opts...)
}

func TestComputeCompatibilityClassicalOnly(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	a := testSnapshot("a", vector.Vector{"chill": 0.8, "social": 0.4})
	b := testSnapshot("b", vector.Vector{"chill": 0.7, "social": 0.5})

	result := e.ComputeCompatibility(ctx, a, b, PairingUserSpot)
	if result.Method != MethodClassical {
		t.Errorf("Method = %q, want %q with flag off", result.Method, MethodClassical)
	}
	if result.Score < 0 || result.Score > 1 {
		t.Errorf("Score = %v, want in [0,1]", result.Score)
	}
	if result.Breakdown["vibe"] != result.Score {
		t.Errorf("Score = %v, want vibe-only score %v", result.Score, result.Breakdown["vibe"])
	}
}

func TestComputeCompatibilityFlagOffEqualsClassical(t *testing.T) {
	a := testSnapshot("a", vector.Vector{"chill": 0.8})
	a.Location = vector.Vector{"lat": 0.1, "lon": 0.2}
	b := testSnapshot("b", vector.Vector{"chill": 0.6})
	b.Location = vector.Vector{"lat": 0.1, "lon": 0.3}

	off := newTestEngine(t, map[string]bool{"entangled_scoring": false})
	resultOff := off.ComputeCompatibility(context.Background(), a, b, PairingUserSpot)

	calc := vector.NewCalculator()
	vibe := calc.Similarity(a.Vibe, b.Vibe)
	loc := calc.LocationCompatibility(a.Location, b.Location)
	cfg := DefaultConfig()
	want := calc.WeightedAggregate(
		map[string]float64{"vibe": vibe, "location": loc},
		map[string]float64{"vibe": cfg.VibeWeight, "location": cfg.LocationWeight},
	)

	if resultOff.Method != MethodClassical {
		t.Errorf("Method = %q, want %q", resultOff.Method, MethodClassical)
	}
	if resultOff.Score != want {
		t.Errorf("Score = %v, want classical %v", resultOff.Score, want)
	}
}

func TestComputeCompatibilityHybridBlend(t *testing.T) {
	e := newTestEngine(t, map[string]bool{"entangled_scoring": true})
	ctx := context.Background()

	a := testSnapshot("a", vector.Vector{"chill": 0.8, "social": 0.3})
	a.Location = vector.Vector{"lat": 0.5, "lon": 0.5}
	b := testSnapshot("b", vector.Vector{"chill": 0.6, "social": 0.5})
	b.Location = vector.Vector{"lat": 0.4, "lon": 0.6}

	result := e.ComputeCompatibility(ctx, a, b, PairingUserSpot)
	if result.Method != MethodHybrid {
		t.Fatalf("Method = %q, want %q", result.Method, MethodHybrid)
	}

	alt, ok := result.Breakdown[string(MethodEntangled)]
	if !ok {
		t.Fatal("Breakdown missing entangled sub-score")
	}
	classical := result.Breakdown[string(MethodClassical)]
	cfg := DefaultConfig()
	want := vector.Clamp01(cfg.AlternativeWeight*alt + cfg.ClassicalWeight*classical)
	if diff := result.Score - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Score = %v, want blend %v", result.Score, want)
	}
}

func TestComputeCompatibilityHybridRequiresContext(t *testing.T) {
	e := newTestEngine(t, map[string]bool{"entangled_scoring": true})

	// No location context: the entangled path must not run.
	a := testSnapshot("a", vector.Vector{"chill": 0.8})
	b := testSnapshot("b", vector.Vector{"chill": 0.6})

	result := e.ComputeCompatibility(context.Background(), a, b, PairingUserEvent)
	if result.Method != MethodClassical {
		t.Errorf("Method = %q, want %q without location context", result.Method, MethodClassical)
	}
}

func TestComputeCompatibilityNeutralFallback(t *testing.T) {
	e := newTestEngine(t, nil)

	result := e.ComputeCompatibility(context.Background(),
		testSnapshot("a", nil), testSnapshot("b", nil), PairingUserBrand)

	if result.Score != 0.5 {
		t.Errorf("Score = %v, want neutral 0.5", result.Score)
	}
	if result.Method != MethodClassical {
		t.Errorf("Method = %q, want %q", result.Method, MethodClassical)
	}
}

func TestComputeCompatibilitySymmetric(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	a := testSnapshot("a", vector.Vector{"chill": 0.8, "loud": 0.2})
	b := testSnapshot("b", vector.Vector{"chill": 0.3, "loud": 0.9})

	ab := e.ComputeCompatibility(ctx, a, b, PairingUserSpot)
	ba := e.ComputeCompatibility(ctx, b, a, PairingUserSpot)
	if ab.Score != ba.Score {
		t.Errorf("score(a,b) = %v, score(b,a) = %v, want symmetric", ab.Score, ba.Score)
	}
}

func TestComputeCompatibilityCachesPairResults(t *testing.T) {
	bonus := &countingBonus{bonus: 0.4}
	e := newTestEngine(t, nil, WithBonusProvider(bonus))
	ctx := context.Background()

	a := testSnapshot("a", vector.Vector{"chill": 0.8})
	b := testSnapshot("b", vector.Vector{"chill": 0.6})

	first := e.ComputeCompatibility(ctx, a, b, PairingUserSpot)
	second := e.ComputeCompatibility(ctx, a, b, PairingUserSpot)
	// Reversed order must hit the same symmetric cache key.
	third := e.ComputeCompatibility(ctx, b, a, PairingUserSpot)

	if got := bonus.calls.Load(); got != 1 {
		t.Errorf("bonus lookups = %d, want 1 (cached afterwards)", got)
	}
	if first.Score != second.Score || first.Score != third.Score {
		t.Errorf("cached scores differ: %v, %v, %v", first.Score, second.Score, third.Score)
	}
}

func TestComputeCompatibilityBonusIsBounded(t *testing.T) {
	bonus := &countingBonus{bonus: 1.0}
	e := newTestEngine(t, nil, WithBonusProvider(bonus))

	a := testSnapshot("a", vector.Vector{"chill": 0.8})
	b := testSnapshot("b", vector.Vector{"chill": 0.8})

	result := e.ComputeCompatibility(context.Background(), a, b, PairingUserSpot)
	if result.Score > 1 {
		t.Errorf("Score = %v, want clamped to 1", result.Score)
	}
	if result.Breakdown["bonus"] != 0.15 {
		t.Errorf("bonus contribution = %v, want 0.15", result.Breakdown["bonus"])
	}
}

func TestComputeCompatibilityBonusErrorIgnored(t *testing.T) {
	bonus := &countingBonus{err: errors.New("lookup failed")}
	e := newTestEngine(t, nil, WithBonusProvider(bonus))

	a := testSnapshot("a", vector.Vector{"chill": 0.8})
	b := testSnapshot("b", vector.Vector{"chill": 0.6})

	result := e.ComputeCompatibility(context.Background(), a, b, PairingUserSpot)
	if result.Score < 0 || result.Score > 1 {
		t.Errorf("Score = %v, want bounded despite bonus failure", result.Score)
	}
	if _, ok := result.Breakdown["bonus"]; ok {
		t.Error("Breakdown contains bonus after failed lookup")
	}
}

type staticProfiles struct {
	calls atomic.Int64
}

func (p *staticProfiles) CurrentPersonality(_ context.Context, _ string) (vector.Vector, bool, error) {
	p.calls.Add(1)
	return vector.Vector{"open": 0.7}, true, nil
}

type identityVibes struct{}

func (identityVibes) CompileVibe(_ context.Context, _ string, personality vector.Vector) (vector.Vector, error) {
	return personality.Clone(), nil
}

func TestResolveUsesEntityCache(t *testing.T) {
	profiles := &staticProfiles{}
	e := newTestEngine(t, nil, WithProviders(profiles, identityVibes{}, nil))
	ctx := context.Background()

	first, err := e.Resolve(ctx, "actor-1", KindUser)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, err := e.Resolve(ctx, "actor-1", KindUser); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if got := profiles.calls.Load(); got != 1 {
		t.Errorf("profile lookups = %d, want 1 (second resolve cached)", got)
	}
	if first.Vibe["open"] != 0.7 {
		t.Errorf("Vibe = %v, want compiled from personality", first.Vibe)
	}

	e.InvalidateEntity("actor-1")
	if _, err := e.Resolve(ctx, "actor-1", KindUser); err != nil {
		t.Fatalf("Resolve() after invalidation error = %v", err)
	}
	if got := profiles.calls.Load(); got != 2 {
		t.Errorf("profile lookups = %d, want 2 after invalidation", got)
	}
}

func TestResolveUnconfigured(t *testing.T) {
	e := newTestEngine(t, nil)
	if _, err := e.Resolve(context.Background(), "actor-1", KindUser); err == nil {
		t.Error("Resolve() without providers = nil error, want error")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(*Config) {}, false},
		{"empty flag", func(c *Config) { c.AlternativeFlag = "" }, true},
		{"blend weights off", func(c *Config) { c.AlternativeWeight = 0.9 }, true},
		{"factor weights off", func(c *Config) { c.TimingWeight = 0.5 }, true},
		{"negative bonus scale", func(c *Config) { c.BonusScale = -0.1 }, true},
		{"zero entity ttl", func(c *Config) { c.EntityTTL = 0 }, true},
		{"zero pair size", func(c *Config) { c.PairMaxSize = 0 }, true},
		{"zero breaker threshold", func(c *Config) { c.BreakerFailures = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
