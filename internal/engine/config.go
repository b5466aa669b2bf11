// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package engine

import (
	"fmt"
	"time"
)

// Config holds the scoring engine's weights, thresholds, and limits.
type Config struct {
	// AlternativeFlag names the feature flag gating the entangled path.
	AlternativeFlag string `json:"alternative_flag" koanf:"alternative_flag"`

	// AlternativeDefault is the flag default when the source cannot answer.
	AlternativeDefault bool `json:"alternative_default" koanf:"alternative_default"`

	// AlternativeTimeout bounds one entangled scoring attempt.
	AlternativeTimeout time.Duration `json:"alternative_timeout" koanf:"alternative_timeout"`

	// AlternativeWeight and ClassicalWeight blend the two paths when the
	// entangled score succeeds.
	AlternativeWeight float64 `json:"alternative_weight" koanf:"alternative_weight"`
	ClassicalWeight   float64 `json:"classical_weight" koanf:"classical_weight"`

	// VibeWeight, LocationWeight, and TimingWeight combine the classical
	// sub-scores when location/timing context is present.
	VibeWeight     float64 `json:"vibe_weight" koanf:"vibe_weight"`
	LocationWeight float64 `json:"location_weight" koanf:"location_weight"`
	TimingWeight   float64 `json:"timing_weight" koanf:"timing_weight"`

	// BonusScale bounds the topological bonus contribution.
	BonusScale float64 `json:"bonus_scale" koanf:"bonus_scale"`

	// NeutralScore is the last-resort score when no inputs are usable.
	NeutralScore float64 `json:"neutral_score" koanf:"neutral_score"`

	// EntityTTL and EntityMaxSize bound the single-entity state cache.
	EntityTTL     time.Duration `json:"entity_ttl" koanf:"entity_ttl"`
	EntityMaxSize int           `json:"entity_max_size" koanf:"entity_max_size"`

	// PairTTL and PairMaxSize bound the pairwise result cache.
	PairTTL     time.Duration `json:"pair_ttl" koanf:"pair_ttl"`
	PairMaxSize int           `json:"pair_max_size" koanf:"pair_max_size"`

	// BreakerFailures opens the circuit breaker after this many
	// consecutive entangled-path failures.
	BreakerFailures uint32 `json:"breaker_failures" koanf:"breaker_failures"`

	// BreakerCooldown is how long the breaker stays open before probing.
	BreakerCooldown time.Duration `json:"breaker_cooldown" koanf:"breaker_cooldown"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		AlternativeFlag:    "entangled_scoring",
		AlternativeDefault: false,
		AlternativeTimeout: 2 * time.Second,
		AlternativeWeight:  0.7,
		ClassicalWeight:    0.3,
		VibeWeight:         0.5,
		LocationWeight:     0.3,
		TimingWeight:       0.2,
		BonusScale:         0.15,
		NeutralScore:       0.5,
		EntityTTL:          time.Hour,
		EntityMaxSize:      10000,
		PairTTL:            30 * time.Minute,
		PairMaxSize:        50000,
		BreakerFailures:    5,
		BreakerCooldown:    30 * time.Second,
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.AlternativeFlag == "" {
		return fmt.Errorf("alternative flag name required")
	}
	if c.AlternativeTimeout <= 0 {
		return fmt.Errorf("alternative timeout must be positive, got %v", c.AlternativeTimeout)
	}
	if err := validateWeightPair("blend", c.AlternativeWeight, c.ClassicalWeight); err != nil {
		return err
	}
	sum := c.VibeWeight + c.LocationWeight + c.TimingWeight
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("multi-factor weights must sum to 1, got %v", sum)
	}
	if c.BonusScale < 0 || c.BonusScale > 1 {
		return fmt.Errorf("bonus scale must be in [0,1], got %v", c.BonusScale)
	}
	if c.NeutralScore < 0 || c.NeutralScore > 1 {
		return fmt.Errorf("neutral score must be in [0,1], got %v", c.NeutralScore)
	}
	if c.EntityTTL <= 0 || c.PairTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.EntityMaxSize <= 0 || c.PairMaxSize <= 0 {
		return fmt.Errorf("cache sizes must be positive")
	}
	if c.BreakerFailures == 0 {
		return fmt.Errorf("breaker failure threshold must be positive")
	}
	return nil
}

func validateWeightPair(name string, a, b float64) error {
	if a < 0 || b < 0 {
		return fmt.Errorf("%s weights must be non-negative", name)
	}
	sum := a + b
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("%s weights must sum to 1, got %v", name, sum)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() Config {
	return *c
}
