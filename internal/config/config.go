// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package config

import (
	"fmt"
	"time"

	"github.com/kindredapp/resonance/internal/engine"
)

// Config is the root service configuration.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Logging      LoggingConfig      `koanf:"logging"`
	Store        StoreConfig        `koanf:"store"`
	Scoring      ScoringConfig      `koanf:"scoring"`
	Observations ObservationsConfig `koanf:"observations"`
	Flags        map[string]bool    `koanf:"flags"`
	Privacy      PrivacyConfig      `koanf:"privacy"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// StoreConfig configures the persistent key-value store.
type StoreConfig struct {
	// Path is the Badger data directory. Empty selects the in-memory
	// store, which does not survive restarts.
	Path string `koanf:"path"`
}

// ScoringConfig wraps the engine configuration plus cache sweep cadence.
type ScoringConfig struct {
	Engine        engine.Config `koanf:"engine"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// ObservationsConfig bounds the decoherence observation intake.
type ObservationsConfig struct {
	QueueSize int `koanf:"queue_size"`

	// RatePerSecond and Burst bound the HTTP intake; zero rate disables
	// limiting.
	RatePerSecond float64 `koanf:"rate_per_second"`
	Burst         int     `koanf:"burst"`
}

// PrivacyConfig configures the anonymizer.
type PrivacyConfig struct {
	// NoiseSeed seeds the limited-context noise source; 0 derives a seed
	// from the current time.
	NoiseSeed int64 `koanf:"noise_seed"`
}

// defaultConfig returns the full default configuration. Defaults load
// first and are overridden by the config file, then environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Store: StoreConfig{
			Path: "/data/resonance",
		},
		Scoring: ScoringConfig{
			Engine:        engine.DefaultConfig(),
			SweepInterval: 5 * time.Minute,
		},
		Observations: ObservationsConfig{
			QueueSize:     1024,
			RatePerSecond: 100,
			Burst:         200,
		},
		Flags: map[string]bool{},
		Privacy: PrivacyConfig{
			NoiseSeed: 0,
		},
	}
}

// Validate checks the whole configuration tree.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in [1,65535], got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %v", c.Server.ShutdownTimeout)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging format must be json or console, got %q", c.Logging.Format)
	}
	if err := c.Scoring.Engine.Validate(); err != nil {
		return fmt.Errorf("scoring engine: %w", err)
	}
	if c.Scoring.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %v", c.Scoring.SweepInterval)
	}
	if c.Observations.QueueSize <= 0 {
		return fmt.Errorf("observation queue size must be positive, got %d", c.Observations.QueueSize)
	}
	if c.Observations.RatePerSecond < 0 {
		return fmt.Errorf("observation rate must be non-negative, got %v", c.Observations.RatePerSecond)
	}
	if c.Observations.RatePerSecond > 0 && c.Observations.Burst <= 0 {
		return fmt.Errorf("observation burst must be positive when rate limiting, got %d", c.Observations.Burst)
	}
	return nil
}
