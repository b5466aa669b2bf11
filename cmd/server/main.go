// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kindredapp/resonance/internal/api"
	"github.com/kindredapp/resonance/internal/clock"
	"github.com/kindredapp/resonance/internal/config"
	"github.com/kindredapp/resonance/internal/decoherence"
	"github.com/kindredapp/resonance/internal/engine"
	"github.com/kindredapp/resonance/internal/flags"
	"github.com/kindredapp/resonance/internal/logging"
	"github.com/kindredapp/resonance/internal/personality"
	"github.com/kindredapp/resonance/internal/privacy"
	"github.com/kindredapp/resonance/internal/store"
	"github.com/kindredapp/resonance/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()
	logger.Info().Msg("Starting Resonance")

	kv, err := openStore(cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Error().Err(err).Msg("Store close failed")
		}
	}()

	clk := clock.System{}
	flagSrc := flags.NewStatic(cfg.Flags)

	eng := engine.New(cfg.Scoring.Engine, flagSrc, clk)
	tracker := decoherence.NewTracker(kv, clk, cfg.Observations.QueueSize,
		logging.With().Str("component", "decoherence").Logger())
	personalitySvc := personality.NewService(kv, clk)

	seed := cfg.Privacy.NoiseSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	anonymizer := privacy.NewAnonymizer(seed)

	server := api.NewServer(cfg.Server, cfg.Observations, eng, tracker, personalitySvc, anonymizer)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddDataService(tracker)
	tree.AddDataService(supervisor.NewSweeper(eng, cfg.Scoring.SweepInterval))
	tree.AddAPIService(server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Supervisor tree exited")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logger.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}
	logger.Info().Msg("Resonance stopped")
}

// openStore selects Badger when a path is configured, otherwise the
// in-memory store.
func openStore(cfg config.StoreConfig) (store.KV, error) {
	if cfg.Path == "" {
		logging.Warn().Msg("No store path configured, using in-memory store")
		return store.NewMemory(), nil
	}
	return store.OpenBadger(cfg.Path, logging.With().Str("component", "badger").Logger())
}
