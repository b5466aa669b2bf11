// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/kindredapp/resonance/internal/config"
	"github.com/kindredapp/resonance/internal/decoherence"
	"github.com/kindredapp/resonance/internal/engine"
	"github.com/kindredapp/resonance/internal/logging"
	"github.com/kindredapp/resonance/internal/personality"
	"github.com/kindredapp/resonance/internal/privacy"
)

// Server is the HTTP front end exposing the scoring, decoherence,
// personality, and privacy operations.
type Server struct {
	cfg         config.ServerConfig
	engine      *engine.Engine
	tracker     *decoherence.Tracker
	personality *personality.Service
	anonymizer  *privacy.Anonymizer
	limiter     *rate.Limiter
	logger      zerolog.Logger

	httpServer *http.Server
}

// NewServer wires the HTTP server. A nil limiter disables observation
// intake limiting.
func NewServer(
	cfg config.ServerConfig,
	obsCfg config.ObservationsConfig,
	eng *engine.Engine,
	tracker *decoherence.Tracker,
	personalitySvc *personality.Service,
	anonymizer *privacy.Anonymizer,
) *Server {
	s := &Server{
		cfg:         cfg,
		engine:      eng,
		tracker:     tracker,
		personality: personalitySvc,
		anonymizer:  anonymizer,
		logger:      logging.With().Str("component", "api").Logger(),
	}
	if obsCfg.RatePerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(obsCfg.RatePerSecond), obsCfg.Burst)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/api/v1/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/compatibility", s.handleCompatibility)

		r.Route("/decoherence", func(r chi.Router) {
			r.With(s.observationLimit).Post("/observations", s.handleObservation)
		})

		r.Route("/actors/{actorID}", func(r chi.Router) {
			r.Get("/phase", s.handlePhase)
			r.Get("/personality", s.handlePersonalityState)
			r.Delete("/", s.handleErase)
		})

		r.Route("/personality", func(r chi.Router) {
			r.Post("/deltas", s.handleDelta)
			r.Post("/context", s.handleSetContext)
			r.Post("/transitions/complete", s.handleCompleteTransition)
		})

		r.Post("/privacy/project", s.handleProject)
	})

	return r
}

// Serve runs the HTTP server until the context is canceled. It satisfies
// the suture service contract.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown failed")
		}
		<-errCh
		return ctx.Err()
	}
}

func (s *Server) String() string {
	return "api-server"
}

// observationLimit applies the intake limiter to the fire-and-forget
// observation endpoint.
func (s *Server) observationLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "observation intake limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
