// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kindredapp/resonance/internal/engine"
	"github.com/kindredapp/resonance/internal/logging"
	"github.com/kindredapp/resonance/internal/personality"
	"github.com/kindredapp/resonance/internal/privacy"
)

// handleCompatibility scores two inline entity snapshots.
func (s *Server) handleCompatibility(w http.ResponseWriter, r *http.Request) {
	var req CompatibilityRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result := s.engine.ComputeCompatibility(r.Context(),
		snapshotFromPayload(req.EntityA),
		snapshotFromPayload(req.EntityB),
		engine.Pairing(req.Pairing))

	writeJSON(w, http.StatusOK, result)
}

// handleObservation records a decoherence observation. The write is
// fire-and-forget: acceptance means queued, not persisted.
func (s *Server) handleObservation(w http.ResponseWriter, r *http.Request) {
	var req ObservationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	s.tracker.Record(req.ActorID, req.Factor)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// handlePhase returns the actor's current decoherence pattern.
func (s *Server) handlePhase(w http.ResponseWriter, r *http.Request) {
	actorID := chi.URLParam(r, "actorID")

	pattern, ok := s.tracker.Pattern(r.Context(), actorID)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no observations recorded for actor")
		return
	}
	writeJSON(w, http.StatusOK, pattern)
}

// handlePersonalityState returns an actor's personality record.
func (s *Server) handlePersonalityState(w http.ResponseWriter, r *http.Request) {
	actorID := chi.URLParam(r, "actorID")

	state, err := s.personality.State(r.Context(), actorID)
	if err != nil {
		logger := logging.LoggerFromContext(r.Context())
		logger.Error().Err(err).Msg("Personality state lookup failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "personality state lookup failed")
		return
	}
	if state == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no personality state for actor")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// handleDelta classifies and applies a personality delta.
func (s *Server) handleDelta(w http.ResponseWriter, r *http.Request) {
	var req DeltaRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	verdict, err := s.personality.ApplyDelta(r.Context(), req.ActorID, personality.Delta{
		Dimensions: req.Dimensions,
		Source:     personality.Source(req.Source),
	})
	if err != nil {
		logger := logging.LoggerFromContext(r.Context())
		logger.Error().Err(err).Msg("Delta application failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "delta application failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"verdict": string(verdict)})
}

// handleSetContext switches the actor's active context layer.
func (s *Server) handleSetContext(w http.ResponseWriter, r *http.Request) {
	var req ContextRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := s.personality.SetActiveContext(r.Context(), req.ActorID, req.Context); err != nil {
		logger := logging.LoggerFromContext(r.Context())
		logger.Error().Err(err).Msg("Context switch failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "context switch failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCompleteTransition finalizes an actor's active transition.
func (s *Server) handleCompleteTransition(w http.ResponseWriter, r *http.Request) {
	var req CompleteTransitionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := s.personality.Complete(r.Context(), req.ActorID, req.NewCore); err != nil {
		respondError(w, http.StatusConflict, "NO_TRANSITION", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// handleProject returns a privacy projection of the supplied state.
func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	projection, err := s.anonymizer.Project(req.ActorID, req.State, privacy.Context(req.Context))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

// handleErase is the privacy-control erasure: it wipes the actor's
// decoherence pattern, personality record, and cached snapshot.
func (s *Server) handleErase(w http.ResponseWriter, r *http.Request) {
	actorID := chi.URLParam(r, "actorID")

	if err := s.tracker.Clear(r.Context(), actorID); err != nil {
		logger := logging.LoggerFromContext(r.Context())
		logger.Error().Err(err).Msg("Decoherence erasure failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "erasure failed")
		return
	}
	if err := s.personality.Clear(r.Context(), actorID); err != nil {
		logger := logging.LoggerFromContext(r.Context())
		logger.Error().Err(err).Msg("Personality erasure failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "erasure failed")
		return
	}
	s.engine.InvalidateEntity(actorID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "erased"})
}

func snapshotFromPayload(p EntityPayload) engine.Snapshot {
	return engine.Snapshot{
		ID:                p.ID,
		Kind:              engine.Kind(p.Kind),
		Vibe:              p.Vibe,
		Location:          p.Location,
		Timing:            p.Timing,
		TimingFlexibility: p.TimingFlexibility,
	}
}
