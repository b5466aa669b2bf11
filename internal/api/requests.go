// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package api

import (
	"fmt"
	"net/http"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"

	"github.com/kindredapp/resonance/internal/vector"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// requestValidator returns the shared validator instance. Struct info is
// cached, so one instance serves all handlers.
func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// decodeAndValidate parses the request body into dst and validates it.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := requestValidator().Struct(dst); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// EntityPayload carries one entity's snapshot vectors inline.
type EntityPayload struct {
	ID                string        `json:"id" validate:"required,max=128"`
	Kind              string        `json:"kind" validate:"required,oneof=user event business brand spot"`
	Vibe              vector.Vector `json:"vibe"`
	Location          vector.Vector `json:"location"`
	Timing            vector.Vector `json:"timing"`
	TimingFlexibility float64       `json:"timing_flexibility" validate:"min=0,max=1"`
}

// CompatibilityRequest asks for a compatibility score between two
// entities in a pairing domain.
type CompatibilityRequest struct {
	EntityA EntityPayload `json:"entity_a" validate:"required"`
	EntityB EntityPayload `json:"entity_b" validate:"required"`
	Pairing string        `json:"pairing" validate:"required,oneof=user-spot user-business user-brand user-event"`
}

// ObservationRequest records one decoherence observation.
type ObservationRequest struct {
	ActorID string  `json:"actor_id" validate:"required,max=128"`
	Factor  float64 `json:"factor" validate:"min=0,max=1"`
}

// DeltaRequest submits a personality delta for classification.
type DeltaRequest struct {
	ActorID    string        `json:"actor_id" validate:"required,max=128"`
	Dimensions vector.Vector `json:"dimensions" validate:"required,min=1"`
	Source     string        `json:"source" validate:"required,oneof=user_action peer server"`
}

// ContextRequest switches an actor's active personality context.
type ContextRequest struct {
	ActorID string `json:"actor_id" validate:"required,max=128"`
	Context string `json:"context" validate:"max=64"`
}

// CompleteTransitionRequest finalizes an actor's active transition.
type CompleteTransitionRequest struct {
	ActorID string        `json:"actor_id" validate:"required,max=128"`
	NewCore vector.Vector `json:"new_core" validate:"required,min=1"`
}

// ProjectRequest asks for a privacy projection of an actor's state.
type ProjectRequest struct {
	ActorID string        `json:"actor_id" validate:"required,max=128"`
	State   vector.Vector `json:"state" validate:"required,min=1"`
	Context string        `json:"context" validate:"required,oneof=public limited private anonymous"`
}
