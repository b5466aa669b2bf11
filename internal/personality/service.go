// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package personality

import (
	"context"
	"errors"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/kindredapp/resonance/internal/clock"
	"github.com/kindredapp/resonance/internal/logging"
	"github.com/kindredapp/resonance/internal/store"
)

const (
	keyPrefix        = "personality:"
	historyLimit     = 64
	historySuffix    = ":deltas"
	defaultPriorAuth = 0.5
)

// Service persists personality state per actor and runs the classifier
// and transition detector over incoming deltas.
type Service struct {
	kv         store.KV
	clk        clock.Clock
	classifier *Classifier
	logger     zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a personality service backed by the given store.
func NewService(kv store.KV, clk clock.Clock) *Service {
	return &Service{
		kv:         kv,
		clk:        clk,
		classifier: NewClassifier(),
		logger:     logging.With().Str("component", "personality").Logger(),
		locks:      map[string]*sync.Mutex{},
	}
}

// actorLock returns the per-actor mutex, creating it on first use.
func (s *Service) actorLock(actorID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[actorID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[actorID] = l
	}
	return l
}

// ApplyDelta classifies the delta against the actor's state, materializes
// the verdict, re-runs transition detection over the retained delta
// history, and persists the result. It returns the verdict.
func (s *Service) ApplyDelta(ctx context.Context, actorID string, delta Delta) (Verdict, error) {
	if actorID == "" {
		return "", errors.New("actor id required")
	}
	if delta.At.IsZero() {
		delta.At = s.clk.Now()
	}

	l := s.actorLock(actorID)
	l.Lock()
	defer l.Unlock()

	state, err := s.load(ctx, actorID)
	if err != nil {
		return "", err
	}

	verdict := s.classifier.Classify(state, delta)
	s.classifier.Apply(state, delta, verdict)

	history, err := s.loadHistory(ctx, actorID)
	if err != nil {
		return "", err
	}
	history = append(history, delta)
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}

	if state.Transition == nil && verdict != VerdictResist {
		prior := defaultPriorAuth
		if n := len(state.Phases); n > 0 {
			// Carry forward confidence from the last completed shift.
			prior = priorFromPhases(state)
		}
		if tr := DetectTransition(history, s.clk.Now(), prior); tr != nil {
			state.Transition = tr
			s.logger.Info().
				Str("actor_id", actorID).
				Float64("authenticity", tr.Authenticity).
				Strs("triggers", tr.Triggers).
				Msg("Personality transition detected")
		}
	}

	if err := s.save(ctx, actorID, state); err != nil {
		return "", err
	}
	if err := s.saveHistory(ctx, actorID, history); err != nil {
		return "", err
	}
	return verdict, nil
}

// State returns the actor's personality state, or nil when the actor has
// no recorded state.
func (s *Service) State(ctx context.Context, actorID string) (*State, error) {
	data, err := s.kv.Get(ctx, keyPrefix+actorID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load personality state: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode personality state: %w", err)
	}
	return &state, nil
}

// Complete finalizes the actor's active transition, rotating the life
// phase to the given new core vector.
func (s *Service) Complete(ctx context.Context, actorID string, newCore map[string]float64) error {
	l := s.actorLock(actorID)
	l.Lock()
	defer l.Unlock()

	state, err := s.load(ctx, actorID)
	if err != nil {
		return err
	}
	if state.Transition == nil {
		return errors.New("no active transition")
	}
	CompleteTransition(state, newCore, s.clk.Now())
	return s.save(ctx, actorID, state)
}

// SetActiveContext switches the actor's active context layer. An empty
// name reverts to the default (core) layer.
func (s *Service) SetActiveContext(ctx context.Context, actorID, name string) error {
	l := s.actorLock(actorID)
	l.Lock()
	defer l.Unlock()

	state, err := s.load(ctx, actorID)
	if err != nil {
		return err
	}
	state.ActiveContext = name
	return s.save(ctx, actorID, state)
}

// Clear erases all personality data for the actor.
func (s *Service) Clear(ctx context.Context, actorID string) error {
	l := s.actorLock(actorID)
	l.Lock()
	defer l.Unlock()

	if err := s.kv.Delete(ctx, keyPrefix+actorID); err != nil {
		return fmt.Errorf("clear personality state: %w", err)
	}
	if err := s.kv.Delete(ctx, keyPrefix+actorID+historySuffix); err != nil {
		return fmt.Errorf("clear personality history: %w", err)
	}
	s.mu.Lock()
	delete(s.locks, actorID)
	s.mu.Unlock()
	return nil
}

func (s *Service) load(ctx context.Context, actorID string) (*State, error) {
	state, err := s.State(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = NewState(actorID)
	}
	return state, nil
}

func (s *Service) save(ctx context.Context, actorID string, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode personality state: %w", err)
	}
	if err := s.kv.Put(ctx, keyPrefix+actorID, data); err != nil {
		return fmt.Errorf("save personality state: %w", err)
	}
	return nil
}

func (s *Service) loadHistory(ctx context.Context, actorID string) ([]Delta, error) {
	data, err := s.kv.Get(ctx, keyPrefix+actorID+historySuffix)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load personality history: %w", err)
	}
	var history []Delta
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("decode personality history: %w", err)
	}
	return history, nil
}

func (s *Service) saveHistory(ctx context.Context, actorID string, history []Delta) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode personality history: %w", err)
	}
	if err := s.kv.Put(ctx, keyPrefix+actorID+historySuffix, data); err != nil {
		return fmt.Errorf("save personality history: %w", err)
	}
	return nil
}

// priorFromPhases derives the prior-authenticity input for detection from
// the most recent phase boundary. A completed transition leaves no stored
// authenticity on the phase, so the presence of history simply nudges the
// prior above neutral.
func priorFromPhases(state *State) float64 {
	if len(state.Phases) == 0 {
		return defaultPriorAuth
	}
	return 0.6
}
