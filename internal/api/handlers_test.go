// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/kindredapp/resonance/internal/clock"
	"github.com/kindredapp/resonance/internal/config"
	"github.com/kindredapp/resonance/internal/decoherence"
	"github.com/kindredapp/resonance/internal/engine"
	"github.com/kindredapp/resonance/internal/flags"
	"github.com/kindredapp/resonance/internal/personality"
	"github.com/kindredapp/resonance/internal/privacy"
	"github.com/kindredapp/resonance/internal/store"
)

func newTestServer(t *testing.T) (*Server, *decoherence.Tracker) {
	t.Helper()

	kv := store.NewMemory()
	clk := clock.System{}
	eng := engine.New(engine.DefaultConfig(), flags.NewStatic(nil), clk)
	tracker := decoherence.NewTracker(kv, clk, 16, zerolog.Nop())
	personalitySvc := personality.NewService(kv, clk)
	anonymizer := privacy.NewAnonymizer(1)

	srv := NewServer(
		config.ServerConfig{ShutdownTimeout: time.Second},
		config.ObservationsConfig{},
		eng, tracker, personalitySvc, anonymizer,
	)
	return srv, tracker
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleCompatibility(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Routes()

	body := CompatibilityRequest{
		EntityA: EntityPayload{ID: "u1", Kind: "user", Vibe: map[string]float64{"chill": 0.8}},
		EntityB: EntityPayload{ID: "s1", Kind: "spot", Vibe: map[string]float64{"chill": 0.6}},
		Pairing: "user-spot",
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/compatibility", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var result engine.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Score < 0 || result.Score > 1 {
		t.Errorf("Score = %v, want in [0,1]", result.Score)
	}
	if result.Method != engine.MethodClassical {
		t.Errorf("Method = %q, want classical", result.Method)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}
}

func TestHandleCompatibilityValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Routes()

	tests := []struct {
		name string
		body CompatibilityRequest
	}{
		{"missing entity id", CompatibilityRequest{
			EntityA: EntityPayload{Kind: "user"},
			EntityB: EntityPayload{ID: "s1", Kind: "spot"},
			Pairing: "user-spot",
		}},
		{"unknown pairing", CompatibilityRequest{
			EntityA: EntityPayload{ID: "u1", Kind: "user"},
			EntityB: EntityPayload{ID: "s1", Kind: "spot"},
			Pairing: "user-user",
		}},
		{"unknown kind", CompatibilityRequest{
			EntityA: EntityPayload{ID: "u1", Kind: "alien"},
			EntityB: EntityPayload{ID: "s1", Kind: "spot"},
			Pairing: "user-spot",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/compatibility", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleObservationAndPhase(t *testing.T) {
	srv, tracker := newTestServer(t)
	router := srv.Routes()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/decoherence/observations",
		ObservationRequest{ActorID: "actor-1", Factor: 0.4})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}

	// Drain the queue so the observation is applied before the lookup.
	ctx, cancel := context.WithCancel(context.Background())
	go tracker.Serve(ctx) //nolint:errcheck
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := tracker.Pattern(context.Background(), "actor-1"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("observation never applied")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	rec = doJSON(t, router, http.MethodGet, "/api/v1/actors/actor-1/phase", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var pattern decoherence.Pattern
	if err := json.Unmarshal(rec.Body.Bytes(), &pattern); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(pattern.Timeline) != 1 {
		t.Errorf("timeline length = %d, want 1", len(pattern.Timeline))
	}
}

func TestHandlePhaseUnknownActor(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Routes(), http.MethodGet, "/api/v1/actors/ghost/phase", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleDeltaAndState(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Routes()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/personality/deltas",
		DeltaRequest{ActorID: "actor-1", Dimensions: map[string]float64{"openness": 0.05}, Source: "server"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var verdictResp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &verdictResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if verdictResp["verdict"] != string(personality.VerdictCore) {
		t.Errorf("verdict = %q, want core", verdictResp["verdict"])
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/actors/actor-1/personality", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleSetContextAffectsVerdicts(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Routes()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/personality/context",
		ContextRequest{ActorID: "actor-1", Context: "morning"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/personality/deltas",
		DeltaRequest{ActorID: "actor-1", Dimensions: map[string]float64{"energy": 0.05}, Source: "server"})
	var verdictResp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &verdictResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if verdictResp["verdict"] != string(personality.VerdictContext) {
		t.Errorf("verdict = %q, want context with active context set", verdictResp["verdict"])
	}
}

func TestHandleProject(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Routes()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/privacy/project",
		ProjectRequest{ActorID: "actor-1", State: map[string]float64{"chill": 0.8}, Context: "private"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var projection privacy.Projection
	if err := json.Unmarshal(rec.Body.Bytes(), &projection); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if projection.Shareable {
		t.Error("private projection marked shareable")
	}
}

func TestHandleErase(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Routes()

	doJSON(t, router, http.MethodPost, "/api/v1/personality/deltas",
		DeltaRequest{ActorID: "actor-1", Dimensions: map[string]float64{"openness": 0.05}, Source: "server"})

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/actors/actor-1/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/actors/actor-1/personality", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d after erase, want 404", rec.Code)
	}
}

func TestObservationRateLimit(t *testing.T) {
	kv := store.NewMemory()
	clk := clock.System{}
	srv := NewServer(
		config.ServerConfig{ShutdownTimeout: time.Second},
		config.ObservationsConfig{RatePerSecond: 1, Burst: 1},
		engine.New(engine.DefaultConfig(), flags.NewStatic(nil), clk),
		decoherence.NewTracker(kv, clk, 16, zerolog.Nop()),
		personality.NewService(kv, clk),
		privacy.NewAnonymizer(1),
	)
	router := srv.Routes()

	body := ObservationRequest{ActorID: "actor-1", Factor: 0.4}
	first := doJSON(t, router, http.MethodPost, "/api/v1/decoherence/observations", body)
	second := doJSON(t, router, http.MethodPost, "/api/v1/decoherence/observations", body)

	if first.Code != http.StatusAccepted {
		t.Errorf("first status = %d, want 202", first.Code)
	}
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", second.Code)
	}
}
