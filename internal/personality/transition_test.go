// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package personality

import (
	"testing"
	"time"

	"github.com/kindredapp/resonance/internal/vector"
)

// steadyDeltas returns n small same-direction deltas spread over the
// detection window ending at now.
func steadyDeltas(n int, now time.Time, dims vector.Vector) []Delta {
	deltas := make([]Delta, 0, n)
	for i := 0; i < n; i++ {
		deltas = append(deltas, Delta{
			Dimensions: dims.Clone(),
			Source:     SourceServer,
			At:         now.Add(-time.Duration(n-i) * 24 * time.Hour),
		})
	}
	return deltas
}

func TestDetectTransitionRequiresMinimumDeltas(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	deltas := steadyDeltas(4, now, vector.Vector{"openness": 0.1})

	if tr := DetectTransition(deltas, now, 0.5); tr != nil {
		t.Errorf("DetectTransition() with 4 deltas = %+v, want nil", tr)
	}
}

func TestDetectTransitionConsistentShift(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	deltas := steadyDeltas(6, now, vector.Vector{"openness": 0.1, "energy": -0.05})

	tr := DetectTransition(deltas, now, 0.5)
	if tr == nil {
		t.Fatal("DetectTransition() = nil, want transition")
	}
	if tr.Consistency != 1.0 {
		t.Errorf("Consistency = %v, want 1.0 for uniform deltas", tr.Consistency)
	}
	if tr.Direction["openness"] != 1 || tr.Direction["energy"] != -1 {
		t.Errorf("Direction = %v, want openness +1, energy -1", tr.Direction)
	}
	if tr.Authenticity < authenticityThreshold || tr.Authenticity > 1 {
		t.Errorf("Authenticity = %v, want within [%v, 1]", tr.Authenticity, authenticityThreshold)
	}
	if len(tr.Triggers) == 0 || tr.Triggers[0] != "openness" {
		t.Errorf("Triggers = %v, want openness first", tr.Triggers)
	}
}

func TestDetectTransitionInconsistentDeltas(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	// Alternating signs cancel out: consistency collapses below threshold.
	deltas := make([]Delta, 0, 6)
	for i := 0; i < 6; i++ {
		v := 0.1
		if i%2 == 0 {
			v = -0.08
		}
		deltas = append(deltas, Delta{
			Dimensions: vector.Vector{"openness": v},
			At:         now.Add(-time.Duration(6-i) * 24 * time.Hour),
		})
	}

	if tr := DetectTransition(deltas, now, 0.5); tr != nil {
		t.Errorf("DetectTransition() on alternating deltas = %+v, want nil", tr)
	}
}

func TestDetectTransitionIgnoresOldDeltas(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	// Five of the six deltas fall outside the window.
	deltas := steadyDeltas(5, now.Add(-30*24*time.Hour), vector.Vector{"openness": 0.1})
	deltas = append(deltas, Delta{
		Dimensions: vector.Vector{"openness": 0.1},
		At:         now.Add(-24 * time.Hour),
	})

	if tr := DetectTransition(deltas, now, 0.5); tr != nil {
		t.Errorf("DetectTransition() = %+v, want nil when window holds one delta", tr)
	}
}

func TestDetectTransitionAuthenticityFormula(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	deltas := steadyDeltas(5, now, vector.Vector{"openness": 0.14})

	tr := DetectTransition(deltas, now, 1.0)
	if tr == nil {
		t.Fatal("DetectTransition() = nil, want transition")
	}
	want := 0.4*(1-tr.Velocity) + 0.4*tr.Consistency + 0.2*1.0
	if diff := tr.Authenticity - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Authenticity = %v, want %v", tr.Authenticity, want)
	}
}

func TestCompleteTransitionRotatesPhase(t *testing.T) {
	now := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)
	state := NewState("actor-1")
	state.Core = vector.Vector{"openness": 0.2, "energy": 0.8, "calm": 0.1, "focus": 0.5}
	state.Phases = []LifePhase{{
		Name:      "phase-1",
		StartedAt: now.Add(-90 * 24 * time.Hour),
		Core:      state.Core.Clone(),
	}}
	state.Transition = &Transition{
		StartedAt: now.Add(-7 * 24 * time.Hour),
		Triggers:  []string{"openness", "energy"},
	}

	newCore := vector.Vector{"openness": 0.9, "energy": 0.3, "calm": 0.6}
	CompleteTransition(state, newCore, now)

	if state.Transition != nil {
		t.Error("Transition not cleared after completion")
	}
	if len(state.Phases) != 2 {
		t.Fatalf("len(Phases) = %d, want 2", len(state.Phases))
	}

	closed := state.Phases[0]
	if closed.EndedAt != now {
		t.Errorf("closed phase EndedAt = %v, want %v", closed.EndedAt, now)
	}
	if closed.EndReason != "transition completed: openness, energy" {
		t.Errorf("closed phase EndReason = %q", closed.EndReason)
	}

	opened := state.Phases[1]
	if opened.StartedAt != now || !opened.EndedAt.IsZero() {
		t.Errorf("opened phase boundaries = [%v, %v], want [%v, zero]",
			opened.StartedAt, opened.EndedAt, now)
	}
	if len(opened.DominantDimensions) != 3 || opened.DominantDimensions[0] != "openness" {
		t.Errorf("DominantDimensions = %v, want openness first of 3", opened.DominantDimensions)
	}

	if state.Core["openness"] != 0.9 {
		t.Errorf("core openness = %v, want 0.9 after completion", state.Core["openness"])
	}
	// The stored new core is a copy, not an alias.
	newCore["openness"] = 0
	if state.Core["openness"] != 0.9 {
		t.Error("state core aliases the caller's vector")
	}
}

func TestCompleteTransitionWithoutActiveTransition(t *testing.T) {
	state := NewState("actor-1")
	state.Core = vector.Vector{"openness": 0.2}

	CompleteTransition(state, vector.Vector{"openness": 0.9}, time.Now())

	if state.Core["openness"] != 0.2 {
		t.Errorf("core openness = %v, want unchanged 0.2", state.Core["openness"])
	}
	if len(state.Phases) != 0 {
		t.Errorf("len(Phases) = %d, want 0", len(state.Phases))
	}
}

func TestCompleteTransitionWithoutOpenPhase(t *testing.T) {
	now := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)
	state := NewState("actor-1")
	state.Core = vector.Vector{"openness": 0.2}
	state.Transition = &Transition{StartedAt: now.Add(-7 * 24 * time.Hour)}

	CompleteTransition(state, vector.Vector{"openness": 0.9}, now)

	if len(state.Phases) != 2 {
		t.Fatalf("len(Phases) = %d, want 2 (synthesized closed phase plus new)", len(state.Phases))
	}
	if state.Phases[0].Core["openness"] != 0.2 {
		t.Errorf("closed phase core = %v, want pre-transition 0.2", state.Phases[0].Core["openness"])
	}
}

func TestDominantDimensionsOrdering(t *testing.T) {
	v := vector.Vector{"a": 0.1, "b": -0.9, "c": 0.5, "d": 0.3}
	got := dominantDimensions(v, 3)
	want := []string{"b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("dominantDimensions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dominantDimensions()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
