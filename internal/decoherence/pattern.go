// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package decoherence

import (
	"time"

	"github.com/kindredapp/resonance/internal/vector"
)

// Behavior phase thresholds. Fixed policy constants; changing them is a
// product decision, not a bug fix.
const (
	explorationRateThreshold      = 0.1
	explorationStabilityThreshold = 0.7
	settledRateThreshold          = 0.05
	settledStabilityThreshold     = 0.8
)

// computeRate derives the per-hour decoherence rate from the two latest
// observations. The computation depends on the previous entry being the
// immediately prior one, which is why per-actor appends are serialized.
func (p *Pattern) computeRate() float64 {
	n := len(p.Timeline)
	if n < 2 {
		return 0
	}

	last := p.Timeline[n-1]
	previous := p.Timeline[n-2]

	elapsed := last.Timestamp.Sub(previous.Timestamp).Seconds()
	if elapsed <= 0 {
		return 0
	}

	perSecond := (last.Factor - previous.Factor) / elapsed
	return vector.Clamp(perSecond*3600, -1, 1)
}

// computeStability derives stability as 1 minus the variance of all
// observed factors. A single observation is perfectly stable.
func (p *Pattern) computeStability() float64 {
	n := len(p.Timeline)
	if n < 2 {
		return 1
	}

	var sum float64
	for _, obs := range p.Timeline {
		sum += obs.Factor
	}
	mean := sum / float64(n)

	var variance float64
	for _, obs := range p.Timeline {
		d := obs.Factor - mean
		variance += d * d
	}
	variance /= float64(n)

	return vector.Clamp01(1 - variance)
}

// detectPhase classifies the stability regime from rate and stability.
func detectPhase(rate, stability float64) Phase {
	if rate > explorationRateThreshold && stability < explorationStabilityThreshold {
		return PhaseExploration
	}
	if rate < settledRateThreshold && stability > settledStabilityThreshold {
		return PhaseSettled
	}
	return PhaseSettling
}

// computeTemporal rebuilds the bucket averages from the whole timeline.
func (p *Pattern) computeTemporal() TemporalPatterns {
	type bucket struct {
		sum   float64
		count int
	}
	timeOfDay := map[string]*bucket{}
	weekday := map[string]*bucket{}
	season := map[string]*bucket{}

	add := func(m map[string]*bucket, key string, factor float64) {
		b, ok := m[key]
		if !ok {
			b = &bucket{}
			m[key] = b
		}
		b.sum += factor
		b.count++
	}

	for _, obs := range p.Timeline {
		add(timeOfDay, timeOfDayBucket(obs.Timestamp), obs.Factor)
		add(weekday, weekdayBucket(obs.Timestamp), obs.Factor)
		add(season, seasonBucket(obs.Timestamp), obs.Factor)
	}

	avg := func(m map[string]*bucket) map[string]float64 {
		out := make(map[string]float64, len(m))
		for key, b := range m {
			out[key] = b.sum / float64(b.count)
		}
		return out
	}

	return TemporalPatterns{
		TimeOfDay: avg(timeOfDay),
		Weekday:   avg(weekday),
		Season:    avg(season),
	}
}

// timeOfDayBucket assigns an observation to exactly one of the four
// time-of-day buckets: morning 5-11h, afternoon 12-16h, evening 17-21h,
// night 22-4h.
func timeOfDayBucket(t time.Time) string {
	switch hour := t.Hour(); {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 22:
		return "evening"
	default:
		return "night"
	}
}

// weekdayBucket returns the lowercase weekday name.
func weekdayBucket(t time.Time) string {
	switch t.Weekday() {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}

// seasonBucket maps the month to one of four fixed-month seasons.
func seasonBucket(t time.Time) string {
	switch month := t.Month(); {
	case month >= time.March && month <= time.May:
		return "spring"
	case month >= time.June && month <= time.August:
		return "summer"
	case month >= time.September && month <= time.November:
		return "fall"
	default:
		return "winter"
	}
}
