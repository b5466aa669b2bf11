// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

// Package metrics exposes Prometheus instrumentation for the compatibility
// engine: scoring latency and method mix, cache efficiency, the alternative
// path's circuit breaker, and the decoherence intake pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Scoring metrics
	CompatibilityRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resonance_compatibility_requests_total",
			Help: "Total compatibility computations by pairing domain and method used",
		},
		[]string{"pairing", "method"},
	)

	CompatibilityDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resonance_compatibility_duration_seconds",
			Help:    "Duration of compatibility computations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	AlternativeFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resonance_alternative_fallbacks_total",
			Help: "Alternative-method attempts that fell back to the classical score",
		},
		[]string{"reason"}, // "disabled", "insufficient_context", "timeout", "breaker_open", "error"
	)

	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "resonance_alternative_breaker_state",
			Help: "Circuit breaker state for the alternative scoring path (0=closed, 1=half-open, 2=open)",
		},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resonance_cache_hits_total",
			Help: "Cache hits by cache (entity or pair)",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resonance_cache_misses_total",
			Help: "Cache misses by cache (entity or pair)",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resonance_cache_evictions_total",
			Help: "Cache evictions by cache (entity or pair)",
		},
		[]string{"cache"},
	)

	// Decoherence tracking metrics
	ObservationsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resonance_decoherence_observations_total",
			Help: "Decoherence observations accepted for processing",
		},
	)

	ObservationsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resonance_decoherence_observations_dropped_total",
			Help: "Decoherence observations dropped before application",
		},
		[]string{"reason"}, // "queue_full", "store_error", "invalid"
	)

	ObservationQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "resonance_decoherence_queue_depth",
			Help: "Pending decoherence observations awaiting application",
		},
	)

	// Personality classification metrics
	ClassifierVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resonance_classifier_verdicts_total",
			Help: "Personality delta classification verdicts by source and verdict",
		},
		[]string{"source", "verdict"},
	)

	TransitionsDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resonance_transitions_detected_total",
			Help: "Life-phase transitions instantiated by the classifier",
		},
	)

	// Privacy metrics
	Projections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resonance_privacy_projections_total",
			Help: "Privacy projections produced by sharing context",
		},
		[]string{"context"},
	)
)
