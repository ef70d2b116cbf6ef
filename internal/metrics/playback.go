// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics holds the prometheus collectors shared across reelfeed.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClaimsTotal counts activation claims by outcome (granted, resumed, rejected).
	ClaimsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelfeed_claims_total",
		Help: "Total number of activation claims by result",
	}, []string{"result"})

	// TransitionsTotal counts per-item playback transitions.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelfeed_playback_transitions_total",
		Help: "Total number of playback state transitions by event and target state",
	}, []string{"event", "to"})

	PlaybackStartFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelfeed_playback_start_failures_total",
		Help: "Playback start attempts rejected by the media handle (swallowed)",
	}, []string{"mode"})

	SeeksRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reelfeed_seek_rejected_total",
		Help: "Scrub writes dropped because the media duration was unknown",
	})
)

// IncClaim records a claim outcome.
func IncClaim(result string) {
	if result == "" {
		result = "unknown"
	}
	ClaimsTotal.WithLabelValues(result).Inc()
}

// IncTransition records a state machine transition.
func IncTransition(event, to string) {
	TransitionsTotal.WithLabelValues(event, to).Inc()
}

// IncPlaybackStartFailure records a swallowed play() rejection.
func IncPlaybackStartFailure(mode string) {
	if mode == "" {
		mode = "resume"
	}
	PlaybackStartFailures.WithLabelValues(mode).Inc()
}

// IncSeekRejected records a guarded scrub write.
func IncSeekRejected() {
	SeeksRejected.Inc()
}
