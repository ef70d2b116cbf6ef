// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StreamingSessionsActive tracks live adaptive-streaming sessions.
	StreamingSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reelfeed_streaming_sessions_active",
		Help: "Number of streaming sessions currently attached to a media handle",
	})

	StreamingSessionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelfeed_streaming_sessions_created_total",
		Help: "Streaming activations by attach mode (engine, native, unsupported)",
	}, []string{"mode"})

	StreamingSessionsDestroyed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reelfeed_streaming_sessions_destroyed_total",
		Help: "Streaming sessions torn down",
	})

	// ManifestLatency tracks the time from Load to manifest parsed.
	ManifestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reelfeed_manifest_latency_seconds",
		Help:    "Time from session load to manifest parsed",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"result"})
)

// SessionCreated records a new activation in the given mode.
func SessionCreated(mode string) {
	StreamingSessionsCreated.WithLabelValues(mode).Inc()
	if mode == "engine" {
		StreamingSessionsActive.Inc()
	}
}

// SessionDestroyed records an engine session teardown.
func SessionDestroyed() {
	StreamingSessionsActive.Dec()
	StreamingSessionsDestroyed.Inc()
}

// ObserveManifestLatency records the manifest fetch latency.
func ObserveManifestLatency(success bool, d time.Duration) {
	result := "failure"
	if success {
		result = "success"
	}
	ManifestLatency.WithLabelValues(result).Observe(d.Seconds())
}
