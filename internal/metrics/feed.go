// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeedFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelfeed_feed_fetch_total",
		Help: "Feed fetch attempts by result and reason",
	}, []string{"result", "reason"})

	FeedClips = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reelfeed_feed_clips",
		Help: "Number of clips in the most recent feed",
	})

	CatalogReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelfeed_catalog_reloads_total",
		Help: "Catalog reload attempts by result",
	}, []string{"result"})

	ReachEndTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelfeed_reach_end_total",
		Help: "Infinite-scroll reach-end triggers by outcome",
	}, []string{"outcome"})
)

// IncFeedFetch records a feed fetch outcome.
func IncFeedFetch(success bool, reason string) {
	result := "failure"
	if success {
		result = "success"
	}
	if reason == "" {
		reason = "none"
	}
	FeedFetchTotal.WithLabelValues(result, reason).Inc()
}

// SetFeedClips records the clip count of the last loaded feed.
func SetFeedClips(n int) {
	FeedClips.Set(float64(n))
}

// IncCatalogReload records a catalog reload outcome.
func IncCatalogReload(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	CatalogReloadsTotal.WithLabelValues(result).Inc()
}

// IncReachEnd records whether a reach-end trigger was forwarded or throttled.
func IncReachEnd(outcome string) {
	ReachEndTotal.WithLabelValues(outcome).Inc()
}
