// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeTimeout = "timeout"
	OutcomeEmpty   = "empty"
	OutcomeCached  = "cached"
)

var (
	fetchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hafeeds_fetch_requests_total",
		Help: "Upstream fetch requests by provider and outcome",
	}, []string{"provider", "outcome"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hafeeds_fetch_duration_seconds",
		Help:    "Upstream request latency by provider",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"provider"})

	cacheFallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hafeeds_cache_fallback_total",
		Help: "Channels served from the local cache after a failed or empty fetch",
	}, []string{"channel"})
)

// RecordFetch counts one upstream request.
func RecordFetch(provider, outcome string, d time.Duration) {
	fetchRequestsTotal.WithLabelValues(provider, outcome).Inc()
	if d > 0 {
		fetchDuration.WithLabelValues(provider).Observe(d.Seconds())
	}
}

// RecordCacheFallback counts a channel that fell back to cached data.
func RecordCacheFallback(channel string) {
	cacheFallbackTotal.WithLabelValues(channel).Inc()
}
