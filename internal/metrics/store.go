// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hafeeds_store_errors_total",
		Help: "Cache store failures by operation",
	}, []string{"op"}) // op=load|save|clear|size

	configReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hafeeds_config_reloads_total",
		Help: "Configuration reloads by outcome",
	}, []string{"outcome"})
)

// RecordStoreError counts a failed store operation.
func RecordStoreError(op string) {
	storeErrorsTotal.WithLabelValues(op).Inc()
}

// RecordConfigReload counts a configuration reload.
func RecordConfigReload(outcome string) {
	configReloadsTotal.WithLabelValues(outcome).Inc()
}
