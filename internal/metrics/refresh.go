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
	refreshCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hafeeds_refresh_cycles_total",
		Help: "Polling cycles by coordinator and outcome",
	}, []string{"coordinator", "outcome"}) // outcome=success|failure|timeout

	refreshDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hafeeds_refresh_duration_seconds",
		Help:    "Duration of a full polling cycle",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"coordinator"})

	lastPublish = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hafeeds_last_publish_timestamp_seconds",
		Help: "Unix time of the last published snapshot",
	}, []string{"coordinator"})

	snapshotProgrammes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hafeeds_snapshot_programmes",
		Help: "Programmes per channel in the published snapshot",
	}, []string{"channel"})

	reservationsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hafeeds_reservations_total",
		Help: "Reservation groups in the published snapshot",
	})
)

// RecordRefresh records one finished polling cycle.
func RecordRefresh(coordinator, outcome string, d time.Duration) {
	refreshCyclesTotal.WithLabelValues(coordinator, outcome).Inc()
	refreshDuration.WithLabelValues(coordinator).Observe(d.Seconds())
}

// RecordPublish marks the time a coordinator swapped in a new snapshot.
func RecordPublish(coordinator string, at time.Time) {
	lastPublish.WithLabelValues(coordinator).Set(float64(at.Unix()))
}

// SetSnapshotProgrammes sets the programme count for one channel.
func SetSnapshotProgrammes(channel string, n int) {
	snapshotProgrammes.WithLabelValues(channel).Set(float64(n))
}

// SetReservations sets the reservation group count.
func SetReservations(n int) {
	reservationsTotal.Set(float64(n))
}
