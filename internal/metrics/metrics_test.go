// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ManuGH/hafeeds/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromhttpExposure(t *testing.T) {
	metrics.RecordFetch("ct", metrics.OutcomeSuccess, 150*time.Millisecond)
	metrics.RecordCacheFallback("ct1")
	metrics.RecordRefresh("schedule", metrics.OutcomeSuccess, 2*time.Second)
	metrics.RecordPublish("schedule", time.Now())
	metrics.SetSnapshotProgrammes("ct1", 42)
	metrics.SetReservations(3)
	metrics.RecordStoreError("save")
	metrics.RecordConfigReload(metrics.OutcomeSuccess)
	metrics.SetCircuitBreakerState("feed", "open")
	metrics.RecordCircuitBreakerTrip("feed", "threshold_exceeded")

	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := string(body)

	for _, name := range []string{
		"hafeeds_fetch_requests_total",
		"hafeeds_fetch_duration_seconds",
		"hafeeds_cache_fallback_total",
		"hafeeds_refresh_cycles_total",
		"hafeeds_refresh_duration_seconds",
		"hafeeds_last_publish_timestamp_seconds",
		"hafeeds_snapshot_programmes",
		"hafeeds_reservations_total",
		"hafeeds_store_errors_total",
		"hafeeds_config_reloads_total",
		"hafeeds_circuit_breaker_state",
		"hafeeds_circuit_breaker_trips_total",
	} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, `hafeeds_circuit_breaker_state{name="feed",state="open"} 1`)
	assert.Contains(t, out, `hafeeds_circuit_breaker_state{name="feed",state="closed"} 0`)
}
