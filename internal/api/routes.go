// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/hafeeds/internal/api/middleware"
)

func (s *Server) routes() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		EnableLogging:         true,
		EnableTracing:         s.cfg.Tracing,
		ServiceName:           "hafeeds",
		EnableOriginCheck:     true,
		AllowedOrigins:        s.cfg.AllowedOrigins,
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { writeNotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	// Probes and scrapes are not rate limited.
	r.Get("/healthz", s.deps.Health.ServeHealth)
	r.Get("/readyz", s.deps.Health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(middleware.APIRateLimit(s.cfg.RateLimit))
		}

		r.Get("/status", s.handleStatus)

		r.Get("/channels", s.handleChannels)
		r.Get("/channels/{id}/{kind}", s.handleChannelSensor)
		r.Get("/sensors", s.handleSensors)

		r.Get("/reservations", s.handleReservations)
		r.Get("/reservations/{resId}", s.handleReservation)

		r.With(middleware.RefreshRateLimit()).Post("/refresh/{domain}", s.handleRefresh)

		r.Get("/cache", s.handleCacheInfo)
		r.Delete("/cache", s.handleCacheClearAll)
		r.Delete("/cache/{id}", s.handleCacheClear)
	})

	return r
}
