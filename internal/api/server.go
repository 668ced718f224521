// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the sensor, reservation and maintenance endpoints.
package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/ManuGH/hafeeds/internal/coordinator"
	"github.com/ManuGH/hafeeds/internal/health"
	"github.com/ManuGH/hafeeds/internal/reservation"
	"github.com/ManuGH/hafeeds/internal/sensor"
	"github.com/ManuGH/hafeeds/internal/store"
)

// Refresher is a coordinator that can be triggered manually.
type Refresher interface {
	Name() string
	Refresh(ctx context.Context) error
	Status() coordinator.Status
}

// ReservationSource is the reservation coordinator as seen by the API.
type ReservationSource interface {
	Refresher
	Snapshot() (*reservation.Snapshot, bool)
}

// Config holds the HTTP-facing settings.
type Config struct {
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit      int
	AllowedOrigins []string
	Version        string
	// Tracing wraps every request in a server span.
	Tracing bool
}

// Deps are the components behind the endpoints. Schedule and Reservations
// are nil when the respective domain is disabled.
type Deps struct {
	Health       *health.Manager
	Channels     *sensor.Channels
	Schedule     Refresher
	Reservations ReservationSource
	Registry     *sensor.Registry
	Store        store.Store
}

// Server is the HTTP API.
type Server struct {
	cfg  Config
	deps Deps

	once    sync.Once
	handler http.Handler
}

// New creates the API server.
func New(cfg Config, deps Deps) *Server {
	if deps.Health == nil {
		deps.Health = health.NewManager(cfg.Version)
	}
	return &Server{cfg: cfg, deps: deps}
}

// Handler returns the configured HTTP handler with all routes and middleware applied.
func (s *Server) Handler() http.Handler {
	s.once.Do(func() { s.handler = s.routes() })
	return s.handler
}

// reservationsLastOK reports whether the reservation coordinator published
// and its last cycle succeeded.
func (s *Server) reservationsLastOK() (*reservation.Snapshot, bool) {
	if s.deps.Reservations == nil {
		return nil, false
	}
	snap, ok := s.deps.Reservations.Snapshot()
	if !ok {
		return nil, false
	}
	return snap, s.deps.Reservations.Status().LastError == ""
}
