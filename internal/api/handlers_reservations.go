// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/hafeeds/internal/reservation"
)

type reservationsResponse struct {
	FetchedAt    time.Time           `json:"fetched_at"`
	LastOK       bool                `json:"last_ok"`
	Count        int                 `json:"count"`
	Reservations []reservation.Entry `json:"reservations"`
}

// handleReservations lists the reservation groups of the last published
// snapshot in feed order.
func (s *Server) handleReservations(w http.ResponseWriter, r *http.Request) {
	if s.deps.Reservations == nil {
		writeServiceUnavailable(w, "reservations disabled")
		return
	}
	snap, ok := s.deps.Reservations.Snapshot()
	if !ok {
		writeServiceUnavailable(w, "no reservation snapshot yet")
		return
	}
	_, lastOK := s.reservationsLastOK()

	resp := reservationsResponse{
		FetchedAt:    snap.FetchedAt,
		LastOK:       lastOK,
		Count:        snap.Len(),
		Reservations: make([]reservation.Entry, 0, snap.Len()),
	}
	for _, id := range snap.Order {
		if e, ok := snap.Get(id); ok {
			resp.Reservations = append(resp.Reservations, e)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReservation returns one reservation group.
func (s *Server) handleReservation(w http.ResponseWriter, r *http.Request) {
	if s.deps.Reservations == nil {
		writeServiceUnavailable(w, "reservations disabled")
		return
	}
	snap, ok := s.deps.Reservations.Snapshot()
	if !ok {
		writeServiceUnavailable(w, "no reservation snapshot yet")
		return
	}
	e, ok := snap.Get(chi.URLParam(r, "resId"))
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
