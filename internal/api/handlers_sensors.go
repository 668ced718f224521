// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/hafeeds/internal/sensor"
)

type channelsResponse struct {
	Channels []sensor.ChannelInfo `json:"channels"`
}

type sensorsResponse struct {
	Count   int             `json:"count"`
	Sensors []sensor.Sensor `json:"sensors"`
}

// handleChannels lists the tracked channels.
func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	if s.deps.Channels == nil {
		writeServiceUnavailable(w, "schedule feed disabled")
		return
	}
	writeJSON(w, http.StatusOK, channelsResponse{Channels: s.deps.Channels.List()})
}

// handleChannelSensor renders one schedule sensor.
func (s *Server) handleChannelSensor(w http.ResponseWriter, r *http.Request) {
	if s.deps.Channels == nil {
		writeServiceUnavailable(w, "schedule feed disabled")
		return
	}
	kind, err := sensor.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	sn, ok := s.deps.Channels.Sensor(chi.URLParam(r, "id"), kind)
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, sn)
}

// handleSensors renders every schedule and reservation sensor.
func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	out := make([]sensor.Sensor, 0)
	if s.deps.Channels != nil {
		out = append(out, s.deps.Channels.All()...)
	}
	if s.deps.Registry != nil {
		snap, lastOK := s.reservationsLastOK()
		out = append(out, s.deps.Registry.All(snap, lastOK)...)
	}
	writeJSON(w, http.StatusOK, sensorsResponse{Count: len(out), Sensors: out})
}
