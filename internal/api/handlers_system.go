// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/hafeeds/internal/coordinator"
	xlog "github.com/ManuGH/hafeeds/internal/log"
)

// Refresh domains.
const (
	DomainSchedule     = "schedule"
	DomainReservations = "reservations"
)

type statusResponse struct {
	Version      string                        `json:"version,omitempty"`
	Coordinators map[string]coordinator.Status `json:"coordinators"`
}

type refreshResponse struct {
	Domain string             `json:"domain"`
	Status coordinator.Status `json:"status"`
	Error  string             `json:"error,omitempty"`
}

// handleStatus reports the version and the state of every coordinator.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Version:      s.cfg.Version,
		Coordinators: make(map[string]coordinator.Status),
	}
	for _, c := range s.refreshers() {
		resp.Coordinators[c.Name()] = c.Status()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRefresh runs one cycle of the named domain and waits for it. The
// cycle is detached from the request so a disconnecting client does not
// abort it halfway.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")

	var target Refresher
	switch domain {
	case DomainSchedule:
		target = s.deps.Schedule
	case DomainReservations:
		target = s.deps.Reservations
	default:
		writeBadRequest(w, fmt.Errorf("unknown domain %q (want %s or %s)", domain, DomainSchedule, DomainReservations))
		return
	}
	if target == nil {
		writeServiceUnavailable(w, domain+" disabled")
		return
	}

	logger := xlog.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str(xlog.FieldEvent, "refresh.manual").
		Str(xlog.FieldCoordinator, target.Name()).
		Msg("manual refresh requested")

	err := target.Refresh(context.WithoutCancel(r.Context()))
	resp := refreshResponse{Domain: domain, Status: target.Status()}
	if err != nil {
		resp.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) refreshers() []Refresher {
	var out []Refresher
	if s.deps.Schedule != nil {
		out = append(out, s.deps.Schedule)
	}
	if s.deps.Reservations != nil {
		out = append(out, s.deps.Reservations)
	}
	return out
}
