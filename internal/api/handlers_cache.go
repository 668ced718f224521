// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/hafeeds/internal/fsutil"
	xlog "github.com/ManuGH/hafeeds/internal/log"
)

type cacheEntry struct {
	ID         string     `json:"id"`
	LastUpdate *time.Time `json:"last_update"`
}

type cacheInfoResponse struct {
	Backend   string       `json:"backend"`
	SizeBytes int64        `json:"size_bytes"`
	Entries   []cacheEntry `json:"entries"`
}

type cacheClearResponse struct {
	Cleared []string `json:"cleared"`
}

// handleCacheInfo lists the cached channels with their last update.
func (s *Server) handleCacheInfo(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		writeServiceUnavailable(w, "cache not configured")
		return
	}
	ctx := r.Context()
	resp := cacheInfoResponse{
		Backend:   s.deps.Store.Backend(),
		SizeBytes: s.deps.Store.SizeBytes(ctx),
		Entries:   make([]cacheEntry, 0),
	}
	for _, key := range s.deps.Store.Keys(ctx) {
		e := cacheEntry{ID: key}
		if ts, ok := s.deps.Store.LastUpdate(ctx, key); ok {
			e.LastUpdate = &ts
		}
		resp.Entries = append(resp.Entries, e)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCacheClearAll drops every cached channel.
func (s *Server) handleCacheClearAll(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		writeServiceUnavailable(w, "cache not configured")
		return
	}
	ctx := r.Context()
	keys := s.deps.Store.Keys(ctx)
	if err := s.deps.Store.ClearAll(ctx); err != nil {
		writeInternalError(w, err)
		return
	}
	logger := xlog.WithComponentFromContext(ctx, "api")
	logger.Info().
		Str(xlog.FieldEvent, "cache.cleared").
		Int(xlog.FieldCount, len(keys)).
		Msg("cache cleared")
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, cacheClearResponse{Cleared: keys})
}

// handleCacheClear drops one cached channel.
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		writeServiceUnavailable(w, "cache not configured")
		return
	}
	id := chi.URLParam(r, "id")
	if err := fsutil.ValidateName(id); err != nil {
		writeBadRequest(w, err)
		return
	}
	ctx := r.Context()
	if err := s.deps.Store.Clear(ctx, id); err != nil {
		writeInternalError(w, err)
		return
	}
	logger := xlog.WithComponentFromContext(ctx, "api")
	logger.Info().
		Str(xlog.FieldEvent, "cache.cleared").
		Str(xlog.FieldChannel, id).
		Msg("cache entry cleared")
	writeJSON(w, http.StatusOK, cacheClearResponse{Cleared: []string{id}})
}
