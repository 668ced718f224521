// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"
	"time"

	xlog "github.com/ManuGH/hafeeds/internal/log"
)

// AccessLog logs one line per request after the handler returned.
// Probe and scrape endpoints log at debug level.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := newStatusWriter(w)

		next.ServeHTTP(sw, r)

		logger := xlog.WithComponentFromContext(r.Context(), "api")
		ev := logger.Info()
		switch {
		case sw.statusCode >= http.StatusInternalServerError:
			ev = logger.Error()
		case isQuietPath(r.URL.Path):
			ev = logger.Debug()
		}
		if traceID, _ := ExtractTraceContext(r); traceID != "" {
			ev = ev.Str("trace_id", traceID)
		}
		ev.Str(xlog.FieldEvent, "http.request").
			Str("method", r.Method).
			Str(xlog.FieldPath, r.URL.Path).
			Str("route", routeLabel(r)).
			Int(xlog.FieldStatus, sw.statusCode).
			Int("bytes", sw.bytesWritten).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("request served")
	})
}

func isQuietPath(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/metrics":
		return true
	}
	return false
}
