// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// OriginCheck rejects state-changing requests (POST, PUT, DELETE, PATCH)
// whose Origin or Referer names a foreign site. Requests without either
// header come from non-browser clients (automations, curl) and pass.
//
//	r.Use(middleware.OriginCheck(allowedOrigins))
func OriginCheck(allowedOrigins []string) func(http.Handler) http.Handler {
	originsMap := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		originsMap[strings.TrimSuffix(origin, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut &&
				r.Method != http.MethodDelete && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			requestOrigin := getRequestOrigin(r)
			if requestOrigin == "" || originsMap[requestOrigin] || isSameOrigin(requestOrigin, r) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "cross-origin request not allowed",
			})
		})
	}
}

// getRequestOrigin extracts the origin from the request.
// It checks Origin header first (preferred), then falls back to Referer.
func getRequestOrigin(r *http.Request) string {
	origin := r.Header.Get("Origin")
	if origin != "" {
		return strings.TrimSuffix(origin, "/")
	}

	referer := r.Header.Get("Referer")
	if referer == "" {
		return ""
	}

	refererURL, err := url.Parse(referer)
	if err != nil || refererURL.Host == "" {
		// An unparseable Referer still marks a browser request.
		return "invalid"
	}
	return refererURL.Scheme + "://" + refererURL.Host
}

// isSameOrigin checks if the request origin matches the request's target origin.
func isSameOrigin(requestOrigin string, r *http.Request) bool {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	if r.Host == "" {
		return false
	}
	return requestOrigin == scheme+"://"+r.Host
}
