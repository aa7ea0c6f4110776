// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

// Package middleware provides HTTP middleware shared across feedrank
// routes: request ID propagation and Prometheus instrumentation. Generic
// concerns like compression and panic recovery come from chi's middleware
// collection in the router.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tastetrail/feedrank/internal/logging"
)

// requestIDHeader carries the ID between client, proxy, and response.
const requestIDHeader = "X-Request-ID"

// RequestID assigns each request a unique ID, honoring one supplied by an
// upstream proxy, and propagates it through the response header and the
// logging context. Handlers read it back with logging.RequestIDFromContext.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set(requestIDHeader, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
