// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package api

import (
	"net/http"

	"github.com/kindredapp/resonance/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// requestID attaches a request id to the response header, the request
// context, and the request-scoped logger. Caller-supplied ids are kept.
func requestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = logging.GenerateRequestID()
			}
			w.Header().Set(requestIDHeader, id)

			ctx := logging.ContextWithRequestID(r.Context(), id)
			ctx = logging.ContextWithLogger(ctx, logging.With().Str("request_id", id).Logger())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
