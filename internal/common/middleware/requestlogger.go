// Package middleware provides HTTP middleware for the stub backend: request logging with
// request ids, timeouts and panic recovery, all logging through zerolog.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pac-william/mercado/internal/common/httpx"
	"github.com/pac-william/mercado/internal/common/logtrace"
	"github.com/pac-william/mercado/internal/common/uuid"
)

// RequestIDHeader is shared with the gateway, which sets it on every call.
const RequestIDHeader = "X-Request-ID"

// RequestLogger logs each request and attaches a request id to the context and
// response headers. An incoming X-Request-ID is reused so client and server
// log lines correlate.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewID("fallback")
		}
		ctx = logtrace.WithRequestId(ctx, requestID)
		ctx = log.With().Str("request_id", requestID).Logger().WithContext(ctx)

		w.Header().Set(RequestIDHeader, requestID)
		rw := httpx.NewResponseWriter(w)

		log.Ctx(ctx).Info().
			Str("requestMethod", r.Method).
			Str("requestPath", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Str("remoteIP", r.RemoteAddr).
			Msg("incoming request")

		defer func() {
			log.Ctx(ctx).Info().
				Int("status", rw.Status()).
				Str("duration", fmt.Sprintf("%dms", time.Since(start).Milliseconds())).
				Msg("request completed")
		}()

		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}
