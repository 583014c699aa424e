package logtrace

import (
	"context"
)

type requestIdContextKey string

const requestIdKey = requestIdContextKey("requestId")

// WithRequestId stores a request ID in the context.
func WithRequestId(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIdKey, id)
}

// RequestIdFromContext extracts the request ID from the context.
// Returns an empty string if the context is nil or if no request ID is found.
func RequestIdFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	r, ok := ctx.Value(requestIdKey).(string)
	if !ok {
		return ""
	}
	return r
}

// IsTraceEnabled reports whether route tracing was switched on with EnableTrace.
func IsTraceEnabled() bool {
	return traceEnabled
}

var traceEnabled bool

// EnableTrace turns route tracing on or off.
func EnableTrace(on bool) {
	traceEnabled = on
}
