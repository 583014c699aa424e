package apperrors

import (
	"errors"
	"net/http"
)

// Kind is the closed taxonomy of failures surfaced by the request gateway.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindNotFound
	KindValidationFailed
	KindConflict
	KindForbidden
	KindServerError
	KindTransportError
)

var kindNames = map[Kind]string{
	KindUnknown:          "Unknown",
	KindUnauthenticated:  "Unauthenticated",
	KindNotFound:         "NotFound",
	KindValidationFailed: "ValidationFailed",
	KindConflict:         "Conflict",
	KindForbidden:        "Forbidden",
	KindServerError:      "ServerError",
	KindTransportError:   "TransportError",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Sentinels, one per kind. Gateway errors derive from these, so
// errors.Is(err, ErrNotFound) holds for every 404 regardless of endpoint.
var (
	ErrUnauthenticated  = NewKind(KindUnauthenticated, "authentication required").SetStatusCode(http.StatusUnauthorized)
	ErrNotFound         = NewKind(KindNotFound, "resource not found").SetStatusCode(http.StatusNotFound)
	ErrValidationFailed = NewKind(KindValidationFailed, "invalid request").SetStatusCode(http.StatusBadRequest)
	ErrConflict         = NewKind(KindConflict, "request conflicts with current state").SetStatusCode(http.StatusConflict)
	ErrForbidden        = NewKind(KindForbidden, "access denied").SetStatusCode(http.StatusForbidden)
	ErrServerError      = NewKind(KindServerError, "server failed to process the request").SetStatusCode(http.StatusInternalServerError)
	ErrTransport        = NewKind(KindTransportError, "unable to reach the server")
)

// Sentinel returns the root error for a kind. KindUnknown maps to ErrServerError's
// generic failure so callers always get a usable template.
func Sentinel(k Kind) Error {
	switch k {
	case KindUnauthenticated:
		return ErrUnauthenticated
	case KindNotFound:
		return ErrNotFound
	case KindValidationFailed:
		return ErrValidationFailed
	case KindConflict:
		return ErrConflict
	case KindForbidden:
		return ErrForbidden
	case KindTransportError:
		return ErrTransport
	default:
		return ErrServerError
	}
}

// KindFromStatus classifies a non-2xx HTTP status code.
func KindFromStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthenticated
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status >= 500:
		return KindServerError
	case status >= 400:
		return KindValidationFailed
	default:
		return KindServerError
	}
}

// KindOf recovers the taxonomy kind from any error chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var ae Error
	if errors.As(err, &ae) {
		return ae.Kind()
	}
	return KindUnknown
}

// IsKind reports whether err belongs to kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
