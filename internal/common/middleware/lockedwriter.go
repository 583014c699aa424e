package middleware

import (
	"net/http"
	"sync"

	"github.com/pac-william/mercado/internal/common/httpx"
)

// lockedWriter serializes writes between a handler goroutine and the timeout
// path; once timed out, further handler writes are discarded.
type lockedWriter struct {
	mu       sync.Mutex
	rw       *httpx.ResponseWriter
	timedOut bool
}

func (l *lockedWriter) Header() http.Header {
	return l.rw.Header()
}

func (l *lockedWriter) WriteHeader(code int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timedOut {
		return
	}
	l.rw.WriteHeader(code)
}

func (l *lockedWriter) Write(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	return l.rw.Write(b)
}

func (l *lockedWriter) timeout() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.rw.Written() {
		httpx.ErrRequestTimeout().Send(l.rw)
	}
	l.timedOut = true
}
