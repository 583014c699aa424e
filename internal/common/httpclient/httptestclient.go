package httpclient

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	"github.com/pac-william/mercado/internal/storefront/session"
)

// HandlerDoer serves requests directly from an http.Handler using
// httptest.NewRecorder, without opening a socket. It counts the requests it
// served so tests can assert that a call never reached the backend.
type HandlerDoer struct {
	Handler  http.Handler
	requests atomic.Int64
}

// Do implements Doer.
func (d *HandlerDoer) Do(req *http.Request) (*http.Response, error) {
	d.requests.Add(1)
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	if req.Body == nil {
		req.Body = http.NoBody
	}
	rr := httptest.NewRecorder()
	d.Handler.ServeHTTP(rr, req)
	return rr.Result(), nil
}

// Requests returns the number of requests served.
func (d *HandlerDoer) Requests() int64 {
	return d.requests.Load()
}

// StaticConfig is a fixed Configurator.
type StaticConfig struct {
	ServerURL string
	Timeout   time.Duration
}

func (c StaticConfig) GetServerURL() string      { return c.ServerURL }
func (c StaticConfig) GetTimeout() time.Duration { return c.Timeout }

// NewTestClient returns a gateway wired to handler in-process, together with the
// doer so callers can inspect request counts.
func NewTestClient(handler http.Handler, sessions session.Accessor) (*HTTPClient, *HandlerDoer) {
	doer := &HandlerDoer{Handler: handler}
	c := NewClient(StaticConfig{ServerURL: "http://backend.test/api"}, sessions, ClientOptions{Doer: doer})
	return c, doer
}
