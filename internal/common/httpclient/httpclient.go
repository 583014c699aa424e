// Package httpclient is the request gateway between the storefront controllers
// and the backend API. It attaches the session token, disables caching and
// maps every non-2xx response onto the apperrors taxonomy.
package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/pac-william/mercado/internal/common/apperrors"
	"github.com/pac-william/mercado/internal/common/uuid"
	"github.com/pac-william/mercado/internal/storefront/session"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RequestIDHeader carries the per-request id generated by the gateway.
const RequestIDHeader = "X-Request-ID"

// DefaultTimeout applies when the Configurator reports none.
const DefaultTimeout = 30 * time.Second

// Configurator provides the backend location and transport settings.
type Configurator interface {
	GetServerURL() string
	GetTimeout() time.Duration
}

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient is the request gateway. It holds only immutable configuration and is
// safe for concurrent use by several controllers.
type HTTPClient struct {
	config   Configurator
	sessions session.Accessor
	doer     Doer
}

// ClientOptions contains options for configuring the HTTP client.
type ClientOptions struct {
	DisableCertValidation bool // skips TLS certificate validation, for self-signed dev backends
	Doer                  Doer // overrides the transport; used by tests
}

// NewClient creates a gateway for the backend described by config. sessions may be
// nil, in which case every authenticated call fails with Unauthenticated.
func NewClient(config Configurator, sessions session.Accessor, opts ...ClientOptions) *HTTPClient {
	clientOpts := ClientOptions{}
	if len(opts) > 0 {
		clientOpts = opts[0]
	}
	if sessions == nil {
		sessions = session.None
	}

	doer := clientOpts.Doer
	if doer == nil {
		timeout := config.GetTimeout()
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient := &http.Client{Timeout: timeout}
		if clientOpts.DisableCertValidation {
			httpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
			}
		}
		doer = httpClient
	}

	return &HTTPClient{
		config:   config,
		sessions: sessions,
		doer:     doer,
	}
}

// RequestOptions describes one backend call.
type RequestOptions struct {
	Method       string     // HTTP method (GET, POST, PUT, PATCH, DELETE)
	Path         string     // escaped API endpoint path, relative to the server URL
	QueryParams  url.Values // optional query parameters
	Body         any        // optional body; []byte is sent as-is, anything else is JSON encoded
	AuthRequired bool       // attach the session bearer token, failing fast without one
}

// DoRequest makes an HTTP request with the given options.
// Returns the response body, Location header (if present), and any error that occurred.
// Errors are always apperrors.Error values of a gateway kind.
func (c *HTTPClient) DoRequest(ctx context.Context, opts RequestOptions) ([]byte, string, error) {
	var token string
	if opts.AuthRequired {
		s, ok := c.sessions.GetSession()
		if !ok || s == nil || s.Token == "" {
			return nil, "", apperrors.ErrUnauthenticated.New("sign in to continue")
		}
		token = s.Token
	}

	u, err := url.Parse(c.config.GetServerURL())
	if err != nil {
		return nil, "", apperrors.ErrTransport.MsgErr("invalid server URL", err)
	}
	escaped := path.Join("/", u.EscapedPath(), opts.Path)
	if u.Path, err = url.PathUnescape(escaped); err != nil {
		return nil, "", apperrors.ErrTransport.MsgErr("invalid request path", err)
	}
	u.RawPath = escaped
	if len(opts.QueryParams) > 0 {
		u.RawQuery = opts.QueryParams.Encode()
	}

	var bodyReader io.Reader
	hasBody := false
	if opts.Body != nil && opts.Method != http.MethodGet && opts.Method != http.MethodDelete {
		payload, err := encodeBody(opts.Body)
		if err != nil {
			return nil, "", apperrors.ErrValidationFailed.MsgErr("unable to encode request body", err)
		}
		bodyReader = bytes.NewReader(payload)
		hasBody = true
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, u.String(), bodyReader)
	if err != nil {
		return nil, "", apperrors.ErrTransport.MsgErr("failed to create request", err)
	}
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store, max-age=0")
	req.Header.Set("Pragma", "no-cache")
	requestID := uuid.NewID("req")
	req.Header.Set(RequestIDHeader, requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("request_id", requestID).Str("method", opts.Method).Str("path", u.Path).Msg("request failed")
		return nil, "", apperrors.ErrTransport.MsgErr("request failed", errors.Wrapf(err, "%s %s", opts.Method, u.Path))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", apperrors.ErrTransport.MsgErr("failed to read response body", errors.WithStack(err))
	}

	log.Debug().
		Str("request_id", requestID).
		Str("method", opts.Method).
		Str("path", u.Path).
		Int("status", resp.StatusCode).
		Str("duration", time.Since(start).String()).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", classify(resp.StatusCode, body, opts.Path)
	}

	return body, resp.Header.Get("Location"), nil
}

// DoJSON makes a request and decodes the response into out.
func (c *HTTPClient) DoJSON(ctx context.Context, opts RequestOptions, out any) error {
	body, _, err := c.DoRequest(ctx, opts)
	if err != nil {
		return err
	}
	return DecodeJSON(body, out)
}

// DecodeJSON decodes a successful response body. Non-JSON is a transport error.
func DecodeJSON(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return apperrors.ErrTransport.New("empty response from server")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.ErrTransport.MsgErr("unexpected response from server", err)
	}
	return nil
}

// CreateResource posts body to resourcePath.
func (c *HTTPClient) CreateResource(ctx context.Context, resourcePath string, body any, authRequired bool) ([]byte, string, error) {
	return c.DoRequest(ctx, RequestOptions{
		Method:       http.MethodPost,
		Path:         resourcePath,
		Body:         body,
		AuthRequired: authRequired,
	})
}

// GetResource retrieves resourceName under resourceType.
func (c *HTTPClient) GetResource(ctx context.Context, resourceType, resourceName string, queryParams url.Values, authRequired bool) ([]byte, error) {
	body, _, err := c.DoRequest(ctx, RequestOptions{
		Method:       http.MethodGet,
		Path:         resourcePath(resourceType, resourceName),
		QueryParams:  queryParams,
		AuthRequired: authRequired,
	})
	return body, err
}

// UpdateResource replaces the resource at resourcePath. Updates always require a session.
func (c *HTTPClient) UpdateResource(ctx context.Context, resourcePath string, body any) ([]byte, error) {
	rsp, _, err := c.DoRequest(ctx, RequestOptions{
		Method:       http.MethodPut,
		Path:         resourcePath,
		Body:         body,
		AuthRequired: true,
	})
	return rsp, err
}

// DeleteResource deletes resourceName under resourceType. Deletes always require a session.
func (c *HTTPClient) DeleteResource(ctx context.Context, resourceType, resourceName string) error {
	_, _, err := c.DoRequest(ctx, RequestOptions{
		Method:       http.MethodDelete,
		Path:         resourcePath(resourceType, resourceName),
		AuthRequired: true,
	})
	return err
}

// ListResources lists resourceType filtered by queryParams.
func (c *HTTPClient) ListResources(ctx context.Context, resourceType string, queryParams url.Values, authRequired bool) ([]byte, error) {
	body, _, err := c.DoRequest(ctx, RequestOptions{
		Method:       http.MethodGet,
		Path:         resourceType,
		QueryParams:  queryParams,
		AuthRequired: authRequired,
	})
	return body, err
}

// resourcePath joins a collection and an item name. The name is a single path
// segment: "/" and ".." inside it are escaped, never interpreted.
func resourcePath(resourceType, resourceName string) string {
	resourceType = strings.Trim(resourceType, "/")
	return resourceType + "/" + url.PathEscape(resourceName)
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return json.Marshal(body)
	}
}

// classify maps a non-2xx response onto the error taxonomy. Backend detail from
// a JSON {message} body is kept for client errors; server errors stay generic.
func classify(status int, body []byte, requestPath string) apperrors.Error {
	kind := apperrors.KindFromStatus(status)
	base := apperrors.Sentinel(kind)

	detail := ""
	if gjson.ValidBytes(body) {
		detail = gjson.GetBytes(body, "message").String()
		if detail == "" {
			detail = gjson.GetBytes(body, "error").String()
		}
	}

	switch kind {
	case apperrors.KindValidationFailed, apperrors.KindConflict:
	case apperrors.KindNotFound:
		if detail == "" {
			detail = notFoundMessage(requestPath)
		}
	default:
		if detail != "" {
			log.Debug().Int("status", status).Str("detail", detail).Msg("backend error detail suppressed")
		}
		detail = ""
	}
	if detail == "" {
		detail = base.Error()
	}
	return base.New(detail).SetStatusCode(status)
}

// notFoundMessage names the missing resource from the first path segment,
// e.g. "/products/42" becomes "products not found".
func notFoundMessage(requestPath string) string {
	p := strings.Trim(requestPath, "/")
	if p == "" {
		return apperrors.ErrNotFound.Error()
	}
	if i := strings.Index(p, "/"); i >= 0 {
		p = p[:i]
	}
	return p + " not found"
}
