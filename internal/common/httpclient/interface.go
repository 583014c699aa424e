// Package httpclient is the request gateway between the storefront controllers and the
// REST backend. It attaches bearer credentials from an injected session accessor,
// serializes JSON bodies, disables caching, and classifies every non-2xx response into
// the closed apperrors taxonomy.
package httpclient

import (
	"context"
	"net/url"
)

// HTTPClientInterface defines the gateway operations used by the endpoint layer.
type HTTPClientInterface interface {
	// DoRequest makes an HTTP request with the given options.
	// Returns the response body, Location header (if present), and any error that occurred.
	DoRequest(ctx context.Context, opts RequestOptions) ([]byte, string, error)

	// DoJSON makes a request and decodes the JSON response body into out.
	// A 2xx response that is not valid JSON fails with a transport error.
	DoJSON(ctx context.Context, opts RequestOptions, out any) error

	// CreateResource posts body to resourcePath.
	CreateResource(ctx context.Context, resourcePath string, body any, authRequired bool) ([]byte, string, error)

	// GetResource retrieves resourceName under resourceType.
	GetResource(ctx context.Context, resourceType, resourceName string, queryParams url.Values, authRequired bool) ([]byte, error)

	// UpdateResource replaces the resource at resourcePath with body.
	UpdateResource(ctx context.Context, resourcePath string, body any) ([]byte, error)

	// DeleteResource deletes resourceName under resourceType.
	DeleteResource(ctx context.Context, resourceType, resourceName string) error

	// ListResources lists resourceType filtered by queryParams.
	ListResources(ctx context.Context, resourceType string, queryParams url.Values, authRequired bool) ([]byte, error)
}

var _ HTTPClientInterface = &HTTPClient{}
