// Package api is the function-per-endpoint layer of the storefront. Each function
// builds one gateway call and decodes its typed result; status handling lives in
// the gateway, so every endpoint fails with the same error taxonomy.
package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/pac-william/mercado/internal/common/apperrors"
	"github.com/pac-william/mercado/internal/common/httpclient"
	"github.com/pac-william/mercado/internal/storefront/session"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client exposes the backend endpoints used by the storefront controllers.
type Client struct {
	gw httpclient.HTTPClientInterface
}

// New returns an endpoint client on top of gw.
func New(gw httpclient.HTTPClientInterface) *Client {
	return &Client{gw: gw}
}

// CreateSuggestion asks the backend to compute a recipe/shopping-list suggestion.
// The call may take a long time; it is not retried.
func (c *Client) CreateSuggestion(ctx context.Context, query string) (SuggestionResult, error) {
	var res SuggestionResult
	body, err := sjson.SetBytes([]byte(`{}`), "query", query)
	if err != nil {
		return res, apperrors.ErrValidationFailed.MsgErr("unable to build request", err)
	}
	rsp, _, err := c.gw.CreateResource(ctx, "suggestions", body, true)
	if err != nil {
		return res, err
	}
	if err := httpclient.DecodeJSON(rsp, &res); err != nil {
		return res, err
	}
	return res, checkResponse(&res)
}

// GetSuggestion fetches a suggestion created earlier.
func (c *Client) GetSuggestion(ctx context.Context, id string) (Suggestion, error) {
	var s Suggestion
	rsp, err := c.gw.GetResource(ctx, "suggestions", id, nil, true)
	if err != nil {
		return s, err
	}
	err = httpclient.DecodeJSON(rsp, &s)
	return s, err
}

// DeleteSuggestion removes a suggestion the user no longer wants.
func (c *Client) DeleteSuggestion(ctx context.Context, id string) error {
	return c.gw.DeleteResource(ctx, "suggestions", id)
}

// ListProducts lists the public product catalogue.
func (c *Client) ListProducts(ctx context.Context, q url.Values) (Page[Product], error) {
	return listPage[Product](ctx, c.gw, "products", "products", q, false)
}

// ListMarkets lists the public market directory.
func (c *Client) ListMarkets(ctx context.Context, q url.Values) (Page[Market], error) {
	return listPage[Market](ctx, c.gw, "markets", "markets", q, false)
}

// ListOrders lists the signed-in user's orders.
func (c *Client) ListOrders(ctx context.Context, q url.Values) (Page[Order], error) {
	return listPage[Order](ctx, c.gw, "orders", "orders", q, true)
}

// CancelOrder cancels a pending order. Orders that already left the pending
// state fail with a Conflict error.
func (c *Client) CancelOrder(ctx context.Context, id string) (Order, error) {
	var o Order
	rsp, err := c.gw.UpdateResource(ctx, "orders/"+url.PathEscape(id)+"/cancel", []byte(`{}`))
	if err != nil {
		return o, err
	}
	err = httpclient.DecodeJSON(rsp, &o)
	return o, err
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (Token, error) {
	var tok Token
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return tok, apperrors.ErrValidationFailed.New("email and password are required")
	}
	body, err := sjson.SetBytes([]byte(`{}`), "email", email)
	if err == nil {
		body, err = sjson.SetBytes(body, "password", password)
	}
	if err != nil {
		return tok, apperrors.ErrValidationFailed.MsgErr("unable to build request", err)
	}
	rsp, _, err := c.gw.CreateResource(ctx, "auth/login", body, false)
	if err != nil {
		return tok, err
	}
	if err := httpclient.DecodeJSON(rsp, &tok); err != nil {
		return tok, err
	}
	return tok, checkResponse(&tok)
}

// Me returns the user the backend associates with the current session.
func (c *Client) Me(ctx context.Context) (session.User, error) {
	var u session.User
	err := c.gw.DoJSON(ctx, httpclient.RequestOptions{
		Method:       http.MethodGet,
		Path:         "auth/me",
		AuthRequired: true,
	}, &u)
	return u, err
}

// listPage fetches one page of resource. The backend nests items under a
// resource-specific key (falling back to "items") next to "meta".
func listPage[T any](ctx context.Context, gw httpclient.HTTPClientInterface, resource, itemsKey string, q url.Values, auth bool) (Page[T], error) {
	var page Page[T]
	rsp, err := gw.ListResources(ctx, resource, q, auth)
	if err != nil {
		return page, err
	}
	if !gjson.ValidBytes(rsp) {
		return page, apperrors.ErrTransport.New("unexpected response from server")
	}

	items := gjson.GetBytes(rsp, itemsKey)
	if !items.Exists() {
		items = gjson.GetBytes(rsp, "items")
	}
	if items.Exists() && items.Type != gjson.Null {
		if err := json.Unmarshal([]byte(items.Raw), &page.Items); err != nil {
			return page, apperrors.ErrTransport.MsgErr("unexpected response from server", err)
		}
	}

	meta := gjson.GetBytes(rsp, "meta")
	if !meta.Exists() {
		return page, apperrors.ErrTransport.New("response is missing pagination metadata")
	}
	if err := json.Unmarshal([]byte(meta.Raw), &page.Meta); err != nil {
		return page, apperrors.ErrTransport.MsgErr("unexpected response from server", err)
	}
	if err := checkResponse(&page.Meta); err != nil {
		return page, err
	}
	return page, nil
}
