package api_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pac-william/mercado/internal/common/apperrors"
	"github.com/pac-william/mercado/internal/common/httpclient"
	"github.com/pac-william/mercado/internal/storefront/api"
	"github.com/pac-william/mercado/internal/storefront/session"
	"github.com/pac-william/mercado/internal/storefront/stubsrv"
)

type testSetup struct {
	srv  *stubsrv.Server
	cfg  *stubsrv.Config
	doer *httpclient.HandlerDoer
	api  *api.Client
}

func setupTest(t *testing.T, sessions session.Accessor) *testSetup {
	t.Helper()
	cfg := stubsrv.DefaultConfig()
	srv, err := stubsrv.CreateNewServer(cfg)
	require.NoError(t, err)
	srv.MountHandlers()
	gw, doer := httpclient.NewTestClient(srv.Router, sessions)
	return &testSetup{srv: srv, cfg: cfg, doer: doer, api: api.New(gw)}
}

func signedIn(t *testing.T, cfg *stubsrv.Config, id string) session.Accessor {
	t.Helper()
	for _, u := range cfg.Users {
		if u.ID != id {
			continue
		}
		user := session.User{ID: u.ID, Name: u.Name, Email: u.Email, Role: session.Role(u.Role)}
		tok, err := session.SignToken(user, []byte(cfg.SigningKey), time.Now(), time.Hour)
		require.NoError(t, err)
		return session.Static(&session.Session{Token: tok, User: user})
	}
	t.Fatalf("unknown user %s", id)
	return nil
}

func TestListProducts(t *testing.T) {
	ts := setupTest(t, nil)
	ctx := context.Background()

	page, err := ts.api.ListProducts(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, api.PageMeta{TotalPages: 3, CurrentPage: 1, Size: 10}, page.Meta)

	page, err = ts.api.ListProducts(ctx, url.Values{"name": {"leite"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Leite desnatado", page.Items[0].Name)

	page, err = ts.api.ListProducts(ctx, url.Values{"page": {"5"}})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 5, page.Meta.CurrentPage)
	assert.Equal(t, 3, page.Meta.TotalPages)

	_, err = ts.api.ListProducts(ctx, url.Values{"sort": {"color"}})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
	assert.Equal(t, "Ordenação inválida: color", err.Error())
}

func TestListMarkets(t *testing.T) {
	ts := setupTest(t, nil)
	page, err := ts.api.ListMarkets(context.Background(), url.Values{"sort": {"-name"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 4)
	assert.Equal(t, "Mercado Central", page.Items[0].Name)
	assert.Equal(t, "Atacadão Popular", page.Items[3].Name)
}

func TestListOrdersRequiresSession(t *testing.T) {
	ts := setupTest(t, session.None)
	_, err := ts.api.ListOrders(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	assert.Equal(t, int64(0), ts.doer.Requests())
}

func TestListOrdersForbiddenForMarkets(t *testing.T) {
	cfg := stubsrv.DefaultConfig()
	ts := setupTest(t, signedIn(t, cfg, "u-central"))
	_, err := ts.api.ListOrders(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, "access denied", err.Error())
}

func TestExpiredTokenIsUnauthenticated(t *testing.T) {
	cfg := stubsrv.DefaultConfig()
	user := session.User{ID: "u-ana", Role: session.RoleCustomer}
	tok, err := session.SignToken(user, []byte(cfg.SigningKey), time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	ts := setupTest(t, session.Static(&session.Session{Token: tok, User: user}))
	_, err = ts.api.ListOrders(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
	assert.Equal(t, int64(1), ts.doer.Requests())
}

func TestLoginAndMe(t *testing.T) {
	ts := setupTest(t, nil)
	ctx := context.Background()

	_, err := ts.api.Login(ctx, " ", "x")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
	assert.Equal(t, int64(0), ts.doer.Requests())

	_, err = ts.api.Login(ctx, "ana@mercado.dev", "wrong")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))

	tok, err := ts.api.Login(ctx, "ana@mercado.dev", "ana123")
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.True(t, tok.ExpiresAt.After(time.Now()))

	gw, _ := httpclient.NewTestClient(ts.srv.Router, session.Static(&session.Session{Token: tok.Token}))
	me, err := api.New(gw).Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u-ana", me.ID)
	assert.Equal(t, session.RoleCustomer, me.Role)
}

func TestSuggestions(t *testing.T) {
	cfg := stubsrv.DefaultConfig()
	ts := setupTest(t, signedIn(t, cfg, "u-ana"))
	ctx := context.Background()

	_, err := ts.api.CreateSuggestion(ctx, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, "A consulta não pode ser vazia", err.Error())

	res, err := ts.api.CreateSuggestion(ctx, "café com leite")
	require.NoError(t, err)
	require.NotEmpty(t, res.ID)

	sug, err := ts.api.GetSuggestion(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "café com leite", sug.Query)
	assert.NotEmpty(t, sug.Items)

	require.NoError(t, ts.api.DeleteSuggestion(ctx, res.ID))

	_, err = ts.api.GetSuggestion(ctx, res.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.Equal(t, "Sugestão não encontrada", err.Error())
}

func TestCancelOrderConflict(t *testing.T) {
	cfg := stubsrv.DefaultConfig()
	ts := setupTest(t, signedIn(t, cfg, "u-ana"))
	ctx := context.Background()

	o, err := ts.api.CancelOrder(ctx, "o-001")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", o.Status)

	_, err = ts.api.CancelOrder(ctx, "o-001")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, http.StatusConflict, err.(apperrors.Error).StatusCode())
}

func TestMalformedPayloadsAreTransportErrors(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/products", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[]}`))
	})
	r.Get("/api/markets", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":"m1","name":"X"}],"meta":{"totalPages":1,"currentPage":0,"size":10}}`))
	})
	r.Post("/api/suggestions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	})
	gw, _ := httpclient.NewTestClient(r, session.Static(&session.Session{Token: "t"}))
	c := api.New(gw)
	ctx := context.Background()

	_, err := c.ListProducts(ctx, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindTransportError))

	_, err = c.ListMarkets(ctx, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindTransportError))

	_, err = c.CreateSuggestion(ctx, "pão")
	assert.True(t, apperrors.IsKind(err, apperrors.KindTransportError))
}
