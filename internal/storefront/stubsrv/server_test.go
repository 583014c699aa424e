package stubsrv

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pac-william/mercado/internal/storefront/api"
	"github.com/pac-william/mercado/internal/storefront/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := CreateNewServer(nil)
	require.NoError(t, err)
	s.MountHandlers()
	return s
}

func executeTestRequest(t *testing.T, s *Server, req *http.Request, token string) *httptest.ResponseRecorder {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func tokenFor(t *testing.T, s *Server, id string) string {
	t.Helper()
	for _, u := range s.cfg.Users {
		if u.ID == id {
			tok, err := session.SignToken(session.User{ID: u.ID, Name: u.Name, Email: u.Email, Role: session.Role(u.Role)},
				[]byte(s.cfg.SigningKey), time.Now(), time.Hour)
			require.NoError(t, err)
			return tok
		}
	}
	t.Fatalf("no seed user %s", id)
	return ""
}

func message(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Message
}

func TestGetVersion(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, "/api/version", nil)
	rr := executeTestRequest(t, s, req, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	var rsp GetVersionRsp
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rsp))
	assert.Equal(t, ApiVersion, rsp.ApiVersion)
	assert.Equal(t, ServerVersion, rsp.ServerVersion)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rr := executeTestRequest(t, s, req, "")
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"ana@mercado.dev","password":"ana123"}`))
	rr := executeTestRequest(t, s, req, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var tok api.Token
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tok))
	user, err := session.VerifyToken(tok.Token, []byte(s.cfg.SigningKey))
	require.NoError(t, err)
	assert.Equal(t, "u-ana", user.ID)
	assert.Equal(t, session.RoleCustomer, user.Role)

	req, _ = http.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"ana@mercado.dev","password":"wrong"}`))
	rr = executeTestRequest(t, s, req, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Credenciais inválidas", message(t, rr))

	req, _ = http.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":""}`))
	rr = executeTestRequest(t, s, req, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/orders", nil)
	rr := executeTestRequest(t, s, req, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Token de acesso ausente", message(t, rr))

	req, _ = http.NewRequest(http.MethodGet, "/api/orders", nil)
	rr = executeTestRequest(t, s, req, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Token inválido ou expirado", message(t, rr))
}

func TestOrdersByRole(t *testing.T) {
	s := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/orders", nil)
	rr := executeTestRequest(t, s, req, tokenFor(t, s, "u-central"))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req, _ = http.NewRequest(http.MethodGet, "/api/orders", nil)
	rr = executeTestRequest(t, s, req, tokenFor(t, s, "u-ana"))
	require.Equal(t, http.StatusOK, rr.Code)
	var rsp struct {
		Orders []api.Order  `json:"orders"`
		Meta   api.PageMeta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rsp))
	assert.Len(t, rsp.Orders, 4)
	assert.Equal(t, "pending", rsp.Orders[0].Status)

	req, _ = http.NewRequest(http.MethodGet, "/api/orders", nil)
	rr = executeTestRequest(t, s, req, tokenFor(t, s, "u-admin"))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rsp))
	assert.Equal(t, 1, rsp.Meta.TotalPages)
	assert.Len(t, rsp.Orders, 8)
}

func TestProductsQuery(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name      string
		query     string
		status    int
		wantItems int
		wantMeta  api.PageMeta
	}{
		{"first page", "", http.StatusOK, 10, api.PageMeta{TotalPages: 3, CurrentPage: 1, Size: 10}},
		{"last page", "page=3", http.StatusOK, 5, api.PageMeta{TotalPages: 3, CurrentPage: 3, Size: 10}},
		{"past the end", "page=5", http.StatusOK, 0, api.PageMeta{TotalPages: 3, CurrentPage: 5, Size: 10}},
		{"name filter", "name=LEITE", http.StatusOK, 2, api.PageMeta{TotalPages: 1, CurrentPage: 1, Size: 10}},
		{"no match", "name=caviar", http.StatusOK, 0, api.PageMeta{TotalPages: 0, CurrentPage: 1, Size: 10}},
		{"custom size", "size=5&page=2", http.StatusOK, 5, api.PageMeta{TotalPages: 5, CurrentPage: 2, Size: 5}},
		{"bad page", "page=abc", http.StatusBadRequest, 0, api.PageMeta{}},
		{"bad sort", "sort=color", http.StatusBadRequest, 0, api.PageMeta{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/api/products?"+tt.query, nil)
			rr := executeTestRequest(t, s, req, "")
			require.Equal(t, tt.status, rr.Code)
			if tt.status != http.StatusOK {
				assert.NotEmpty(t, message(t, rr))
				return
			}
			var rsp struct {
				Products []api.Product `json:"products"`
				Meta     api.PageMeta  `json:"meta"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rsp))
			assert.Len(t, rsp.Products, tt.wantItems)
			assert.Equal(t, tt.wantMeta, rsp.Meta)
		})
	}
}

func TestProductsSortedByPrice(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, "/api/products?sort=-price&size=3", nil)
	rr := executeTestRequest(t, s, req, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var rsp struct {
		Products []api.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rsp))
	require.Len(t, rsp.Products, 3)
	assert.Equal(t, "Queijo muçarela", rsp.Products[0].Name)
	assert.GreaterOrEqual(t, rsp.Products[1].Price, rsp.Products[2].Price)
}

func TestSuggestionLifecycle(t *testing.T) {
	s := newTestServer(t)
	ana := tokenFor(t, s, "u-ana")

	req, _ := http.NewRequest(http.MethodPost, "/api/suggestions", strings.NewReader(`{"query":"  "}`))
	rr := executeTestRequest(t, s, req, ana)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "A consulta não pode ser vazia", message(t, rr))

	req, _ = http.NewRequest(http.MethodPost, "/api/suggestions", strings.NewReader(`{"query":"macarrão com molho de tomate"}`))
	rr = executeTestRequest(t, s, req, ana)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created api.SuggestionResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "/api/suggestions/"+created.ID, rr.Header().Get("Location"))

	req, _ = http.NewRequest(http.MethodGet, "/api/suggestions/"+created.ID, nil)
	rr = executeTestRequest(t, s, req, ana)
	require.Equal(t, http.StatusOK, rr.Code)
	var sug api.Suggestion
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sug))
	var names []string
	for _, it := range sug.Items {
		names = append(names, it.Name)
	}
	assert.Contains(t, names, "Macarrão espaguete")
	assert.Contains(t, names, "Molho de tomate")

	// other customers cannot see it
	req, _ = http.NewRequest(http.MethodGet, "/api/suggestions/"+created.ID, nil)
	rr = executeTestRequest(t, s, req, tokenFor(t, s, "u-bruno"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req, _ = http.NewRequest(http.MethodDelete, "/api/suggestions/"+created.ID, nil)
	rr = executeTestRequest(t, s, req, ana)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	req, _ = http.NewRequest(http.MethodGet, "/api/suggestions/"+created.ID, nil)
	rr = executeTestRequest(t, s, req, ana)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Sugestão não encontrada", message(t, rr))
}

func TestCancelOrder(t *testing.T) {
	s := newTestServer(t)
	ana := tokenFor(t, s, "u-ana")

	req, _ := http.NewRequest(http.MethodPut, "/api/orders/o-001/cancel", strings.NewReader(`{}`))
	rr := executeTestRequest(t, s, req, ana)
	require.Equal(t, http.StatusOK, rr.Code)

	req, _ = http.NewRequest(http.MethodPut, "/api/orders/o-001/cancel", strings.NewReader(`{}`))
	rr = executeTestRequest(t, s, req, ana)
	assert.Equal(t, http.StatusConflict, rr.Code)

	req, _ = http.NewRequest(http.MethodPut, "/api/orders/o-005/cancel", strings.NewReader(`{}`))
	rr = executeTestRequest(t, s, req, ana)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "stub.toml")
	content := `
port = "9191"
log_level = "debug"
handle_cors = false
signing_key = "k"
token_ttl = "30m"
suggestion_delay = "2s"
default_page_size = 4

[[markets]]
id = "m-1"
name = "Quitanda"
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	cfg, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "9191", cfg.Port)
	assert.False(t, cfg.HandleCORS)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 2*time.Second, cfg.SuggestionDelay)
	assert.Equal(t, 4, cfg.DefaultPageSize)
	require.Len(t, cfg.Markets, 1)
	assert.Equal(t, "Quitanda", cfg.Markets[0].Name)
	assert.NotEmpty(t, cfg.Products)

	require.NoError(t, os.WriteFile(file, []byte(`token_ttl = "soon"`), 0o600))
	_, err = LoadConfig(file)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	page, meta := paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, api.PageMeta{TotalPages: 3, CurrentPage: 2, Size: 2}, meta)

	page, meta = paginate(items, 4, 2)
	assert.Empty(t, page)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 4, meta.CurrentPage)
}
