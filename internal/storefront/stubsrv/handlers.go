package stubsrv

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/pac-william/mercado/internal/common/httpx"
	"github.com/pac-william/mercado/internal/storefront/api"
	"github.com/pac-william/mercado/internal/storefront/session"
)

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type suggestionReq struct {
	Query string `json:"query"`
}

func (s *Server) login(r *http.Request) (*httpx.Response, error) {
	var req loginReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, httpx.ErrInvalidRequest("Email e senha são obrigatórios")
	}
	user, ok := s.store.authenticate(strings.TrimSpace(req.Email), req.Password)
	if !ok {
		return nil, httpx.ErrUnAuthorized("Credenciais inválidas")
	}
	now := time.Now()
	token, err := session.SignToken(user, []byte(s.cfg.SigningKey), now, s.cfg.TokenTTL)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("unable to sign token")
		return nil, httpx.ErrApplicationError()
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   api.Token{Token: token, ExpiresAt: now.Add(s.cfg.TokenTTL).UTC()},
	}, nil
}

func (s *Server) me(r *http.Request) (*httpx.Response, error) {
	return &httpx.Response{StatusCode: http.StatusOK, Response: userFromContext(r.Context())}, nil
}

func (s *Server) listProducts(r *http.Request) (*httpx.Response, error) {
	q, err := parseListQuery(r.URL.Query(), s.cfg.DefaultPageSize)
	if err != nil {
		return nil, err
	}
	items, meta, err := s.store.listProducts(q)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   map[string]any{"products": items, "meta": meta},
	}, nil
}

func (s *Server) listMarkets(r *http.Request) (*httpx.Response, error) {
	q, err := parseListQuery(r.URL.Query(), s.cfg.DefaultPageSize)
	if err != nil {
		return nil, err
	}
	items, meta, err := s.store.listMarkets(q)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   map[string]any{"markets": items, "meta": meta},
	}, nil
}

// listOrders is closed to market accounts; they manage orders elsewhere.
func (s *Server) listOrders(r *http.Request) (*httpx.Response, error) {
	user := userFromContext(r.Context())
	if user.Role == session.RoleMarket {
		return nil, httpx.ErrForbidden("Lojistas não podem listar pedidos de clientes")
	}
	q, err := parseListQuery(r.URL.Query(), s.cfg.DefaultPageSize)
	if err != nil {
		return nil, err
	}
	items, meta, err := s.store.listOrders(user, q)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   map[string]any{"orders": items, "meta": meta},
	}, nil
}

func (s *Server) cancelOrder(r *http.Request) (*httpx.Response, error) {
	user := userFromContext(r.Context())
	order, err := s.store.cancelOrder(user, chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: order}, nil
}

// createSuggestion waits SuggestionDelay before answering to imitate the slow
// recipe service. A client that goes away ends the wait.
func (s *Server) createSuggestion(r *http.Request) (*httpx.Response, error) {
	var req suggestionReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, httpx.ErrInvalidRequest("A consulta não pode ser vazia")
	}

	if d := s.cfg.SuggestionDelay; d > 0 {
		select {
		case <-time.After(d):
		case <-r.Context().Done():
			return nil, httpx.ErrRequestTimeout()
		}
	}

	sug := s.store.createSuggestion(userFromContext(r.Context()), query)
	log.Ctx(r.Context()).Info().Str("suggestion_id", sug.ID).Int("items", len(sug.Items)).Msg("suggestion created")
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/api/suggestions/" + sug.ID,
		Response:   api.SuggestionResult{ID: sug.ID},
	}, nil
}

func (s *Server) getSuggestion(r *http.Request) (*httpx.Response, error) {
	sug, ok := s.store.getSuggestion(userFromContext(r.Context()), chi.URLParam(r, "id"))
	if !ok {
		return nil, httpx.ErrNotFound("Sugestão não encontrada")
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: sug}, nil
}

func (s *Server) deleteSuggestion(r *http.Request) (*httpx.Response, error) {
	if !s.store.deleteSuggestion(userFromContext(r.Context()), chi.URLParam(r, "id")) {
		return nil, httpx.ErrNotFound("Sugestão não encontrada")
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}
