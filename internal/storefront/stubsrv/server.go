// Package stubsrv is an in-memory stand-in for the storefront backend. It serves
// the catalogue, orders, login and suggestion endpoints the CLI talks to, with
// the same {message} error bodies and pagination metadata.
package stubsrv

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/pac-william/mercado/internal/common/httpx"
	"github.com/pac-william/mercado/internal/common/logtrace"
	commonmiddleware "github.com/pac-william/mercado/internal/common/middleware"
	"github.com/pac-william/mercado/internal/storefront/session"
)

const (
	ServerVersion = "0.3.0"
	ApiVersion    = "v1"
)

type ctxKey struct{}

// Server is the stub backend.
type Server struct {
	Router *chi.Mux
	cfg    *Config
	store  *store
}

// CreateNewServer builds a server over cfg's seed data. A nil cfg uses DefaultConfig.
func CreateNewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.SigningKey == "" {
		return nil, fmt.Errorf("signing key not defined")
	}
	s := &Server{
		Router: chi.NewRouter(),
		cfg:    cfg,
		store:  newStore(cfg),
	}
	return s, nil
}

// MountHandlers installs middleware and routes. Everything lives under /api.
func (s *Server) MountHandlers() {
	s.Router.Use(commonmiddleware.RequestLogger)
	s.Router.Use(commonmiddleware.PanicHandler)
	if s.cfg.RequestTimeout > 0 {
		s.Router.Use(commonmiddleware.SetTimeout(s.cfg.RequestTimeout))
	}
	if s.cfg.HandleCORS {
		s.Router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"https://*", "http://*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Cache-Control", "Pragma", commonmiddleware.RequestIDHeader},
			ExposedHeaders:   []string{commonmiddleware.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	s.Router.Route("/api", s.mountResourceHandlers)
	if logtrace.IsTraceEnabled() {
		fmt.Println("Routes in stub router")
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			fmt.Printf("%s %s\n", method, route)
			return nil
		}
		if err := chi.Walk(s.Router, walkFunc); err != nil {
			fmt.Printf("Logging err: %s\n", err.Error())
		}
	}
}

func (s *Server) mountResourceHandlers(r chi.Router) {
	r.Get("/version", s.getVersion)
	r.Post("/auth/login", httpx.WrapHttpRsp(s.login))
	r.Get("/products", httpx.WrapHttpRsp(s.listProducts))
	r.Get("/markets", httpx.WrapHttpRsp(s.listMarkets))

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/auth/me", httpx.WrapHttpRsp(s.me))
		r.Get("/orders", httpx.WrapHttpRsp(s.listOrders))
		r.Put("/orders/{id}/cancel", httpx.WrapHttpRsp(s.cancelOrder))
		r.Post("/suggestions", httpx.WrapHttpRsp(s.createSuggestion))
		r.Get("/suggestions/{id}", httpx.WrapHttpRsp(s.getSuggestion))
		r.Delete("/suggestions/{id}", httpx.WrapHttpRsp(s.deleteSuggestion))
	})
}

// ListenAndServe serves on the configured port until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("port", s.cfg.Port).Msg("stub server started")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		srv.Close()
		return fmt.Errorf("could not stop server gracefully: %w", err)
	}
	log.Info().Msg("stub server stopped")
	return nil
}

// authenticate requires a valid bearer token and stores its user in the context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(authz, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			httpx.ErrUnAuthorized("Token de acesso ausente").Send(w)
			return
		}
		user, err := session.VerifyToken(strings.TrimSpace(token), []byte(s.cfg.SigningKey))
		if err != nil {
			log.Ctx(r.Context()).Debug().Err(err).Msg("rejected token")
			httpx.ErrUnAuthorized("Token inválido ou expirado").Send(w)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(ctx context.Context) session.User {
	u, _ := ctx.Value(ctxKey{}).(session.User)
	return u
}

type GetVersionRsp struct {
	ServerVersion string `json:"serverVersion"`
	ApiVersion    string `json:"apiVersion"`
}

func (s *Server) getVersion(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("GetVersion")
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, &GetVersionRsp{
		ServerVersion: ServerVersion,
		ApiVersion:    ApiVersion,
	})
}
