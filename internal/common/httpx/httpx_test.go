package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pac-william/mercado/internal/common/apperrors"
)

func TestErrorBodyCarriesMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrNotFound("Produto não encontrado").Send(rr)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"message":"Produto não encontrado"}`, rr.Body.String())
}

func TestWrapHttpRsp(t *testing.T) {
	tests := []struct {
		name   string
		h      RequestHandler
		status int
		body   string
	}{
		{
			name: "created with location",
			h: func(r *http.Request) (*Response, error) {
				return &Response{StatusCode: http.StatusCreated, Location: "/suggestions/s1", Response: map[string]string{"id": "s1"}}, nil
			},
			status: http.StatusCreated,
			body:   `{"id":"s1"}`,
		},
		{
			name: "app error keeps status",
			h: func(r *http.Request) (*Response, error) {
				return nil, apperrors.ErrConflict.New("Cupom já utilizado")
			},
			status: http.StatusConflict,
			body:   `{"message":"Cupom já utilizado"}`,
		},
		{
			name: "plain error is a 500",
			h: func(r *http.Request) (*Response, error) {
				return nil, errors.New("boom")
			},
			status: http.StatusInternalServerError,
			body:   `{"message":"boom"}`,
		},
		{
			name:   "nil response",
			h:      func(r *http.Request) (*Response, error) { return nil, nil },
			status: http.StatusInternalServerError,
			body:   `{"message":"unable to process request"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/x", nil).WithContext(context.Background())
			WrapHttpRsp(tt.h)(rr, req)
			assert.Equal(t, tt.status, rr.Code)
			assert.JSONEq(t, tt.body, rr.Body.String())
		})
	}
}

func TestResponseWriterWrittenOnce(t *testing.T) {
	rr := httptest.NewRecorder()
	rw := NewResponseWriter(rr)
	assert.False(t, rw.Written())
	rw.WriteHeader(http.StatusAccepted)
	rw.WriteHeader(http.StatusTeapot)
	assert.True(t, rw.Written())
	assert.Equal(t, http.StatusAccepted, rw.Status())
	assert.Equal(t, http.StatusAccepted, rr.Code)
}
