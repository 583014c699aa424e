package api

import (
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/pac-william/mercado/internal/common/apperrors"
)

var (
	responseValidator *validator.Validate
	validatorOnce     sync.Once
)

// V returns the shared validator used for backend payloads.
func V() *validator.Validate {
	validatorOnce.Do(func() {
		responseValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return responseValidator
}

// checkResponse validates a decoded payload; malformed payloads are transport errors.
func checkResponse(v any) error {
	if err := V().Struct(v); err != nil {
		return apperrors.ErrTransport.MsgErr("unexpected response from server", err)
	}
	return nil
}
