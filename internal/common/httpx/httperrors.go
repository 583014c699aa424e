package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/pac-william/mercado/internal/common/apperrors"
)

// Error represents an HTTP error response with status code and description.
type Error struct {
	Description string `json:"description"`
	StatusCode  int    `json:"http_status_code"`
}

type errorRsp struct {
	Message string `json:"message"`
}

// Send writes the error as a JSON {message} body. A nil writer is ignored.
func (e *Error) Send(w http.ResponseWriter) {
	if w != nil {
		rspJson, err := json.Marshal(&errorRsp{Message: e.Description})
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Unable to parse error"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(e.StatusCode)
		w.Write(rspJson)
	}
}

// Error returns the error description.
func (e *Error) Error() string {
	return e.Description
}

// SendError sends an application error as an HTTP error response.
func SendError(w http.ResponseWriter, err apperrors.Error) {
	if err == nil {
		return
	}
	statusCode := err.StatusCode()
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}
	httperror := &Error{
		StatusCode:  statusCode,
		Description: err.ErrorAll(),
	}
	httperror.Send(w)
}

func newError(status int, def string, msg []string) *Error {
	s := def
	if len(msg) > 0 && msg[0] != "" {
		s = msg[0]
	}
	return &Error{Description: s, StatusCode: status}
}

// ErrReqMethodNotSupported returns an error for unsupported HTTP methods.
func ErrReqMethodNotSupported() *Error {
	return newError(http.StatusMethodNotAllowed, "request method not supported", nil)
}

// ErrUnableToParseReqData returns an error when request data cannot be parsed.
func ErrUnableToParseReqData() *Error {
	return newError(http.StatusBadRequest, "unable to parse request data", nil)
}

// ErrInvalidRequest returns a 400 with an optional custom message.
func ErrInvalidRequest(msg ...string) *Error {
	return newError(http.StatusBadRequest, "invalid request data or empty request values", msg)
}

// ErrUnAuthorized returns a 401 with an optional custom message.
func ErrUnAuthorized(msg ...string) *Error {
	return newError(http.StatusUnauthorized, "unable to authenticate request", msg)
}

// ErrForbidden returns a 403 with an optional custom message.
func ErrForbidden(msg ...string) *Error {
	return newError(http.StatusForbidden, "access denied", msg)
}

// ErrNotFound returns a 404 with an optional custom message.
func ErrNotFound(msg ...string) *Error {
	return newError(http.StatusNotFound, "resource not found", msg)
}

// ErrConflict returns a 409 with an optional custom message.
func ErrConflict(msg ...string) *Error {
	return newError(http.StatusConflict, "request conflicts with current state", msg)
}

// ErrApplicationError returns a 500 with an optional custom message.
func ErrApplicationError(msg ...string) *Error {
	return newError(http.StatusInternalServerError, "unable to process request", msg)
}

// ErrRequestTimeout returns an error for request timeout.
func ErrRequestTimeout() *Error {
	return newError(http.StatusRequestTimeout, "request timed out", nil)
}
