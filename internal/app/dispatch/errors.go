package dispatch

import (
	"errors"
	"net/http"

	"github.com/Overland-East-Bay/scoring-api/internal/app/auth"
	"github.com/Overland-East-Bay/scoring-api/internal/app/schema"
	"github.com/Overland-East-Bay/scoring-api/internal/ports/out/store"
)

// Machine-readable error codes.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrUnknownMethod is wrapped by the error returned for a method name with no handler.
var ErrUnknownMethod = errors.New("unknown method")

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string

	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StatusText is the fallback message for status codes the service answers with.
func StatusText(status int) string {
	switch status {
	case http.StatusUnprocessableEntity:
		return "Invalid Request"
	default:
		return http.StatusText(status)
	}
}

// ToError maps any error reaching the transport to an *Error.
func ToError(err error) *Error {
	if err == nil {
		return nil
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	var ve *schema.ValidationError
	switch {
	case errors.As(err, &ve):
		return invalid(ve)
	case errors.Is(err, ErrUnknownMethod):
		return &Error{Status: http.StatusUnprocessableEntity, Code: CodeInvalidRequest, Message: err.Error(), Err: err}
	case errors.Is(err, auth.ErrForbidden):
		return &Error{Status: http.StatusForbidden, Code: CodeForbidden, Message: StatusText(http.StatusForbidden), Err: err}
	case errors.Is(err, store.ErrBackendExhausted):
		return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: StatusText(http.StatusInternalServerError), Err: err}
	default:
		return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: StatusText(http.StatusInternalServerError), Err: err}
	}
}

func invalid(ve *schema.ValidationError) *Error {
	msg := ve.Error()
	if msg == "" {
		msg = StatusText(http.StatusUnprocessableEntity)
	}
	return &Error{Status: http.StatusUnprocessableEntity, Code: CodeInvalidRequest, Message: msg, Err: ve}
}
