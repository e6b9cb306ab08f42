package apperror

import (
	"fmt"
	"net/http"
)

// Type is the stable error taxonomy returned in every error envelope (§7),
// generalized from the teacher's numeric AppError.Code (SEC_*/PAY_*/...)
// into the spec's fixed string set.
type Type string

const (
	TypeAuthentication  Type = "authentication_error"
	TypeValidation      Type = "validation_error"
	TypeInvalidRequest  Type = "invalid_request_error"
	TypeIdempotencyConflict Type = "idempotency_conflict"
	TypeRateLimited     Type = "rate_limited"
	TypeAPIError        Type = "api_error"
)

// AppError is a structured error that maps to an HTTP response and the
// `{"error":{type,message,code,param,request_id}}` envelope (§4.10).
// Shape unchanged from the teacher's AppError; only Code's meaning moved
// from a numeric family to this fixed taxonomy.
type AppError struct {
	ErrType    Type   `json:"type"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	Param      string `json:"param,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.ErrType, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError of the given taxonomy type.
func New(errType Type, message string, httpStatus int) *AppError {
	return &AppError{ErrType: errType, Message: message, HTTPStatus: httpStatus}
}

// Wrap wraps an internal error with an AppError.
func Wrap(errType Type, message string, httpStatus int, err error) *AppError {
	return &AppError{ErrType: errType, Message: message, HTTPStatus: httpStatus, Err: err}
}

// WithField attaches the offending field name to a validation error.
func (e *AppError) WithField(param string) *AppError {
	e.Param = param
	return e
}

// ---- authentication_error ----

func ErrInvalidAPIKey() *AppError {
	return New(TypeAuthentication, "invalid api key", http.StatusUnauthorized)
}

func ErrInactiveAPIKey() *AppError {
	return New(TypeAuthentication, "api key is inactive", http.StatusUnauthorized)
}

// ---- validation_error ----

func ErrValidation(message string) *AppError {
	return New(TypeValidation, message, http.StatusBadRequest)
}

// ---- invalid_request_error ----

func ErrNotFound(entity string) *AppError {
	return New(TypeInvalidRequest, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrInvalidState(message string) *AppError {
	return New(TypeInvalidRequest, message, http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New(TypeInvalidRequest, "invalid amount", http.StatusBadRequest)
}

func ErrInvalidToken() *AppError {
	return New(TypeInvalidRequest, "invalid or expired token", http.StatusBadRequest)
}

// ---- idempotency_conflict ----

func ErrIdempotencyConflict() *AppError {
	return New(TypeIdempotencyConflict, "idempotency key reused with a different request body", http.StatusConflict)
}

// ---- rate_limited ----

func ErrRateLimited() *AppError {
	return New(TypeRateLimited, "rate limit exceeded", http.StatusTooManyRequests)
}

// ---- api_error ----

func ErrAdapterTransport(err error) *AppError {
	return Wrap(TypeAPIError, "acquirer request failed", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap(TypeAPIError, "encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a generic api_error.
func InternalError(err error) *AppError {
	return Wrap(TypeAPIError, "internal server error", http.StatusInternalServerError, err)
}
