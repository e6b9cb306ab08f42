package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New(TypeValidation, "amount must be positive", http.StatusBadRequest),
			expected: "[validation_error] amount must be positive",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap(TypeAPIError, "db error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[api_error] db error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap(TypeAPIError, "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New(TypeValidation, "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestAppError_WithField(t *testing.T) {
	appErr := ErrValidation("must be a valid email").WithField("email")
	assert.Equal(t, "email", appErr.Param)
}

func TestAuthenticationErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		errType    Type
		httpStatus int
	}{
		{"InvalidAPIKey", ErrInvalidAPIKey(), TypeAuthentication, http.StatusUnauthorized},
		{"InactiveAPIKey", ErrInactiveAPIKey(), TypeAuthentication, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errType, tt.err.ErrType)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestInvalidRequestErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		httpStatus int
	}{
		{"NotFound", ErrNotFound("payment_intent"), http.StatusNotFound},
		{"InvalidState", ErrInvalidState("cannot capture a canceled intent"), http.StatusBadRequest},
		{"InvalidAmount", ErrInvalidAmount(), http.StatusBadRequest},
		{"InvalidToken", ErrInvalidToken(), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, TypeInvalidRequest, tt.err.ErrType)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestErrNotFound_MessageIncludesEntity(t *testing.T) {
	err := ErrNotFound("charge")
	assert.Contains(t, err.Message, "charge")
}

func TestErrIdempotencyConflict(t *testing.T) {
	err := ErrIdempotencyConflict()
	assert.Equal(t, TypeIdempotencyConflict, err.ErrType)
	assert.Equal(t, http.StatusConflict, err.HTTPStatus)
}

func TestErrRateLimited(t *testing.T) {
	err := ErrRateLimited()
	assert.Equal(t, TypeRateLimited, err.ErrType)
	assert.Equal(t, http.StatusTooManyRequests, err.HTTPStatus)
}

func TestAPIErrors(t *testing.T) {
	inner := fmt.Errorf("dial tcp: timeout")
	tests := []struct {
		name string
		err  *AppError
	}{
		{"AdapterTransport", ErrAdapterTransport(inner)},
		{"EncryptionFailure", ErrEncryptionFailure(inner)},
		{"InternalError", InternalError(inner)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, TypeAPIError, tt.err.ErrType)
			assert.Equal(t, http.StatusInternalServerError, tt.err.HTTPStatus)
			assert.True(t, errors.Is(tt.err, inner))
		})
	}
}
