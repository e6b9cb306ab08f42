package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-key-for-unit-tests"

func TestJWTTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, "test-issuer")
	paymentIntentID := uuid.New()
	merchantID := uuid.New()

	tokenStr, err := svc.Generate(paymentIntentID, merchantID, "mock", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, tokenStr)

	claims, err := svc.Validate(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, paymentIntentID, claims.PaymentIntentID)
	assert.Equal(t, merchantID, claims.MerchantID)
	assert.Equal(t, "mock", claims.RouteFingerprint)
}

func TestJWTTokenService_ExpiredToken(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, "test-issuer")
	tokenStr, err := svc.Generate(uuid.New(), uuid.New(), "mock", -1*time.Hour)
	require.NoError(t, err)

	_, err = svc.Validate(tokenStr)
	assert.Error(t, err, "expired token should fail validation")
}

func TestJWTTokenService_InvalidSignature(t *testing.T) {
	svc1 := NewJWTTokenService("secret-1", "issuer")
	svc2 := NewJWTTokenService("secret-2", "issuer")

	tokenStr, err := svc1.Generate(uuid.New(), uuid.New(), "mock", time.Hour)
	require.NoError(t, err)

	_, err = svc2.Validate(tokenStr)
	assert.Error(t, err, "token signed with different secret should fail")
}

func TestJWTTokenService_InvalidTokenString(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, "issuer")

	_, err := svc.Validate("not.a.valid.jwt")
	assert.Error(t, err)
}

func TestJWTTokenService_EmptyToken(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, "issuer")

	_, err := svc.Validate("")
	assert.Error(t, err)
}
