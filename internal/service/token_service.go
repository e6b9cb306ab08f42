package service

import (
	"fmt"
	"time"

	"payment-gateway/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTTokenService implements ports.TokenService using HS256 JWT, repurposed
// from the teacher's merchant-session JWTTokenService. Instead of a bearer
// session token keyed on an access key, it issues the short-lived 3DS
// continuation token embedded in a PaymentIntent's redirect URL (§4.8
// CompleteAuthentication, §9 Open Question): the claims bind the token to
// one payment intent and the exact route it was authorized against, so a
// stale or replayed token can't complete authentication against a route
// that has since changed.
type JWTTokenService struct {
	secret []byte
	issuer string
}

// NewJWTTokenService creates a new JWT token service.
func NewJWTTokenService(secret string, issuer string) *JWTTokenService {
	return &JWTTokenService{secret: []byte(secret), issuer: issuer}
}

// Generate issues a signed continuation token for the given intent/route,
// valid for expiry.
func (s *JWTTokenService) Generate(paymentIntentID, merchantID uuid.UUID, routeFingerprint string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"pi":    paymentIntentID.String(),
		"mid":   merchantID.String(),
		"route": routeFingerprint,
		"iat":   now.Unix(),
		"exp":   now.Add(expiry).Unix(),
		"iss":   s.issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing continuation token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a continuation token, returning its claims.
func (s *JWTTokenService) Validate(tokenString string) (*ports.ThreeDSClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing continuation token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid continuation token claims")
	}

	piStr, ok := claims["pi"].(string)
	if !ok {
		return nil, fmt.Errorf("missing payment intent claim")
	}
	paymentIntentID, err := uuid.Parse(piStr)
	if err != nil {
		return nil, fmt.Errorf("invalid payment intent id in token: %w", err)
	}

	midStr, ok := claims["mid"].(string)
	if !ok {
		return nil, fmt.Errorf("missing merchant claim")
	}
	merchantID, err := uuid.Parse(midStr)
	if err != nil {
		return nil, fmt.Errorf("invalid merchant id in token: %w", err)
	}

	routeFingerprint, _ := claims["route"].(string)

	return &ports.ThreeDSClaims{
		PaymentIntentID:  paymentIntentID,
		MerchantID:       merchantID,
		RouteFingerprint: routeFingerprint,
	}, nil
}
