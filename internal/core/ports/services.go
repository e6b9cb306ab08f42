package ports

import (
	"context"
	"time"

	"payment-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TokenService issues and validates the 3DS continuation token embedded in
// a PaymentIntent's next_action.redirect_to_url `state` parameter (§2, §9
// Open Question). Repurposed from the teacher's merchant-session JWT
// (service.JWTTokenService), same Generate/Validate shape, different claims.
type TokenService interface {
	Generate(paymentIntentID, merchantID uuid.UUID, routeFingerprint string, expiry time.Duration) (string, error)
	Validate(token string) (*ThreeDSClaims, error)
}

// ThreeDSClaims holds the parsed continuation-token claims.
type ThreeDSClaims struct {
	PaymentIntentID  uuid.UUID
	MerchantID       uuid.UUID
	RouteFingerprint string
}

// EventEmitter records a canonical event for later webhook dispatch (§4.11
// step 2-3, §9 Open Question #2). Emit accepts a tx, but the implementation
// in internal/service does not use it: webhook lookups and delivery inserts
// run on the pool, and the orchestrator calls Emit with a nil tx after its
// own transaction has committed.
type EventEmitter interface {
	Emit(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, eventType string, object interface{}) error
}

// WebhookDispatcher runs the polling retry loop over due WebhookDelivery
// rows (§4.11 step 5-6, §9 durability boundary), generalized from the
// teacher's goroutine-per-delivery service.webhookService.deliverWithRetries
// into a process that survives a restart mid-backoff.
type WebhookDispatcher interface {
	// Run blocks, polling until ctx is canceled.
	Run(ctx context.Context) error
}

// PaymentOrchestrator is the C8 façade the HTTP handlers call into; see
// internal/orchestrator for the concrete implementation and its
// Confirm/CompleteAuthentication/Capture/Refund/Void operations.
type PaymentOrchestrator interface {
	CreateIntent(ctx context.Context, merchantID uuid.UUID, customerID *uuid.UUID, amount uint64, currency string, capture domain.CaptureMethod, confirmation domain.ConfirmationMethod, description string, metadata map[string]string) (*domain.PaymentIntent, error)
	Confirm(ctx context.Context, merchantID, intentID uuid.UUID, method PaymentMethodInput, returnURL string) (*domain.PaymentIntent, error)
	CompleteAuthentication(ctx context.Context, merchantID, intentID uuid.UUID, continuationToken string, authResult map[string]string) (*domain.PaymentIntent, error)
	Capture(ctx context.Context, merchantID, intentID uuid.UUID, amount *uint64) (*domain.PaymentIntent, error)
	Cancel(ctx context.Context, merchantID, intentID uuid.UUID) (*domain.PaymentIntent, error)
	Refund(ctx context.Context, merchantID, chargeID uuid.UUID, amount *uint64, reason string) (*domain.Refund, error)
}

// PaymentMethodInput is the tagged union the HTTP layer builds from the
// confirm request; the orchestrator resolves it, using a raw card directly
// and looking a token reference up in the KV store (§9 Open Question #3).
type PaymentMethodInput struct {
	Type     string // "card" or "token"
	Card     *CardInput
	TokenRef string
}

// CardInput is the in-flight, PAN-carrying type — never persisted, contrast
// with domain.DisplayPaymentMethod which is the at-rest projection.
type CardInput struct {
	Number   string
	ExpMonth int
	ExpYear  int
	CVV      string
	Name     string
}
