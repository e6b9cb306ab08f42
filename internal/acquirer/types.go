// Package acquirer defines the canonical adapter contract (§4.4) that every
// card-acquirer integration implements, and a process-wide registry of named
// adapter instances. Request/response field naming is grounded on
// other_examples' kevin07696-payment-service ports.CreditCardGateway and
// replay-api's payment_provider_adapter.go; the registry shape has no direct
// teacher analogue and is expressed as plain Go.
package acquirer

import (
	"context"

	"github.com/google/uuid"
)

// Outcome is the tagged variant every authorize/capture/refund/void result
// carries (§4.4), expressed as a sum type per the core domain's convention.
type Outcome string

const (
	OutcomeAuthorized     Outcome = "authorized"
	OutcomeRequiresAction Outcome = "requires_action"
	OutcomeSucceeded      Outcome = "succeeded"
	OutcomePending        Outcome = "pending"
	OutcomeFailed         Outcome = "failed"
)

// Route identifies where and how to reach the acquirer for one payment
// intent (§4.7 PickRoute output).
type Route struct {
	Adapter     string
	MerchantRef string
	Config      map[string]string
}

// CardDetails carries raw card data for direct processing, or a
// tokenization reference in lieu of it. Never persisted — this type exists
// only on the wire between the orchestrator and an adapter.
type CardDetails struct {
	Network       string
	Brand         string
	Last4         string
	ExpMonth      int
	ExpYear       int
	PAN           string
	CVV           string
	TokenizationRef string
}

// CustomerDetails and BillingAddress are optional context passed to Authorize.
type CustomerDetails struct {
	ID    string
	Email string
	Name  string
}

type BillingAddress struct {
	Line1      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// ThreeDSHints carries whatever the caller already knows about the
// cardholder's 3DS enrollment; acquirers that support deferred 3DS consume it.
type ThreeDSHints struct {
	ReturnURL string
	MD        string
}

// AuthorizeInput is the canonical request into Adapter.Authorize (§4.4).
type AuthorizeInput struct {
	RequestID       string
	MerchantID      uuid.UUID
	PaymentIntentID uuid.UUID
	Amount          uint64
	Currency        string
	PaymentMethod   CardDetails
	Customer        *CustomerDetails
	Billing         *BillingAddress
	ThreeDS         *ThreeDSHints
	Route           Route
	StatementDescriptor string
	Metadata        map[string]string
}

// ProcessorResponse mirrors domain.ProcessorResponse on the wire between an
// adapter and the orchestrator.
type ProcessorResponse struct {
	Code    string
	Message string
	AVS     string
	CVV     string
}

// ThreeDSContinuation is returned when outcome=requires_action.
type ThreeDSContinuation struct {
	Flow        string
	RedirectURL string
	MethodURL   string
	Data        string
}

// AuthorizeOutput is the canonical response from Adapter.Authorize.
type AuthorizeOutput struct {
	Outcome           Outcome
	AmountAuthorized  uint64
	AcquirerReference string
	AuthorizationCode string
	Network           string
	ProcessorResponse ProcessorResponse
	ThreeDS           *ThreeDSContinuation
	RawVendor         string
}

// CaptureInput/Output, RefundInput/Output, VoidInput/Output are the
// remaining three mandatory operations plus the optional Void (§4.4).
type CaptureInput struct {
	RequestID         string
	AcquirerReference string
	Amount            uint64
	Route             Route
}

type CaptureOutput struct {
	Outcome           Outcome
	AmountCaptured    uint64
	AcquirerReference string
	ProcessorResponse ProcessorResponse
}

type RefundInput struct {
	RequestID         string
	AcquirerReference string
	Amount            uint64
	Reason            string
	Route             Route
}

type RefundOutput struct {
	Outcome           Outcome
	AcquirerReference string
	ProcessorResponse ProcessorResponse
}

type VoidInput struct {
	RequestID         string
	AcquirerReference string
	Route             Route
}

type VoidOutput struct {
	Outcome           Outcome
	ProcessorResponse ProcessorResponse
}

// ContinueInput drives AuthorizeWith3DS, the 3DS return leg (§4.8 CompleteAuthentication).
type ContinueInput struct {
	RequestID         string
	AcquirerReference string
	PaRes             string
	MD                string
	Route             Route
}

// CanonicalEvent mirrors domain.CanonicalEvent for adapters that support
// inbound webhook translation (HandleWebhook).
type CanonicalEvent struct {
	Type string
	Data interface{}
}

// Adapter is the mandatory capability set every acquirer integration
// implements (§4.4 items 1-3).
type Adapter interface {
	Name() string
	Authorize(ctx context.Context, in AuthorizeInput) (AuthorizeOutput, error)
	Capture(ctx context.Context, in CaptureInput) (CaptureOutput, error)
	Refund(ctx context.Context, in RefundInput) (RefundOutput, error)
}

// VoidCapable, ThreeDSCapable, and WebhookCapable are optional capability
// interfaces (§4.4 items 4-6); the orchestrator type-asserts for them rather
// than requiring every adapter to implement every operation.
type VoidCapable interface {
	Void(ctx context.Context, in VoidInput) (VoidOutput, error)
}

type ThreeDSCapable interface {
	AuthorizeWith3DS(ctx context.Context, in ContinueInput) (AuthorizeOutput, error)
}

type WebhookCapable interface {
	HandleWebhook(ctx context.Context, rawBody []byte, headers map[string]string) ([]CanonicalEvent, error)
}
