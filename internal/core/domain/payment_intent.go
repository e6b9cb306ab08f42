package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PaymentIntentStatus is a tagged variant over the lifecycle string union
// in §3, modeled as a sum type so the orchestrator's switch statements are
// exhaustive at compile time (§9 "sum types over status strings").
type PaymentIntentStatus string

const (
	PaymentIntentRequiresPaymentMethod PaymentIntentStatus = "requires_payment_method"
	PaymentIntentRequiresAction        PaymentIntentStatus = "requires_action"
	PaymentIntentProcessing            PaymentIntentStatus = "processing"
	PaymentIntentSucceeded             PaymentIntentStatus = "succeeded"
	PaymentIntentCanceled              PaymentIntentStatus = "canceled"
	PaymentIntentFailed                PaymentIntentStatus = "failed"
)

// IsTerminal reports whether no further confirm/capture/cancel mutation is
// permitted (§3 invariant: "once succeeded or canceled it is terminal for
// non-refund mutations").
func (s PaymentIntentStatus) IsTerminal() bool {
	return s == PaymentIntentSucceeded || s == PaymentIntentCanceled
}

// CaptureMethod and ConfirmationMethod are the two enums on PaymentIntent.
type CaptureMethod string

const (
	CaptureAutomatic CaptureMethod = "automatic"
	CaptureManual    CaptureMethod = "manual"
)

type ConfirmationMethod string

const (
	ConfirmationAutomatic ConfirmationMethod = "automatic"
	ConfirmationManual    ConfirmationMethod = "manual"
)

// DisplayPaymentMethod is the at-rest, display-only projection of the
// payment method used on an intent. It deliberately carries no PAN/CVV —
// the repository write path has no field to accept them, enforcing §9's
// "avoid leaking PAN" at the type level. Compare with ports.CardInput,
// the separate in-flight type that does carry raw card data.
type DisplayPaymentMethod struct {
	Type          string `json:"type"` // "card"
	Brand         string `json:"brand,omitempty"`
	Last4         string `json:"last4,omitempty"`
	ExpMonth      int    `json:"exp_month,omitempty"`
	ExpYear       int    `json:"exp_year,omitempty"`
	TokenRef      string `json:"token_ref,omitempty"`
}

// AcquirerRouting records the route resolved by PickRoute on first adapter
// call, and (once requires_action) the 3DS continuation data needed to
// complete authentication without re-running routing.
type AcquirerRouting struct {
	SelectedRoute *ResolvedRoute   `json:"selected_route,omitempty"`
	ThreeDS       *ThreeDSContinue `json:"three_ds,omitempty"`
}

// ResolvedRoute is the stable output of PickRoute, persisted on the intent
// so retries and 3DS continuation always use the same adapter (§4.7 step 1).
type ResolvedRoute struct {
	Adapter     string          `json:"adapter"`
	MerchantRef string          `json:"merchant_ref,omitempty"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// ThreeDSContinue holds the data needed to drive CompleteAuthentication.
type ThreeDSContinue struct {
	Flow              string `json:"flow,omitempty"`
	RedirectURL       string `json:"redirect_url,omitempty"`
	MethodURL         string `json:"method_url,omitempty"`
	AcquirerReference string `json:"acquirer_reference,omitempty"`
	Data              string `json:"data,omitempty"`
	// ContinuationToken is the signed token a caller must echo back to
	// complete_authentication (§9 Open Question, ports.TokenService).
	ContinuationToken string `json:"-"`
	// ReturnURL is the caller-supplied confirm-time return_url (§4.8 step 2),
	// echoed back in the confirm response's next_action.redirect_to_url.
	ReturnURL string `json:"-"`
}

// PaymentIntent is the merchant-scoped orchestration record (§3).
type PaymentIntent struct {
	ID                 uuid.UUID            `json:"id"`
	MerchantID         uuid.UUID            `json:"merchant_id"`
	CustomerID         *uuid.UUID           `json:"customer_id,omitempty"`
	Amount             uint64               `json:"amount"`
	Currency           string               `json:"currency"`
	CaptureMethod      CaptureMethod        `json:"capture_method"`
	ConfirmationMethod ConfirmationMethod   `json:"confirmation_method"`
	Status             PaymentIntentStatus  `json:"status"`
	PaymentMethod      *DisplayPaymentMethod `json:"payment_method,omitempty"`
	AcquirerRouting    AcquirerRouting      `json:"acquirer_routing"`
	Metadata           map[string]string    `json:"metadata,omitempty"`
	Description        string               `json:"description,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// NewPaymentIntent constructs a fresh intent in its initial state.
func NewPaymentIntent(id, merchantID uuid.UUID, amount uint64, currency string, capture CaptureMethod, confirmation ConfirmationMethod, now time.Time) *PaymentIntent {
	return &PaymentIntent{
		ID:                 id,
		MerchantID:         merchantID,
		Amount:             amount,
		Currency:           currency,
		CaptureMethod:      capture,
		ConfirmationMethod: confirmation,
		Status:             PaymentIntentRequiresPaymentMethod,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
