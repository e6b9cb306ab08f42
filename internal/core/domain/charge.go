package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChargeStatus is the tagged variant over §3's Charge status union.
type ChargeStatus string

const (
	ChargeAuthorized       ChargeStatus = "authorized"
	ChargeCaptured         ChargeStatus = "captured"
	ChargePartiallyRefunded ChargeStatus = "partially_refunded"
	ChargeRefunded         ChargeStatus = "refunded"
	ChargeVoided           ChargeStatus = "voided"
	ChargeFailed           ChargeStatus = "failed"
)

// ProcessorResponse is the normalised acquirer response, always stored
// alongside the raw vendor blob for support/debugging (never used for
// business decisions past the initial mapping).
type ProcessorResponse struct {
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	AVS       string `json:"avs,omitempty"`
	CVV       string `json:"cvv,omitempty"`
	RawVendor string `json:"raw_vendor,omitempty"`
}

// Charge is zero-or-one per successful adapter call on an intent (§3).
type Charge struct {
	ID                uuid.UUID         `json:"id"`
	MerchantID        uuid.UUID         `json:"merchant_id"`
	PaymentIntentID    uuid.UUID         `json:"payment_intent_id"`
	AmountAuthorized  uint64            `json:"amount_authorized"`
	AmountCaptured    uint64            `json:"amount_captured"`
	AmountRefunded    uint64            `json:"amount_refunded"`
	Currency          string            `json:"currency"`
	Status            ChargeStatus      `json:"status"`
	AcquirerName      string            `json:"acquirer_name"`
	AcquirerReference string            `json:"acquirer_reference,omitempty"`
	AuthorizationCode string            `json:"authorization_code,omitempty"`
	Network           string            `json:"network,omitempty"`
	ProcessorResponse ProcessorResponse `json:"processor_response"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// RemainingRefundable returns the amount still eligible for refund: the
// §3 invariant amount_refunded <= amount_captured is enforced by callers
// deriving refund amounts from this helper rather than from a raw subtraction
// scattered across the orchestrator.
func (c *Charge) RemainingRefundable() uint64 {
	if c.AmountRefunded >= c.AmountCaptured {
		return 0
	}
	return c.AmountCaptured - c.AmountRefunded
}

// IsRefundEligible reports whether a refund may currently be attempted (§4.8 Refund).
func (c *Charge) IsRefundEligible() bool {
	return c.Status == ChargeCaptured || c.Status == ChargePartiallyRefunded
}
