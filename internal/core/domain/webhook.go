package domain

import (
	"time"

	"github.com/google/uuid"
)

// Webhook is a merchant's registered delivery endpoint (§3).
type Webhook struct {
	ID         uuid.UUID `json:"id"`
	MerchantID uuid.UUID `json:"merchant_id"`
	URL        string    `json:"url"`
	Secret     string    `json:"-"`
	Events     []string  `json:"events"` // event-type list, or ["*"]
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Subscribes reports whether this webhook should receive eventType (§4.11 step 4).
func (w *Webhook) Subscribes(eventType string) bool {
	for _, e := range w.Events {
		if e == "*" || e == eventType {
			return true
		}
	}
	return false
}

// WebhookDeliveryStatus is the tagged variant over a delivery attempt's
// outcome, generalized directly from the teacher's domain.WebhookStatus
// (PENDING/DELIVERED/FAILED).
type WebhookDeliveryStatus string

const (
	WebhookDeliveryPending   WebhookDeliveryStatus = "pending"
	WebhookDeliveryDelivered WebhookDeliveryStatus = "delivered"
	WebhookDeliveryFailed    WebhookDeliveryStatus = "failed"
)

// WebhookDelivery is a single delivery attempt record (§3). It deliberately
// carries no FK to Webhook — see DESIGN.md Open Question #1 — mirroring the
// teacher's WebhookDeliveryLog, which likewise references only
// transaction_id/merchant_id and never a "webhook config" row.
type WebhookDelivery struct {
	ID           uuid.UUID             `json:"id"`
	MerchantID   uuid.UUID             `json:"merchant_id"`
	EventType    string                `json:"event_type"`
	EventID      uuid.UUID             `json:"event_id"`
	EndpointURL  string                `json:"endpoint_url"`
	Payload      string                `json:"payload"` // serialized CanonicalEvent JSON
	Attempt      int                   `json:"attempt"`
	MaxAttempts  int                   `json:"max_attempts"`
	StatusCode   *int                  `json:"status_code,omitempty"`
	ResponseBody string                `json:"response_body,omitempty"`
	Error        string                `json:"error,omitempty"`
	NextRetryAt  time.Time             `json:"next_retry_at"`
	Delivered    bool                  `json:"delivered"`
	DeliveredAt  *time.Time            `json:"delivered_at,omitempty"`
	Status       WebhookDeliveryStatus `json:"status"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// CanonicalEvent is the acquirer-neutral envelope emitted to webhook
// endpoints (§4.11 step 2, GLOSSARY "Canonical event").
type CanonicalEvent struct {
	ID      uuid.UUID `json:"id"`
	Type    string    `json:"type"`
	Created int64     `json:"created"`
	Data    EventData `json:"data"`
}

type EventData struct {
	Object interface{} `json:"object"`
}

// Event type constants (§4.11).
const (
	EventPaymentIntentCreated        = "payment_intent.created"
	EventPaymentIntentProcessing     = "payment_intent.processing"
	EventPaymentIntentRequiresAction = "payment_intent.requires_action"
	EventPaymentIntentSucceeded      = "payment_intent.succeeded"
	EventPaymentIntentFailed         = "payment_intent.failed"
	EventPaymentIntentCanceled       = "payment_intent.canceled"
	EventChargeAuthorized            = "charge.authorized"
	EventChargeCaptured              = "charge.captured"
	EventChargeFailed                = "charge.failed"
	EventChargeVoided                = "charge.voided"
	EventRefundCreated               = "refund.created"
	EventRefundSucceeded             = "refund.succeeded"
	EventRefundFailed                = "refund.failed"
	EventCustomerCreated             = "customer.created"
	EventCustomerUpdated             = "customer.updated"
	EventCustomerDeleted             = "customer.deleted"
)
