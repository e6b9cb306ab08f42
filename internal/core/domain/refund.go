package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefundStatus is the tagged variant over §3's Refund status union.
type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundSucceeded RefundStatus = "succeeded"
	RefundFailed    RefundStatus = "failed"
)

// Refund is a child of Charge, exclusively owned by it (cascade on delete).
type Refund struct {
	ID                uuid.UUID    `json:"id"`
	MerchantID        uuid.UUID    `json:"merchant_id"`
	ChargeID          uuid.UUID    `json:"charge_id"`
	Amount            uint64       `json:"amount"`
	Currency          string       `json:"currency"`
	Reason            string       `json:"reason,omitempty"`
	Status            RefundStatus `json:"status"`
	AcquirerReference string       `json:"acquirer_reference,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}
