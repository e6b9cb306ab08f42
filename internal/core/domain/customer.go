package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a merchant-scoped [EXPANSION] aggregate: a saved buyer identity
// a PaymentIntent may optionally reference (SPEC_FULL.md §3). It carries no
// payment-method data itself — cards live only as DisplayPaymentMethod
// projections on the intents/charges that used them.
type Customer struct {
	ID         uuid.UUID         `json:"id"`
	MerchantID uuid.UUID         `json:"merchant_id"`
	Email      string            `json:"email,omitempty"`
	Name       string            `json:"name,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
