package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPaymentIntentStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status PaymentIntentStatus
		want   bool
	}{
		{"requires_payment_method", PaymentIntentRequiresPaymentMethod, false},
		{"requires_action", PaymentIntentRequiresAction, false},
		{"processing", PaymentIntentProcessing, false},
		{"succeeded", PaymentIntentSucceeded, true},
		{"canceled", PaymentIntentCanceled, true},
		{"failed", PaymentIntentFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsTerminal())
		})
	}
}

func TestNewPaymentIntent(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	id := uuid.New()
	merchantID := uuid.New()

	pi := NewPaymentIntent(id, merchantID, 10000, "MXN", CaptureAutomatic, ConfirmationAutomatic, now)

	assert.Equal(t, id, pi.ID)
	assert.Equal(t, merchantID, pi.MerchantID)
	assert.Equal(t, uint64(10000), pi.Amount)
	assert.Equal(t, "MXN", pi.Currency)
	assert.Equal(t, PaymentIntentRequiresPaymentMethod, pi.Status)
	assert.Equal(t, now, pi.CreatedAt)
	assert.Equal(t, now, pi.UpdatedAt)
	assert.Nil(t, pi.PaymentMethod)
}

func TestCharge_RemainingRefundable(t *testing.T) {
	tests := []struct {
		name      string
		captured  uint64
		refunded  uint64
		remaining uint64
	}{
		{"nothing refunded", 50000, 0, 50000},
		{"partially refunded", 50000, 15000, 35000},
		{"fully refunded", 50000, 50000, 0},
		{"over-refunded somehow", 50000, 60000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Charge{AmountCaptured: tt.captured, AmountRefunded: tt.refunded}
			assert.Equal(t, tt.remaining, c.RemainingRefundable())
		})
	}
}

func TestCharge_IsRefundEligible(t *testing.T) {
	tests := []struct {
		name   string
		status ChargeStatus
		want   bool
	}{
		{"authorized", ChargeAuthorized, false},
		{"captured", ChargeCaptured, true},
		{"partially_refunded", ChargePartiallyRefunded, true},
		{"refunded", ChargeRefunded, false},
		{"voided", ChargeVoided, false},
		{"failed", ChargeFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Charge{Status: tt.status}
			assert.Equal(t, tt.want, c.IsRefundEligible())
		})
	}
}

func TestWebhook_Subscribes(t *testing.T) {
	tests := []struct {
		name      string
		events    []string
		eventType string
		want      bool
	}{
		{"exact match", []string{"payment_intent.succeeded"}, "payment_intent.succeeded", true},
		{"no match", []string{"payment_intent.succeeded"}, "charge.failed", false},
		{"wildcard", []string{"*"}, "refund.created", true},
		{"empty", nil, "payment_intent.succeeded", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Webhook{Events: tt.events}
			assert.Equal(t, tt.want, w.Subscribes(tt.eventType))
		})
	}
}
