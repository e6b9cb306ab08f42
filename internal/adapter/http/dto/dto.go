package dto

import (
	"time"

	"payment-gateway/internal/core/domain"
	"payment-gateway/internal/core/ports"

	"github.com/google/uuid"
)

// CreatePaymentIntentRequest is the request body for POST /payment_intents.
type CreatePaymentIntentRequest struct {
	Amount             uint64            `json:"amount" binding:"required,gt=0"`
	Currency           string            `json:"currency" binding:"required,len=3"`
	CustomerID         *uuid.UUID        `json:"customer_id,omitempty"`
	CaptureMethod      string            `json:"capture_method,omitempty"` // "automatic" (default) | "manual"
	ConfirmationMethod string            `json:"confirmation_method,omitempty"`
	Description        string            `json:"description,omitempty" binding:"max=1000"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// CardRequest is the raw-card branch of ConfirmPaymentIntentRequest's
// PaymentMethod tagged union.
type CardRequest struct {
	Number   string `json:"number" binding:"required"`
	ExpMonth int    `json:"exp_month" binding:"required,min=1,max=12"`
	ExpYear  int    `json:"exp_year" binding:"required"`
	CVV      string `json:"cvv" binding:"required"`
	Name     string `json:"name,omitempty"`
}

// PaymentMethodRequest is the tagged union accepted by confirm: either a
// raw card or a previously tokenized reference (§9 Open Question #3).
type PaymentMethodRequest struct {
	Type  string       `json:"type" binding:"required,oneof=card token"`
	Card  *CardRequest `json:"card,omitempty"`
	Token string       `json:"token,omitempty"` // "tok_..." reference
}

// ToPort resolves this wire shape into the orchestrator-facing
// ports.PaymentMethodInput, kept as a handler-layer concern so the
// orchestrator never sees raw JSON field names.
func (p PaymentMethodRequest) ToPort() ports.PaymentMethodInput {
	in := ports.PaymentMethodInput{Type: p.Type, TokenRef: p.Token}
	if p.Card != nil {
		in.Card = &ports.CardInput{
			Number:   p.Card.Number,
			ExpMonth: p.Card.ExpMonth,
			ExpYear:  p.Card.ExpYear,
			CVV:      p.Card.CVV,
			Name:     p.Card.Name,
		}
	}
	return in
}

// UpdatePaymentIntentRequest is the request body for PATCH
// /payment_intents/{id}, allowed only while the intent is non-terminal
// (§4.10).
type UpdatePaymentIntentRequest struct {
	Description *string           `json:"description,omitempty" binding:"omitempty,max=1000"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CustomerID  *uuid.UUID        `json:"customer_id,omitempty"`
}

// ConfirmPaymentIntentRequest is the request body for POST
// /payment_intents/{id}/confirm.
type ConfirmPaymentIntentRequest struct {
	PaymentMethod  PaymentMethodRequest `json:"payment_method" binding:"required"`
	BillingDetails map[string]string    `json:"billing_details,omitempty"`
	ReturnURL      string               `json:"return_url,omitempty"`
}

// RedirectToURL is the confirm/complete_authentication next_action payload
// (§4.10: "if requires_action, add next_action.redirect_to_url{url,
// return_url}").
type RedirectToURL struct {
	URL       string `json:"url"`
	ReturnURL string `json:"return_url,omitempty"`
}

// NextAction wraps the redirect_to_url variant; the only variant this
// gateway's mock/CyberSource adapters produce is a browser redirect (§4.6).
type NextAction struct {
	Type          string         `json:"type"`
	RedirectToURL *RedirectToURL `json:"redirect_to_url"`
}

// PaymentIntentResponse is the wire shape for every endpoint that returns a
// payment intent. It embeds the domain record and, only while the intent
// is requires_action, adds next_action so a caller never has to reach into
// acquirer_routing.three_ds to find the redirect (§4.8/§4.10).
type PaymentIntentResponse struct {
	*domain.PaymentIntent
	NextAction *NextAction `json:"next_action,omitempty"`
}

// RenderPaymentIntent builds the response wrapper for pi, attaching
// next_action whenever the intent is sitting in requires_action.
func RenderPaymentIntent(pi *domain.PaymentIntent) *PaymentIntentResponse {
	resp := &PaymentIntentResponse{PaymentIntent: pi}
	if pi.Status == domain.PaymentIntentRequiresAction && pi.AcquirerRouting.ThreeDS != nil {
		resp.NextAction = &NextAction{
			Type: "redirect_to_url",
			RedirectToURL: &RedirectToURL{
				URL:       pi.AcquirerRouting.ThreeDS.RedirectURL,
				ReturnURL: pi.AcquirerRouting.ThreeDS.ReturnURL,
			},
		}
	}
	return resp
}

// CapturePaymentIntentRequest is the request body for POST
// /payment_intents/{id}/capture.
type CapturePaymentIntentRequest struct {
	AmountToCapture *uint64 `json:"amount_to_capture,omitempty"`
}

// CompleteAuthenticationRequest is the request body for POST
// /payment_intents/{id}/complete_authentication.
type CompleteAuthenticationRequest struct {
	ContinuationToken string            `json:"continuation_token" binding:"required"`
	AuthResult        map[string]string `json:"auth_result,omitempty"` // e.g. {"PaRes": "..."}
}

// CreateRefundRequest is the request body for POST /refunds.
type CreateRefundRequest struct {
	ChargeID uuid.UUID         `json:"charge_id" binding:"required"`
	Amount   *uint64           `json:"amount,omitempty"`
	Reason   string            `json:"reason,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CreateCustomerRequest is the request body for POST /customers.
type CreateCustomerRequest struct {
	Email    string            `json:"email,omitempty" binding:"omitempty,email"`
	Name     string            `json:"name,omitempty"`
	Phone    string            `json:"phone,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// UpdateCustomerRequest is the request body for PATCH /customers/{id}.
type UpdateCustomerRequest struct {
	Email    *string           `json:"email,omitempty" binding:"omitempty,email"`
	Name     *string           `json:"name,omitempty"`
	Phone    *string           `json:"phone,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CreateWebhookRequest is the request body for POST /webhooks.
type CreateWebhookRequest struct {
	URL    string   `json:"url" binding:"required,url"`
	Events []string `json:"events" binding:"required,min=1"`
}

// UpdateWebhookRequest is the request body for PATCH /webhooks/{id}.
type UpdateWebhookRequest struct {
	URL      *string  `json:"url,omitempty" binding:"omitempty,url"`
	Events   []string `json:"events,omitempty"`
	IsActive *bool    `json:"is_active,omitempty"`
}

// ListParams is the common pagination query-string shape shared by every
// list endpoint (§4.10).
type ListParams struct {
	Limit         int        `form:"limit"`
	StartingAfter *uuid.UUID `form:"starting_after"`
}

// WebhookResponse projects domain.Webhook without ever serializing the
// signing secret.
type WebhookResponse struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	Events    []string  `json:"events"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewWebhookResponse(w *domain.Webhook) WebhookResponse {
	return WebhookResponse{
		ID:        w.ID,
		URL:       w.URL,
		Events:    w.Events,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
