package service

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"payment-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHTTPClient struct {
	statusCode int
	err        error
	lastReq    *http.Request
	calls      int
}

func (c *fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.calls++
	c.lastReq = req
	if c.err != nil {
		return nil, c.err
	}
	return &http.Response{StatusCode: c.statusCode, Body: io.NopCloser(strings.NewReader(""))}, nil
}

func newTestDelivery(merchantID uuid.UUID, url string) *domain.WebhookDelivery {
	return &domain.WebhookDelivery{
		ID:          uuid.New(),
		MerchantID:  merchantID,
		EventType:   domain.EventPaymentIntentSucceeded,
		EventID:     uuid.New(),
		EndpointURL: url,
		Payload:     `{"type":"payment_intent.succeeded"}`,
		Attempt:     1,
		MaxAttempts: maxWebhookAttempts,
		Status:      domain.WebhookDeliveryPending,
	}
}

func TestWebhookDispatcher_AttemptSucceeds(t *testing.T) {
	merchantID := uuid.New()
	webhooks := &fakeWebhookRepo{active: []domain.Webhook{
		{MerchantID: merchantID, URL: "https://merchant.example/hook", Secret: "whsec_abc", IsActive: true, Events: []string{"*"}},
	}}
	deliveries := &fakeDeliveryRepo{}
	client := &fakeHTTPClient{statusCode: 200}
	sig := NewHMACSignatureService()
	clock := fakeClock{t: time.Now()}

	dispatcher := NewWebhookDispatcher(webhooks, deliveries, sig, client, clock, zerolog.Nop())
	delivery := newTestDelivery(merchantID, "https://merchant.example/hook")

	d := dispatcher.(*webhookDispatcher)
	d.attempt(context.Background(), delivery)

	assert.Equal(t, domain.WebhookDeliveryDelivered, delivery.Status)
	assert.True(t, delivery.Delivered)
	assert.Equal(t, 1, delivery.Attempt)
	require.Equal(t, 1, client.calls)
	assert.NotEmpty(t, client.lastReq.Header.Get("X-Webhook-Signature"))
}

func TestWebhookDispatcher_NonSuccessSchedulesRetry(t *testing.T) {
	merchantID := uuid.New()
	webhooks := &fakeWebhookRepo{active: []domain.Webhook{
		{MerchantID: merchantID, URL: "https://merchant.example/hook", Secret: "whsec_abc", IsActive: true, Events: []string{"*"}},
	}}
	deliveries := &fakeDeliveryRepo{}
	client := &fakeHTTPClient{statusCode: 500}
	sig := NewHMACSignatureService()
	now := time.Now()
	clock := fakeClock{t: now}

	dispatcher := NewWebhookDispatcher(webhooks, deliveries, sig, client, clock, zerolog.Nop())
	delivery := newTestDelivery(merchantID, "https://merchant.example/hook")

	d := dispatcher.(*webhookDispatcher)
	d.attempt(context.Background(), delivery)

	assert.Equal(t, domain.WebhookDeliveryPending, delivery.Status)
	assert.Equal(t, 2, delivery.Attempt)
	assert.True(t, delivery.NextRetryAt.After(now))
}

func TestWebhookDispatcher_ExhaustedAttemptsMarkFailed(t *testing.T) {
	merchantID := uuid.New()
	webhooks := &fakeWebhookRepo{active: []domain.Webhook{
		{MerchantID: merchantID, URL: "https://merchant.example/hook", Secret: "whsec_abc", IsActive: true, Events: []string{"*"}},
	}}
	deliveries := &fakeDeliveryRepo{}
	client := &fakeHTTPClient{statusCode: 500}
	sig := NewHMACSignatureService()
	clock := fakeClock{t: time.Now()}

	dispatcher := NewWebhookDispatcher(webhooks, deliveries, sig, client, clock, zerolog.Nop())
	delivery := newTestDelivery(merchantID, "https://merchant.example/hook")
	delivery.Attempt = maxWebhookAttempts

	d := dispatcher.(*webhookDispatcher)
	d.attempt(context.Background(), delivery)

	assert.Equal(t, domain.WebhookDeliveryFailed, delivery.Status)
}

func TestWebhookDispatcher_NoMatchingWebhookAbandonsDelivery(t *testing.T) {
	merchantID := uuid.New()
	webhooks := &fakeWebhookRepo{} // no registered webhooks
	deliveries := &fakeDeliveryRepo{}
	client := &fakeHTTPClient{statusCode: 200}
	sig := NewHMACSignatureService()
	clock := fakeClock{t: time.Now()}

	dispatcher := NewWebhookDispatcher(webhooks, deliveries, sig, client, clock, zerolog.Nop())
	delivery := newTestDelivery(merchantID, "https://gone.example/hook")

	d := dispatcher.(*webhookDispatcher)
	d.attempt(context.Background(), delivery)

	assert.Equal(t, domain.WebhookDeliveryFailed, delivery.Status)
	assert.Zero(t, client.calls)
}
