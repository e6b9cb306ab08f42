package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"payment-gateway/internal/core/domain"
	"payment-gateway/internal/core/ports"

	"github.com/rs/zerolog"
)

// HTTPClient is the subset of *http.Client the dispatcher needs, kept as an
// interface for testability exactly like the teacher's webhookService.HTTPClient.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// pollInterval is how often the dispatcher checks for due deliveries.
const pollInterval = 5 * time.Second

// webhookDispatcher implements ports.WebhookDispatcher: a polling loop over
// WebhookDeliveryRepository.DueForRetry, generalized from the teacher's
// per-delivery goroutine (webhookService.deliverWithRetries) into a process
// that survives a restart mid-backoff (§4.11 step 5-6, §9 durability
// boundary) — every attempt's outcome lands in Postgres before the next
// poll, so a crash loses at most one in-flight HTTP call, never the retry
// schedule itself.
type webhookDispatcher struct {
	webhooks   ports.WebhookRepository
	deliveries ports.WebhookDeliveryRepository
	sig        ports.SignatureService
	client     HTTPClient
	clock      ports.Clock
	log        zerolog.Logger
}

// NewWebhookDispatcher builds the durable webhook delivery loop.
func NewWebhookDispatcher(webhooks ports.WebhookRepository, deliveries ports.WebhookDeliveryRepository, sig ports.SignatureService, client HTTPClient, clock ports.Clock, log zerolog.Logger) ports.WebhookDispatcher {
	return &webhookDispatcher{webhooks: webhooks, deliveries: deliveries, sig: sig, client: client, clock: clock, log: log}
}

// Run blocks, polling for due deliveries until ctx is canceled.
func (d *webhookDispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.drainOnce(ctx)
		}
	}
}

// drainOnce processes one batch of due deliveries; errors on individual
// deliveries are logged, never fatal to the loop.
func (d *webhookDispatcher) drainOnce(ctx context.Context) {
	due, err := d.deliveries.DueForRetry(ctx, d.clock.Now(), 50)
	if err != nil {
		d.log.Error().Err(err).Msg("webhook dispatcher: failed to list due deliveries")
		return
	}
	for i := range due {
		d.attempt(ctx, &due[i])
	}
}

func (d *webhookDispatcher) attempt(ctx context.Context, delivery *domain.WebhookDelivery) {
	secret, err := d.resolveSecret(ctx, delivery)
	if err != nil {
		d.log.Warn().Err(err).Str("delivery_id", delivery.ID.String()).Msg("webhook dispatcher: no matching active webhook, abandoning")
		delivery.Status = domain.WebhookDeliveryFailed
		delivery.Error = err.Error()
		d.persist(ctx, delivery)
		return
	}

	timestamp := d.clock.Now().Unix()
	signedString := fmt.Sprintf("%d.%s", timestamp, delivery.Payload)
	signature := d.sig.Sign(secret, signedString)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, delivery.EndpointURL, bytes.NewReader([]byte(delivery.Payload)))
	if err != nil {
		d.fail(ctx, delivery, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Event", delivery.EventType)
	req.Header.Set("X-Webhook-Id", delivery.EventID.String())
	req.Header.Set("X-Webhook-Timestamp", strconv.FormatInt(timestamp, 10))
	req.Header.Set("X-Webhook-Signature", fmt.Sprintf("t=%d, v1=%s", timestamp, signature))

	resp, err := d.client.Do(req)
	if err != nil {
		d.fail(ctx, delivery, err)
		return
	}
	defer resp.Body.Close()

	status := resp.StatusCode
	delivery.StatusCode = &status

	if status >= 200 && status < 300 {
		now := d.clock.Now()
		delivery.Status = domain.WebhookDeliveryDelivered
		delivery.Delivered = true
		delivery.DeliveredAt = &now
		delivery.Error = ""
		d.persist(ctx, delivery)
		d.log.Info().Str("delivery_id", delivery.ID.String()).Int("status", status).Msg("webhook dispatcher: delivered")
		return
	}

	d.fail(ctx, delivery, fmt.Errorf("HTTP %d", status))
}

func (d *webhookDispatcher) fail(ctx context.Context, delivery *domain.WebhookDelivery, cause error) {
	delivery.Error = cause.Error()
	if delivery.Attempt >= delivery.MaxAttempts {
		delivery.Status = domain.WebhookDeliveryFailed
		d.persist(ctx, delivery)
		d.log.Error().Str("delivery_id", delivery.ID.String()).Msg("webhook dispatcher: attempts exhausted")
		return
	}
	idx := delivery.Attempt - 1
	if idx < 0 || idx >= len(webhookRetryIntervals) {
		idx = len(webhookRetryIntervals) - 1
	}
	delivery.Attempt++
	delivery.NextRetryAt = d.clock.Now().Add(time.Duration(webhookRetryIntervals[idx]) * time.Second)
	d.persist(ctx, delivery)
	d.log.Warn().Err(cause).Str("delivery_id", delivery.ID.String()).Int("attempt", delivery.Attempt).Msg("webhook dispatcher: attempt failed, scheduled retry")
}

func (d *webhookDispatcher) persist(ctx context.Context, delivery *domain.WebhookDelivery) {
	delivery.UpdatedAt = d.clock.Now()
	if err := d.deliveries.Update(ctx, delivery); err != nil {
		d.log.Error().Err(err).Str("delivery_id", delivery.ID.String()).Msg("webhook dispatcher: failed to persist delivery state")
	}
}

// resolveSecret looks up the signing secret for a delivery by matching its
// endpoint URL against the merchant's active webhooks — the delivery row
// carries no webhook_id (§9 Open Question #1), so the match happens at
// delivery time rather than via a foreign key.
func (d *webhookDispatcher) resolveSecret(ctx context.Context, delivery *domain.WebhookDelivery) (string, error) {
	endpoints, err := d.webhooks.ListActiveByMerchant(ctx, delivery.MerchantID)
	if err != nil {
		return "", fmt.Errorf("listing webhooks: %w", err)
	}
	for _, wh := range endpoints {
		if wh.URL == delivery.EndpointURL {
			return wh.Secret, nil
		}
	}
	return "", fmt.Errorf("no active webhook registered for endpoint %s", delivery.EndpointURL)
}
