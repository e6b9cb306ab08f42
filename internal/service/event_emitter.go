package service

import (
	"context"
	"encoding/json"
	"fmt"

	"payment-gateway/internal/core/domain"
	"payment-gateway/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// webhookRetryIntervals mirrors the teacher's webhookRetryIntervals table
// (15s/60s/2m/5m/10m), now consulted by the dispatcher's polling loop instead
// of a goroutine's time.Sleep chain.
var webhookRetryIntervals = []int64{15, 60, 120, 300, 600} // seconds

// maxWebhookAttempts matches §4.11 step 5's WebhookDelivery.max_attempts=3.
const maxWebhookAttempts = 3

// eventEmitter implements ports.EventEmitter: on any domain state change it
// fans the canonical event out to every active, subscribed webhook as a
// pending WebhookDelivery row (§4.11 steps 2-4). Grounded on the teacher's
// webhookService.EnqueueWebhook, but durable from the first write instead of
// firing a goroutine — the dispatcher (WebhookDispatcher) does the actual
// HTTP delivery and owns retries.
type eventEmitter struct {
	webhooks   ports.WebhookRepository
	deliveries ports.WebhookDeliveryRepository
	clock      ports.Clock
	idGen      ports.IDGenerator
	log        zerolog.Logger
}

// NewEventEmitter builds an EventEmitter backed by the webhook/delivery repositories.
func NewEventEmitter(webhooks ports.WebhookRepository, deliveries ports.WebhookDeliveryRepository, clock ports.Clock, idGen ports.IDGenerator, log zerolog.Logger) ports.EventEmitter {
	return &eventEmitter{webhooks: webhooks, deliveries: deliveries, clock: clock, idGen: idGen, log: log}
}

func (e *eventEmitter) Emit(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, eventType string, object interface{}) error {
	endpoints, err := e.webhooks.ListActiveByMerchant(ctx, merchantID)
	if err != nil {
		return fmt.Errorf("listing webhooks for merchant %s: %w", merchantID, err)
	}
	if len(endpoints) == 0 {
		return nil
	}

	now := e.clock.Now()
	eventID := uuid.UUID(e.idGen.NewID())
	event := domain.CanonicalEvent{
		ID:      eventID,
		Type:    eventType,
		Created: now.Unix(),
		Data:    domain.EventData{Object: object},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling canonical event: %w", err)
	}

	for _, wh := range endpoints {
		if !wh.IsActive || !wh.Subscribes(eventType) {
			continue
		}
		delivery := &domain.WebhookDelivery{
			ID:          uuid.UUID(e.idGen.NewID()),
			MerchantID:  merchantID,
			EventType:   eventType,
			EventID:     eventID,
			EndpointURL: wh.URL,
			Payload:     string(payload),
			Attempt:     1,
			MaxAttempts: maxWebhookAttempts,
			NextRetryAt: now,
			Status:      domain.WebhookDeliveryPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := e.deliveries.Create(ctx, delivery); err != nil {
			e.log.Error().Err(err).Str("event_type", eventType).Str("endpoint", wh.URL).Msg("event emitter: failed to enqueue delivery")
			continue
		}
	}
	return nil
}
