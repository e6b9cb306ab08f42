package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"payment-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WebhookRepo implements ports.WebhookRepository.
type WebhookRepo struct {
	pool Pool
}

func NewWebhookRepo(pool Pool) *WebhookRepo {
	return &WebhookRepo{pool: pool}
}

func (r *WebhookRepo) Create(ctx context.Context, w *domain.Webhook) error {
	events, err := json.Marshal(w.Events)
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}
	query := `INSERT INTO webhooks (id, merchant_id, url, secret, events, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err = r.pool.Exec(ctx, query, w.ID, w.MerchantID, w.URL, w.Secret, events, w.IsActive, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert webhook: %w", err)
	}
	return nil
}

func scanWebhook(row pgx.Row) (*domain.Webhook, error) {
	w := &domain.Webhook{}
	var events []byte
	err := row.Scan(&w.ID, &w.MerchantID, &w.URL, &w.Secret, &events, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(events) > 0 {
		if err := json.Unmarshal(events, &w.Events); err != nil {
			return nil, fmt.Errorf("unmarshal events: %w", err)
		}
	}
	return w, nil
}

func (r *WebhookRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Webhook, error) {
	query := `SELECT id, merchant_id, url, secret, events, is_active, created_at, updated_at
		FROM webhooks WHERE merchant_id = $1 AND id = $2`
	w, err := scanWebhook(r.pool.QueryRow(ctx, query, merchantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get webhook by id: %w", err)
	}
	return w, nil
}

func (r *WebhookRepo) ListActiveByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Webhook, error) {
	query := `SELECT id, merchant_id, url, secret, events, is_active, created_at, updated_at
		FROM webhooks WHERE merchant_id = $1 AND is_active = true`
	rows, err := r.pool.Query(ctx, query, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list active webhooks: %w", err)
	}
	defer rows.Close()

	var out []domain.Webhook
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan webhook: %w", err)
		}
		out = append(out, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate webhooks: %w", err)
	}
	return out, nil
}

func (r *WebhookRepo) Update(ctx context.Context, w *domain.Webhook) error {
	events, err := json.Marshal(w.Events)
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}
	query := `UPDATE webhooks SET url=$1, secret=$2, events=$3, is_active=$4, updated_at=$5 WHERE merchant_id=$6 AND id=$7`
	_, err = r.pool.Exec(ctx, query, w.URL, w.Secret, events, w.IsActive, w.UpdatedAt, w.MerchantID, w.ID)
	if err != nil {
		return fmt.Errorf("update webhook: %w", err)
	}
	return nil
}

func (r *WebhookRepo) Delete(ctx context.Context, merchantID, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM webhooks WHERE merchant_id = $1 AND id = $2`, merchantID, id)
	if err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}

// WebhookDeliveryRepo implements ports.WebhookDeliveryRepository, grounded
// on the teacher's webhookRepo (Create/Update + lookup shape) generalized
// from webhook_delivery_logs' transaction_id ownership to this spec's
// merchant_id + endpoint_url ownership (§9 Open Question #1: no webhook_id FK).
type WebhookDeliveryRepo struct {
	pool Pool
}

func NewWebhookDeliveryRepo(pool Pool) *WebhookDeliveryRepo {
	return &WebhookDeliveryRepo{pool: pool}
}

const webhookDeliveryColumns = `id, merchant_id, event_type, event_id, endpoint_url, payload, attempt, max_attempts,
	status_code, response_body, error, next_retry_at, delivered, delivered_at, status, created_at, updated_at`

func (r *WebhookDeliveryRepo) Create(ctx context.Context, d *domain.WebhookDelivery) error {
	query := `INSERT INTO webhook_deliveries (` + webhookDeliveryColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`
	_, err := r.pool.Exec(ctx, query,
		d.ID, d.MerchantID, d.EventType, d.EventID, d.EndpointURL, d.Payload, d.Attempt, d.MaxAttempts,
		d.StatusCode, d.ResponseBody, d.Error, d.NextRetryAt, d.Delivered, d.DeliveredAt, d.Status,
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert webhook delivery: %w", err)
	}
	return nil
}

func (r *WebhookDeliveryRepo) Update(ctx context.Context, d *domain.WebhookDelivery) error {
	query := `UPDATE webhook_deliveries SET
		attempt=$1, status_code=$2, response_body=$3, error=$4, next_retry_at=$5, delivered=$6, delivered_at=$7,
		status=$8, updated_at=$9
		WHERE id=$10`
	_, err := r.pool.Exec(ctx, query,
		d.Attempt, d.StatusCode, d.ResponseBody, d.Error, d.NextRetryAt, d.Delivered, d.DeliveredAt,
		d.Status, d.UpdatedAt, d.ID,
	)
	if err != nil {
		return fmt.Errorf("update webhook delivery: %w", err)
	}
	return nil
}

// DueForRetry is the read side of the dispatcher's polling loop (§4.11, §9
// durability boundary): pending deliveries whose next_retry_at has elapsed.
func (r *WebhookDeliveryRepo) DueForRetry(ctx context.Context, now time.Time, limit int) ([]domain.WebhookDelivery, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT ` + webhookDeliveryColumns + ` FROM webhook_deliveries
		WHERE delivered = false AND status != 'failed' AND next_retry_at <= $1
		ORDER BY next_retry_at ASC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due webhook deliveries: %w", err)
	}
	defer rows.Close()

	var out []domain.WebhookDelivery
	for rows.Next() {
		var d domain.WebhookDelivery
		if err := rows.Scan(
			&d.ID, &d.MerchantID, &d.EventType, &d.EventID, &d.EndpointURL, &d.Payload, &d.Attempt, &d.MaxAttempts,
			&d.StatusCode, &d.ResponseBody, &d.Error, &d.NextRetryAt, &d.Delivered, &d.DeliveredAt, &d.Status,
			&d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan webhook delivery: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate webhook deliveries: %w", err)
	}
	return out, nil
}
