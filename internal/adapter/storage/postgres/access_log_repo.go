package postgres

import (
	"context"
	"fmt"

	"payment-gateway/internal/core/domain"
)

// AccessLogRepo implements ports.AccessLogRepository, grounded on the
// teacher's auditRepo: a single fire-and-forget Create, never read from the
// request path.
type AccessLogRepo struct {
	pool Pool
}

func NewAccessLogRepo(pool Pool) *AccessLogRepo {
	return &AccessLogRepo{pool: pool}
}

func (r *AccessLogRepo) Create(ctx context.Context, e *domain.AccessLogEntry) error {
	query := `INSERT INTO access_log_entries
		(id, request_id, merchant_id, route, method, status, duration_ms, ip_address, user_agent, idempotency_key, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.pool.Exec(ctx, query,
		e.ID, e.RequestID, e.MerchantID, e.Route, e.Method, e.Status, e.DurationMS,
		e.IPAddress, e.UserAgent, e.IdempotencyKey, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert access log entry: %w", err)
	}
	return nil
}
