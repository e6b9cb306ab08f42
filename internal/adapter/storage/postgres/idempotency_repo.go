package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payment-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// IdempotencyRepo implements ports.IdempotencyRepository: the durable
// backstop behind the KV-cache fast path, mirroring the teacher's
// two-layer cache-then-repo idempotency check.
type IdempotencyRepo struct {
	pool Pool
}

func NewIdempotencyRepo(pool Pool) *IdempotencyRepo {
	return &IdempotencyRepo{pool: pool}
}

// Reserve atomically inserts a new key row if absent, using ON CONFLICT DO
// NOTHING to make the race between two concurrent requests with the same
// key resolve deterministically: whichever insert lands first proceeds,
// the other's RowsAffected()==0 tells it to read back and replay instead.
func (r *IdempotencyRepo) Reserve(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, key, requestHash string, now time.Time) (*domain.IdempotentRequest, bool, error) {
	query := `INSERT INTO idempotent_requests (merchant_id, key, request_hash, status_code, response_body, completed, created_at)
		VALUES ($1, $2, $3, 0, '', false, $4)
		ON CONFLICT (merchant_id, key) DO NOTHING`
	tag, err := withTx(r.pool, tx).Exec(ctx, query, merchantID, key, requestHash, now)
	if err != nil {
		return nil, false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil, true, nil
	}

	existing := &domain.IdempotentRequest{}
	getQuery := `SELECT merchant_id, key, request_hash, status_code, response_body, completed, created_at
		FROM idempotent_requests WHERE merchant_id = $1 AND key = $2`
	err = withTx(r.pool, tx).QueryRow(ctx, getQuery, merchantID, key).Scan(
		&existing.MerchantID, &existing.Key, &existing.RequestHash, &existing.StatusCode,
		&existing.ResponseBody, &existing.Completed, &existing.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, fmt.Errorf("idempotency key vanished after conflict: %w", err)
		}
		return nil, false, fmt.Errorf("read existing idempotency key: %w", err)
	}
	return existing, false, nil
}

// Complete records the final response against a reserved key, marking it
// completed so a retried request in flight can be replayed verbatim.
func (r *IdempotencyRepo) Complete(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, key string, statusCode int, responseBody string) error {
	query := `UPDATE idempotent_requests SET status_code=$1, response_body=$2, completed=true
		WHERE merchant_id=$3 AND key=$4`
	_, err := withTx(r.pool, tx).Exec(ctx, query, statusCode, responseBody, merchantID, key)
	if err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}
