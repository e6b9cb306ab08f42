package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"payment-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RefundRepo implements ports.RefundRepository.
type RefundRepo struct {
	pool Pool
}

func NewRefundRepo(pool Pool) *RefundRepo {
	return &RefundRepo{pool: pool}
}

const refundColumns = `id, merchant_id, charge_id, amount, currency, reason, status, acquirer_reference, metadata, created_at, updated_at`

func (r *RefundRepo) Create(ctx context.Context, tx pgx.Tx, rf *domain.Refund) error {
	meta, err := json.Marshal(rf.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	query := `INSERT INTO refunds (` + refundColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err = withTx(r.pool, tx).Exec(ctx, query,
		rf.ID, rf.MerchantID, rf.ChargeID, rf.Amount, rf.Currency, rf.Reason, rf.Status, rf.AcquirerReference, meta,
		rf.CreatedAt, rf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert refund: %w", err)
	}
	return nil
}

func scanRefund(row pgx.Row) (*domain.Refund, error) {
	rf := &domain.Refund{}
	var meta []byte
	err := row.Scan(
		&rf.ID, &rf.MerchantID, &rf.ChargeID, &rf.Amount, &rf.Currency, &rf.Reason, &rf.Status, &rf.AcquirerReference,
		&meta, &rf.CreatedAt, &rf.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 && string(meta) != "null" {
		if err := json.Unmarshal(meta, &rf.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return rf, nil
}

func (r *RefundRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE merchant_id = $1 AND id = $2`
	rf, err := scanRefund(r.pool.QueryRow(ctx, query, merchantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get refund by id: %w", err)
	}
	return rf, nil
}

func (r *RefundRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.RefundStatus) error {
	_, err := withTx(r.pool, tx).Exec(ctx, `UPDATE refunds SET status=$1, updated_at=now() WHERE id=$2`, status, id)
	if err != nil {
		return fmt.Errorf("update refund status: %w", err)
	}
	return nil
}

func (r *RefundRepo) ListByCharge(ctx context.Context, merchantID, chargeID uuid.UUID) ([]domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE merchant_id = $1 AND charge_id = $2 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, merchantID, chargeID)
	if err != nil {
		return nil, fmt.Errorf("list refunds by charge: %w", err)
	}
	defer rows.Close()

	var out []domain.Refund
	for rows.Next() {
		rf, err := scanRefund(rows)
		if err != nil {
			return nil, fmt.Errorf("scan refund: %w", err)
		}
		out = append(out, *rf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refunds: %w", err)
	}
	return out, nil
}
