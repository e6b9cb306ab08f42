package postgres

import (
	"context"
	"errors"
	"fmt"

	"payment-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"

	"github.com/google/uuid"
)

// BalanceTransactionRepo implements ports.BalanceTransactionRepository as a
// read-only projection over charges and refunds, computed at query time
// rather than maintained as its own table (domain.BalanceTransaction's doc
// comment). Grounded on the same merchant-scoped query shape as the rest of
// this package, generalized to a UNION across the two source tables.
type BalanceTransactionRepo struct {
	pool Pool
}

func NewBalanceTransactionRepo(pool Pool) *BalanceTransactionRepo {
	return &BalanceTransactionRepo{pool: pool}
}

func (r *BalanceTransactionRepo) List(ctx context.Context, merchantID uuid.UUID, limit int) ([]domain.BalanceTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := `
		SELECT id, merchant_id, 'charge' AS type, amount_captured::bigint AS amount, currency,
			0::bigint AS fee, amount_captured::bigint AS net, id AS source_id, created_at
		FROM charges
		WHERE merchant_id = $1 AND amount_captured > 0
		UNION ALL
		SELECT id, merchant_id, 'refund' AS type, -amount::bigint AS amount, currency,
			0::bigint AS fee, -amount::bigint AS net, id AS source_id, created_at
		FROM refunds
		WHERE merchant_id = $1 AND status = 'succeeded'
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, merchantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list balance transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.BalanceTransaction
	for rows.Next() {
		var bt domain.BalanceTransaction
		if err := rows.Scan(&bt.ID, &bt.MerchantID, &bt.Type, &bt.Amount, &bt.Currency, &bt.Fee, &bt.Net, &bt.SourceID, &bt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan balance transaction: %w", err)
		}
		out = append(out, bt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance transactions: %w", err)
	}
	return out, nil
}

func (r *BalanceTransactionRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.BalanceTransaction, error) {
	query := `
		SELECT id, merchant_id, 'charge' AS type, amount_captured::bigint AS amount, currency,
			0::bigint AS fee, amount_captured::bigint AS net, id AS source_id, created_at
		FROM charges
		WHERE merchant_id = $1 AND id = $2 AND amount_captured > 0
		UNION ALL
		SELECT id, merchant_id, 'refund' AS type, -amount::bigint AS amount, currency,
			0::bigint AS fee, -amount::bigint AS net, id AS source_id, created_at
		FROM refunds
		WHERE merchant_id = $1 AND id = $2 AND status = 'succeeded'
		LIMIT 1`

	var bt domain.BalanceTransaction
	err := r.pool.QueryRow(ctx, query, merchantID, id).Scan(
		&bt.ID, &bt.MerchantID, &bt.Type, &bt.Amount, &bt.Currency, &bt.Fee, &bt.Net, &bt.SourceID, &bt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance transaction: %w", err)
	}
	return &bt, nil
}

func (r *BalanceTransactionRepo) Summary(ctx context.Context, merchantID uuid.UUID) (*domain.BalanceSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(amount_captured) FILTER (WHERE amount_captured > 0), 0)::bigint AS gross_charges,
			COALESCE((SELECT SUM(amount) FROM refunds WHERE merchant_id = $1 AND status = 'succeeded'), 0)::bigint AS gross_refunds,
			COALESCE((SELECT COUNT(*) FROM charges WHERE merchant_id = $1 AND amount_captured > 0), 0)
				+ COALESCE((SELECT COUNT(*) FROM refunds WHERE merchant_id = $1 AND status = 'succeeded'), 0) AS tx_count,
			COALESCE((SELECT currency FROM charges WHERE merchant_id = $1 LIMIT 1), 'usd') AS currency
		FROM charges
		WHERE merchant_id = $1`

	var summary domain.BalanceSummary
	var grossCharges, grossRefunds int64
	err := r.pool.QueryRow(ctx, query, merchantID).Scan(&grossCharges, &grossRefunds, &summary.TransactionCount, &summary.Currency)
	if err != nil {
		return nil, fmt.Errorf("summarize balance: %w", err)
	}
	summary.GrossCharges = grossCharges
	summary.GrossRefunds = grossRefunds
	summary.NetBalance = grossCharges - grossRefunds
	return &summary, nil
}
