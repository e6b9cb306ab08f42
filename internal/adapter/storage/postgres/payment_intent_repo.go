package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"payment-gateway/internal/core/domain"
	"payment-gateway/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PaymentIntentRepo implements ports.PaymentIntentRepository, grounded on
// the teacher's transaction_repo.go row-per-aggregate shape with the
// §5 conditional-UPDATE CAS pattern added for UpdateStatusCAS.
type PaymentIntentRepo struct {
	pool Pool
}

func NewPaymentIntentRepo(pool Pool) *PaymentIntentRepo {
	return &PaymentIntentRepo{pool: pool}
}

const paymentIntentColumns = `id, merchant_id, customer_id, amount, currency, capture_method, confirmation_method,
	status, payment_method, acquirer_routing, metadata, description, created_at, updated_at`

func (r *PaymentIntentRepo) Create(ctx context.Context, tx pgx.Tx, pi *domain.PaymentIntent) error {
	pm, err := json.Marshal(pi.PaymentMethod)
	if err != nil {
		return fmt.Errorf("marshal payment_method: %w", err)
	}
	routing, err := json.Marshal(pi.AcquirerRouting)
	if err != nil {
		return fmt.Errorf("marshal acquirer_routing: %w", err)
	}
	meta, err := json.Marshal(pi.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	query := `INSERT INTO payment_intents (` + paymentIntentColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	_, err = withTx(r.pool, tx).Exec(ctx, query,
		pi.ID, pi.MerchantID, pi.CustomerID, pi.Amount, pi.Currency, pi.CaptureMethod, pi.ConfirmationMethod,
		pi.Status, pm, routing, meta, pi.Description, pi.CreatedAt, pi.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment_intent: %w", err)
	}
	return nil
}

func scanPaymentIntent(row pgx.Row) (*domain.PaymentIntent, error) {
	pi := &domain.PaymentIntent{}
	var pm, routing, meta []byte
	err := row.Scan(
		&pi.ID, &pi.MerchantID, &pi.CustomerID, &pi.Amount, &pi.Currency, &pi.CaptureMethod, &pi.ConfirmationMethod,
		&pi.Status, &pm, &routing, &meta, &pi.Description, &pi.CreatedAt, &pi.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(pm) > 0 && string(pm) != "null" {
		if err := json.Unmarshal(pm, &pi.PaymentMethod); err != nil {
			return nil, fmt.Errorf("unmarshal payment_method: %w", err)
		}
	}
	if len(routing) > 0 {
		if err := json.Unmarshal(routing, &pi.AcquirerRouting); err != nil {
			return nil, fmt.Errorf("unmarshal acquirer_routing: %w", err)
		}
	}
	if len(meta) > 0 && string(meta) != "null" {
		if err := json.Unmarshal(meta, &pi.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return pi, nil
}

func (r *PaymentIntentRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.PaymentIntent, error) {
	query := `SELECT ` + paymentIntentColumns + ` FROM payment_intents WHERE merchant_id = $1 AND id = $2`
	pi, err := scanPaymentIntent(r.pool.QueryRow(ctx, query, merchantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment_intent by id: %w", err)
	}
	return pi, nil
}

func (r *PaymentIntentRepo) Update(ctx context.Context, tx pgx.Tx, pi *domain.PaymentIntent) error {
	pm, err := json.Marshal(pi.PaymentMethod)
	if err != nil {
		return fmt.Errorf("marshal payment_method: %w", err)
	}
	routing, err := json.Marshal(pi.AcquirerRouting)
	if err != nil {
		return fmt.Errorf("marshal acquirer_routing: %w", err)
	}
	meta, err := json.Marshal(pi.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	query := `UPDATE payment_intents SET
		customer_id=$1, status=$2, payment_method=$3, acquirer_routing=$4, metadata=$5, description=$6, updated_at=$7
		WHERE id=$8`
	_, err = withTx(r.pool, tx).Exec(ctx, query,
		pi.CustomerID, pi.Status, pm, routing, meta, pi.Description, pi.UpdatedAt, pi.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment_intent: %w", err)
	}
	return nil
}

// UpdateStatusCAS implements the §5 conditional-UPDATE concurrency pattern:
// the statement only touches the row if its current status still matches
// expected, and the returned bool distinguishes "lost the race" from a
// hard error so a caller can tell a lost race apart from a failure.
func (r *PaymentIntentRepo) UpdateStatusCAS(ctx context.Context, tx pgx.Tx, id uuid.UUID, expected, next domain.PaymentIntentStatus, now time.Time) (bool, error) {
	tag, err := withTx(r.pool, tx).Exec(ctx,
		`UPDATE payment_intents SET status=$1, updated_at=$2 WHERE id=$3 AND status=$4`,
		next, now, id, expected,
	)
	if err != nil {
		return false, fmt.Errorf("cas update payment_intent status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PaymentIntentRepo) List(ctx context.Context, params ports.PaymentIntentListParams) ([]domain.PaymentIntent, int64, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := `SELECT ` + paymentIntentColumns + ` FROM payment_intents WHERE merchant_id = $1`
	args := []interface{}{params.MerchantID}
	n := 1

	if params.CustomerID != nil {
		n++
		query += fmt.Sprintf(" AND customer_id = $%d", n)
		args = append(args, *params.CustomerID)
	}
	if params.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, *params.Status)
	}
	if params.StartingAfter != nil {
		n++
		query += fmt.Sprintf(" AND (created_at, id) < (SELECT created_at, id FROM payment_intents WHERE id = $%d)", n)
		args = append(args, *params.StartingAfter)
	}
	n++
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", n)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payment_intents: %w", err)
	}
	defer rows.Close()

	var out []domain.PaymentIntent
	for rows.Next() {
		pi, err := scanPaymentIntent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payment_intent: %w", err)
		}
		out = append(out, *pi)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate payment_intents: %w", err)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM payment_intents WHERE merchant_id = $1`, params.MerchantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payment_intents: %w", err)
	}
	return out, total, nil
}
