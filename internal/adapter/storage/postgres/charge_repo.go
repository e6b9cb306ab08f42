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

// ChargeRepo implements ports.ChargeRepository.
type ChargeRepo struct {
	pool Pool
}

func NewChargeRepo(pool Pool) *ChargeRepo {
	return &ChargeRepo{pool: pool}
}

const chargeColumns = `id, merchant_id, payment_intent_id, amount_authorized, amount_captured, amount_refunded,
	currency, status, acquirer_name, acquirer_reference, authorization_code, network, processor_response, created_at, updated_at`

func (r *ChargeRepo) Create(ctx context.Context, tx pgx.Tx, c *domain.Charge) error {
	pr, err := json.Marshal(c.ProcessorResponse)
	if err != nil {
		return fmt.Errorf("marshal processor_response: %w", err)
	}
	query := `INSERT INTO charges (` + chargeColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
	_, err = withTx(r.pool, tx).Exec(ctx, query,
		c.ID, c.MerchantID, c.PaymentIntentID, c.AmountAuthorized, c.AmountCaptured, c.AmountRefunded,
		c.Currency, c.Status, c.AcquirerName, c.AcquirerReference, c.AuthorizationCode, c.Network, pr,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert charge: %w", err)
	}
	return nil
}

func scanCharge(row pgx.Row) (*domain.Charge, error) {
	c := &domain.Charge{}
	var pr []byte
	err := row.Scan(
		&c.ID, &c.MerchantID, &c.PaymentIntentID, &c.AmountAuthorized, &c.AmountCaptured, &c.AmountRefunded,
		&c.Currency, &c.Status, &c.AcquirerName, &c.AcquirerReference, &c.AuthorizationCode, &c.Network, &pr,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(pr) > 0 {
		if err := json.Unmarshal(pr, &c.ProcessorResponse); err != nil {
			return nil, fmt.Errorf("unmarshal processor_response: %w", err)
		}
	}
	return c, nil
}

func (r *ChargeRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Charge, error) {
	query := `SELECT ` + chargeColumns + ` FROM charges WHERE merchant_id = $1 AND id = $2`
	c, err := scanCharge(r.pool.QueryRow(ctx, query, merchantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get charge by id: %w", err)
	}
	return c, nil
}

func (r *ChargeRepo) GetByPaymentIntentID(ctx context.Context, merchantID, paymentIntentID uuid.UUID) (*domain.Charge, error) {
	query := `SELECT ` + chargeColumns + ` FROM charges WHERE merchant_id = $1 AND payment_intent_id = $2 ORDER BY created_at DESC LIMIT 1`
	c, err := scanCharge(r.pool.QueryRow(ctx, query, merchantID, paymentIntentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get charge by payment_intent_id: %w", err)
	}
	return c, nil
}

// UpdateCAS writes the full charge row only if its current status still
// matches expected, same race-losing-is-not-an-error shape as
// PaymentIntentRepo.UpdateStatusCAS.
func (r *ChargeRepo) UpdateCAS(ctx context.Context, tx pgx.Tx, c *domain.Charge, expected domain.ChargeStatus) (bool, error) {
	pr, err := json.Marshal(c.ProcessorResponse)
	if err != nil {
		return false, fmt.Errorf("marshal processor_response: %w", err)
	}
	query := `UPDATE charges SET
		amount_captured=$1, amount_refunded=$2, status=$3, acquirer_reference=$4, authorization_code=$5,
		network=$6, processor_response=$7, updated_at=$8
		WHERE id=$9 AND status=$10`
	tag, err := withTx(r.pool, tx).Exec(ctx, query,
		c.AmountCaptured, c.AmountRefunded, c.Status, c.AcquirerReference, c.AuthorizationCode,
		c.Network, pr, c.UpdatedAt, c.ID, expected,
	)
	if err != nil {
		return false, fmt.Errorf("cas update charge: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
