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

// CustomerRepo implements ports.CustomerRepository for the [EXPANSION]
// Customer aggregate, grounded on the teacher's merchant_repo.go
// single-table CRUD shape.
type CustomerRepo struct {
	pool Pool
}

func NewCustomerRepo(pool Pool) *CustomerRepo {
	return &CustomerRepo{pool: pool}
}

const customerColumns = `id, merchant_id, email, name, phone, metadata, created_at, updated_at`

func (r *CustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	meta, err := json.Marshal(c.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	query := `INSERT INTO customers (` + customerColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err = r.pool.Exec(ctx, query, c.ID, c.MerchantID, c.Email, c.Name, c.Phone, meta, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	c := &domain.Customer{}
	var meta []byte
	err := row.Scan(&c.ID, &c.MerchantID, &c.Email, &c.Name, &c.Phone, &meta, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 && string(meta) != "null" {
		if err := json.Unmarshal(meta, &c.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return c, nil
}

func (r *CustomerRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE merchant_id = $1 AND id = $2`
	c, err := scanCustomer(r.pool.QueryRow(ctx, query, merchantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by id: %w", err)
	}
	return c, nil
}

func (r *CustomerRepo) Update(ctx context.Context, c *domain.Customer) error {
	meta, err := json.Marshal(c.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	query := `UPDATE customers SET email=$1, name=$2, phone=$3, metadata=$4, updated_at=$5 WHERE merchant_id=$6 AND id=$7`
	_, err = r.pool.Exec(ctx, query, c.Email, c.Name, c.Phone, meta, c.UpdatedAt, c.MerchantID, c.ID)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

func (r *CustomerRepo) Delete(ctx context.Context, merchantID, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE merchant_id = $1 AND id = $2`, merchantID, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

// Search does a case-insensitive substring match over email/name/phone, per
// ports.CustomerRepository's doc comment.
func (r *CustomerRepo) Search(ctx context.Context, merchantID uuid.UUID, query string, limit int) ([]domain.Customer, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	sql := `SELECT ` + customerColumns + ` FROM customers
		WHERE merchant_id = $1 AND (email ILIKE $2 OR name ILIKE $2 OR phone ILIKE $2)
		ORDER BY created_at DESC LIMIT $3`
	rows, err := r.pool.Query(ctx, sql, merchantID, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return out, nil
}
