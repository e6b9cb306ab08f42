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

// MerchantRepo implements ports.MerchantRepository.
type MerchantRepo struct {
	pool Pool
}

// NewMerchantRepo creates a new MerchantRepo.
func NewMerchantRepo(pool Pool) *MerchantRepo {
	return &MerchantRepo{pool: pool}
}

func (r *MerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	rules, err := json.Marshal(m.RoutingConfig.Rules)
	if err != nil {
		return fmt.Errorf("marshal routing rules: %w", err)
	}
	adapters, err := json.Marshal(m.RoutingConfig.Adapters)
	if err != nil {
		return fmt.Errorf("marshal routing adapters: %w", err)
	}
	query := `INSERT INTO merchants (id, routing_strategy, routing_default_adapter, routing_adapters, routing_rules, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.pool.Exec(ctx, query,
		m.ID, m.RoutingConfig.Strategy, m.RoutingConfig.DefaultAdapter, adapters, rules,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert merchant: %w", err)
	}
	return nil
}

func (r *MerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	query := `SELECT id, routing_strategy, routing_default_adapter, routing_adapters, routing_rules, created_at, updated_at
		FROM merchants WHERE id = $1`
	m := &domain.Merchant{}
	var adapters, rules []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.RoutingConfig.Strategy, &m.RoutingConfig.DefaultAdapter, &adapters, &rules,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get merchant by id: %w", err)
	}
	if len(adapters) > 0 {
		if err := json.Unmarshal(adapters, &m.RoutingConfig.Adapters); err != nil {
			return nil, fmt.Errorf("unmarshal routing adapters: %w", err)
		}
	}
	m.RoutingConfig.Rules = rules
	return m, nil
}

func (r *MerchantRepo) Update(ctx context.Context, m *domain.Merchant) error {
	adapters, err := json.Marshal(m.RoutingConfig.Adapters)
	if err != nil {
		return fmt.Errorf("marshal routing adapters: %w", err)
	}
	query := `UPDATE merchants
		SET routing_strategy=$1, routing_default_adapter=$2, routing_adapters=$3, routing_rules=$4, updated_at=$5
		WHERE id=$6`
	_, err = r.pool.Exec(ctx, query,
		m.RoutingConfig.Strategy, m.RoutingConfig.DefaultAdapter, adapters, []byte(m.RoutingConfig.Rules), m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("update merchant: %w", err)
	}
	return nil
}

// ApiKeyRepo implements ports.ApiKeyRepository, grounded on the teacher's
// MerchantRepo.GetByAccessKey lookup-by-credential shape but split into its
// own aggregate since a merchant now owns many keys instead of exactly one.
type ApiKeyRepo struct {
	pool Pool
}

func NewApiKeyRepo(pool Pool) *ApiKeyRepo {
	return &ApiKeyRepo{pool: pool}
}

func (r *ApiKeyRepo) Create(ctx context.Context, k *domain.ApiKey) error {
	query := `INSERT INTO api_keys (id, merchant_id, type, lookup_hash, is_active, last_used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query, k.ID, k.MerchantID, k.Type, k.LookupHash, k.IsActive, k.LastUsedAt, k.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

func (r *ApiKeyRepo) GetByLookupHash(ctx context.Context, hash string) (*domain.ApiKey, error) {
	query := `SELECT id, merchant_id, type, lookup_hash, is_active, last_used_at, created_at
		FROM api_keys WHERE lookup_hash = $1`
	k := &domain.ApiKey{}
	err := r.pool.QueryRow(ctx, query, hash).Scan(
		&k.ID, &k.MerchantID, &k.Type, &k.LookupHash, &k.IsActive, &k.LastUsedAt, &k.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get api key by lookup hash: %w", err)
	}
	return k, nil
}

func (r *ApiKeyRepo) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE api_keys SET last_used_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("touch api key last_used_at: %w", err)
	}
	return nil
}
