package ports

import (
	"context"
	"time"

	"payment-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MerchantRepository defines persistence operations for merchants.
type MerchantRepository interface {
	Create(ctx context.Context, merchant *domain.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
	Update(ctx context.Context, merchant *domain.Merchant) error
}

// ApiKeyRepository defines persistence operations for API keys. GetByLookupHash
// is the hot path hit on every authenticated request, mirroring the teacher's
// MerchantRepository.GetByAccessKey lookup-by-credential shape.
type ApiKeyRepository interface {
	Create(ctx context.Context, key *domain.ApiKey) error
	GetByLookupHash(ctx context.Context, hash string) (*domain.ApiKey, error)
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}

// PaymentIntentRepository defines persistence operations for payment intents.
// UpdateStatusCAS implements the §5 conditional-UPDATE concurrency pattern:
// it succeeds only if the row's current status matches expected, reporting
// false (not an error) on a lost race so callers can re-read and decide.
type PaymentIntentRepository interface {
	Create(ctx context.Context, tx pgx.Tx, pi *domain.PaymentIntent) error
	GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.PaymentIntent, error)
	Update(ctx context.Context, tx pgx.Tx, pi *domain.PaymentIntent) error
	UpdateStatusCAS(ctx context.Context, tx pgx.Tx, id uuid.UUID, expected, next domain.PaymentIntentStatus, now time.Time) (bool, error)
	List(ctx context.Context, params PaymentIntentListParams) ([]domain.PaymentIntent, int64, error)
}

// PaymentIntentListParams holds filter + pagination for listing intents.
type PaymentIntentListParams struct {
	MerchantID uuid.UUID
	CustomerID *uuid.UUID
	Status     *domain.PaymentIntentStatus
	Limit      int
	StartingAfter *uuid.UUID
}

// ChargeRepository defines persistence operations for charges.
type ChargeRepository interface {
	Create(ctx context.Context, tx pgx.Tx, charge *domain.Charge) error
	GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Charge, error)
	GetByPaymentIntentID(ctx context.Context, merchantID, paymentIntentID uuid.UUID) (*domain.Charge, error)
	// UpdateCAS applies the full row (including amount_captured/amount_refunded)
	// only if the row's current status still matches expected.
	UpdateCAS(ctx context.Context, tx pgx.Tx, charge *domain.Charge, expected domain.ChargeStatus) (bool, error)
}

// RefundRepository defines persistence operations for refunds.
type RefundRepository interface {
	Create(ctx context.Context, tx pgx.Tx, refund *domain.Refund) error
	GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Refund, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.RefundStatus) error
	ListByCharge(ctx context.Context, merchantID, chargeID uuid.UUID) ([]domain.Refund, error)
}

// CustomerRepository defines persistence operations for the [EXPANSION] Customer aggregate.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Customer, error)
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, merchantID, id uuid.UUID) error
	// Search does a case-insensitive substring match over email/name/phone.
	Search(ctx context.Context, merchantID uuid.UUID, query string, limit int) ([]domain.Customer, error)
}

// BalanceTransactionRepository computes the read-only [EXPANSION] ledger
// projection at query time; there is no corresponding Create.
type BalanceTransactionRepository interface {
	List(ctx context.Context, merchantID uuid.UUID, limit int) ([]domain.BalanceTransaction, error)
	GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.BalanceTransaction, error)
	// Summary aggregates the same charge/refund union into running totals
	// (§4.10 GET /balance/summary), rather than paging through List.
	Summary(ctx context.Context, merchantID uuid.UUID) (*domain.BalanceSummary, error)
}

// WebhookRepository defines persistence operations for registered webhook endpoints.
type WebhookRepository interface {
	Create(ctx context.Context, webhook *domain.Webhook) error
	GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Webhook, error)
	ListActiveByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Webhook, error)
	Update(ctx context.Context, webhook *domain.Webhook) error
	Delete(ctx context.Context, merchantID, id uuid.UUID) error
}

// WebhookDeliveryRepository defines persistence for delivery attempts, grounded
// on the teacher's postgres.webhookRepo (Create/Update + lookup-by-owner shape).
type WebhookDeliveryRepository interface {
	Create(ctx context.Context, delivery *domain.WebhookDelivery) error
	Update(ctx context.Context, delivery *domain.WebhookDelivery) error
	// DueForRetry returns pending deliveries whose next_retry_at has elapsed,
	// the read side of the dispatcher's polling loop (§4.11, §9 durability boundary).
	DueForRetry(ctx context.Context, now time.Time, limit int) ([]domain.WebhookDelivery, error)
}

// IdempotencyRepository is the durable (Postgres) backstop behind the KV-cache
// idempotency fast path, mirroring the teacher's two-layer cache-then-repo
// check in PaymentServiceImpl.ProcessPayment.
type IdempotencyRepository interface {
	// Reserve atomically inserts a new key row if absent. ok=false means an
	// existing row was found and is returned instead (replay, not a fresh call).
	Reserve(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, key, requestHash string, now time.Time) (existing *domain.IdempotentRequest, ok bool, err error)
	Complete(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, key string, statusCode int, responseBody string) error
}

// DBTransactor provides database transaction management, unchanged from the
// teacher's postgres.Transactor shape.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AccessLogRepository persists AccessLogEntry rows, grounded on the
// teacher's postgres.auditRepo (single fire-and-forget Create, no reads
// from the request path).
type AccessLogRepository interface {
	Create(ctx context.Context, entry *domain.AccessLogEntry) error
}
