package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"payment-gateway/internal/core/domain"
	"payment-gateway/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Merchant Repo ---

type inMemoryMerchantRepo struct {
	mu        sync.RWMutex
	merchants map[uuid.UUID]*domain.Merchant
}

func newInMemoryMerchantRepo() *inMemoryMerchantRepo {
	return &inMemoryMerchantRepo{merchants: make(map[uuid.UUID]*domain.Merchant)}
}

func (r *inMemoryMerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.merchants[m.ID] = m
	return nil
}

func (r *inMemoryMerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.merchants[id]
	if !ok {
		return nil, nil
	}
	return m, nil
}

func (r *inMemoryMerchantRepo) Update(ctx context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.merchants[m.ID]; !ok {
		return fmt.Errorf("merchant not found")
	}
	r.merchants[m.ID] = m
	return nil
}

// --- In-Memory ApiKey Repo ---

type inMemoryApiKeyRepo struct {
	mu   sync.RWMutex
	keys map[uuid.UUID]*domain.ApiKey
}

func newInMemoryApiKeyRepo() *inMemoryApiKeyRepo {
	return &inMemoryApiKeyRepo{keys: make(map[uuid.UUID]*domain.ApiKey)}
}

func (r *inMemoryApiKeyRepo) Create(ctx context.Context, key *domain.ApiKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[key.ID] = key
	return nil
}

func (r *inMemoryApiKeyRepo) GetByLookupHash(ctx context.Context, hash string) (*domain.ApiKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, k := range r.keys {
		if k.LookupHash == hash {
			return k, nil
		}
	}
	return nil, nil
}

func (r *inMemoryApiKeyRepo) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[id]
	if !ok {
		return nil
	}
	k.LastUsedAt = &at
	return nil
}

// --- In-Memory PaymentIntent Repo ---

type inMemoryPaymentIntentRepo struct {
	mu      sync.RWMutex
	intents map[uuid.UUID]*domain.PaymentIntent
}

func newInMemoryPaymentIntentRepo() *inMemoryPaymentIntentRepo {
	return &inMemoryPaymentIntentRepo{intents: make(map[uuid.UUID]*domain.PaymentIntent)}
}

func (r *inMemoryPaymentIntentRepo) Create(ctx context.Context, tx pgx.Tx, pi *domain.PaymentIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *pi
	r.intents[pi.ID] = &cp
	return nil
}

func (r *inMemoryPaymentIntentRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.PaymentIntent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pi, ok := r.intents[id]
	if !ok || pi.MerchantID != merchantID {
		return nil, nil
	}
	cp := *pi
	return &cp, nil
}

func (r *inMemoryPaymentIntentRepo) Update(ctx context.Context, tx pgx.Tx, pi *domain.PaymentIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.intents[pi.ID]; !ok {
		return fmt.Errorf("payment intent not found")
	}
	cp := *pi
	r.intents[pi.ID] = &cp
	return nil
}

func (r *inMemoryPaymentIntentRepo) UpdateStatusCAS(ctx context.Context, tx pgx.Tx, id uuid.UUID, expected, next domain.PaymentIntentStatus, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pi, ok := r.intents[id]
	if !ok {
		return false, fmt.Errorf("payment intent not found")
	}
	if pi.Status != expected {
		return false, nil
	}
	pi.Status = next
	pi.UpdatedAt = now
	return true, nil
}

func (r *inMemoryPaymentIntentRepo) List(ctx context.Context, params ports.PaymentIntentListParams) ([]domain.PaymentIntent, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []domain.PaymentIntent
	for _, pi := range r.intents {
		if pi.MerchantID != params.MerchantID {
			continue
		}
		if params.CustomerID != nil && (pi.CustomerID == nil || *pi.CustomerID != *params.CustomerID) {
			continue
		}
		if params.Status != nil && pi.Status != *params.Status {
			continue
		}
		matched = append(matched, *pi)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })
	total := int64(len(matched))

	start := 0
	if params.StartingAfter != nil {
		for i, pi := range matched {
			if pi.ID == *params.StartingAfter {
				start = i + 1
				break
			}
		}
	}
	if start >= len(matched) {
		return []domain.PaymentIntent{}, total, nil
	}
	end := len(matched)
	if params.Limit > 0 && start+params.Limit < end {
		end = start + params.Limit
	}
	return matched[start:end], total, nil
}

// --- In-Memory Charge Repo ---

type inMemoryChargeRepo struct {
	mu      sync.RWMutex
	charges map[uuid.UUID]*domain.Charge
}

func newInMemoryChargeRepo() *inMemoryChargeRepo {
	return &inMemoryChargeRepo{charges: make(map[uuid.UUID]*domain.Charge)}
}

func (r *inMemoryChargeRepo) Create(ctx context.Context, tx pgx.Tx, charge *domain.Charge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *charge
	r.charges[charge.ID] = &cp
	return nil
}

func (r *inMemoryChargeRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Charge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.charges[id]
	if !ok || c.MerchantID != merchantID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *inMemoryChargeRepo) GetByPaymentIntentID(ctx context.Context, merchantID, paymentIntentID uuid.UUID) (*domain.Charge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.charges {
		if c.MerchantID == merchantID && c.PaymentIntentID == paymentIntentID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryChargeRepo) UpdateCAS(ctx context.Context, tx pgx.Tx, charge *domain.Charge, expected domain.ChargeStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.charges[charge.ID]
	if !ok {
		return false, fmt.Errorf("charge not found")
	}
	if existing.Status != expected {
		return false, nil
	}
	cp := *charge
	r.charges[charge.ID] = &cp
	return true, nil
}

// --- In-Memory Refund Repo ---

type inMemoryRefundRepo struct {
	mu      sync.RWMutex
	refunds map[uuid.UUID]*domain.Refund
}

func newInMemoryRefundRepo() *inMemoryRefundRepo {
	return &inMemoryRefundRepo{refunds: make(map[uuid.UUID]*domain.Refund)}
}

func (r *inMemoryRefundRepo) Create(ctx context.Context, tx pgx.Tx, refund *domain.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *refund
	r.refunds[refund.ID] = &cp
	return nil
}

func (r *inMemoryRefundRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Refund, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rf, ok := r.refunds[id]
	if !ok || rf.MerchantID != merchantID {
		return nil, nil
	}
	cp := *rf
	return &cp, nil
}

func (r *inMemoryRefundRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.RefundStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rf, ok := r.refunds[id]
	if !ok {
		return fmt.Errorf("refund not found")
	}
	rf.Status = status
	return nil
}

func (r *inMemoryRefundRepo) ListByCharge(ctx context.Context, merchantID, chargeID uuid.UUID) ([]domain.Refund, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Refund
	for _, rf := range r.refunds {
		if rf.MerchantID == merchantID && rf.ChargeID == chargeID {
			out = append(out, *rf)
		}
	}
	return out, nil
}

// --- In-Memory Customer Repo ---

type inMemoryCustomerRepo struct {
	mu        sync.RWMutex
	customers map[uuid.UUID]*domain.Customer
}

func newInMemoryCustomerRepo() *inMemoryCustomerRepo {
	return &inMemoryCustomerRepo{customers: make(map[uuid.UUID]*domain.Customer)}
}

func (r *inMemoryCustomerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *customer
	r.customers[customer.ID] = &cp
	return nil
}

func (r *inMemoryCustomerRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	if !ok || c.MerchantID != merchantID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *inMemoryCustomerRepo) Update(ctx context.Context, customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[customer.ID]; !ok {
		return fmt.Errorf("customer not found")
	}
	cp := *customer
	r.customers[customer.ID] = &cp
	return nil
}

func (r *inMemoryCustomerRepo) Delete(ctx context.Context, merchantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.customers, id)
	return nil
}

func (r *inMemoryCustomerRepo) Search(ctx context.Context, merchantID uuid.UUID, query string, limit int) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Customer
	for _, c := range r.customers {
		if c.MerchantID != merchantID {
			continue
		}
		out = append(out, *c)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// --- In-Memory Balance Transaction Repo (computed over charges/refunds) ---

type inMemoryBalanceRepo struct {
	charges *inMemoryChargeRepo
	refunds *inMemoryRefundRepo
}

func newInMemoryBalanceRepo(charges *inMemoryChargeRepo, refunds *inMemoryRefundRepo) *inMemoryBalanceRepo {
	return &inMemoryBalanceRepo{charges: charges, refunds: refunds}
}

func (r *inMemoryBalanceRepo) projection(merchantID uuid.UUID) []domain.BalanceTransaction {
	r.charges.mu.RLock()
	var out []domain.BalanceTransaction
	for _, c := range r.charges.charges {
		if c.MerchantID != merchantID || c.AmountCaptured == 0 {
			continue
		}
		out = append(out, domain.BalanceTransaction{
			ID: c.ID, MerchantID: merchantID, Type: domain.BalanceTransactionCharge,
			Amount: int64(c.AmountCaptured), Currency: c.Currency, Net: int64(c.AmountCaptured),
			SourceID: c.ID, CreatedAt: c.CreatedAt,
		})
	}
	r.charges.mu.RUnlock()

	r.refunds.mu.RLock()
	for _, rf := range r.refunds.refunds {
		if rf.MerchantID != merchantID || rf.Status != domain.RefundSucceeded {
			continue
		}
		out = append(out, domain.BalanceTransaction{
			ID: rf.ID, MerchantID: merchantID, Type: domain.BalanceTransactionRefund,
			Amount: -int64(rf.Amount), Currency: rf.Currency, Net: -int64(rf.Amount),
			SourceID: rf.ID, CreatedAt: rf.CreatedAt,
		})
	}
	r.refunds.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *inMemoryBalanceRepo) List(ctx context.Context, merchantID uuid.UUID, limit int) ([]domain.BalanceTransaction, error) {
	all := r.projection(merchantID)
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *inMemoryBalanceRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.BalanceTransaction, error) {
	for _, bt := range r.projection(merchantID) {
		if bt.SourceID == id {
			cp := bt
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryBalanceRepo) Summary(ctx context.Context, merchantID uuid.UUID) (*domain.BalanceSummary, error) {
	summary := &domain.BalanceSummary{}
	for _, bt := range r.projection(merchantID) {
		summary.Currency = bt.Currency
		summary.TransactionCount++
		switch bt.Type {
		case domain.BalanceTransactionCharge:
			summary.GrossCharges += bt.Amount
		case domain.BalanceTransactionRefund:
			summary.GrossRefunds += bt.Amount
		}
		summary.NetBalance += bt.Net
	}
	return summary, nil
}

// --- In-Memory Webhook Repo ---

type inMemoryWebhookRepo struct {
	mu       sync.RWMutex
	webhooks map[uuid.UUID]*domain.Webhook
}

func newInMemoryWebhookRepo() *inMemoryWebhookRepo {
	return &inMemoryWebhookRepo{webhooks: make(map[uuid.UUID]*domain.Webhook)}
}

func (r *inMemoryWebhookRepo) Create(ctx context.Context, w *domain.Webhook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.webhooks[w.ID] = &cp
	return nil
}

func (r *inMemoryWebhookRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Webhook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.webhooks[id]
	if !ok || w.MerchantID != merchantID {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWebhookRepo) ListActiveByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Webhook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Webhook
	for _, w := range r.webhooks {
		if w.MerchantID == merchantID && w.IsActive {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *inMemoryWebhookRepo) Update(ctx context.Context, w *domain.Webhook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.webhooks[w.ID]; !ok {
		return fmt.Errorf("webhook not found")
	}
	cp := *w
	r.webhooks[w.ID] = &cp
	return nil
}

func (r *inMemoryWebhookRepo) Delete(ctx context.Context, merchantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.webhooks, id)
	return nil
}

// --- In-Memory WebhookDelivery Repo ---

type inMemoryWebhookDeliveryRepo struct {
	mu         sync.Mutex
	deliveries map[uuid.UUID]*domain.WebhookDelivery
}

func newInMemoryWebhookDeliveryRepo() *inMemoryWebhookDeliveryRepo {
	return &inMemoryWebhookDeliveryRepo{deliveries: make(map[uuid.UUID]*domain.WebhookDelivery)}
}

func (r *inMemoryWebhookDeliveryRepo) Create(ctx context.Context, delivery *domain.WebhookDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *delivery
	r.deliveries[delivery.ID] = &cp
	return nil
}

func (r *inMemoryWebhookDeliveryRepo) Update(ctx context.Context, delivery *domain.WebhookDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.deliveries[delivery.ID]; !ok {
		return fmt.Errorf("webhook delivery not found")
	}
	cp := *delivery
	r.deliveries[delivery.ID] = &cp
	return nil
}

func (r *inMemoryWebhookDeliveryRepo) DueForRetry(ctx context.Context, now time.Time, limit int) ([]domain.WebhookDelivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WebhookDelivery
	for _, d := range r.deliveries {
		if d.Status != domain.WebhookDeliveryPending {
			continue
		}
		if d.NextRetryAt.After(now) {
			continue
		}
		out = append(out, *d)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// --- In-Memory Idempotency Repo ---

// inMemoryIdempotencyRepo is a mutex-protected stand-in for the durable
// Postgres-backed ports.IdempotencyRepository: Reserve must behave
// atomically under concurrent callers racing the same (merchant, key) pair,
// the same guarantee a real `INSERT ... ON CONFLICT DO NOTHING` gives.
type inMemoryIdempotencyRepo struct {
	mu      sync.Mutex
	entries map[string]*domain.IdempotentRequest
}

func newInMemoryIdempotencyRepo() *inMemoryIdempotencyRepo {
	return &inMemoryIdempotencyRepo{entries: make(map[string]*domain.IdempotentRequest)}
}

func idempotencyMapKey(merchantID uuid.UUID, key string) string {
	return merchantID.String() + ":" + key
}

func (r *inMemoryIdempotencyRepo) Reserve(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, key, requestHash string, now time.Time) (*domain.IdempotentRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mapKey := idempotencyMapKey(merchantID, key)
	if existing, ok := r.entries[mapKey]; ok {
		cp := *existing
		return &cp, false, nil
	}
	r.entries[mapKey] = &domain.IdempotentRequest{
		MerchantID: merchantID, Key: key, RequestHash: requestHash, CreatedAt: now,
	}
	return nil, true, nil
}

func (r *inMemoryIdempotencyRepo) Complete(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, key string, statusCode int, responseBody string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mapKey := idempotencyMapKey(merchantID, key)
	entry, ok := r.entries[mapKey]
	if !ok {
		return fmt.Errorf("idempotency key not reserved")
	}
	entry.StatusCode = statusCode
	entry.ResponseBody = responseBody
	entry.Completed = true
	return nil
}

// --- In-Memory AccessLog Repo ---

type inMemoryAccessLogRepo struct {
	mu      sync.Mutex
	entries []domain.AccessLogEntry
}

func newInMemoryAccessLogRepo() *inMemoryAccessLogRepo {
	return &inMemoryAccessLogRepo{}
}

func (r *inMemoryAccessLogRepo) Create(ctx context.Context, entry *domain.AccessLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing: every
// repository above mutates its map directly and ignores the tx handle, so
// commit/rollback are no-ops rather than a second code path to keep in sync.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                              { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }

var (
	_ ports.MerchantRepository           = (*inMemoryMerchantRepo)(nil)
	_ ports.ApiKeyRepository             = (*inMemoryApiKeyRepo)(nil)
	_ ports.PaymentIntentRepository      = (*inMemoryPaymentIntentRepo)(nil)
	_ ports.ChargeRepository             = (*inMemoryChargeRepo)(nil)
	_ ports.RefundRepository             = (*inMemoryRefundRepo)(nil)
	_ ports.CustomerRepository           = (*inMemoryCustomerRepo)(nil)
	_ ports.BalanceTransactionRepository = (*inMemoryBalanceRepo)(nil)
	_ ports.WebhookRepository            = (*inMemoryWebhookRepo)(nil)
	_ ports.WebhookDeliveryRepository    = (*inMemoryWebhookDeliveryRepo)(nil)
	_ ports.IdempotencyRepository        = (*inMemoryIdempotencyRepo)(nil)
	_ ports.AccessLogRepository          = (*inMemoryAccessLogRepo)(nil)
	_ ports.DBTransactor                 = (*inMemoryTransactor)(nil)
)
