package domain

import (
	"time"

	"github.com/google/uuid"
)

// BalanceTransactionType distinguishes the three ledger entry kinds a
// BalanceTransaction can project.
type BalanceTransactionType string

const (
	BalanceTransactionCharge     BalanceTransactionType = "charge"
	BalanceTransactionRefund     BalanceTransactionType = "refund"
	BalanceTransactionAdjustment BalanceTransactionType = "adjustment"
)

// BalanceTransaction is a read-only [EXPANSION] projection computed at query
// time over charges and refunds (SPEC_FULL.md §3) — it is never written to
// its own table; a repository implementation derives it with a UNION query
// over charges/refunds rather than maintaining a separate ledger.
type BalanceTransaction struct {
	ID         uuid.UUID              `json:"id"`
	MerchantID uuid.UUID              `json:"merchant_id"`
	Type       BalanceTransactionType `json:"type"`
	Amount     int64                  `json:"amount"` // signed: negative for refunds
	Currency   string                 `json:"currency"`
	Fee        uint64                 `json:"fee"`
	Net        int64                  `json:"net"` // amount - fee, signed
	SourceID   uuid.UUID              `json:"source_id"` // charge_id or refund_id
	CreatedAt  time.Time              `json:"created_at"`
}

// BalanceSummary is the aggregated [EXPANSION] view backing GET
// /balance/summary: running totals over every BalanceTransaction a merchant
// has accrued, rather than a page of individual rows.
type BalanceSummary struct {
	Currency        string `json:"currency"`
	GrossCharges    int64  `json:"gross_charges"`
	GrossRefunds    int64  `json:"gross_refunds"`
	TotalFees       uint64 `json:"total_fees"`
	NetBalance      int64  `json:"net_balance"`
	TransactionCount int   `json:"transaction_count"`
}
