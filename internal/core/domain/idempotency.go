package domain

import (
	"time"

	"github.com/google/uuid"
)

// IdempotentRequest is the durable record of one Idempotency-Key value
// (§4.2, §4.9). It generalizes the teacher's IdempotencyLog — keyed by
// merchant+reference-id and carrying only the final response — into a
// record that also tracks the request body's hash, so a key reused with a
// different payload can be rejected as idempotency_conflict (§7) rather
// than silently replayed.
type IdempotentRequest struct {
	MerchantID   uuid.UUID `json:"merchant_id"`
	Key          string    `json:"key"`
	RequestHash  string    `json:"request_hash"` // hex(sha256(method+path+body))
	StatusCode   int       `json:"status_code"`
	ResponseBody string    `json:"response_body"`
	Completed    bool      `json:"completed"`
	CreatedAt    time.Time `json:"created_at"`
}
