package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccessLogEntry is the fire-and-forget per-request record written by the
// middleware pipeline's final stage (§4.9 step 7). Generalized from the
// teacher's AuditLog (action/resource/IP shape) into the fixed tuple the
// spec names: request id, route, timing, and the idempotency key in play.
type AccessLogEntry struct {
	ID             uuid.UUID `json:"id"`
	RequestID      uuid.UUID `json:"request_id"`
	MerchantID     *uuid.UUID `json:"merchant_id,omitempty"`
	Route          string    `json:"route"`
	Method         string    `json:"method"`
	Status         int       `json:"status"`
	DurationMS     int64     `json:"duration_ms"`
	IPAddress      string    `json:"ip_address"`
	UserAgent      string    `json:"user_agent,omitempty"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
