package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Merchant is the external aggregate root the core consumes through the
// repository port. Only the fields the core actually reads/writes are
// modeled here; accounts, products, and checkout sessions live outside
// the core's boundary.
type Merchant struct {
	ID            uuid.UUID     `json:"id"`
	RoutingConfig RoutingConfig `json:"routing_config"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// RoutingConfig is the merchant-owned input to PickRoute (§4.7).
type RoutingConfig struct {
	Strategy       string          `json:"strategy"` // "default", "rules", "smart" (reserved)
	DefaultAdapter string          `json:"default_adapter,omitempty"`
	Adapters       map[string]bool `json:"adapters,omitempty"` // adapter name -> enabled
	Rules          json.RawMessage `json:"rules,omitempty"`    // reserved for "rules" strategy
}

// KeyType distinguishes the two ApiKey kinds (§3).
type KeyType string

const (
	KeyTypePublic KeyType = "public"
	KeyTypeSecret KeyType = "secret"
)

// ApiKey belongs to a merchant. Public keys are looked up verbatim; secret
// keys are looked up by hex(SHA-256(key)) and the plaintext is never
// persisted — generalized from the teacher's access-key/encrypted-secret-key
// split (service.AESEncryptionService) from "encrypted at rest, decrypted
// on use" to "hashed for lookup", since nothing here ever needs the
// plaintext back.
type ApiKey struct {
	ID         uuid.UUID  `json:"id"`
	MerchantID uuid.UUID  `json:"merchant_id"`
	Type       KeyType    `json:"type"`
	LookupHash string     `json:"-"` // verbatim value for public, hex(sha256) for secret
	IsActive   bool       `json:"is_active"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
