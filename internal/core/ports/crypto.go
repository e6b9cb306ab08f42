package ports

import "time"

// Clock abstracts wall-clock time so the orchestrator's status transitions
// and the webhook dispatcher's retry scheduling are deterministic in tests,
// grounded on the same "every boundary is a port" shape as the rest of this
// package (the teacher has no explicit Clock, relying on time.Now directly
// in service code; this spec's conditional-UPDATE CAS and retry-interval
// math make a seam worth adding).
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts ID creation, wrapping github.com/google/uuid (used
// directly by the teacher throughout its repositories and services).
type IDGenerator interface {
	NewID() [16]byte
}

// CryptoService handles AES-256-GCM encryption/decryption, renamed and
// narrowed from the teacher's EncryptionService for this spec's one use:
// sealing short-lived tokenized card references in the KV store rather
// than encrypting wallet balances.
type CryptoService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing and verification, unchanged
// in shape from the teacher's service.HMACSignatureService, reused here for
// webhook payload signing (§4.11) and as a building block of the
// CyberSource HTTP-Signature scheme (§4.6).
type SignatureService interface {
	Sign(secret, payload string) string
	Verify(secret, payload, signature string) bool
}
