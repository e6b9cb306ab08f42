package service

import "github.com/google/uuid"

// UUIDGenerator implements ports.IDGenerator with random (v4) UUIDs, the
// same scheme the teacher uses for every primary key via uuid.New().
type UUIDGenerator struct{}

// NewUUIDGenerator creates a v4 UUID generator.
func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

func (UUIDGenerator) NewID() [16]byte { return uuid.New() }
