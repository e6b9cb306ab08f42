package service

import "time"

// SystemClock implements ports.Clock with the wall clock. Tests substitute
// a fixed clock directly rather than faking time.Now(), the same seam the
// teacher's domain tests use for CreatedAt/UpdatedAt assertions.
type SystemClock struct{}

// NewSystemClock creates a clock backed by time.Now.
func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now() }
