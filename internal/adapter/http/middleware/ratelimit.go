package middleware

import (
	"fmt"
	"strconv"
	"time"

	"payment-gateway/internal/core/ports"
	"payment-gateway/pkg/apperror"
	"payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimiter is a fixed-window limiter keyed on merchant_id:METHOD:path
// (§4.9 step 5), generalized from the teacher's RateLimiter/RateLimitStore
// pair onto the unified ports.KVStore.Increment (same INCR+conditional-TTL
// algorithm, one fewer storage-specific type). Unauthenticated requests
// (no merchant resolved yet) fall back to the client IP.
func RateLimiter(kv ports.KVStore, max int64, window time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s:%s", rateLimitIdentifier(c), c.Request.Method, c.FullPath())

		count, err := kv.Increment(c.Request.Context(), key, window)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limit check failed, allowing request (degraded mode)")
			c.Next()
			return
		}

		remaining := max - count
		if remaining < 0 {
			remaining = 0
		}
		resetAt := time.Now().Add(window).Unix()

		c.Header("X-RateLimit-Limit", strconv.FormatInt(max, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))

		if count > max {
			c.Header("Retry-After", strconv.FormatInt(int64(window.Seconds()), 10))
			response.Error(c, apperror.ErrRateLimited())
			c.Abort()
			return
		}

		c.Next()
	}
}

// rateLimitIdentifier prefers the authenticated merchant over the client
// IP, so a merchant's own budget follows them across NAT'd source
// addresses, matching the teacher's extractIdentifier access-key-first
// preference.
func rateLimitIdentifier(c *gin.Context) string {
	if mid, exists := c.Get(CtxMerchantID); exists {
		return fmt.Sprintf("%v", mid)
	}
	return c.ClientIP()
}
