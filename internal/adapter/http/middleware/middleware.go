package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"payment-gateway/internal/core/ports"
	"payment-gateway/pkg/apperror"
	"payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Context keys set by this package's middleware for downstream handlers.
const (
	CtxRequestID  = "request_id"
	CtxMerchantID = "merchant_id"
	CtxAPIKeyID   = "api_key_id"
)

// RequestID assigns a UUID to every request, reusing an inbound
// X-Request-Id if the caller already supplied one, and echoes it back on
// the response. Every other middleware and the response.Error envelope
// read it from the gin context under CtxRequestID (§4.9 step 1, §4.10).
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(CtxRequestID, id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// APIKeyAuth authenticates every request against the bearer pk_/sk_ API
// key scheme (§3), generalized from the teacher's HMACAuth access-key
// lookup: public keys are looked up by their verbatim value, secret keys
// by hex(SHA-256(key)) since the plaintext is never persisted. The
// resolved merchant id is stashed in the gin context for every handler
// downstream.
func APIKeyAuth(apiKeyRepo ports.ApiKeyRepository, merchantRepo ports.MerchantRepository, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Error(c, apperror.ErrInvalidAPIKey())
			c.Abort()
			return
		}
		key := strings.TrimPrefix(authHeader, "Bearer ")

		var lookupHash string
		switch {
		case strings.HasPrefix(key, "pk_"):
			lookupHash = key
		case strings.HasPrefix(key, "sk_"):
			lookupHash = hashAPIKey(key)
		default:
			response.Error(c, apperror.ErrInvalidAPIKey())
			c.Abort()
			return
		}

		apiKey, err := apiKeyRepo.GetByLookupHash(c.Request.Context(), lookupHash)
		if err != nil {
			log.Error().Err(err).Msg("api key lookup failed")
			response.Error(c, apperror.InternalError(err))
			c.Abort()
			return
		}
		if apiKey == nil {
			response.Error(c, apperror.ErrInvalidAPIKey())
			c.Abort()
			return
		}
		if !apiKey.IsActive {
			response.Error(c, apperror.ErrInactiveAPIKey())
			c.Abort()
			return
		}

		merchant, err := merchantRepo.GetByID(c.Request.Context(), apiKey.MerchantID)
		if err != nil {
			log.Error().Err(err).Msg("merchant lookup failed")
			response.Error(c, apperror.InternalError(err))
			c.Abort()
			return
		}
		if merchant == nil {
			response.Error(c, apperror.ErrInvalidAPIKey())
			c.Abort()
			return
		}

		if err := apiKeyRepo.TouchLastUsed(c.Request.Context(), apiKey.ID, time.Now()); err != nil {
			log.Warn().Err(err).Msg("failed to update api key last_used_at")
		}

		c.Set(CtxMerchantID, merchant.ID)
		c.Set(CtxAPIKeyID, apiKey.ID)
		c.Next()
	}
}

// hashAPIKey mirrors the merchant-provisioning side's sk_ key hashing
// (§3): hex(sha256(key)). A one-way lookup hash, not encryption, so it
// lives here rather than on CryptoService.
func hashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// RequestLogger logs every HTTP request, unchanged from the teacher's
// RequestLogger (status-tiered log level, method/path/latency/client-ip).
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Str("request_id", requestIDFrom(c)).
			Msg("http request")
	}
}

// Recovery is a panic recovery middleware, unchanged from the teacher's
// Recovery (logs the panic, returns a generic api_error envelope).
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				response.Error(c, apperror.InternalError(nil))
				c.Abort()
			}
		}()
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	if id, ok := c.Get(CtxRequestID); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
