package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"payment-gateway/internal/core/ports"
	"payment-gateway/pkg/apperror"
	"payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const headerIdempotencyKey = "Idempotency-Key"

// bodyCapture buffers the response so a first-seen request's body can be
// cached verbatim against its Idempotency-Key for later replay.
type bodyCapture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// cachedResponse is the KV-stored record for a completed idempotent request.
// It carries the request hash alongside the status/body so the fast path can
// detect a key reused with a different body instead of blindly replaying
// whatever the first call produced.
type cachedResponse struct {
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status"`
	Body        []byte `json:"body"`
}

// Idempotency enforces §4.2/§4.9 step 6 on every POST/PATCH: a request
// carrying an Idempotency-Key is hashed (method+path+body) and reserved in
// the durable IdempotencyRepository before the handler runs. A key reused
// with the same hash replays the cached response; reused with a different
// hash is rejected as idempotency_conflict. Mirrors the teacher's two-layer
// cache-then-repo check in PaymentServiceImpl.ProcessPayment, generalized
// onto the unified KVStore as the fast-path cache in front of Postgres.
func Idempotency(repo ports.IdempotencyRepository, db ports.DBTransactor, kv ports.KVStore, ttl time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(headerIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}

		merchantIDVal, exists := c.Get(CtxMerchantID)
		merchantID, ok := merchantIDVal.(uuid.UUID)
		if !exists || !ok {
			c.Next()
			return
		}

		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.Error(c, apperror.ErrValidation("cannot read request body"))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		requestHash := hashRequest(c.Request.Method, c.Request.URL.Path, bodyBytes)
		cacheKey := fmt.Sprintf("idempotency:%s:%s", merchantID, key)

		if raw, ok, err := kv.Get(c.Request.Context(), cacheKey); err == nil && ok {
			var cached cachedResponse
			if err := json.Unmarshal(raw, &cached); err == nil {
				if cached.RequestHash != requestHash {
					response.Error(c, apperror.ErrIdempotencyConflict())
					c.Abort()
					return
				}
				replayCachedResponse(c, cached)
				return
			}
			log.Warn().Err(err).Msg("failed to decode cached idempotent response, falling back to repo check")
		}

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			response.Error(c, apperror.InternalError(err))
			c.Abort()
			return
		}

		existing, reserved, err := repo.Reserve(c.Request.Context(), tx, merchantID, key, requestHash, time.Now())
		if err != nil {
			_ = tx.Rollback(c.Request.Context())
			response.Error(c, apperror.InternalError(err))
			c.Abort()
			return
		}
		if err := tx.Commit(c.Request.Context()); err != nil {
			response.Error(c, apperror.InternalError(err))
			c.Abort()
			return
		}

		if !reserved {
			if existing.RequestHash != requestHash {
				response.Error(c, apperror.ErrIdempotencyConflict())
				c.Abort()
				return
			}
			if existing.Completed {
				c.Header("Idempotency-Replayed", "true")
				c.Data(existing.StatusCode, gin.MIMEJSON, []byte(existing.ResponseBody))
				c.Abort()
				return
			}
			// Reserved but not yet completed: a concurrent request for the
			// same key is still in flight.
			response.Error(c, apperror.New(apperror.TypeIdempotencyConflict, "request with this idempotency key is still processing", http.StatusConflict))
			c.Abort()
			return
		}

		capture := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = capture

		c.Next()

		status := c.Writer.Status()
		respBody := capture.buf.Bytes()

		completeTx, err := db.Begin(c.Request.Context())
		if err == nil {
			if err := repo.Complete(c.Request.Context(), completeTx, merchantID, key, status, string(respBody)); err != nil {
				_ = completeTx.Rollback(c.Request.Context())
				log.Warn().Err(err).Msg("failed to persist idempotent response")
			} else if err := completeTx.Commit(c.Request.Context()); err != nil {
				log.Warn().Err(err).Msg("failed to commit idempotent response")
			}
		}

		cacheVal, err := json.Marshal(cachedResponse{RequestHash: requestHash, Status: status, Body: respBody})
		if err != nil {
			log.Warn().Err(err).Msg("failed to encode idempotent response for caching")
			return
		}
		if err := kv.SetWithTTL(c.Request.Context(), cacheKey, cacheVal, ttl); err != nil {
			log.Warn().Err(err).Msg("failed to cache idempotent response")
		}
	}
}

func replayCachedResponse(c *gin.Context, cached cachedResponse) {
	c.Header("Idempotency-Replayed", "true")
	c.Data(cached.Status, gin.MIMEJSON, cached.Body)
	c.Abort()
}

// hashRequest computes the §4.9 step 6 request fingerprint used to detect
// an Idempotency-Key reused with a different request body.
func hashRequest(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
