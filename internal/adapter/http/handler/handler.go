// Package handler implements the §4.10 HTTP surface: one file per resource
// family, each a thin adapter translating dto requests into
// ports.PaymentOrchestrator / repository calls and domain results into
// response envelopes. Grounded on the teacher's handler/DTO split
// (payment_handler.go, merchant_handler.go) — same constructor-injected
// dependency shape, same response.OK/Created/Error envelope helpers — with
// the response shape itself rewritten per §4.10/§7.
package handler

import (
	"payment-gateway/internal/adapter/http/middleware"
	"payment-gateway/pkg/apperror"
	"payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// merchantID reads the merchant resolved by middleware.APIKeyAuth. Every
// handler in this package is mounted behind that middleware, so a missing
// value indicates a wiring bug rather than a client error.
func merchantID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(middleware.CtxMerchantID)
	if !exists {
		return uuid.UUID{}, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// pathUUID parses a gin path parameter as a UUID, writing the standard
// invalid_request_error envelope and returning ok=false on failure.
func pathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.Error(c, apperror.ErrValidation("invalid "+param))
		return uuid.UUID{}, false
	}
	return id, true
}
