package handler

import (
	"payment-gateway/internal/adapter/http/dto"
	"payment-gateway/internal/core/ports"
	"payment-gateway/pkg/apperror"
	"payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RefundHandler serves /api/v1/refunds (§4.10).
type RefundHandler struct {
	orchestrator ports.PaymentOrchestrator
	refunds      ports.RefundRepository
	charges      ports.ChargeRepository
}

func NewRefundHandler(orchestrator ports.PaymentOrchestrator, refunds ports.RefundRepository, charges ports.ChargeRepository) *RefundHandler {
	return &RefundHandler{orchestrator: orchestrator, refunds: refunds, charges: charges}
}

// Create handles POST /refunds.
func (h *RefundHandler) Create(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}

	var req dto.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrValidation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	refund, err := h.orchestrator.Refund(c.Request.Context(), mid, req.ChargeID, req.Amount, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, refund)
}

// Get handles GET /refunds/:id.
func (h *RefundHandler) Get(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	refund, err := h.refunds.GetByID(c.Request.Context(), mid, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if refund == nil {
		response.Error(c, apperror.ErrNotFound("refund"))
		return
	}
	response.OK(c, refund)
}

// List handles GET /refunds?charge_id=... — the charge_id query parameter
// is required since refunds are always listed in the context of their
// owning charge (§3 "Refund is a child of Charge").
func (h *RefundHandler) List(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}
	chargeID, err := uuid.Parse(c.Query("charge_id"))
	if err != nil {
		response.Error(c, apperror.ErrValidation("charge_id query parameter is required"))
		return
	}

	refunds, err := h.refunds.ListByCharge(c.Request.Context(), mid, chargeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, refunds, false, int64(len(refunds)))
}
