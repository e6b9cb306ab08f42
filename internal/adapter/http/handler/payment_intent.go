package handler

import (
	"time"

	"payment-gateway/internal/adapter/http/dto"
	"payment-gateway/internal/core/domain"
	"payment-gateway/internal/core/ports"
	"payment-gateway/pkg/apperror"
	"payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentIntentHandler serves /api/v1/payment_intents (§4.10).
type PaymentIntentHandler struct {
	orchestrator ports.PaymentOrchestrator
	intents      ports.PaymentIntentRepository
}

func NewPaymentIntentHandler(orchestrator ports.PaymentOrchestrator, intents ports.PaymentIntentRepository) *PaymentIntentHandler {
	return &PaymentIntentHandler{orchestrator: orchestrator, intents: intents}
}

// Create handles POST /payment_intents.
func (h *PaymentIntentHandler) Create(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}

	var req dto.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrValidation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	capture := domain.CaptureAutomatic
	if req.CaptureMethod == string(domain.CaptureManual) {
		capture = domain.CaptureManual
	}
	confirmation := domain.ConfirmationAutomatic
	if req.ConfirmationMethod == string(domain.ConfirmationManual) {
		confirmation = domain.ConfirmationManual
	}

	pi, err := h.orchestrator.CreateIntent(c.Request.Context(), mid, req.CustomerID, req.Amount, req.Currency, capture, confirmation, req.Description, req.Metadata)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.RenderPaymentIntent(pi))
}

// Get handles GET /payment_intents/:id.
func (h *PaymentIntentHandler) Get(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	pi, err := h.intents.GetByID(c.Request.Context(), mid, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if pi == nil {
		response.Error(c, apperror.ErrNotFound("payment_intent"))
		return
	}
	response.OK(c, dto.RenderPaymentIntent(pi))
}

// List handles GET /payment_intents.
func (h *PaymentIntentHandler) List(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}

	var params dto.ListParams
	_ = c.ShouldBindQuery(&params)
	limit := normalizeLimit(params.Limit)

	items, total, err := h.intents.List(c.Request.Context(), ports.PaymentIntentListParams{
		MerchantID:    mid,
		Limit:         limit,
		StartingAfter: params.StartingAfter,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	rendered := make([]*dto.PaymentIntentResponse, len(items))
	for i := range items {
		rendered[i] = dto.RenderPaymentIntent(&items[i])
	}
	response.List(c, rendered, len(items) == limit, total)
}

// Update handles PATCH /payment_intents/:id, rejecting edits once the
// intent has reached a terminal state (§4.10).
func (h *PaymentIntentHandler) Update(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrValidation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	pi, err := h.intents.GetByID(c.Request.Context(), mid, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if pi == nil {
		response.Error(c, apperror.ErrNotFound("payment_intent"))
		return
	}
	if pi.Status.IsTerminal() {
		response.Error(c, apperror.ErrInvalidState("cannot update a payment intent in a terminal state"))
		return
	}

	if req.Description != nil {
		pi.Description = *req.Description
	}
	if req.Metadata != nil {
		pi.Metadata = req.Metadata
	}
	if req.CustomerID != nil {
		pi.CustomerID = req.CustomerID
	}
	pi.UpdatedAt = time.Now()

	if err := h.intents.Update(c.Request.Context(), nil, pi); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.RenderPaymentIntent(pi))
}

// Confirm handles POST /payment_intents/:id/confirm.
func (h *PaymentIntentHandler) Confirm(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.ConfirmPaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrValidation(err.Error()))
		return
	}

	pi, err := h.orchestrator.Confirm(c.Request.Context(), mid, id, req.PaymentMethod.ToPort(), req.ReturnURL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.RenderPaymentIntent(pi))
}

// CompleteAuthentication handles POST /payment_intents/:id/complete_authentication.
func (h *PaymentIntentHandler) CompleteAuthentication(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CompleteAuthenticationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrValidation(err.Error()))
		return
	}

	pi, err := h.orchestrator.CompleteAuthentication(c.Request.Context(), mid, id, req.ContinuationToken, req.AuthResult)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.RenderPaymentIntent(pi))
}

// Capture handles POST /payment_intents/:id/capture.
func (h *PaymentIntentHandler) Capture(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CapturePaymentIntentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, apperror.ErrValidation(err.Error()))
			return
		}
	}

	pi, err := h.orchestrator.Capture(c.Request.Context(), mid, id, req.AmountToCapture)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.RenderPaymentIntent(pi))
}

// Cancel handles POST /payment_intents/:id/cancel.
func (h *PaymentIntentHandler) Cancel(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	pi, err := h.orchestrator.Cancel(c.Request.Context(), mid, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.RenderPaymentIntent(pi))
}

// normalizeLimit applies §4.10's list-endpoint default/cap (1-100, default 10).
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}
