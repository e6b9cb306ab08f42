package handler

import (
	"crypto/rand"
	"encoding/hex"

	"payment-gateway/internal/adapter/http/dto"
	"payment-gateway/internal/core/domain"
	"payment-gateway/internal/core/ports"
	"payment-gateway/pkg/apperror"
	"payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WebhookHandler serves /api/v1/webhooks, the merchant's registered
// delivery-endpoint configuration (§3, §4.10).
type WebhookHandler struct {
	webhooks ports.WebhookRepository
	idGen    ports.IDGenerator
	clock    ports.Clock
}

func NewWebhookHandler(webhooks ports.WebhookRepository, idGen ports.IDGenerator, clock ports.Clock) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks, idGen: idGen, clock: clock}
}

// Create handles POST /webhooks, minting a signing secret the caller sees
// exactly once in the creation response (never again, per Webhook's `json:"-"`
// Secret field).
func (h *WebhookHandler) Create(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}

	var req dto.CreateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrValidation(err.Error()))
		return
	}

	secret, err := generateWebhookSecret()
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	now := h.clock.Now().UTC()
	webhook := &domain.Webhook{
		ID:         uuid.UUID(h.idGen.NewID()),
		MerchantID: mid,
		URL:        req.URL,
		Secret:     secret,
		Events:     req.Events,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.webhooks.Create(c.Request.Context(), webhook); err != nil {
		response.Error(c, err)
		return
	}

	body := struct {
		dto.WebhookResponse
		Secret string `json:"secret"`
	}{WebhookResponse: dto.NewWebhookResponse(webhook), Secret: secret}
	response.Created(c, body)
}

// Get handles GET /webhooks/:id.
func (h *WebhookHandler) Get(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	webhook, err := h.webhooks.GetByID(c.Request.Context(), mid, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if webhook == nil {
		response.Error(c, apperror.ErrNotFound("webhook"))
		return
	}
	response.OK(c, dto.NewWebhookResponse(webhook))
}

// List handles GET /webhooks.
func (h *WebhookHandler) List(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}

	webhooks, err := h.webhooks.ListActiveByMerchant(c.Request.Context(), mid)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.WebhookResponse, 0, len(webhooks))
	for i := range webhooks {
		out = append(out, dto.NewWebhookResponse(&webhooks[i]))
	}
	response.List(c, out, false, int64(len(out)))
}

// Update handles PATCH /webhooks/:id.
func (h *WebhookHandler) Update(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrValidation(err.Error()))
		return
	}

	webhook, err := h.webhooks.GetByID(c.Request.Context(), mid, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if webhook == nil {
		response.Error(c, apperror.ErrNotFound("webhook"))
		return
	}

	if req.URL != nil {
		webhook.URL = *req.URL
	}
	if req.Events != nil {
		webhook.Events = req.Events
	}
	if req.IsActive != nil {
		webhook.IsActive = *req.IsActive
	}
	webhook.UpdatedAt = h.clock.Now().UTC()

	if err := h.webhooks.Update(c.Request.Context(), webhook); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewWebhookResponse(webhook))
}

// Delete handles DELETE /webhooks/:id.
func (h *WebhookHandler) Delete(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.webhooks.Delete(c.Request.Context(), mid, id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(204)
}

func generateWebhookSecret() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return "whsec_" + hex.EncodeToString(raw), nil
}
