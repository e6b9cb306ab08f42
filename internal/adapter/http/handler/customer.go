package handler

import (
	"time"

	"payment-gateway/internal/adapter/http/dto"
	"payment-gateway/internal/core/domain"
	"payment-gateway/internal/core/ports"
	"payment-gateway/pkg/apperror"
	"payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CustomerHandler serves /api/v1/customers, the merchant-scoped [EXPANSION]
// CRUD + search surface named by §4.10.
type CustomerHandler struct {
	customers ports.CustomerRepository
	idGen     ports.IDGenerator
	clock     ports.Clock
}

func NewCustomerHandler(customers ports.CustomerRepository, idGen ports.IDGenerator, clock ports.Clock) *CustomerHandler {
	return &CustomerHandler{customers: customers, idGen: idGen, clock: clock}
}

// Create handles POST /customers.
func (h *CustomerHandler) Create(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}

	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrValidation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	now := h.clock.Now().UTC()
	customer := &domain.Customer{
		ID:         uuid.UUID(h.idGen.NewID()),
		MerchantID: mid,
		Email:      req.Email,
		Name:       req.Name,
		Phone:      req.Phone,
		Metadata:   req.Metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.customers.Create(c.Request.Context(), customer); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, customer)
}

// Get handles GET /customers/:id.
func (h *CustomerHandler) Get(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customers.GetByID(c.Request.Context(), mid, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if customer == nil {
		response.Error(c, apperror.ErrNotFound("customer"))
		return
	}
	response.OK(c, customer)
}

// List handles GET /customers?query=... — a case-insensitive substring
// search over email/name/phone through CustomerRepository.Search, capped at
// the normalized limit.
func (h *CustomerHandler) List(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}

	var params dto.ListParams
	_ = c.ShouldBindQuery(&params)
	limit := normalizeLimit(params.Limit)

	customers, err := h.customers.Search(c.Request.Context(), mid, c.Query("query"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, customers, len(customers) == limit, int64(len(customers)))
}

// Update handles PATCH /customers/:id.
func (h *CustomerHandler) Update(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrValidation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	customer, err := h.customers.GetByID(c.Request.Context(), mid, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if customer == nil {
		response.Error(c, apperror.ErrNotFound("customer"))
		return
	}

	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Metadata != nil {
		customer.Metadata = req.Metadata
	}
	customer.UpdatedAt = time.Now()

	if err := h.customers.Update(c.Request.Context(), customer); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, customer)
}

// Delete handles DELETE /customers/:id.
func (h *CustomerHandler) Delete(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.customers.Delete(c.Request.Context(), mid, id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(204)
}
