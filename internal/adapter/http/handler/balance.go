package handler

import (
	"payment-gateway/internal/adapter/http/dto"
	"payment-gateway/internal/core/ports"
	"payment-gateway/pkg/apperror"
	"payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// BalanceHandler serves the read-only /api/v1/balance surface (§4.10).
type BalanceHandler struct {
	transactions ports.BalanceTransactionRepository
}

func NewBalanceHandler(transactions ports.BalanceTransactionRepository) *BalanceHandler {
	return &BalanceHandler{transactions: transactions}
}

// ListTransactions handles GET /balance/transactions.
func (h *BalanceHandler) ListTransactions(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}

	var params dto.ListParams
	_ = c.ShouldBindQuery(&params)
	limit := normalizeLimit(params.Limit)

	txs, err := h.transactions.List(c.Request.Context(), mid, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, txs, len(txs) == limit, int64(len(txs)))
}

// GetTransaction handles GET /balance/transactions/:id.
func (h *BalanceHandler) GetTransaction(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	tx, err := h.transactions.GetByID(c.Request.Context(), mid, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if tx == nil {
		response.Error(c, apperror.ErrNotFound("balance_transaction"))
		return
	}
	response.OK(c, tx)
}

// Summary handles GET /balance/summary.
func (h *BalanceHandler) Summary(c *gin.Context) {
	mid, ok := merchantID(c)
	if !ok {
		response.Error(c, apperror.InternalError(nil))
		return
	}

	summary, err := h.transactions.Summary(c.Request.Context(), mid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}
