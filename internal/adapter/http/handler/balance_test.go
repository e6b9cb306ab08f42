package handler

import (
	"net/http"
	"testing"

	"payment-gateway/internal/core/domain"
	"payment-gateway/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestBalanceHandler_ListTransactions_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txs := mocks.NewMockBalanceTransactionRepository(ctrl)
	h := NewBalanceHandler(txs)

	merchantID := uuid.New()
	txs.EXPECT().List(gomock.Any(), merchantID, 10).Return([]domain.BalanceTransaction{{MerchantID: merchantID}}, nil)

	c, w := testContext(t, http.MethodGet, "/api/v1/balance/transactions", nil, merchantID)

	h.ListTransactions(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBalanceHandler_GetTransaction_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txs := mocks.NewMockBalanceTransactionRepository(ctrl)
	h := NewBalanceHandler(txs)

	merchantID := uuid.New()
	txID := uuid.New()
	txs.EXPECT().GetByID(gomock.Any(), merchantID, txID).Return(nil, nil)

	c, w := testContext(t, http.MethodGet, "/api/v1/balance/transactions/"+txID.String(), nil, merchantID)
	c.Params = []gin.Param{{Key: "id", Value: txID.String()}}

	h.GetTransaction(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBalanceHandler_Summary_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txs := mocks.NewMockBalanceTransactionRepository(ctrl)
	h := NewBalanceHandler(txs)

	merchantID := uuid.New()
	txs.EXPECT().Summary(gomock.Any(), merchantID).Return(&domain.BalanceSummary{Currency: "usd", NetBalance: 500}, nil)

	c, w := testContext(t, http.MethodGet, "/api/v1/balance/summary", nil, merchantID)

	h.Summary(c)

	assert.Equal(t, http.StatusOK, w.Code)
}
