package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"payment-gateway/internal/core/domain"
	"payment-gateway/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRefundHandler_Create_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orchestrator := mocks.NewMockPaymentOrchestrator(ctrl)
	refunds := mocks.NewMockRefundRepository(ctrl)
	h := NewRefundHandler(orchestrator, refunds, nil)

	merchantID := uuid.New()
	chargeID := uuid.New()
	expected := &domain.Refund{ID: uuid.New(), MerchantID: merchantID, ChargeID: chargeID, Status: domain.RefundSucceeded}

	orchestrator.EXPECT().Refund(gomock.Any(), merchantID, chargeID, (*uint64)(nil), "requested_by_customer").Return(expected, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"charge_id": chargeID.String(),
		"reason":    "requested_by_customer",
	})
	c, w := testContext(t, http.MethodPost, "/api/v1/refunds", body, merchantID)

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
}

func TestRefundHandler_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orchestrator := mocks.NewMockPaymentOrchestrator(ctrl)
	refunds := mocks.NewMockRefundRepository(ctrl)
	h := NewRefundHandler(orchestrator, refunds, nil)

	merchantID := uuid.New()
	refundID := uuid.New()
	refunds.EXPECT().GetByID(gomock.Any(), merchantID, refundID).Return(nil, nil)

	c, w := testContext(t, http.MethodGet, "/api/v1/refunds/"+refundID.String(), nil, merchantID)
	c.Params = []gin.Param{{Key: "id", Value: refundID.String()}}

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefundHandler_List_RequiresChargeID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orchestrator := mocks.NewMockPaymentOrchestrator(ctrl)
	refunds := mocks.NewMockRefundRepository(ctrl)
	h := NewRefundHandler(orchestrator, refunds, nil)

	c, w := testContext(t, http.MethodGet, "/api/v1/refunds", nil, uuid.New())

	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
