package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"payment-gateway/internal/adapter/http/middleware"
	"payment-gateway/internal/core/domain"
	"payment-gateway/internal/core/ports/mocks"
	"payment-gateway/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(t *testing.T, method, path string, body []byte, merchantID uuid.UUID) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxMerchantID, merchantID)
	return c, w
}

func TestPaymentIntentHandler_Create_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orchestrator := mocks.NewMockPaymentOrchestrator(ctrl)
	intents := mocks.NewMockPaymentIntentRepository(ctrl)
	h := NewPaymentIntentHandler(orchestrator, intents)

	merchantID := uuid.New()
	expected := &domain.PaymentIntent{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Amount:     1000,
		Currency:   "usd",
		Status:     domain.PaymentIntentRequiresPaymentMethod,
	}

	orchestrator.EXPECT().
		CreateIntent(gomock.Any(), merchantID, (*uuid.UUID)(nil), uint64(1000), "usd", domain.CaptureAutomatic, domain.ConfirmationAutomatic, "", map[string]string(nil)).
		Return(expected, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"amount":   1000,
		"currency": "usd",
	})
	c, w := testContext(t, http.MethodPost, "/api/v1/payment_intents", body, merchantID)

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var got domain.PaymentIntent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, expected.ID, got.ID)
}

func TestPaymentIntentHandler_Create_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orchestrator := mocks.NewMockPaymentOrchestrator(ctrl)
	intents := mocks.NewMockPaymentIntentRepository(ctrl)
	h := NewPaymentIntentHandler(orchestrator, intents)

	body, _ := json.Marshal(map[string]interface{}{"currency": "usd"}) // missing amount
	c, w := testContext(t, http.MethodPost, "/api/v1/payment_intents", body, uuid.New())

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentIntentHandler_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orchestrator := mocks.NewMockPaymentOrchestrator(ctrl)
	intents := mocks.NewMockPaymentIntentRepository(ctrl)
	h := NewPaymentIntentHandler(orchestrator, intents)

	merchantID := uuid.New()
	intentID := uuid.New()
	intents.EXPECT().GetByID(gomock.Any(), merchantID, intentID).Return(nil, nil)

	c, w := testContext(t, http.MethodGet, "/api/v1/payment_intents/"+intentID.String(), nil, merchantID)
	c.Params = gin.Params{{Key: "id", Value: intentID.String()}}

	h.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(apperror.TypeInvalidRequest), body["error"]["type"])
}

func TestPaymentIntentHandler_Update_RejectsTerminalState(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orchestrator := mocks.NewMockPaymentOrchestrator(ctrl)
	intents := mocks.NewMockPaymentIntentRepository(ctrl)
	h := NewPaymentIntentHandler(orchestrator, intents)

	merchantID := uuid.New()
	intentID := uuid.New()
	pi := &domain.PaymentIntent{ID: intentID, MerchantID: merchantID, Status: domain.PaymentIntentSucceeded}
	intents.EXPECT().GetByID(gomock.Any(), merchantID, intentID).Return(pi, nil)

	body, _ := json.Marshal(map[string]interface{}{"description": "updated"})
	c, w := testContext(t, http.MethodPatch, "/api/v1/payment_intents/"+intentID.String(), body, merchantID)
	c.Params = gin.Params{{Key: "id", Value: intentID.String()}}

	h.Update(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentIntentHandler_Cancel_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orchestrator := mocks.NewMockPaymentOrchestrator(ctrl)
	intents := mocks.NewMockPaymentIntentRepository(ctrl)
	h := NewPaymentIntentHandler(orchestrator, intents)

	merchantID := uuid.New()
	intentID := uuid.New()
	canceled := &domain.PaymentIntent{ID: intentID, MerchantID: merchantID, Status: domain.PaymentIntentCanceled}
	orchestrator.EXPECT().Cancel(gomock.Any(), merchantID, intentID).Return(canceled, nil)

	c, w := testContext(t, http.MethodPost, "/api/v1/payment_intents/"+intentID.String()+"/cancel", nil, merchantID)
	c.Params = gin.Params{{Key: "id", Value: intentID.String()}}

	h.Cancel(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, 10, normalizeLimit(0))
	assert.Equal(t, 10, normalizeLimit(-5))
	assert.Equal(t, 50, normalizeLimit(50))
	assert.Equal(t, 100, normalizeLimit(500))
}
