package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"payment-gateway/internal/core/domain"
	"payment-gateway/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestWebhookHandler_Create_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	webhooks := mocks.NewMockWebhookRepository(ctrl)
	merchantID := uuid.New()
	newID := uuid.New()
	h := NewWebhookHandler(webhooks, seqIDGen{id: newID}, fixedClock{now: time.Now()})

	webhooks.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ interface{}, w *domain.Webhook) error {
		assert.Equal(t, "https://merchant.example/hooks", w.URL)
		assert.NotEmpty(t, w.Secret)
		assert.True(t, w.IsActive)
		return nil
	})

	body, _ := json.Marshal(map[string]interface{}{
		"url":    "https://merchant.example/hooks",
		"events": []string{"payment_intent.succeeded"},
	})
	c, w := testContext(t, http.MethodPost, "/api/v1/webhooks", body, merchantID)

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	secret, ok := got["secret"].(string)
	require.True(t, ok)
	assert.Contains(t, secret, "whsec_")
}

func TestWebhookHandler_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	webhooks := mocks.NewMockWebhookRepository(ctrl)
	h := NewWebhookHandler(webhooks, seqIDGen{id: uuid.New()}, fixedClock{now: time.Now()})

	merchantID := uuid.New()
	webhookID := uuid.New()
	webhooks.EXPECT().GetByID(gomock.Any(), merchantID, webhookID).Return(nil, nil)

	c, w := testContext(t, http.MethodGet, "/api/v1/webhooks/"+webhookID.String(), nil, merchantID)
	c.Params = []gin.Param{{Key: "id", Value: webhookID.String()}}

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookHandler_Delete_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	webhooks := mocks.NewMockWebhookRepository(ctrl)
	h := NewWebhookHandler(webhooks, seqIDGen{id: uuid.New()}, fixedClock{now: time.Now()})

	merchantID := uuid.New()
	webhookID := uuid.New()
	webhooks.EXPECT().Delete(gomock.Any(), merchantID, webhookID).Return(nil)

	c, w := testContext(t, http.MethodDelete, "/api/v1/webhooks/"+webhookID.String(), nil, merchantID)
	c.Params = []gin.Param{{Key: "id", Value: webhookID.String()}}

	h.Delete(c)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
