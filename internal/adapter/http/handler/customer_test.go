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

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqIDGen struct{ id uuid.UUID }

func (g seqIDGen) NewID() [16]byte { return g.id }

func TestCustomerHandler_Create_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	customers := mocks.NewMockCustomerRepository(ctrl)
	merchantID := uuid.New()
	newID := uuid.New()
	h := NewCustomerHandler(customers, seqIDGen{id: newID}, fixedClock{now: time.Now()})

	customers.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ interface{}, c *domain.Customer) error {
		assert.Equal(t, "jane@example.com", c.Email)
		assert.Equal(t, merchantID, c.MerchantID)
		return nil
	})

	body, _ := json.Marshal(map[string]string{"email": "jane@example.com", "name": "Jane"})
	c, w := testContext(t, http.MethodPost, "/api/v1/customers", body, merchantID)

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
}

func TestCustomerHandler_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	customers := mocks.NewMockCustomerRepository(ctrl)
	h := NewCustomerHandler(customers, seqIDGen{id: uuid.New()}, fixedClock{now: time.Now()})

	merchantID := uuid.New()
	custID := uuid.New()
	customers.EXPECT().GetByID(gomock.Any(), merchantID, custID).Return(nil, nil)

	c, w := testContext(t, http.MethodGet, "/api/v1/customers/"+custID.String(), nil, merchantID)
	c.Params = []gin.Param{{Key: "id", Value: custID.String()}}

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCustomerHandler_Delete_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	customers := mocks.NewMockCustomerRepository(ctrl)
	h := NewCustomerHandler(customers, seqIDGen{id: uuid.New()}, fixedClock{now: time.Now()})

	merchantID := uuid.New()
	custID := uuid.New()
	customers.EXPECT().Delete(gomock.Any(), merchantID, custID).Return(nil)

	c, w := testContext(t, http.MethodDelete, "/api/v1/customers/"+custID.String(), nil, merchantID)
	c.Params = []gin.Param{{Key: "id", Value: custID.String()}}

	h.Delete(c)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
