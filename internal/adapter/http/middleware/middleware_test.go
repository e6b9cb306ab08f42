package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"payment-gateway/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApiKeyRepo struct {
	byHash map[string]*domain.ApiKey
}

func (f *fakeApiKeyRepo) Create(ctx context.Context, key *domain.ApiKey) error { return nil }

func (f *fakeApiKeyRepo) GetByLookupHash(ctx context.Context, hash string) (*domain.ApiKey, error) {
	return f.byHash[hash], nil
}

func (f *fakeApiKeyRepo) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

type fakeMerchantRepo struct {
	byID map[uuid.UUID]*domain.Merchant
}

func (f *fakeMerchantRepo) Create(ctx context.Context, m *domain.Merchant) error { return nil }

func (f *fakeMerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	return f.byID[id], nil
}

func (f *fakeMerchantRepo) Update(ctx context.Context, m *domain.Merchant) error { return nil }

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {
		id, _ := c.Get(CtxRequestID)
		assert.NotEmpty(t, id)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestRequestID_EchoesInboundHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "caller-supplied-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "caller-supplied-id", w.Header().Get("X-Request-Id"))
}

func TestAPIKeyAuth_RejectsMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKeyAuth(&fakeApiKeyRepo{}, &fakeMerchantRepo{}, zerolog.Nop()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyAuth_AcceptsValidPublicKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	merchantID := uuid.New()
	keyRepo := &fakeApiKeyRepo{byHash: map[string]*domain.ApiKey{
		"pk_test123": {ID: uuid.New(), MerchantID: merchantID, Type: domain.KeyTypePublic, IsActive: true},
	}}
	merchantRepo := &fakeMerchantRepo{byID: map[uuid.UUID]*domain.Merchant{merchantID: {ID: merchantID}}}

	r := gin.New()
	r.Use(APIKeyAuth(keyRepo, merchantRepo, zerolog.Nop()))
	r.GET("/x", func(c *gin.Context) {
		mid, _ := c.Get(CtxMerchantID)
		assert.Equal(t, merchantID, mid)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer pk_test123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyAuth_HashesSecretKeyForLookup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	merchantID := uuid.New()
	secretKey := "sk_livetest456"
	keyRepo := &fakeApiKeyRepo{byHash: map[string]*domain.ApiKey{
		hashAPIKey(secretKey): {ID: uuid.New(), MerchantID: merchantID, Type: domain.KeyTypeSecret, IsActive: true},
	}}
	merchantRepo := &fakeMerchantRepo{byID: map[uuid.UUID]*domain.Merchant{merchantID: {ID: merchantID}}}

	r := gin.New()
	r.Use(APIKeyAuth(keyRepo, merchantRepo, zerolog.Nop()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+secretKey)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyAuth_RejectsInactiveKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	merchantID := uuid.New()
	keyRepo := &fakeApiKeyRepo{byHash: map[string]*domain.ApiKey{
		"pk_revoked": {ID: uuid.New(), MerchantID: merchantID, IsActive: false},
	}}
	merchantRepo := &fakeMerchantRepo{byID: map[uuid.UUID]*domain.Merchant{merchantID: {ID: merchantID}}}

	r := gin.New()
	r.Use(APIKeyAuth(keyRepo, merchantRepo, zerolog.Nop()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer pk_revoked")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyAuth_RejectsUnknownPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKeyAuth(&fakeApiKeyRepo{}, &fakeMerchantRepo{}, zerolog.Nop()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecovery_RecoversPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/x", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
