package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"payment-gateway/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct{ pgx.Tx }

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

type fakeTransactor struct{}

func (fakeTransactor) Begin(ctx context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

type fakeIdempotencyRepo struct {
	rows map[string]*domain.IdempotentRequest
}

func newFakeIdempotencyRepo() *fakeIdempotencyRepo {
	return &fakeIdempotencyRepo{rows: map[string]*domain.IdempotentRequest{}}
}

func (f *fakeIdempotencyRepo) Reserve(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, key, requestHash string, now time.Time) (*domain.IdempotentRequest, bool, error) {
	k := merchantID.String() + ":" + key
	if existing, ok := f.rows[k]; ok {
		return existing, false, nil
	}
	row := &domain.IdempotentRequest{MerchantID: merchantID, Key: key, RequestHash: requestHash, CreatedAt: now}
	f.rows[k] = row
	return row, true, nil
}

func (f *fakeIdempotencyRepo) Complete(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, key string, statusCode int, responseBody string) error {
	k := merchantID.String() + ":" + key
	row := f.rows[k]
	row.Completed = true
	row.StatusCode = statusCode
	row.ResponseBody = responseBody
	return nil
}

func newIdempotencyTestRouter(repo *fakeIdempotencyRepo, kv *inMemoryKV, hits *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(CtxMerchantID, testMerchantID)
		c.Next()
	})
	r.Use(Idempotency(repo, fakeTransactor{}, kv, 24*time.Hour, zerolog.Nop()))
	r.POST("/x", func(c *gin.Context) {
		*hits++
		c.JSON(http.StatusCreated, gin.H{"hits": *hits})
	})
	return r
}

var testMerchantID = uuid.New()

func TestIdempotency_FirstRequestRunsHandler(t *testing.T) {
	hits := 0
	r := newIdempotencyTestRouter(newFakeIdempotencyRepo(), newInMemoryKV(), &hits)

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"a":1}`))
	req.Header.Set("Idempotency-Key", "key-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, hits)
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	hits := 0
	repo := newFakeIdempotencyRepo()
	kv := newInMemoryKV()
	r := newIdempotencyTestRouter(repo, kv, &hits)

	body := `{"a":1}`
	req1 := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req1.Header.Set("Idempotency-Key", "key-2")
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, req1)
	require.Equal(t, http.StatusCreated, w1.Code)
	require.Equal(t, 1, hits)

	req2 := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req2.Header.Set("Idempotency-Key", "key-2")
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)

	assert.Equal(t, 1, hits, "handler must not re-run on replay")
	assert.Equal(t, "true", w2.Header().Get("Idempotency-Replayed"))
}

func TestIdempotency_ConflictsOnDifferentBody(t *testing.T) {
	hits := 0
	repo := newFakeIdempotencyRepo()
	kv := newInMemoryKV()
	r := newIdempotencyTestRouter(repo, kv, &hits)

	req1 := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"a":1}`))
	req1.Header.Set("Idempotency-Key", "key-3")
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, req1)
	require.Equal(t, http.StatusCreated, w1.Code)

	req2 := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"a":2}`))
	req2.Header.Set("Idempotency-Key", "key-3")
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)

	assert.Equal(t, http.StatusConflict, w2.Code)
	assert.Equal(t, 1, hits)
}

func TestIdempotency_SkipsGETRequests(t *testing.T) {
	hits := 0
	repo := newFakeIdempotencyRepo()
	kv := newInMemoryKV()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Idempotency(repo, fakeTransactor{}, kv, 24*time.Hour, zerolog.Nop()))
	r.GET("/x", func(c *gin.Context) {
		hits++
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, hits)
}
