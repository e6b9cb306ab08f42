package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"payment-gateway/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccessLogRepo struct {
	mu      sync.Mutex
	entries []*domain.AccessLogEntry
}

func (f *fakeAccessLogRepo) Create(ctx context.Context, entry *domain.AccessLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAccessLogRepo) snapshot() []*domain.AccessLogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.AccessLogEntry, len(f.entries))
	copy(out, f.entries)
	return out
}

func TestAccessLog_RecordsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeAccessLogRepo{}
	r := gin.New()
	r.Use(RequestID())
	r.Use(AccessLog(repo))
	r.GET("/api/v1/payment_intents/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payment_intents/pi_123", nil))
	require.Equal(t, http.StatusOK, w.Code)

	require.Eventually(t, func() bool { return len(repo.snapshot()) == 1 }, time.Second, 10*time.Millisecond)
	entry := repo.snapshot()[0]
	assert.Equal(t, "/api/v1/payment_intents/:id", entry.Route)
	assert.Equal(t, http.MethodGet, entry.Method)
	assert.Equal(t, http.StatusOK, entry.Status)
}
