package handler

import (
	"time"

	"payment-gateway/internal/adapter/http/middleware"
	"payment-gateway/internal/core/ports"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds every dependency SetupRouter needs to wire the §4.10 HTTP
// surface, generalized from the teacher's RouterDeps (one field per
// service/store it injects into route groups).
type RouterDeps struct {
	Orchestrator    ports.PaymentOrchestrator
	PaymentIntents  ports.PaymentIntentRepository
	Refunds         ports.RefundRepository
	Charges         ports.ChargeRepository
	Customers       ports.CustomerRepository
	Webhooks        ports.WebhookRepository
	BalanceTx       ports.BalanceTransactionRepository
	AccessLogs      ports.AccessLogRepository
	ApiKeys         ports.ApiKeyRepository
	Merchants       ports.MerchantRepository
	Idempotency     ports.IdempotencyRepository
	DB              ports.DBTransactor
	KV              ports.KVStore
	IDGen           ports.IDGenerator
	Clock           ports.Clock
	Environment     string
	RateLimitMax    int64
	RateLimitWindow time.Duration
	IdempotencyTTL  time.Duration
	Logger          zerolog.Logger
}

// SetupRouter initializes the Gin engine with every route and the full
// middleware chain, grounded on the teacher's SetupRouter (global middleware
// first, then per-group auth + rate limiting).
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE"},
		AllowHeaders:    []string{"Authorization", "Content-Type", "Idempotency-Key"},
		ExposeHeaders:   []string{"X-Request-Id", "Idempotency-Replayed", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
	}))
	r.Use(middleware.AccessLog(deps.AccessLogs))

	health := NewHealthHandler(deps.Environment)
	r.GET("/", health.Get)

	apiKeyAuth := middleware.APIKeyAuth(deps.ApiKeys, deps.Merchants, deps.Logger)
	rateLimiter := middleware.RateLimiter(deps.KV, deps.RateLimitMax, deps.RateLimitWindow, deps.Logger)
	idempotency := middleware.Idempotency(deps.Idempotency, deps.DB, deps.KV, deps.IdempotencyTTL, deps.Logger)

	v1 := r.Group("/api/v1", apiKeyAuth, rateLimiter)

	piHandler := NewPaymentIntentHandler(deps.Orchestrator, deps.PaymentIntents)
	intents := v1.Group("/payment_intents")
	{
		intents.POST("", idempotency, piHandler.Create)
		intents.GET("", piHandler.List)
		intents.GET("/:id", piHandler.Get)
		intents.PATCH("/:id", piHandler.Update)
		intents.POST("/:id/confirm", idempotency, piHandler.Confirm)
		intents.POST("/:id/complete_authentication", piHandler.CompleteAuthentication)
		intents.POST("/:id/capture", idempotency, piHandler.Capture)
		intents.POST("/:id/cancel", idempotency, piHandler.Cancel)
	}

	refundHandler := NewRefundHandler(deps.Orchestrator, deps.Refunds, deps.Charges)
	refunds := v1.Group("/refunds")
	{
		refunds.POST("", idempotency, refundHandler.Create)
		refunds.GET("", refundHandler.List)
		refunds.GET("/:id", refundHandler.Get)
	}

	customerHandler := NewCustomerHandler(deps.Customers, deps.IDGen, deps.Clock)
	customers := v1.Group("/customers")
	{
		customers.POST("", customerHandler.Create)
		customers.GET("", customerHandler.List)
		customers.GET("/:id", customerHandler.Get)
		customers.PATCH("/:id", customerHandler.Update)
		customers.DELETE("/:id", customerHandler.Delete)
	}

	webhookHandler := NewWebhookHandler(deps.Webhooks, deps.IDGen, deps.Clock)
	webhooks := v1.Group("/webhooks")
	{
		webhooks.POST("", webhookHandler.Create)
		webhooks.GET("", webhookHandler.List)
		webhooks.GET("/:id", webhookHandler.Get)
		webhooks.PATCH("/:id", webhookHandler.Update)
		webhooks.DELETE("/:id", webhookHandler.Delete)
	}

	balanceHandler := NewBalanceHandler(deps.BalanceTx)
	balance := v1.Group("/balance")
	{
		balance.GET("/transactions", balanceHandler.ListTransactions)
		balance.GET("/transactions/:id", balanceHandler.GetTransaction)
		balance.GET("/summary", balanceHandler.Summary)
	}

	return r
}
