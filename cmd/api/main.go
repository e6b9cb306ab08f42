package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payment-gateway/config"
	httpHandler "payment-gateway/internal/adapter/http/handler"
	pgStorage "payment-gateway/internal/adapter/storage/postgres"
	redisStorage "payment-gateway/internal/adapter/storage/redis"
	"payment-gateway/internal/acquirer"
	"payment-gateway/internal/acquirer/cybersource"
	"payment-gateway/internal/acquirer/mock"
	"payment-gateway/internal/core/ports"
	"payment-gateway/internal/orchestrator"
	"payment-gateway/internal/service"
	"payment-gateway/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("starting payment gateway")

	ctx := context.Background()

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("postgres connected")

	// The KV store backs idempotency caching, rate limiting, and card-token
	// lookups behind one port (§9 "KV/DB duality is a
	// port, not two code paths"). Prefer Redis; fall back to the Postgres
	// KV table if Redis is unreachable rather than failing startup.
	var kv ports.KVStore
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, falling back to postgres-backed kv store")
		kv = pgStorage.NewKVFallback(pool)
	} else {
		defer rdb.Close()
		log.Info().Msg("redis connected")
		kv = redisStorage.NewKVStore(rdb)
	}

	// Repositories
	merchantRepo := pgStorage.NewMerchantRepo(pool)
	apiKeyRepo := pgStorage.NewApiKeyRepo(pool)
	intentRepo := pgStorage.NewPaymentIntentRepo(pool)
	chargeRepo := pgStorage.NewChargeRepo(pool)
	refundRepo := pgStorage.NewRefundRepo(pool)
	customerRepo := pgStorage.NewCustomerRepo(pool)
	webhookRepo := pgStorage.NewWebhookRepo(pool)
	webhookDeliveryRepo := pgStorage.NewWebhookDeliveryRepo(pool)
	balanceRepo := pgStorage.NewBalanceTransactionRepo(pool)
	idempotencyRepo := pgStorage.NewIdempotencyRepo(pool)
	accessLogRepo := pgStorage.NewAccessLogRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Ambient services
	clock := service.NewSystemClock()
	idGen := service.NewUUIDGenerator()
	sigSvc := service.NewHMACSignatureService()
	cryptoSvc, err := service.NewAESCryptoService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize crypto service")
	}
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)

	// Acquirer registry: the mock adapter always registers (local dev /
	// deterministic test scenarios, §4.5); CyberSource registers whenever
	// credentials are configured.
	registry := acquirer.NewRegistry(log)
	registry.Register(mock.New())
	if cfg.CyberSource.MerchantID != "" {
		registry.Register(cybersource.New(cybersource.Config{
			MerchantID: cfg.CyberSource.MerchantID,
			KeyID:      cfg.CyberSource.KeyID,
			SecretKey:  cfg.CyberSource.SecretKey,
			BaseURL:    cfg.CyberSource.BaseURL,
			Host:       cfg.CyberSource.Host,
		}, &http.Client{Timeout: 20 * time.Second}, clock))
		log.Info().Msg("cybersource adapter registered")
	}

	emitter := service.NewEventEmitter(webhookRepo, webhookDeliveryRepo, clock, idGen, log)

	orch := orchestrator.New(
		intentRepo, chargeRepo, refundRepo, merchantRepo, transactor,
		registry, kv, cryptoSvc, clock, idGen, emitter, tokenSvc, cfg.Routing.Env(), log,
	)

	dispatcher := service.NewWebhookDispatcher(webhookRepo, webhookDeliveryRepo, sigSvc, &http.Client{Timeout: 10 * time.Second}, clock, log)
	dispatchCtx, cancelDispatch := context.WithCancel(ctx)
	defer cancelDispatch()
	go func() {
		if err := dispatcher.Run(dispatchCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("webhook dispatcher stopped")
		}
	}()

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Orchestrator:    orch,
		PaymentIntents:  intentRepo,
		Refunds:         refundRepo,
		Charges:         chargeRepo,
		Customers:       customerRepo,
		Webhooks:        webhookRepo,
		BalanceTx:       balanceRepo,
		AccessLogs:      accessLogRepo,
		ApiKeys:         apiKeyRepo,
		Merchants:       merchantRepo,
		Idempotency:     idempotencyRepo,
		DB:              transactor,
		KV:              kv,
		IDGen:           idGen,
		Clock:           clock,
		Environment:     cfg.Server.Env,
		RateLimitMax:    cfg.RateLimit.Max,
		RateLimitWindow: cfg.RateLimit.Window,
		IdempotencyTTL:  cfg.Idempotency.TTL,
		Logger:          log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	cancelDispatch()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
