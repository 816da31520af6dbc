package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kislikjeka/coinwallet/internal/infra/gateway/coincap"
	"github.com/kislikjeka/coinwallet/internal/infra/postgres"
	infraRedis "github.com/kislikjeka/coinwallet/internal/infra/redis"
	"github.com/kislikjeka/coinwallet/internal/platform/asset"
	"github.com/kislikjeka/coinwallet/internal/platform/simulation"
	"github.com/kislikjeka/coinwallet/internal/platform/user"
	"github.com/kislikjeka/coinwallet/internal/platform/wallet"
	"github.com/kislikjeka/coinwallet/internal/transport/httpapi"
	"github.com/kislikjeka/coinwallet/internal/transport/httpapi/handler"
	"github.com/kislikjeka/coinwallet/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/coinwallet/pkg/config"
	"github.com/kislikjeka/coinwallet/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewDefault(cfg.Env)
	log.Info("Starting CoinWallet API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	db, err := postgres.NewPool(ctx, postgres.Config{URL: cfg.DatabaseURL})
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("Database connection established")

	readiness := map[string]handler.Pinger{"database": db}

	// Shared slug store is optional; without it each process resolves on its own.
	var slugStore asset.SlugStore
	if cfg.RedisEnabled() {
		redisClient, err := infraRedis.NewClient(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		store := infraRedis.NewSlugStore(redisClient, log)
		slugStore = store
		readiness["redis"] = store
		log.Info("Redis connection established")
	} else {
		log.Warn("REDIS_URL not configured, slug resolution is process-local")
	}

	coinCapClient := coincap.NewClient(coincap.Config{
		APIKey:    cfg.CoinCapAPIKey,
		BaseURL:   cfg.CoinCapBaseURL,
		Timeout:   cfg.PriceRequestTimeout,
		RateLimit: cfg.PriceRateLimit,
	}, log)
	priceProvider := coincap.NewPriceProviderAdapter(coinCapClient)

	resolver := asset.NewSymbolResolver(priceProvider, slugStore, log)
	priceSvc := asset.NewPriceService(priceProvider, resolver, log)

	assetRepo := postgres.NewAssetRepository(db.Pool)
	assetSvc := asset.NewService(assetRepo, priceSvc, log)

	userSvc := user.NewService(postgres.NewUserRepository(db.Pool), log)
	walletSvc := wallet.NewService(postgres.NewHoldingRepository(db.Pool), assetSvc, log)
	simulationEngine := simulation.NewEngine(priceSvc, log)
	jwtSvc := middleware.NewJWTService(cfg.JWTSecret, cfg.JWTExpiration)

	r := httpapi.NewRouter(httpapi.Config{
		Logger:            log,
		AllowedOrigins:    cfg.AllowedOrigins,
		RateLimit:         middleware.RateLimit(ctx, middleware.DefaultRequestsPerSecond, middleware.DefaultBurst),
		AuthHandler:       handler.NewAuthHandler(userSvc, jwtSvc, log),
		WalletHandler:     handler.NewWalletHandler(walletSvc, log),
		SimulationHandler: handler.NewSimulationHandler(simulationEngine, log),
		PriceHandler:      handler.NewPriceHandler(priceSvc, log),
		HealthHandler:     handler.NewHealthHandler(readiness),
		JWTMiddleware:     middleware.JWTMiddleware(jwtSvc),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	priceUpdater := asset.NewPriceUpdater(assetRepo, priceSvc, &asset.PriceUpdaterConfig{
		Interval:    cfg.PriceRefreshInterval,
		Concurrency: cfg.PriceRefreshConcurrency,
		Logger:      log,
	})
	updaterDone := make(chan struct{})
	go func() {
		defer close(updaterDone)
		priceUpdater.Run(ctx)
	}()
	log.Info("Price updater started",
		"interval", cfg.PriceRefreshInterval.String(),
		"concurrency", cfg.PriceRefreshConcurrency,
	)

	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}

	select {
	case <-updaterDone:
		log.Info("Price updater stopped")
	case <-shutdownCtx.Done():
		log.Warn("Price updater did not stop before shutdown deadline")
	}

	log.Info("Server stopped gracefully")
}
