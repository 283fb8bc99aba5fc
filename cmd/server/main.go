package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"valet/internal/app"
	"valet/internal/config"
	"valet/internal/handler"
	internalRedis "valet/internal/redis"
	"valet/internal/repository/postgres"
	"valet/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, hookService := wireServer(db, redisClient, nrApp, cfg)

	// Seed the key board. Idempotent, runs on every startup.
	if err := hookService.Init(ctx, cfg.Valet.HooksTotal); err != nil {
		log.Fatalf("failed to seed hooks: %v", err)
	}
	log.Printf("Key board ready: %d hooks", cfg.Valet.HooksTotal)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server plus the
// hook service, which main seeds before accepting traffic.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.HookService) {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	hookRepo := postgres.NewHookRepository(db)
	cardRepo := postgres.NewCardRepository(db)
	vehicleRepo := postgres.NewVehicleRepository(db)
	requestRepo := postgres.NewRequestRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	txManager := postgres.NewTxManager(db)

	// Initialize services.
	pricing := service.NewPricingService(service.PricingConfig{
		BaseFee:           cfg.Valet.BaseFee,
		BaseWindow:        cfg.Valet.BaseWindow,
		HourlyRate:        cfg.Valet.HourlyRate,
		DailyMax:          cfg.Valet.DailyMax,
		PrioritySurcharge: cfg.Valet.PrioritySurcharge,
	})
	var reader service.CardReader
	if cfg.Valet.SimulateCardIO {
		reader = service.NewSimulatedCardReader()
	}
	hookService := service.NewHookService(hookRepo, cacheStore)
	cardService := service.NewCardService(cardRepo, lockStore, reader)
	checkinService := service.NewCheckinService(hookService, vehicleRepo, txManager, pricing, reader)
	retrievalService := service.NewRetrievalService(requestRepo, vehicleRepo, driverRepo, txManager, pricing, lockStore, cacheStore)
	driverService := service.NewDriverService(driverRepo)

	// Initialize handlers.
	checkinHandler := handler.NewCheckinHandler(checkinService)
	retrievalHandler := handler.NewRetrievalHandler(retrievalService)
	driverHandler := handler.NewDriverHandler(driverService)
	hookHandler := handler.NewHookHandler(hookService)
	cardHandler := handler.NewCardHandler(cardService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		CheckinHandler:   checkinHandler,
		RetrievalHandler: retrievalHandler,
		DriverHandler:    driverHandler,
		HookHandler:      hookHandler,
		CardHandler:      cardHandler,
		RedisClient:      redisClient,
		NewRelicApp:      nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, hookService
}
