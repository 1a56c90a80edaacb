package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"parking_tracker/internal/api"
	"parking_tracker/internal/api/handler"
	"parking_tracker/internal/config"
	"parking_tracker/internal/ingest"
	"parking_tracker/internal/logger"
	"parking_tracker/internal/repository/cache"
	"parking_tracker/internal/repository/postgresql"
	"parking_tracker/internal/service"

	awsgo_config "github.com/aws/aws-sdk-go-v2/config" // alias to avoid clashing with internal/config
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// 1. Configuration and logging
	cfg := config.Load()
	logger.Init("parking-tracker", cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	logger.Log.Info("configuration loaded")

	// 2. Database
	db, err := postgresql.NewDB(cfg)
	if err != nil {
		logger.Log.Fatalf("could not connect to database: %v", err)
	}
	defer db.Close()

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 10*time.Second)
	err = postgresql.EnsureSchema(schemaCtx, db)
	cancelSchema()
	if err != nil {
		logger.Log.Fatalf("could not apply schema: %v", err)
	}
	logger.Log.Info("database ready")

	// 3. Repositories and optional lot list cache
	parkingLotRepo := postgresql.NewPgParkingLotRepository(db)
	parkingSlotRepo := postgresql.NewPgParkingSlotRepository(db)

	var lotCache service.LotListCache
	var redisClient *redis.Client
	if cfg.RedisAddr == "" {
		logger.Log.Info("REDIS_ADDR not set, lot list cache disabled")
	} else {
		redisClient = cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		lotCache = cache.NewRedisLotCache(redisClient, cfg.LotCacheTTL)
		logger.Log.WithField("addr", cfg.RedisAddr).Info("lot list cache enabled")
	}

	// 4. Services
	queryService := service.NewLotQueryService(parkingLotRepo, lotCache, cfg.NearbyRadiusKm)
	upsertService := service.NewLotUpsertService(parkingLotRepo, parkingSlotRepo, lotCache)
	slotService := service.NewSlotQueryService(parkingSlotRepo)

	// 5. Slot status consumer
	var wg sync.WaitGroup
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())

	if cfg.SQSSlotQueueURL == "" {
		logger.Log.Info("SQS_SLOT_QUEUE_URL not set, slot status consumer disabled")
	} else {
		awsSDKCfg, err := awsgo_config.LoadDefaultConfig(context.Background(), awsgo_config.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Log.Fatalf("could not load AWS SDK config: %v", err)
		}
		consumer := ingest.NewSlotStatusConsumer(sqs.NewFromConfig(awsSDKCfg), cfg.SQSSlotQueueURL, upsertService)
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Start(consumerCtx)
		}()
	}

	// 6. HTTP server
	router := api.SetupRouter(
		handler.NewParkingLotHandler(queryService, upsertService),
		handler.NewParkingSlotHandler(slotService),
	)
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("server listening on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down server")

	cancelConsumer()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("forced shutdown: %v", err)
	}

	if cfg.SQSSlotQueueURL != "" {
		logger.Log.Info("waiting for slot status consumer to stop (max 5s)")
		stopped := make(chan struct{})
		go func() {
			defer close(stopped)
			wg.Wait()
		}()
		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			logger.Log.Warn("slot status consumer did not stop in time")
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Log.Warnf("closing redis client: %v", err)
		}
	}

	logger.Log.Info("server stopped")
}
