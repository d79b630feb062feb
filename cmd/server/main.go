package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lberthe/mocktail-machine/internal/adapter/handler"
	"github.com/lberthe/mocktail-machine/internal/adapter/storage"
	"github.com/lberthe/mocktail-machine/internal/core/domain"
	"github.com/lberthe/mocktail-machine/internal/core/service"
	"github.com/lberthe/mocktail-machine/internal/port"
)

const (
	defaultHTTPAddr    = ":8080"
	defaultStorage     = "file"
	defaultDataDir     = "data"
	defaultMySQLDSN    = "mocktail_user:sin@tcp(localhost:3306)/mocktail_machine?parseTime=true"
	defaultWorkerCount = 4
	defaultQueueSize   = 256
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpAddr := envOr("HTTP_ADDR", defaultHTTPAddr)
	storageKind := envOr("STORAGE", defaultStorage)
	redisAddr := os.Getenv("REDIS_ADDR")

	// Pick the persistence realization
	var (
		ingredientRepo port.IngredientRepository
		orderRepo      port.OrderRepository
		reviewRepo     port.ReviewRepository
		recipeRepo     port.RecipeRepository
	)
	var db *sql.DB
	switch storageKind {
	case "mysql":
		db, err = sql.Open("mysql", envOr("MYSQL_DSN", defaultMySQLDSN))
		if err != nil {
			logger.Fatal("failed to open mysql", zap.Error(err))
		}
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			logger.Fatal("failed to ping mysql", zap.Error(err))
		}
		adapter := storage.NewMySQLAdapter(db)
		ingredientRepo, orderRepo, reviewRepo, recipeRepo = adapter, adapter, adapter, adapter
		logger.Info("connected to mysql")
	case "file":
		adapter, err := storage.NewFileAdapter(envOr("DATA_DIR", defaultDataDir))
		if err != nil {
			logger.Fatal("failed to open file store", zap.Error(err))
		}
		ingredientRepo, orderRepo, reviewRepo, recipeRepo = adapter, adapter, adapter, adapter
		logger.Info("opened file store", zap.String("dir", envOr("DATA_DIR", defaultDataDir)))
	default:
		logger.Fatal("unknown STORAGE", zap.String("storage", storageKind))
	}

	// Optional Redis level cache
	var cache port.LevelCache
	var rdb *redis.Client
	if redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: redisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		cache = storage.NewRedisAdapter(rdb)
		logger.Info("connected to redis", zap.String("addr", redisAddr))
	}

	// Core services
	inventoryService := service.NewInventoryService(ingredientRepo, cache, logger)
	orderService := service.NewOrderService(orderRepo, inventoryService, logger,
		intEnvOr("QUEUE_SIZE", defaultQueueSize))
	reviewService := service.NewReviewService(reviewRepo, recipeRepo, logger)

	if err := inventoryService.WarmCache(ctx); err != nil {
		logger.Fatal("failed to warm level cache", zap.Error(err))
	}

	// Fulfillment worker pool
	workerCount := intEnvOr("WORKER_COUNT", defaultWorkerCount)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(id, orderService.GetOrderQueue(), orderService, logger)
		}(i)
	}
	logger.Info("started fulfillment workers", zap.Int("count", workerCount))

	// HTTP server
	httpHandler := handler.NewHTTPHandler(orderService, inventoryService, reviewService, logger)
	httpServer := &http.Server{
		Addr:         httpAddr,
		Handler:      httpHandler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	orderService.Close()
	wg.Wait()
	logger.Info("workers stopped")

	if rdb != nil {
		rdb.Close()
	}
	if db != nil {
		db.Close()
	}
	logger.Info("connections closed")
}

func intEnvOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// workerLoop drains the fulfillment queue: each order gets its ingredients
// deducted and its status advanced to processing.
func workerLoop(id int, queue <-chan domain.Order, orders *service.OrderService, logger *zap.Logger) {
	for order := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		if err := orders.Fulfill(ctx, order); err != nil {
			logger.Error("fulfillment failed, order left in received",
				zap.Int("worker", id),
				zap.String("order_id", order.ID),
				zap.Error(err))
		}

		cancel()
	}
}
