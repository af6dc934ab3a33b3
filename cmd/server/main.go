package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/catalog/internal/adapter/feed"
	"github.com/rl1809/catalog/internal/adapter/handler"
	"github.com/rl1809/catalog/internal/config"
	"github.com/rl1809/catalog/internal/core/service"
	"github.com/rl1809/catalog/internal/logging"
	"github.com/rl1809/catalog/internal/monitoring"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewDefault().Fatal("failed to load config", zap.Error(err))
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		logging.NewDefault().Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync()
	logging.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := service.GetInstance(cfg.Registry.Name)
	metrics := monitoring.NewMetrics()
	metrics.SetCatalogItems(registry.Len())

	// Start price feed
	var rdb *redis.Client
	var priceFeed *service.PriceFeed
	var feedWG, runWG sync.WaitGroup
	if cfg.Feed.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))

		publisher := feed.NewRedisAdapter(rdb, cfg.Feed.Channel, cfg.Feed.IdempotencyTTL)
		priceFeed = service.NewPriceFeed(registry, publisher, cfg.Feed.QueueSize,
			service.WithPublishObserver(func(o service.PublishOutcome) {
				metrics.RecordFeedOutcome(string(o))
			}))

		for i := 0; i < cfg.Feed.Workers; i++ {
			feedWG.Add(1)
			go func(id int) {
				defer feedWG.Done()
				priceFeed.Work(id)
			}(i)
		}
		runWG.Add(1)
		go func() {
			defer runWG.Done()
			priceFeed.Run(ctx, cfg.Feed.Interval)
		}()
		logger.Info("price feed started",
			zap.Int("workers", cfg.Feed.Workers), zap.Duration("interval", cfg.Feed.Interval))
	}

	// Initialize HTTP server
	mux := http.NewServeMux()
	handler.NewHTTPHandler(registry, metrics).Register(mux)
	mux.Handle("GET /metrics", metrics.Handler())

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	go func() {
		logger.Info("HTTP server listening",
			zap.String("addr", cfg.Server.Addr), zap.String("registry", registry.Name()))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	if priceFeed != nil {
		cancel()
		runWG.Wait()
		priceFeed.Close()
		feedWG.Wait()
		logger.Info("price feed stopped")

		rdb.Close()
		logger.Info("redis connection closed")
	}
}
