package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-engagement-api/api/swagger"
	"github.com/noah-isme/sma-engagement-api/internal/engagement"
	"github.com/noah-isme/sma-engagement-api/internal/handler"
	"github.com/noah-isme/sma-engagement-api/internal/repository"
	"github.com/noah-isme/sma-engagement-api/internal/service"
	"github.com/noah-isme/sma-engagement-api/pkg/cache"
	"github.com/noah-isme/sma-engagement-api/pkg/config"
	"github.com/noah-isme/sma-engagement-api/pkg/database"
	"github.com/noah-isme/sma-engagement-api/pkg/logger"
)

// @title SMA Engagement API
// @version 1.0.0
// @description Student engagement and academic performance reports per tenant
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	metrics := service.NewMetricsService()

	var redisClient *redis.Client
	if cfg.Engagement.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, report cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Engagement.CacheTTL, logr, cfg.Engagement.CacheEnabled && redisClient != nil)

	engagementSvc := service.NewEngagementService(service.EngagementServiceParams{
		Facts:     repository.NewEngagementRepository(db),
		Cache:     cacheSvc,
		Metrics:   metrics,
		Validator: validator.New(),
		Logger:    logr,
		Config: service.EngagementServiceConfig{
			CacheTTL:   cfg.Engagement.CacheTTL,
			Thresholds: engagement.DefaultThresholds().WithWindows(cfg.Engagement.ActiveWindowDays, cfg.Engagement.RiskWindowDays),
			TermCount:  cfg.Engagement.TermCount,
			Location:   cfg.Engagement.Location,
		},
	})

	dependencies := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		dependencies["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	r := newRouter(routerDeps{
		cfg:        cfg,
		logger:     logr,
		metrics:    metrics,
		engagement: handler.NewEngagementHandler(engagementSvc),
		system:     handler.NewMetricsHandler(metrics, dependencies),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "report_cache", cacheSvc.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
}
