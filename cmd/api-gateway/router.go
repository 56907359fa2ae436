package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-engagement-api/internal/handler"
	"github.com/noah-isme/sma-engagement-api/internal/middleware"
	"github.com/noah-isme/sma-engagement-api/internal/service"
	"github.com/noah-isme/sma-engagement-api/pkg/config"
	"github.com/noah-isme/sma-engagement-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-engagement-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-engagement-api/pkg/middleware/requestid"
)

type routerDeps struct {
	cfg        *config.Config
	logger     *zap.Logger
	metrics    *service.MetricsService
	engagement *handler.EngagementHandler
	system     *handler.MetricsHandler
}

func newRouter(deps routerDeps) *gin.Engine {
	cfg := deps.cfg
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins, cfg.Engagement.TenantHeader))
	r.Use(middleware.Metrics(deps.metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", deps.system.Health)
	r.GET("/ready", deps.system.Ready)
	r.GET("/metrics", deps.system.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/system/metrics", deps.system.System)

	eng := api.Group("/engagement", middleware.TenantScope(cfg.Engagement.TenantHeader))
	eng.GET("/report", deps.engagement.Report)
	eng.GET("/students", deps.engagement.Students)
	eng.GET("/students/:id", deps.engagement.Student)
	eng.GET("/cohorts", deps.engagement.Cohorts)
	eng.GET("/at-risk", deps.engagement.AtRisk)
	eng.GET("/trends/daily", deps.engagement.DailyActivity)
	eng.GET("/trends/terms", deps.engagement.TermScores)

	return r
}
