package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-engagement-api/internal/handler"
	"github.com/noah-isme/sma-engagement-api/internal/models"
	"github.com/noah-isme/sma-engagement-api/internal/service"
	"github.com/noah-isme/sma-engagement-api/pkg/config"
)

type staticFacts struct{}

func (staticFacts) Snapshot(_ context.Context, q models.FactQuery) (*models.FactSnapshot, error) {
	last := q.Until.Add(-time.Hour)
	return &models.FactSnapshot{
		TenantID: q.TenantID,
		Records: []models.StudentFactRecord{
			{StudentID: "s1", FullName: "Ayu", TotalInteractions: 50, LastActivityAt: &last},
		},
		Activity: []models.ActivityEvent{{StudentID: "s1", OccurredAt: last}},
	}, nil
}

func testRouter(ping handler.Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	svc := service.NewEngagementService(service.EngagementServiceParams{Facts: staticFacts{}, Metrics: metrics})
	return newRouter(routerDeps{
		cfg: &config.Config{
			Env:        config.EnvDevelopment,
			APIPrefix:  "/api/v1",
			Engagement: config.EngagementConfig{TenantHeader: "X-Tenant-ID"},
		},
		logger:     zap.NewNop(),
		metrics:    metrics,
		engagement: handler.NewEngagementHandler(svc),
		system:     handler.NewMetricsHandler(metrics, map[string]handler.Pinger{"postgres": ping}),
	})
}

func TestRouterEngagementRoutes(t *testing.T) {
	r := testRouter(handler.PingFunc(func(context.Context) error { return nil }))
	for _, path := range []string{
		"/api/v1/engagement/report",
		"/api/v1/engagement/students",
		"/api/v1/engagement/students/s1",
		"/api/v1/engagement/cohorts",
		"/api/v1/engagement/at-risk",
		"/api/v1/engagement/trends/daily",
		"/api/v1/engagement/trends/terms",
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Tenant-ID", "tenant-1")
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"), path)
	}
}

func TestRouterSystemRoutes(t *testing.T) {
	r := testRouter(handler.PingFunc(func(context.Context) error { return errors.New("down") }))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/system/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "engagement_report_build_seconds")
}
