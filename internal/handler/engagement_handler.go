package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-engagement-api/internal/dto"
	"github.com/noah-isme/sma-engagement-api/internal/models"
	"github.com/noah-isme/sma-engagement-api/internal/service"
	appErrors "github.com/noah-isme/sma-engagement-api/pkg/errors"
	"github.com/noah-isme/sma-engagement-api/pkg/response"
)

type engagementService interface {
	Report(ctx context.Context, req service.EngagementRequest) (*dto.EngagementReportResponse, bool, error)
	Students(ctx context.Context, req service.EngagementRequest) (*dto.EngagementTableResponse, bool, error)
	Cohorts(ctx context.Context, req service.EngagementRequest) (*dto.EngagementTableResponse, bool, error)
	AtRisk(ctx context.Context, req service.EngagementRequest) (*dto.EngagementTableResponse, bool, error)
	Student(ctx context.Context, req service.EngagementRequest, studentID string) (*models.StudentMetrics, bool, error)
	DailyActivity(ctx context.Context, req service.EngagementRequest) (*dto.EngagementSeriesResponse, bool, error)
	TermScores(ctx context.Context, req service.EngagementRequest) (*dto.EngagementTermSeriesResponse, bool, error)
}

// EngagementHandler exposes engagement reports over HTTP.
type EngagementHandler struct {
	service engagementService
}

// NewEngagementHandler constructs the handler.
func NewEngagementHandler(service engagementService) *EngagementHandler {
	return &EngagementHandler{service: service}
}

// Report godoc
// @Summary Full engagement report
// @Tags Engagement
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param windowDays query int false "Daily trend window in days (1-365, default 30)"
// @Param riskWindowDays query int false "Inactivity days that flag a student at risk (default 14)"
// @Param termCount query int false "Number of term buckets (1-4, default 4)"
// @Param cohort query string false "Restrict to one grade level"
// @Success 200 {object} response.Envelope
// @Router /engagement/report [get]
func (h *EngagementHandler) Report(c *gin.Context) {
	h.serve(c, func(ctx context.Context, req service.EngagementRequest) (interface{}, bool, error) {
		return h.service.Report(ctx, req)
	})
}

// Students godoc
// @Summary Per-student engagement table
// @Tags Engagement
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param cohort query string false "Restrict to one grade level"
// @Success 200 {object} response.Envelope
// @Router /engagement/students [get]
func (h *EngagementHandler) Students(c *gin.Context) {
	h.serve(c, func(ctx context.Context, req service.EngagementRequest) (interface{}, bool, error) {
		return h.service.Students(ctx, req)
	})
}

// Student godoc
// @Summary Engagement metrics for one student
// @Tags Engagement
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /engagement/students/{id} [get]
func (h *EngagementHandler) Student(c *gin.Context) {
	studentID := strings.TrimSpace(c.Param("id"))
	h.serve(c, func(ctx context.Context, req service.EngagementRequest) (interface{}, bool, error) {
		return h.service.Student(ctx, req, studentID)
	})
}

// Cohorts godoc
// @Summary Per-grade engagement summary table
// @Tags Engagement
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Success 200 {object} response.Envelope
// @Router /engagement/cohorts [get]
func (h *EngagementHandler) Cohorts(c *gin.Context) {
	h.serve(c, func(ctx context.Context, req service.EngagementRequest) (interface{}, bool, error) {
		return h.service.Cohorts(ctx, req)
	})
}

// AtRisk godoc
// @Summary At-risk intervention list
// @Tags Engagement
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param riskWindowDays query int false "Inactivity days that flag a student at risk (default 14)"
// @Success 200 {object} response.Envelope
// @Router /engagement/at-risk [get]
func (h *EngagementHandler) AtRisk(c *gin.Context) {
	h.serve(c, func(ctx context.Context, req service.EngagementRequest) (interface{}, bool, error) {
		return h.service.AtRisk(ctx, req)
	})
}

// DailyActivity godoc
// @Summary Daily active students
// @Tags Engagement
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param windowDays query int false "Window in days (1-365, default 30)"
// @Success 200 {object} response.Envelope
// @Router /engagement/trends/daily [get]
func (h *EngagementHandler) DailyActivity(c *gin.Context) {
	h.serve(c, func(ctx context.Context, req service.EngagementRequest) (interface{}, bool, error) {
		return h.service.DailyActivity(ctx, req)
	})
}

// TermScores godoc
// @Summary Average scores per term and grade
// @Tags Engagement
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param termCount query int false "Number of term buckets (1-4, default 4)"
// @Success 200 {object} response.Envelope
// @Router /engagement/trends/terms [get]
func (h *EngagementHandler) TermScores(c *gin.Context) {
	h.serve(c, func(ctx context.Context, req service.EngagementRequest) (interface{}, bool, error) {
		return h.service.TermScores(ctx, req)
	})
}

type engagementCall func(ctx context.Context, req service.EngagementRequest) (interface{}, bool, error)

func (h *EngagementHandler) serve(c *gin.Context, call engagementCall) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	req, err := engagementRequestFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	payload, cacheHit, err := call(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := withProcessingMeta(c, cacheHit, map[string]interface{}{
		"processing_time_ms": time.Since(start).Milliseconds(),
	})
	response.JSON(c, http.StatusOK, payload, meta)
}
