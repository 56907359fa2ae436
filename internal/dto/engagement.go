package dto

import (
	"time"

	"github.com/noah-isme/sma-engagement-api/internal/engagement"
	"github.com/noah-isme/sma-engagement-api/internal/models"
)

// SeriesResponse is a chart-ready pair of equal-length arrays.
type SeriesResponse struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// NewSeriesResponse flattens a time series.
func NewSeriesResponse(series models.TimeSeries) SeriesResponse {
	return SeriesResponse{Labels: series.Labels(), Values: series.Values()}
}

// EngagementReportResponse is the full engagement report for one tenant.
type EngagementReportResponse struct {
	ReportID       string                     `json:"reportId"`
	TenantID       string                     `json:"tenantId"`
	GeneratedAt    time.Time                  `json:"generatedAt"`
	WindowDays     int                        `json:"windowDays"`
	RiskWindowDays int                        `json:"riskWindowDays"`
	Cohort         string                     `json:"cohort,omitempty"`
	NoData         bool                       `json:"noData"`
	Students       []models.StudentMetrics    `json:"students"`
	Cohorts        []models.CohortSummary     `json:"cohorts"`
	DailyActive    SeriesResponse             `json:"dailyActive"`
	TermLabels     []string                   `json:"termLabels"`
	TermScores     map[string]SeriesResponse  `json:"termScores"`
	SkippedCount   int                        `json:"skippedRecords"`
	Skipped        []engagement.SkippedRecord `json:"skipped,omitempty"`
	Notice         string                     `json:"notice,omitempty"`
}

// EngagementTableResponse wraps a projected report table.
type EngagementTableResponse struct {
	ReportID     string           `json:"reportId"`
	TenantID     string           `json:"tenantId"`
	GeneratedAt  time.Time        `json:"generatedAt"`
	NoData       bool             `json:"noData"`
	SkippedCount int              `json:"skippedRecords"`
	Notice       string           `json:"notice,omitempty"`
	Table        engagement.Table `json:"table"`
}

// EngagementSeriesResponse wraps a single trend series.
type EngagementSeriesResponse struct {
	TenantID    string         `json:"tenantId"`
	GeneratedAt time.Time      `json:"generatedAt"`
	NoData      bool           `json:"noData"`
	Series      SeriesResponse `json:"series"`
}

// EngagementTermSeriesResponse wraps per-cohort term series.
type EngagementTermSeriesResponse struct {
	TenantID    string                    `json:"tenantId"`
	GeneratedAt time.Time                 `json:"generatedAt"`
	NoData      bool                      `json:"noData"`
	Labels      []string                  `json:"labels"`
	Cohorts     map[string]SeriesResponse `json:"cohorts"`
}
