package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-engagement-api/internal/dto"
	"github.com/noah-isme/sma-engagement-api/internal/engagement"
	"github.com/noah-isme/sma-engagement-api/internal/models"
	appErrors "github.com/noah-isme/sma-engagement-api/pkg/errors"
)

var tracer = otel.Tracer("github.com/noah-isme/sma-engagement-api/internal/service")

// FactSource reads a consistent snapshot of raw student facts for one tenant.
type FactSource interface {
	Snapshot(ctx context.Context, query models.FactQuery) (*models.FactSnapshot, error)
}

// EngagementRequest scopes every engagement query.
type EngagementRequest struct {
	TenantID       string `validate:"required"`
	WindowDays     int    `validate:"omitempty,min=1,max=365"`
	RiskWindowDays int    `validate:"omitempty,min=1,max=365"`
	TermCount      int    `validate:"omitempty,min=0,max=4"`
	Cohort         string `validate:"omitempty,max=64"`
}

// EngagementServiceConfig tunes report derivation.
type EngagementServiceConfig struct {
	CacheTTL   time.Duration
	Thresholds engagement.Thresholds
	TermCount  int
	Location   *time.Location
}

// EngagementServiceParams groups constructor dependencies.
type EngagementServiceParams struct {
	Facts     FactSource
	Cache     *CacheService
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    EngagementServiceConfig
}

// EngagementService derives engagement reports from raw fact snapshots.
type EngagementService struct {
	facts     FactSource
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	estimate  engagement.TimeEstimator
	now       func() time.Time
	cfg       EngagementServiceConfig
}

// NewEngagementService constructs an EngagementService with defaults applied.
func NewEngagementService(params EngagementServiceParams) *EngagementService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Thresholds == (engagement.Thresholds{}) {
		cfg.Thresholds = engagement.DefaultThresholds()
	}
	if cfg.TermCount <= 0 || cfg.TermCount > engagement.QuartersPerYear {
		cfg.TermCount = engagement.QuartersPerYear
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EngagementService{
		facts:     params.Facts,
		cache:     params.Cache,
		metrics:   params.Metrics,
		validator: validate,
		logger:    logger,
		estimate:  engagement.EstimateTimeSpentMinutes,
		now:       time.Now,
		cfg:       cfg,
	}
}

// Report returns the full engagement report. The boolean indicates a cache hit.
func (s *EngagementService) Report(ctx context.Context, req EngagementRequest) (*dto.EngagementReportResponse, bool, error) {
	req, err := s.normalise(req)
	if err != nil {
		return nil, false, err
	}
	now := s.now().In(s.cfg.Location)
	key := reportCacheKey(req, now)

	if s.cache != nil {
		var cached dto.EngagementReportResponse
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("engagement cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	report, err := s.build(ctx, req, now)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("engagement cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return report, false, nil
}

// Students projects per-student metrics into the standard student table.
func (s *EngagementService) Students(ctx context.Context, req EngagementRequest) (*dto.EngagementTableResponse, bool, error) {
	report, hit, err := s.Report(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return tableResponse(report, engagement.ProjectStudents(report.Students, engagement.StudentColumns)), hit, nil
}

// Cohorts projects cohort summaries into the standard grade table.
func (s *EngagementService) Cohorts(ctx context.Context, req EngagementRequest) (*dto.EngagementTableResponse, bool, error) {
	report, hit, err := s.Report(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return tableResponse(report, engagement.ProjectCohorts(report.Cohorts, engagement.CohortColumns)), hit, nil
}

// AtRisk lists at-risk students, longest inactive first.
func (s *EngagementService) AtRisk(ctx context.Context, req EngagementRequest) (*dto.EngagementTableResponse, bool, error) {
	report, hit, err := s.Report(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return tableResponse(report, engagement.ProjectStudents(AtRiskStudents(report.Students), engagement.AtRiskColumns)), hit, nil
}

// Student returns metrics for a single student.
func (s *EngagementService) Student(ctx context.Context, req EngagementRequest, studentID string) (*models.StudentMetrics, bool, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "studentId is required")
	}
	report, hit, err := s.Report(ctx, req)
	if err != nil {
		return nil, false, err
	}
	for i := range report.Students {
		if report.Students[i].StudentID == studentID {
			m := report.Students[i]
			return &m, hit, nil
		}
	}
	for _, skipped := range report.Skipped {
		if skipped.StudentID == studentID {
			return nil, hit, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student record rejected: %s", skipped.Reason))
		}
	}
	return nil, hit, appErrors.Clone(appErrors.ErrNotFound, "student not found")
}

// DailyActivity returns the daily active students series.
func (s *EngagementService) DailyActivity(ctx context.Context, req EngagementRequest) (*dto.EngagementSeriesResponse, bool, error) {
	report, hit, err := s.Report(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return &dto.EngagementSeriesResponse{
		TenantID:    report.TenantID,
		GeneratedAt: report.GeneratedAt,
		NoData:      report.NoData,
		Series:      report.DailyActive,
	}, hit, nil
}

// TermScores returns average scores per term bucket for each cohort.
func (s *EngagementService) TermScores(ctx context.Context, req EngagementRequest) (*dto.EngagementTermSeriesResponse, bool, error) {
	report, hit, err := s.Report(ctx, req)
	if err != nil {
		return nil, false, err
	}
	resp := &dto.EngagementTermSeriesResponse{
		TenantID:    report.TenantID,
		GeneratedAt: report.GeneratedAt,
		NoData:      report.NoData,
		Labels:      report.TermLabels,
		Cohorts:     report.TermScores,
	}
	return resp, hit, nil
}

// AtRiskStudents filters at-risk students sorted by days inactive desc then interactions asc.
func AtRiskStudents(metrics []models.StudentMetrics) []models.StudentMetrics {
	out := make([]models.StudentMetrics, 0, len(metrics))
	for _, m := range metrics {
		if m.AtRisk {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysSinceLastActivity != out[j].DaysSinceLastActivity {
			return out[i].DaysSinceLastActivity > out[j].DaysSinceLastActivity
		}
		return out[i].TotalInteractions < out[j].TotalInteractions
	})
	return out
}

func (s *EngagementService) normalise(req EngagementRequest) (EngagementRequest, error) {
	req.TenantID = strings.TrimSpace(req.TenantID)
	req.Cohort = strings.TrimSpace(req.Cohort)
	if req.TenantID == "" {
		return req, appErrors.ErrMissingTenant
	}
	if err := s.validator.Struct(req); err != nil {
		return req, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid engagement query")
	}
	if req.WindowDays == 0 {
		req.WindowDays = s.cfg.Thresholds.ActiveWindowDays
	}
	if req.RiskWindowDays == 0 {
		req.RiskWindowDays = s.cfg.Thresholds.RiskWindowDays
	}
	if req.TermCount == 0 {
		req.TermCount = s.cfg.TermCount
	}
	return req, nil
}

func (s *EngagementService) build(ctx context.Context, req EngagementRequest, now time.Time) (*dto.EngagementReportResponse, error) {
	ctx, span := tracer.Start(ctx, "EngagementService.build")
	defer span.End()
	span.SetAttributes(
		attribute.String("tenant.id", req.TenantID),
		attribute.Int("window.days", req.WindowDays),
		attribute.Int("risk_window.days", req.RiskWindowDays),
	)

	if s.facts == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "fact source not configured")
	}
	query := factQueryFor(req, now)
	readStart := time.Now()
	snapshot, err := s.facts.Snapshot(ctx, query)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("engagement_snapshot", time.Since(readStart))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot read failed")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read engagement facts")
	}

	buildStart := time.Now()
	report := &dto.EngagementReportResponse{
		ReportID:       uuid.NewString(),
		TenantID:       req.TenantID,
		GeneratedAt:    now,
		WindowDays:     req.WindowDays,
		RiskWindowDays: req.RiskWindowDays,
		Cohort:         req.Cohort,
		Students:       []models.StudentMetrics{},
		Cohorts:        []models.CohortSummary{},
		TermLabels:     engagement.EmptyTermSeries(req.TermCount, now).Labels(),
		TermScores:     map[string]dto.SeriesResponse{},
		Skipped:        []engagement.SkippedRecord{},
	}

	if snapshot.Empty() {
		report.NoData = true
		report.DailyActive = dto.NewSeriesResponse(engagement.BuildDailySeries(nil, req.WindowDays, now))
		report.Notice = appErrors.ErrDataUnavailable.Message
		s.logger.Info("no engagement facts for tenant", zap.String("tenant_id", req.TenantID))
		return report, nil
	}

	calculator := engagement.NewCalculator(s.cfg.Thresholds.WithWindows(req.WindowDays, req.RiskWindowDays), s.estimate)
	metrics, skipped := calculator.ComputeAll(snapshot.Records, now)
	if len(skipped) > 0 {
		s.logger.Warn(fmt.Sprintf("skipped %d malformed records", len(skipped)),
			zap.String("tenant_id", req.TenantID),
			zap.Int("skipped", len(skipped)),
		)
		report.Skipped = skipped
		report.SkippedCount = len(skipped)
		report.Notice = fmt.Sprintf("skipped %d malformed records", len(skipped))
	}

	metrics = filterByCohort(metrics, req.Cohort)
	included := make(map[string]struct{}, len(metrics))
	for _, m := range metrics {
		included[m.StudentID] = struct{}{}
	}

	activity := make([]models.ActivityEvent, 0, len(snapshot.Activity))
	for _, ev := range snapshot.Activity {
		if _, ok := included[ev.StudentID]; ok {
			activity = append(activity, ev)
		}
	}
	scores := make([]models.ScoreEvent, 0, len(snapshot.Scores))
	for _, ev := range snapshot.Scores {
		if _, ok := included[ev.StudentID]; ok {
			scores = append(scores, ev)
		}
	}

	report.Students = metrics
	report.Cohorts = engagement.SortedCohorts(engagement.AggregateByCohort(metrics))
	report.DailyActive = dto.NewSeriesResponse(engagement.BuildDailySeries(activity, req.WindowDays, now))
	for cohort, series := range engagement.BuildTermSeries(scores, req.TermCount, now) {
		report.TermScores[cohort] = dto.NewSeriesResponse(series)
	}
	report.NoData = len(metrics) == 0

	if s.metrics != nil {
		s.metrics.ObserveReport(len(snapshot.Records), len(skipped), time.Since(buildStart))
	}
	span.SetAttributes(
		attribute.Int("students", len(metrics)),
		attribute.Int("skipped", len(skipped)),
	)
	return report, nil
}

func factQueryFor(req EngagementRequest, now time.Time) models.FactQuery {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return models.FactQuery{
		TenantID:      req.TenantID,
		ActivitySince: today.AddDate(0, 0, -(req.WindowDays - 1)),
		ScoresSince:   time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()),
		Until:         now,
	}
}

func filterByCohort(metrics []models.StudentMetrics, cohort string) []models.StudentMetrics {
	if cohort == "" {
		return metrics
	}
	out := metrics[:0]
	for _, m := range metrics {
		if m.CohortKey == cohort {
			out = append(out, m)
		}
	}
	return out
}

func tableResponse(report *dto.EngagementReportResponse, table engagement.Table) *dto.EngagementTableResponse {
	return &dto.EngagementTableResponse{
		ReportID:     report.ReportID,
		TenantID:     report.TenantID,
		GeneratedAt:  report.GeneratedAt,
		NoData:       report.NoData,
		SkippedCount: report.SkippedCount,
		Notice:       report.Notice,
		Table:        table,
	}
}

func reportCacheKey(req EngagementRequest, now time.Time) string {
	return fmt.Sprintf("engagement:report:%s:%d:%d:%d:%s:%s",
		strings.ReplaceAll(req.TenantID, ":", "|"),
		req.WindowDays,
		req.RiskWindowDays,
		req.TermCount,
		strings.ReplaceAll(req.Cohort, ":", "|"),
		now.Format(engagement.DayLabelLayout),
	)
}
