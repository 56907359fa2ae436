package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-engagement-api/internal/dto"
	"github.com/noah-isme/sma-engagement-api/internal/engagement"
	"github.com/noah-isme/sma-engagement-api/internal/middleware"
	"github.com/noah-isme/sma-engagement-api/internal/models"
	"github.com/noah-isme/sma-engagement-api/internal/service"
	appErrors "github.com/noah-isme/sma-engagement-api/pkg/errors"
)

type fakeEngagementSrv struct {
	lastReq     service.EngagementRequest
	lastStudent string
	report      *dto.EngagementReportResponse
	table       *dto.EngagementTableResponse
	student     *models.StudentMetrics
	series      *dto.EngagementSeriesResponse
	terms       *dto.EngagementTermSeriesResponse
	hit         bool
	err         error
}

func (f *fakeEngagementSrv) Report(_ context.Context, req service.EngagementRequest) (*dto.EngagementReportResponse, bool, error) {
	f.lastReq = req
	return f.report, f.hit, f.err
}

func (f *fakeEngagementSrv) Students(_ context.Context, req service.EngagementRequest) (*dto.EngagementTableResponse, bool, error) {
	f.lastReq = req
	return f.table, f.hit, f.err
}

func (f *fakeEngagementSrv) Cohorts(_ context.Context, req service.EngagementRequest) (*dto.EngagementTableResponse, bool, error) {
	f.lastReq = req
	return f.table, f.hit, f.err
}

func (f *fakeEngagementSrv) AtRisk(_ context.Context, req service.EngagementRequest) (*dto.EngagementTableResponse, bool, error) {
	f.lastReq = req
	return f.table, f.hit, f.err
}

func (f *fakeEngagementSrv) Student(_ context.Context, req service.EngagementRequest, studentID string) (*models.StudentMetrics, bool, error) {
	f.lastReq = req
	f.lastStudent = studentID
	return f.student, f.hit, f.err
}

func (f *fakeEngagementSrv) DailyActivity(_ context.Context, req service.EngagementRequest) (*dto.EngagementSeriesResponse, bool, error) {
	f.lastReq = req
	return f.series, f.hit, f.err
}

func (f *fakeEngagementSrv) TermScores(_ context.Context, req service.EngagementRequest) (*dto.EngagementTermSeriesResponse, bool, error) {
	f.lastReq = req
	return f.terms, f.hit, f.err
}

type engagementEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newEngagementRouter(srv *fakeEngagementSrv) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewEngagementHandler(srv)
	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	group := r.Group("/engagement", middleware.TenantScope("X-Tenant-ID"))
	group.GET("/report", h.Report)
	group.GET("/students", h.Students)
	group.GET("/students/:id", h.Student)
	group.GET("/cohorts", h.Cohorts)
	group.GET("/at-risk", h.AtRisk)
	group.GET("/trends/daily", h.DailyActivity)
	group.GET("/trends/terms", h.TermScores)
	return r
}

func doEngagementRequest(r *gin.Engine, path, tenant string) (*httptest.ResponseRecorder, engagementEnvelope) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if tenant != "" {
		req.Header.Set("X-Tenant-ID", tenant)
	}
	r.ServeHTTP(rec, req)
	var envelope engagementEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	return rec, envelope
}

func TestEngagementHandlerRequiresTenant(t *testing.T) {
	srv := &fakeEngagementSrv{}
	rec, envelope := doEngagementRequest(newEngagementRouter(srv), "/engagement/report", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrMissingTenant.Code, envelope.Error.Code)
	assert.Empty(t, srv.lastReq.TenantID)
}

func TestEngagementHandlerTenantFromQuery(t *testing.T) {
	srv := &fakeEngagementSrv{report: &dto.EngagementReportResponse{TenantID: "tenant-q"}}
	rec, _ := doEngagementRequest(newEngagementRouter(srv), "/engagement/report?tenantId=tenant-q", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tenant-q", srv.lastReq.TenantID)
}

func TestEngagementHandlerReportParsesQuery(t *testing.T) {
	srv := &fakeEngagementSrv{report: &dto.EngagementReportResponse{TenantID: "tenant-1", WindowDays: 7}, hit: true}
	rec, envelope := doEngagementRequest(newEngagementRouter(srv),
		"/engagement/report?windowDays=7&riskWindowDays=10&termCount=2&cohort=Grade%205", "tenant-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.EngagementRequest{TenantID: "tenant-1", WindowDays: 7, RiskWindowDays: 10, TermCount: 2, Cohort: "Grade 5"}, srv.lastReq)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Contains(t, envelope.Meta, "processing_time_ms")

	var report dto.EngagementReportResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &report))
	assert.Equal(t, 7, report.WindowDays)
}

func TestEngagementHandlerRejectsNonNumericWindow(t *testing.T) {
	srv := &fakeEngagementSrv{}
	rec, envelope := doEngagementRequest(newEngagementRouter(srv), "/engagement/students?windowDays=week", "tenant-1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
}

func TestEngagementHandlerStudentsTable(t *testing.T) {
	table := engagement.ProjectStudents([]models.StudentMetrics{{FullName: "Ayu", CohortKey: "Grade 5"}}, engagement.StudentColumns)
	srv := &fakeEngagementSrv{table: &dto.EngagementTableResponse{TenantID: "tenant-1", Table: table}}
	rec, envelope := doEngagementRequest(newEngagementRouter(srv), "/engagement/students", "tenant-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Table struct {
			Columns []string            `json:"columns"`
			Rows    []map[string]string `json:"rows"`
		} `json:"table"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	require.Len(t, payload.Table.Rows, 1)
	assert.Len(t, payload.Table.Columns, len(engagement.StudentColumns))
	assert.Equal(t, "Ayu", payload.Table.Rows[0]["Student Name"])
	assert.Equal(t, engagement.Placeholder, payload.Table.Rows[0]["Performance Score (%)"])
}

func TestEngagementHandlerStudentNotFound(t *testing.T) {
	srv := &fakeEngagementSrv{err: appErrors.Clone(appErrors.ErrNotFound, "student not found")}
	rec, _ := doEngagementRequest(newEngagementRouter(srv), "/engagement/students/abc", "tenant-1")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "abc", srv.lastStudent)
}

func TestEngagementHandlerSeries(t *testing.T) {
	srv := &fakeEngagementSrv{
		series: &dto.EngagementSeriesResponse{Series: dto.SeriesResponse{Labels: []string{"2026-10-19"}, Values: []float64{3}}},
		terms:  &dto.EngagementTermSeriesResponse{Labels: []string{"Q1 2026", "Current"}, Cohorts: map[string]dto.SeriesResponse{}},
	}
	r := newEngagementRouter(srv)

	rec, _ := doEngagementRequest(r, "/engagement/trends/daily?windowDays=1", "tenant-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, srv.lastReq.WindowDays)

	rec, _ = doEngagementRequest(r, "/engagement/trends/terms", "tenant-1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEngagementHandlerServiceFailure(t *testing.T) {
	srv := &fakeEngagementSrv{err: errors.New("boom")}
	r := newEngagementRouter(srv)
	for _, path := range []string{"/engagement/cohorts", "/engagement/at-risk"} {
		rec, envelope := doEngagementRequest(r, path, "tenant-1")
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, appErrors.ErrInternal.Code, envelope.Error.Code)
	}
}
