package engagement

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-engagement-api/internal/models"
)

func TestBuildDailySeriesFixedLength(t *testing.T) {
	events := []models.ActivityEvent{
		{StudentID: "s1", OccurredAt: fixedNow.Add(-time.Hour)},
		{StudentID: "s1", OccurredAt: fixedNow.Add(-2 * time.Hour)},
		{StudentID: "s2", OccurredAt: fixedNow.Add(-3 * time.Hour)},
		{StudentID: "s1", OccurredAt: fixedNow.AddDate(0, 0, -1)},
		{StudentID: "s3", OccurredAt: fixedNow.AddDate(0, 0, -6)},
		{StudentID: "s4", OccurredAt: fixedNow.AddDate(0, 0, -8)},
		{StudentID: "s5", OccurredAt: fixedNow.AddDate(0, 0, -29)},
		{StudentID: "s6", OccurredAt: fixedNow.AddDate(0, 0, 1)},
	}
	want := map[int]float64{1: 2, 7: 4, 30: 6}

	for _, windowDays := range []int{1, 7, 30} {
		t.Run(fmt.Sprintf("window_%d", windowDays), func(t *testing.T) {
			series := BuildDailySeries(events, windowDays, fixedNow)
			require.Len(t, series.Points, windowDays)
			assert.Len(t, series.Labels(), len(series.Values()))

			var total float64
			for _, v := range series.Values() {
				total += v
			}
			assert.Equal(t, want[windowDays], total)
			assert.Equal(t, "2026-10-19", series.Points[windowDays-1].Label)
			assert.Equal(t, 2.0, series.Points[windowDays-1].Value)
		})
	}
}

func TestBuildDailySeriesZeroFills(t *testing.T) {
	series := BuildDailySeries(nil, 30, fixedNow)
	require.Len(t, series.Points, 30)
	assert.Equal(t, "2026-09-20", series.Points[0].Label)
	for _, p := range series.Points {
		assert.Equal(t, 0.0, p.Value)
	}
}

func TestBuildDailySeriesUsesLocalDayBoundaries(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)
	now := time.Date(2026, time.October, 19, 15, 0, 0, 0, wib)
	events := []models.ActivityEvent{
		// 23:30 local on the 18th.
		{StudentID: "s1", OccurredAt: time.Date(2026, time.October, 18, 16, 30, 0, 0, time.UTC)},
		// 00:30 local on the 19th.
		{StudentID: "s2", OccurredAt: time.Date(2026, time.October, 18, 17, 30, 0, 0, time.UTC)},
	}
	series := BuildDailySeries(events, 2, now)
	require.Len(t, series.Points, 2)
	assert.Equal(t, models.TimeSeriesPoint{Label: "2026-10-18", Value: 1}, series.Points[0])
	assert.Equal(t, models.TimeSeriesPoint{Label: "2026-10-19", Value: 1}, series.Points[1])
}

func TestBuildDailySeriesNonPositiveWindow(t *testing.T) {
	series := BuildDailySeries([]models.ActivityEvent{{StudentID: "s1", OccurredAt: fixedNow}}, 0, fixedNow)
	assert.NotNil(t, series.Points)
	assert.Empty(t, series.Points)
}

func TestBuildTermSeries(t *testing.T) {
	grade5 := ptrString("Grade 5")
	events := []models.ScoreEvent{
		{CohortKey: grade5, Kind: models.ScoreKindQuiz, Score: models.ScorePair{Earned: 40, Max: 100}, RecordedAt: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)},
		{CohortKey: grade5, Kind: models.ScoreKindAssignment, Score: models.ScorePair{Earned: 8, Max: 10}, RecordedAt: time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)},
		{CohortKey: grade5, Kind: models.ScoreKindCourseGrade, Score: models.ScorePair{Earned: 90, Max: 100}, RecordedAt: time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC)},
		{CohortKey: grade5, Kind: models.ScoreKindQuiz, Score: models.ScorePair{Earned: 70, Max: 100}, RecordedAt: time.Date(2025, 12, 31, 9, 0, 0, 0, time.UTC)},
		{CohortKey: grade5, Kind: models.ScoreKindQuiz, Score: models.ScorePair{Earned: 3, Max: 0}, RecordedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)},
		{CohortKey: grade5, Kind: models.ScoreKindQuiz, Score: models.ScorePair{Earned: 12, Max: 10}, RecordedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)},
		{Kind: models.ScoreKindQuiz, Score: models.ScorePair{Earned: 5, Max: 10}, RecordedAt: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)},
	}

	series := BuildTermSeries(events, 4, fixedNow)
	require.Len(t, series, 2)

	g5 := series["Grade 5"]
	require.Len(t, g5.Points, 5)
	assert.Equal(t, []string{"Q1 2026", "Q2 2026", "Q3 2026", "Q4 2026", CurrentTermLabel}, g5.Labels())
	assert.Equal(t, []float64{60, 0, 0, 90, 90}, g5.Values())

	unassigned := series[models.UnassignedCohort]
	assert.Equal(t, []float64{0, 0, 50, 0, 0}, unassigned.Values())
}

func TestBuildTermSeriesClampsTermCount(t *testing.T) {
	events := []models.ScoreEvent{{Score: models.ScorePair{Earned: 1, Max: 2}, RecordedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}}

	short := BuildTermSeries(events, 2, fixedNow)[models.UnassignedCohort]
	assert.Equal(t, []string{"Q1 2026", "Q2 2026", CurrentTermLabel}, short.Labels())

	full := BuildTermSeries(events, 9, fixedNow)[models.UnassignedCohort]
	assert.Len(t, full.Points, 5)
}

func TestEmptyTermSeries(t *testing.T) {
	series := EmptyTermSeries(4, fixedNow)
	assert.Len(t, series.Labels(), 5)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, series.Values())
}
