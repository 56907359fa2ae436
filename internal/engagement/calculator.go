package engagement

import (
	"math"
	"time"

	"github.com/noah-isme/sma-engagement-api/internal/models"
)

// TimeEstimator converts an interaction count into minutes spent.
type TimeEstimator func(interactions int) int

// EstimateTimeSpentMinutes approximates time on platform from interaction volume. No session
// duration telemetry exists, so each interaction counts for MinutesPerInteraction.
func EstimateTimeSpentMinutes(interactions int) int {
	return int(math.Round(float64(interactions) * MinutesPerInteraction))
}

// Calculator derives StudentMetrics from raw fact records.
type Calculator struct {
	thresholds Thresholds
	estimate   TimeEstimator
}

// NewCalculator builds a calculator. A nil estimator falls back to EstimateTimeSpentMinutes.
func NewCalculator(thresholds Thresholds, estimate TimeEstimator) *Calculator {
	if estimate == nil {
		estimate = EstimateTimeSpentMinutes
	}
	return &Calculator{thresholds: thresholds, estimate: estimate}
}

// Thresholds exposes the cut-offs in use.
func (c *Calculator) Thresholds() Thresholds {
	return c.thresholds
}

// ComputeMetrics validates the record and derives its metrics relative to now.
func (c *Calculator) ComputeMetrics(record models.StudentFactRecord, now time.Time) (models.StudentMetrics, error) {
	if err := ValidateRecord(record); err != nil {
		return models.StudentMetrics{}, err
	}

	minutes := c.estimate(record.TotalInteractions)
	days := DaysSinceLastActivity(record.LastActivityAt, now)
	pool := PooledScores(record)

	metrics := models.StudentMetrics{
		StudentID:                 record.StudentID,
		FullName:                  record.FullName,
		Email:                     record.Email,
		CohortKey:                 NormalizeCohortKey(record.CohortKey),
		TotalInteractions:         record.TotalInteractions,
		CoursesEnrolled:           record.TotalCoursesEnrolled,
		CoursesCompleted:          record.CoursesCompleted,
		EstimatedTimeSpentMinutes: minutes,
		EngagementLevel:           c.thresholds.ClassifyEngagement(minutes, record.TotalInteractions),
		AtRisk:                    c.thresholds.IsAtRisk(days, record.TotalInteractions),
		Active:                    c.thresholds.IsActive(days, record.TotalInteractions),
		PerformanceScore:          meanOrNil(pool),
		CompletionRatePercent:     CompletionRate(record.CoursesCompleted, record.TotalCoursesEnrolled),
		DaysSinceLastActivity:     days,
	}
	metrics.HighestScore, metrics.LowestScore = bounds(pool)
	return metrics, nil
}

// ComputeAll derives metrics for every valid record and collects the rejected ones.
func (c *Calculator) ComputeAll(records []models.StudentFactRecord, now time.Time) ([]models.StudentMetrics, []SkippedRecord) {
	metrics := make([]models.StudentMetrics, 0, len(records))
	var skipped []SkippedRecord
	for _, record := range records {
		m, err := c.ComputeMetrics(record, now)
		if err != nil {
			skipped = append(skipped, SkippedRecord{StudentID: record.StudentID, Reason: err.Error()})
			continue
		}
		metrics = append(metrics, m)
	}
	return metrics, skipped
}

// PooledScores gathers the course grade and every quiz and assignment percentage. Pairs with
// Max <= 0 are left out.
func PooledScores(record models.StudentFactRecord) []float64 {
	pool := make([]float64, 0, 1+len(record.QuizScores)+len(record.AssignmentScores))
	if record.CourseGradePercent != nil {
		pool = append(pool, *record.CourseGradePercent)
	}
	for _, pairs := range [][]models.ScorePair{record.QuizScores, record.AssignmentScores} {
		for _, p := range pairs {
			if pct, ok := p.Percent(); ok {
				pool = append(pool, pct)
			}
		}
	}
	return pool
}

// CompletionRate is completed/enrolled as a percentage rounded to one decimal.
func CompletionRate(completed, enrolled int) float64 {
	if enrolled <= 0 {
		return 0
	}
	return roundTo(float64(completed)/float64(enrolled)*100, 1)
}

// DaysSinceLastActivity counts whole days since last. Missing activity yields NeverActiveDays;
// a timestamp after now counts as today.
func DaysSinceLastActivity(last *time.Time, now time.Time) int {
	if last == nil {
		return models.NeverActiveDays
	}
	elapsed := now.Sub(*last)
	if elapsed < 0 {
		return 0
	}
	return int(math.Floor(elapsed.Hours() / 24))
}

func meanOrNil(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	avg := mean(values)
	return &avg
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// bounds returns max and min, both 0 for an empty slice.
func bounds(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	hi, lo := values[0], values[0]
	for _, v := range values[1:] {
		if v > hi {
			hi = v
		}
		if v < lo {
			lo = v
		}
	}
	return hi, lo
}

func roundTo(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
