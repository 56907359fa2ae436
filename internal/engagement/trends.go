package engagement

import (
	"fmt"
	"time"

	"github.com/noah-isme/sma-engagement-api/internal/models"
)

const (
	// DayLabelLayout formats daily bucket labels.
	DayLabelLayout = "2006-01-02"
	// CurrentTermLabel names the trailing bucket of a term series.
	CurrentTermLabel = "Current"
	// QuartersPerYear is the number of fixed term buckets.
	QuartersPerYear = 4
)

// BuildDailySeries counts distinct active students per calendar day for windowDays days ending
// on now's day (inclusive). Days are taken in now's location and empty days are kept at 0.
func BuildDailySeries(events []models.ActivityEvent, windowDays int, now time.Time) models.TimeSeries {
	if windowDays <= 0 {
		return models.TimeSeries{Points: []models.TimeSeriesPoint{}}
	}
	loc := now.Location()
	today := startOfDay(now)
	first := today.AddDate(0, 0, -(windowDays - 1))

	seen := make([]map[string]struct{}, windowDays)
	for _, ev := range events {
		day := startOfDay(ev.OccurredAt.In(loc))
		if day.Before(first) || day.After(today) {
			continue
		}
		idx := dayIndex(first, day)
		if idx < 0 || idx >= windowDays {
			continue
		}
		if seen[idx] == nil {
			seen[idx] = make(map[string]struct{})
		}
		seen[idx][ev.StudentID] = struct{}{}
	}

	points := make([]models.TimeSeriesPoint, windowDays)
	for i := 0; i < windowDays; i++ {
		points[i] = models.TimeSeriesPoint{
			Label: first.AddDate(0, 0, i).Format(DayLabelLayout),
			Value: float64(len(seen[i])),
		}
	}
	return models.TimeSeries{Points: points}
}

// termBucket is a half-open [start, end) interval.
type termBucket struct {
	label string
	start time.Time
	end   time.Time
}

func (b termBucket) contains(t time.Time) bool {
	return !t.Before(b.start) && t.Before(b.end)
}

// termBuckets returns the first termCount quarters of now's year followed by the current
// quarter-to-date bucket. termCount is clamped to 1..QuartersPerYear.
func termBuckets(termCount int, now time.Time) []termBucket {
	if termCount <= 0 || termCount > QuartersPerYear {
		termCount = QuartersPerYear
	}
	loc := now.Location()
	year := now.Year()
	buckets := make([]termBucket, 0, termCount+1)
	for q := 0; q < termCount; q++ {
		start := time.Date(year, time.Month(q*3+1), 1, 0, 0, 0, 0, loc)
		buckets = append(buckets, termBucket{
			label: fmt.Sprintf("Q%d %d", q+1, year),
			start: start,
			end:   start.AddDate(0, 3, 0),
		})
	}
	currentStart := time.Date(year, time.Month((int(now.Month())-1)/3*3+1), 1, 0, 0, 0, 0, loc)
	buckets = append(buckets, termBucket{
		label: CurrentTermLabel,
		start: currentStart,
		end:   now.Add(time.Nanosecond),
	})
	return buckets
}

// BuildTermSeries averages pooled score percentages per cohort and term bucket. Pairs with
// Max <= 0 or an earned value ValidateRecord would reject are skipped; empty buckets report 0.
func BuildTermSeries(scoreEvents []models.ScoreEvent, termCount int, now time.Time) map[string]models.TimeSeries {
	buckets := termBuckets(termCount, now)
	sums := make(map[string][]float64)
	counts := make(map[string][]int)

	for _, ev := range scoreEvents {
		if validatePair(ev.Score) != "" {
			continue
		}
		pct, ok := ev.Score.Percent()
		if !ok {
			continue
		}
		key := NormalizeCohortKey(ev.CohortKey)
		if _, exists := sums[key]; !exists {
			sums[key] = make([]float64, len(buckets))
			counts[key] = make([]int, len(buckets))
		}
		at := ev.RecordedAt.In(now.Location())
		for i, b := range buckets {
			if b.contains(at) {
				sums[key][i] += pct
				counts[key][i]++
			}
		}
	}

	result := make(map[string]models.TimeSeries, len(sums))
	for key := range sums {
		points := make([]models.TimeSeriesPoint, len(buckets))
		for i, b := range buckets {
			points[i] = models.TimeSeriesPoint{Label: b.label}
			if counts[key][i] > 0 {
				points[i].Value = sums[key][i] / float64(counts[key][i])
			}
		}
		result[key] = models.TimeSeries{Points: points}
	}
	return result
}

// EmptyTermSeries returns a zero-valued series with the standard term labels.
func EmptyTermSeries(termCount int, now time.Time) models.TimeSeries {
	buckets := termBuckets(termCount, now)
	points := make([]models.TimeSeriesPoint, len(buckets))
	for i, b := range buckets {
		points[i] = models.TimeSeriesPoint{Label: b.label}
	}
	return models.TimeSeries{Points: points}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayIndex counts calendar days between two local midnights, tolerating DST shifts.
func dayIndex(first, day time.Time) int {
	y1, m1, d1 := first.Date()
	y2, m2, d2 := day.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
