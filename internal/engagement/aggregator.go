package engagement

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/sma-engagement-api/internal/models"
)

var firstIntPattern = regexp.MustCompile(`\d+`)

// NormalizeCohortKey trims the label and maps missing or blank keys to models.UnassignedCohort.
// Matching stays case-sensitive.
func NormalizeCohortKey(key *string) string {
	if key == nil {
		return models.UnassignedCohort
	}
	return normalizeCohortLabel(*key)
}

func normalizeCohortLabel(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return models.UnassignedCohort
	}
	return trimmed
}

type cohortAccumulator struct {
	summary     models.CohortSummary
	performance []float64
	highs       []float64
	lows        []float64
	completion  float64
}

// AggregateByCohort folds student metrics into one summary per cohort.
//
// The cohort average performance only counts students with a score, yet falls back to 0 when
// nobody in the cohort has one, unlike the per-student value which stays nil.
func AggregateByCohort(metrics []models.StudentMetrics) map[string]models.CohortSummary {
	acc := make(map[string]*cohortAccumulator)
	for _, m := range metrics {
		key := normalizeCohortLabel(m.CohortKey)
		a, ok := acc[key]
		if !ok {
			a = &cohortAccumulator{summary: models.CohortSummary{CohortKey: key}}
			acc[key] = a
		}
		a.summary.StudentCount++
		if m.Active {
			a.summary.ActiveCount++
		}
		if m.AtRisk {
			a.summary.AtRiskCount++
		}
		switch m.EngagementLevel {
		case models.EngagementHigh:
			a.summary.HighEngagement++
		case models.EngagementModerate:
			a.summary.ModerateEngagement++
		default:
			a.summary.LowEngagement++
		}
		if m.PerformanceScore != nil {
			a.performance = append(a.performance, *m.PerformanceScore)
		}
		a.highs = append(a.highs, m.HighestScore)
		a.lows = append(a.lows, m.LowestScore)
		a.completion += m.CompletionRatePercent
	}

	result := make(map[string]models.CohortSummary, len(acc))
	for key, a := range acc {
		s := a.summary
		s.AveragePerformanceScore = mean(a.performance)
		s.HighestScore, _ = bounds(a.highs)
		_, s.LowestScore = bounds(a.lows)
		if s.StudentCount > 0 {
			s.AverageCompletionRate = a.completion / float64(s.StudentCount)
		}
		result[key] = s
	}
	return result
}

// SortedCohorts orders summaries by the first integer in their label ("Grade 9" before
// "Grade 10"). Labels without a number go last, ordered by label.
func SortedCohorts(summaries map[string]models.CohortSummary) []models.CohortSummary {
	out := make([]models.CohortSummary, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CohortKey < out[j].CohortKey
	})
	SortCohortLabels(out, func(s models.CohortSummary) string { return s.CohortKey })
	return out
}

// SortCohortLabels stable-sorts items by the first integer in their cohort label.
func SortCohortLabels[T any](items []T, label func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ni, okI := CohortOrdinal(label(items[i]))
		nj, okJ := CohortOrdinal(label(items[j]))
		switch {
		case okI && okJ:
			return ni < nj
		case okI != okJ:
			return okI
		default:
			return false
		}
	})
}

// CohortOrdinal extracts the first integer of a cohort label.
func CohortOrdinal(label string) (int, bool) {
	match := firstIntPattern.FindString(label)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}
