package engagement

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-engagement-api/internal/models"
)

// Placeholder fills cells whose value is missing.
const Placeholder = "N/A"

// Column keys understood by StudentRecord and CohortRecord.
const (
	KeyStudentName        = "student_name"
	KeyEmail              = "email"
	KeyCohort             = "cohort"
	KeyPerformanceScore   = "performance_score"
	KeyHighestScore       = "highest_score"
	KeyLowestScore        = "lowest_score"
	KeyCompletionRate     = "completion_rate"
	KeyCoursesEnrolled    = "courses_enrolled"
	KeyCoursesCompleted   = "courses_completed"
	KeyEngagementLevel    = "engagement_level"
	KeyDaysSinceActivity  = "days_since_last_activity"
	KeyTotalInteractions  = "total_interactions"
	KeyTimeSpentMinutes   = "time_spent_minutes"
	KeyAtRisk             = "at_risk"
	KeyStudentCount       = "student_count"
	KeyActiveCount        = "active_count"
	KeyAtRiskCount        = "at_risk_count"
	KeyAvgPerformance     = "average_performance_score"
	KeyAvgCompletion      = "average_completion_rate"
	KeyHighEngagement     = "high_engagement"
	KeyModerateEngagement = "moderate_engagement"
	KeyLowEngagement      = "low_engagement"
)

// Column maps an internal field key to its external label.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// StudentColumns is the standard per-student report layout.
var StudentColumns = []Column{
	{KeyStudentName, "Student Name"},
	{KeyEmail, "Email"},
	{KeyCohort, "Grade Level"},
	{KeyPerformanceScore, "Performance Score (%)"},
	{KeyHighestScore, "Highest Score (%)"},
	{KeyLowestScore, "Lowest Score (%)"},
	{KeyCompletionRate, "Completion Rate (%)"},
	{KeyCoursesEnrolled, "Courses Enrolled"},
	{KeyCoursesCompleted, "Courses Completed"},
	{KeyEngagementLevel, "Engagement Level"},
	{KeyTimeSpentMinutes, "Time Spent (min)"},
	{KeyDaysSinceActivity, "Days Since Last Login"},
	{KeyTotalInteractions, "Total Interactions"},
}

// CohortColumns is the standard per-grade report layout.
var CohortColumns = []Column{
	{KeyCohort, "Grade Level"},
	{KeyStudentCount, "Students"},
	{KeyActiveCount, "Active Students"},
	{KeyAtRiskCount, "At-Risk Students"},
	{KeyAvgPerformance, "Average Performance Score (%)"},
	{KeyHighestScore, "Highest Score (%)"},
	{KeyLowestScore, "Lowest Score (%)"},
	{KeyAvgCompletion, "Average Completion Rate (%)"},
	{KeyHighEngagement, "High Engagement"},
	{KeyModerateEngagement, "Moderate Engagement"},
	{KeyLowEngagement, "Low Engagement"},
}

// AtRiskColumns lists the fields shown on intervention lists.
var AtRiskColumns = []Column{
	{KeyStudentName, "Student Name"},
	{KeyEmail, "Email"},
	{KeyCohort, "Grade Level"},
	{KeyDaysSinceActivity, "Days Since Last Login"},
	{KeyTotalInteractions, "Total Interactions"},
	{KeyEngagementLevel, "Engagement Level"},
	{KeyPerformanceScore, "Performance Score (%)"},
}

// Record is a keyed bag of values awaiting projection.
type Record map[string]interface{}

// StudentRecord exposes student metrics under the standard column keys.
func StudentRecord(m models.StudentMetrics) Record {
	return Record{
		KeyStudentName:       m.FullName,
		KeyEmail:             m.Email,
		KeyCohort:            m.CohortKey,
		KeyPerformanceScore:  m.PerformanceScore,
		KeyHighestScore:      m.HighestScore,
		KeyLowestScore:       m.LowestScore,
		KeyCompletionRate:    m.CompletionRatePercent,
		KeyCoursesEnrolled:   m.CoursesEnrolled,
		KeyCoursesCompleted:  m.CoursesCompleted,
		KeyEngagementLevel:   m.EngagementLevel,
		KeyTimeSpentMinutes:  m.EstimatedTimeSpentMinutes,
		KeyDaysSinceActivity: m.DaysSinceLastActivity,
		KeyTotalInteractions: m.TotalInteractions,
		KeyAtRisk:            m.AtRisk,
	}
}

// CohortRecord exposes a cohort summary under the standard column keys.
func CohortRecord(s models.CohortSummary) Record {
	return Record{
		KeyCohort:             s.CohortKey,
		KeyStudentCount:       s.StudentCount,
		KeyActiveCount:        s.ActiveCount,
		KeyAtRiskCount:        s.AtRiskCount,
		KeyAvgPerformance:     s.AveragePerformanceScore,
		KeyHighestScore:       s.HighestScore,
		KeyLowestScore:        s.LowestScore,
		KeyAvgCompletion:      s.AverageCompletionRate,
		KeyHighEngagement:     s.HighEngagement,
		KeyModerateEngagement: s.ModerateEngagement,
		KeyLowEngagement:      s.LowEngagement,
	}
}

// Row is an ordered label to value mapping.
type Row struct {
	Labels []string
	Values map[string]string
}

// Get returns the cell for label.
func (r Row) Get(label string) (string, bool) {
	v, ok := r.Values[label]
	return v, ok
}

// MarshalJSON keeps the declared column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, label := range r.Labels {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Values[label])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Table is the flat output handed to rendering and export layers.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Project maps records onto the declared columns. Every column is present in every row.
func Project(records []Record, columns []Column) Table {
	labels := make([]string, len(columns))
	for i, c := range columns {
		labels[i] = c.Label
	}
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		values := make(map[string]string, len(columns))
		for _, c := range columns {
			values[c.Label] = FormatCell(rec[c.Key])
		}
		rows = append(rows, Row{Labels: labels, Values: values})
	}
	return Table{Columns: labels, Rows: rows}
}

// ProjectStudents projects student metrics with the given columns.
func ProjectStudents(metrics []models.StudentMetrics, columns []Column) Table {
	records := make([]Record, len(metrics))
	for i, m := range metrics {
		records[i] = StudentRecord(m)
	}
	return Project(records, columns)
}

// ProjectCohorts projects cohort summaries with the given columns.
func ProjectCohorts(summaries []models.CohortSummary, columns []Column) Table {
	records := make([]Record, len(summaries))
	for i, s := range summaries {
		records[i] = CohortRecord(s)
	}
	return Project(records, columns)
}

// FormatCell renders one value. Floats are rounded to a single decimal here and nowhere else.
func FormatCell(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return Placeholder
	case *float64:
		if v == nil {
			return Placeholder
		}
		return formatFloat(*v)
	case float64:
		return formatFloat(v)
	case int:
		return strconv.Itoa(v)
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case models.EngagementLevel:
		return titleCase(string(v))
	case string:
		return v
	case *string:
		if v == nil {
			return Placeholder
		}
		return *v
	default:
		return fmt.Sprint(v)
	}
}

// ParseNumber reads a numeric cell back. Placeholders report false.
func ParseNumber(cell string) (float64, bool) {
	if cell == "" || cell == Placeholder {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatFloat(v float64) string {
	if !isFinite(v) {
		return Placeholder
	}
	return decimal.NewFromFloat(v).StringFixed(1)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
