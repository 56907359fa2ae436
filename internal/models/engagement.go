package models

import "time"

// UnassignedCohort is the bucket for students without a grade level.
const UnassignedCohort = "Unassigned"

// NeverActiveDays is reported as days since last activity for students with no recorded activity.
const NeverActiveDays = 999

// EngagementLevel classifies interaction volume.
type EngagementLevel string

const (
	EngagementHigh     EngagementLevel = "high"
	EngagementModerate EngagementLevel = "moderate"
	EngagementLow      EngagementLevel = "low"
)

// ScoreKind identifies the origin of a score.
type ScoreKind string

const (
	ScoreKindCourseGrade ScoreKind = "course_grade"
	ScoreKindQuiz        ScoreKind = "quiz"
	ScoreKindAssignment  ScoreKind = "assignment"
)

// ScorePair is an earned/max score couple.
type ScorePair struct {
	Earned float64 `db:"earned" json:"earned"`
	Max    float64 `db:"max_score" json:"max"`
}

// Percent returns the score as a percentage. ok is false when Max <= 0.
func (p ScorePair) Percent() (float64, bool) {
	if p.Max <= 0 {
		return 0, false
	}
	return p.Earned / p.Max * 100, true
}

// StudentFactRecord holds the raw facts of one student within one tenant over a window.
type StudentFactRecord struct {
	StudentID            string      `json:"student_id"`
	FullName             string      `json:"full_name"`
	Email                string      `json:"email"`
	CohortKey            *string     `json:"cohort_key,omitempty"`
	TotalInteractions    int         `json:"total_interactions"`
	CourseVisits         int         `json:"course_visits"`
	ActivitiesCompleted  int         `json:"activities_completed"`
	QuizScores           []ScorePair `json:"quiz_scores"`
	AssignmentScores     []ScorePair `json:"assignment_scores"`
	CourseGradePercent   *float64    `json:"course_grade_percent,omitempty"`
	TotalCoursesEnrolled int         `json:"total_courses_enrolled"`
	CoursesCompleted     int         `json:"courses_completed"`
	LastActivityAt       *time.Time  `json:"last_activity_at,omitempty"`
	AccountCreatedAt     time.Time   `json:"account_created_at"`
}

// StudentMetrics is derived from a StudentFactRecord; it is never persisted.
type StudentMetrics struct {
	StudentID                 string          `json:"student_id"`
	FullName                  string          `json:"full_name"`
	Email                     string          `json:"email"`
	CohortKey                 string          `json:"cohort_key"`
	TotalInteractions         int             `json:"total_interactions"`
	CoursesEnrolled           int             `json:"courses_enrolled"`
	CoursesCompleted          int             `json:"courses_completed"`
	EstimatedTimeSpentMinutes int             `json:"estimated_time_spent_minutes"`
	EngagementLevel           EngagementLevel `json:"engagement_level"`
	AtRisk                    bool            `json:"at_risk"`
	Active                    bool            `json:"active"`
	PerformanceScore          *float64        `json:"performance_score"`
	HighestScore              float64         `json:"highest_score"`
	LowestScore               float64         `json:"lowest_score"`
	CompletionRatePercent     float64         `json:"completion_rate_percent"`
	DaysSinceLastActivity     int             `json:"days_since_last_activity"`
}

// CohortSummary folds every StudentMetrics sharing a cohort key.
type CohortSummary struct {
	CohortKey               string  `json:"cohort_key"`
	StudentCount            int     `json:"student_count"`
	ActiveCount             int     `json:"active_count"`
	AtRiskCount             int     `json:"at_risk_count"`
	HighEngagement          int     `json:"high_engagement"`
	ModerateEngagement      int     `json:"moderate_engagement"`
	LowEngagement           int     `json:"low_engagement"`
	AveragePerformanceScore float64 `json:"average_performance_score"`
	HighestScore            float64 `json:"highest_score"`
	LowestScore             float64 `json:"lowest_score"`
	AverageCompletionRate   float64 `json:"average_completion_rate"`
}

// TimeSeriesPoint is a single labelled bucket.
type TimeSeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// TimeSeries is a fixed-length, gap-free sequence of buckets.
type TimeSeries struct {
	Points []TimeSeriesPoint `json:"points"`
}

// Labels returns bucket labels in order.
func (s TimeSeries) Labels() []string {
	labels := make([]string, len(s.Points))
	for i, p := range s.Points {
		labels[i] = p.Label
	}
	return labels
}

// Values returns bucket values in order.
func (s TimeSeries) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// ActivityEvent is one logged student interaction.
type ActivityEvent struct {
	StudentID  string    `db:"student_id" json:"student_id"`
	OccurredAt time.Time `db:"occurred_at" json:"occurred_at"`
}

// ScoreEvent is a timestamped score used for term trends.
type ScoreEvent struct {
	StudentID  string    `json:"student_id"`
	CohortKey  *string   `json:"cohort_key,omitempty"`
	Kind       ScoreKind `json:"kind"`
	Score      ScorePair `json:"score"`
	RecordedAt time.Time `json:"recorded_at"`
}

// FactQuery scopes a raw fact read to one tenant and window.
type FactQuery struct {
	TenantID      string
	ActivitySince time.Time
	ScoresSince   time.Time
	Until         time.Time
}

// FactSnapshot is the result of one atomic fact read.
type FactSnapshot struct {
	TenantID string              `json:"tenant_id"`
	Records  []StudentFactRecord `json:"records"`
	Activity []ActivityEvent     `json:"activity"`
	Scores   []ScoreEvent        `json:"scores"`
	ReadAt   time.Time           `json:"read_at"`
}

// Empty reports whether the snapshot holds no students.
func (s *FactSnapshot) Empty() bool {
	return s == nil || len(s.Records) == 0
}
