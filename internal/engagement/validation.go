package engagement

import (
	"fmt"
	"math"

	"github.com/noah-isme/sma-engagement-api/internal/models"
	appErrors "github.com/noah-isme/sma-engagement-api/pkg/errors"
)

// ValidationError describes why a fact record was rejected.
type ValidationError struct {
	StudentID string
	Field     string
	Reason    string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("student %s: %s %s", e.StudentID, e.Field, e.Reason)
}

// Unwrap lets callers match the record failure against appErrors.ErrValidation.
func (e *ValidationError) Unwrap() error {
	return appErrors.ErrValidation
}

// SkippedRecord is a record excluded from a report because it failed validation.
type SkippedRecord struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

// MaxCourseGradePercent is the ceiling for a course grade, the same rule a {grade, 100} pair obeys.
const MaxCourseGradePercent = 100.0

// ValidateRecord rejects negative counts, non-finite numbers and impossible scores. Values are
// never clamped.
func ValidateRecord(record models.StudentFactRecord) error {
	counts := []struct {
		field string
		value int
	}{
		{"total_interactions", record.TotalInteractions},
		{"course_visits", record.CourseVisits},
		{"activities_completed", record.ActivitiesCompleted},
		{"total_courses_enrolled", record.TotalCoursesEnrolled},
		{"courses_completed", record.CoursesCompleted},
	}
	for _, c := range counts {
		if c.value < 0 {
			return &ValidationError{StudentID: record.StudentID, Field: c.field, Reason: fmt.Sprintf("must not be negative (got %d)", c.value)}
		}
	}
	if err := validatePairs(record.StudentID, "quiz_scores", record.QuizScores); err != nil {
		return err
	}
	if err := validatePairs(record.StudentID, "assignment_scores", record.AssignmentScores); err != nil {
		return err
	}
	if record.CourseGradePercent != nil {
		grade := *record.CourseGradePercent
		if reason := validatePair(models.ScorePair{Earned: grade, Max: MaxCourseGradePercent}); reason != "" {
			return &ValidationError{StudentID: record.StudentID, Field: "course_grade_percent", Reason: reason}
		}
	}
	return nil
}

func validatePairs(studentID, field string, pairs []models.ScorePair) error {
	for i, p := range pairs {
		if err := validatePair(p); err != "" {
			return &ValidationError{StudentID: studentID, Field: fmt.Sprintf("%s[%d]", field, i), Reason: err}
		}
	}
	return nil
}

// validatePair checks finiteness and ordering; Max <= 0 is left to the division guard.
func validatePair(p models.ScorePair) string {
	if !isFinite(p.Earned) || !isFinite(p.Max) {
		return fmt.Sprintf("score %g/%g is not a finite number", p.Earned, p.Max)
	}
	if p.Earned < 0 {
		return fmt.Sprintf("earned must not be negative (got %g)", p.Earned)
	}
	if p.Max > 0 && p.Earned > p.Max {
		return fmt.Sprintf("earned %g exceeds max %g", p.Earned, p.Max)
	}
	return ""
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
