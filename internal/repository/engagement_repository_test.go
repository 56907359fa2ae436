package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-engagement-api/internal/models"
)

func newEngagementMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var factColumns = []string{"student_id", "full_name", "email", "grade_level", "created_at", "total_interactions", "course_visits",
	"activities_completed", "last_activity_at", "enrolled", "completed", "course_grade_percent"}

func TestEngagementRepositorySnapshot(t *testing.T) {
	db, mock, cleanup := newEngagementMock(t)
	defer cleanup()
	repo := NewEngagementRepository(db)

	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	query := models.FactQuery{
		TenantID:      "tenant-1",
		ActivitySince: time.Date(2026, time.September, 20, 0, 0, 0, 0, time.UTC),
		ScoresSince:   time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		Until:         now,
	}
	created := now.AddDate(-1, 0, 0)
	last := now.AddDate(0, 0, -2)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM students s").
		WithArgs("tenant-1", query.ActivitySince, now).
		WillReturnRows(sqlmock.NewRows(factColumns).
			AddRow("s1", "Ayu", "ayu@school.test", "Grade 5", created, 42, 3, 7, last, 2, 1, 88.5).
			AddRow("s2", "Budi", nil, nil, created, 0, 0, 0, nil, 0, 0, nil))
	mock.ExpectQuery("FROM quiz_attempts").
		WithArgs("tenant-1", now).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "kind", "earned", "max_score", "recorded_at"}).
			AddRow("s1", "quiz", 8.0, 10.0, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)).
			AddRow("s1", "assignment", 45.0, 50.0, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)).
			AddRow("s1", "course_grade", 88.5, 100.0, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)).
			AddRow("ghost", "quiz", 1.0, 2.0, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)))
	mock.ExpectQuery("FROM activity_logs").
		WithArgs("tenant-1", query.ActivitySince, now).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "occurred_at"}).
			AddRow("s1", last))
	mock.ExpectCommit()

	snapshot, err := repo.Snapshot(context.Background(), query)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, snapshot.Records, 2)
	first := snapshot.Records[0]
	assert.Equal(t, "ayu@school.test", first.Email)
	require.NotNil(t, first.CohortKey)
	assert.Equal(t, "Grade 5", *first.CohortKey)
	assert.Equal(t, 42, first.TotalInteractions)
	assert.Equal(t, []models.ScorePair{{Earned: 8, Max: 10}}, first.QuizScores)
	assert.Equal(t, []models.ScorePair{{Earned: 45, Max: 50}}, first.AssignmentScores)
	require.NotNil(t, first.CourseGradePercent)
	assert.Equal(t, 88.5, *first.CourseGradePercent)
	require.NotNil(t, first.LastActivityAt)

	second := snapshot.Records[1]
	assert.Nil(t, second.CohortKey)
	assert.Nil(t, second.LastActivityAt)
	assert.Nil(t, second.CourseGradePercent)
	assert.Empty(t, second.Email)

	require.Len(t, snapshot.Scores, 2)
	assert.Equal(t, models.ScoreKindAssignment, snapshot.Scores[0].Kind)
	assert.Equal(t, models.ScoreKindCourseGrade, snapshot.Scores[1].Kind)
	assert.Equal(t, "Grade 5", *snapshot.Scores[0].CohortKey)

	require.Len(t, snapshot.Activity, 1)
	assert.Equal(t, "tenant-1", snapshot.TenantID)
}

func TestEngagementRepositorySnapshotRollsBack(t *testing.T) {
	db, mock, cleanup := newEngagementMock(t)
	defer cleanup()
	repo := NewEngagementRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM students s").WillReturnRows(sqlmock.NewRows(factColumns))
	mock.ExpectQuery("FROM quiz_attempts").WillReturnError(errors.New("relation missing"))
	mock.ExpectRollback()

	_, err := repo.Snapshot(context.Background(), models.FactQuery{TenantID: "tenant-1", Until: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query student scores")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngagementRepositorySnapshotEmptyTenant(t *testing.T) {
	db, mock, cleanup := newEngagementMock(t)
	defer cleanup()
	repo := NewEngagementRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM students s").WillReturnRows(sqlmock.NewRows(factColumns))
	mock.ExpectQuery("FROM quiz_attempts").WillReturnRows(sqlmock.NewRows([]string{"student_id", "kind", "earned", "max_score", "recorded_at"}))
	mock.ExpectQuery("FROM activity_logs").WillReturnRows(sqlmock.NewRows([]string{"student_id", "occurred_at"}))
	mock.ExpectCommit()

	snapshot, err := repo.Snapshot(context.Background(), models.FactQuery{TenantID: "empty", Until: time.Now()})
	require.NoError(t, err)
	assert.True(t, snapshot.Empty())
	assert.NotNil(t, snapshot.Activity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngagementRepositorySnapshotSkipsUngradedScores(t *testing.T) {
	db, mock, cleanup := newEngagementMock(t)
	defer cleanup()
	repo := NewEngagementRepository(db)

	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	graded := time.Date(2026, time.May, 4, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM students s").
		WillReturnRows(sqlmock.NewRows(factColumns).
			AddRow("s1", "Ayu", nil, "Grade 5", now.AddDate(-1, 0, 0), 5, 1, 1, nil, 1, 0, nil))
	mock.ExpectQuery(`score IS NOT NULL AND max_score IS NOT NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "kind", "earned", "max_score", "recorded_at"}).
			AddRow("s1", "quiz", nil, 10.0, now).
			AddRow("s1", "assignment", 7.0, nil, now).
			AddRow("s1", "quiz", 6.0, 10.0, graded))
	mock.ExpectQuery("FROM activity_logs").WillReturnRows(sqlmock.NewRows([]string{"student_id", "occurred_at"}))
	mock.ExpectCommit()

	snapshot, err := repo.Snapshot(context.Background(), models.FactQuery{TenantID: "tenant-1", Until: now})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, snapshot.Records, 1)
	assert.Equal(t, []models.ScorePair{{Earned: 6, Max: 10}}, snapshot.Records[0].QuizScores)
	assert.Empty(t, snapshot.Records[0].AssignmentScores)
	require.Len(t, snapshot.Scores, 1)
	assert.Equal(t, graded, snapshot.Scores[0].RecordedAt)
}
