package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/sma-engagement-api/internal/models"
)

var tracer = otel.Tracer("github.com/noah-isme/sma-engagement-api/internal/repository")

const studentFactsQuery = `SELECT s.id AS student_id, s.full_name, s.email, s.grade_level, s.created_at,
        COALESCE(a.total_interactions, 0) AS total_interactions,
        COALESCE(a.course_visits, 0) AS course_visits,
        COALESCE(a.activities_completed, 0) AS activities_completed,
        l.last_activity_at,
        COALESCE(e.enrolled, 0) AS enrolled,
        COALESCE(e.completed, 0) AS completed,
        e.course_grade_percent
        FROM students s
        LEFT JOIN (
            SELECT student_id, COUNT(*) AS total_interactions,
                COUNT(DISTINCT course_id) AS course_visits,
                COUNT(*) FILTER (WHERE event_type = 'activity_completed') AS activities_completed
            FROM activity_logs
            WHERE tenant_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
            GROUP BY student_id
        ) a ON a.student_id = s.id
        LEFT JOIN (
            SELECT student_id, MAX(occurred_at) AS last_activity_at
            FROM activity_logs
            WHERE tenant_id = $1 AND occurred_at <= $3
            GROUP BY student_id
        ) l ON l.student_id = s.id
        LEFT JOIN (
            SELECT student_id, COUNT(*) AS enrolled,
                COUNT(*) FILTER (WHERE completed_at IS NOT NULL AND completed_at <= $3) AS completed,
                AVG(final_grade_percent) AS course_grade_percent
            FROM course_enrollments
            WHERE tenant_id = $1
            GROUP BY student_id
        ) e ON e.student_id = s.id
        WHERE s.tenant_id = $1 AND s.active = TRUE
        ORDER BY s.full_name, s.id`

const studentScoresQuery = `SELECT student_id, kind, earned, max_score, recorded_at FROM (
            SELECT student_id, 'quiz' AS kind, score AS earned, max_score, submitted_at AS recorded_at
            FROM quiz_attempts WHERE tenant_id = $1 AND score IS NOT NULL AND max_score IS NOT NULL AND submitted_at <= $2
            UNION ALL
            SELECT student_id, 'assignment' AS kind, grade AS earned, max_grade AS max_score, graded_at AS recorded_at
            FROM assignment_submissions WHERE tenant_id = $1 AND grade IS NOT NULL AND max_grade IS NOT NULL AND graded_at <= $2
            UNION ALL
            SELECT student_id, 'course_grade' AS kind, final_grade_percent AS earned, 100 AS max_score, completed_at AS recorded_at
            FROM course_enrollments WHERE tenant_id = $1 AND final_grade_percent IS NOT NULL AND completed_at <= $2
        ) scores ORDER BY recorded_at`

const activityEventsQuery = `SELECT student_id, occurred_at FROM activity_logs
        WHERE tenant_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
        ORDER BY occurred_at`

type studentFactRow struct {
	StudentID           string          `db:"student_id"`
	FullName            string          `db:"full_name"`
	Email               sql.NullString  `db:"email"`
	GradeLevel          sql.NullString  `db:"grade_level"`
	CreatedAt           time.Time       `db:"created_at"`
	TotalInteractions   int             `db:"total_interactions"`
	CourseVisits        int             `db:"course_visits"`
	ActivitiesCompleted int             `db:"activities_completed"`
	LastActivityAt      sql.NullTime    `db:"last_activity_at"`
	Enrolled            int             `db:"enrolled"`
	Completed           int             `db:"completed"`
	CourseGradePercent  sql.NullFloat64 `db:"course_grade_percent"`
}

type scoreRow struct {
	StudentID  string          `db:"student_id"`
	Kind       string          `db:"kind"`
	Earned     sql.NullFloat64 `db:"earned"`
	MaxScore   sql.NullFloat64 `db:"max_score"`
	RecordedAt time.Time       `db:"recorded_at"`
}

// EngagementRepository reads raw engagement facts from Postgres.
type EngagementRepository struct {
	db *sqlx.DB
}

// NewEngagementRepository instantiates the repository.
func NewEngagementRepository(db *sqlx.DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// Snapshot loads student facts, score history and activity events for one tenant inside a single
// read-only repeatable-read transaction, so all three views come from the same database state.
func (r *EngagementRepository) Snapshot(ctx context.Context, query models.FactQuery) (snapshot *models.FactSnapshot, err error) {
	ctx, span := tracer.Start(ctx, "EngagementRepository.Snapshot")
	defer span.End()
	span.SetAttributes(attribute.String("tenant.id", query.TenantID))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "snapshot failed")
		}
	}()

	until := query.Until
	if until.IsZero() {
		until = time.Now()
	}

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin engagement snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var facts []studentFactRow
	if err = tx.SelectContext(ctx, &facts, studentFactsQuery, query.TenantID, query.ActivitySince, until); err != nil {
		return nil, fmt.Errorf("query student facts: %w", err)
	}

	var scores []scoreRow
	if err = tx.SelectContext(ctx, &scores, studentScoresQuery, query.TenantID, until); err != nil {
		return nil, fmt.Errorf("query student scores: %w", err)
	}

	var activity []models.ActivityEvent
	if err = tx.SelectContext(ctx, &activity, activityEventsQuery, query.TenantID, query.ActivitySince, until); err != nil {
		return nil, fmt.Errorf("query activity events: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit engagement snapshot: %w", err)
	}

	snapshot = assembleSnapshot(query, facts, scores, activity)
	span.SetAttributes(
		attribute.Int("students", len(snapshot.Records)),
		attribute.Int("activity_events", len(snapshot.Activity)),
		attribute.Int("score_events", len(snapshot.Scores)),
	)
	return snapshot, nil
}

func assembleSnapshot(query models.FactQuery, facts []studentFactRow, scores []scoreRow, activity []models.ActivityEvent) *models.FactSnapshot {
	records := make([]models.StudentFactRecord, 0, len(facts))
	index := make(map[string]int, len(facts))
	for _, row := range facts {
		record := models.StudentFactRecord{
			StudentID:            row.StudentID,
			FullName:             row.FullName,
			Email:                row.Email.String,
			TotalInteractions:    row.TotalInteractions,
			CourseVisits:         row.CourseVisits,
			ActivitiesCompleted:  row.ActivitiesCompleted,
			TotalCoursesEnrolled: row.Enrolled,
			CoursesCompleted:     row.Completed,
			AccountCreatedAt:     row.CreatedAt,
		}
		if row.GradeLevel.Valid {
			grade := row.GradeLevel.String
			record.CohortKey = &grade
		}
		if row.LastActivityAt.Valid {
			last := row.LastActivityAt.Time
			record.LastActivityAt = &last
		}
		if row.CourseGradePercent.Valid {
			grade := row.CourseGradePercent.Float64
			record.CourseGradePercent = &grade
		}
		index[row.StudentID] = len(records)
		records = append(records, record)
	}

	events := make([]models.ScoreEvent, 0, len(scores))
	for _, row := range scores {
		i, ok := index[row.StudentID]
		if !ok || !row.Earned.Valid || !row.MaxScore.Valid {
			continue
		}
		pair := models.ScorePair{Earned: row.Earned.Float64, Max: row.MaxScore.Float64}
		kind := models.ScoreKind(strings.ToLower(row.Kind))
		switch kind {
		case models.ScoreKindQuiz:
			records[i].QuizScores = append(records[i].QuizScores, pair)
		case models.ScoreKindAssignment:
			records[i].AssignmentScores = append(records[i].AssignmentScores, pair)
		}
		if !query.ScoresSince.IsZero() && row.RecordedAt.Before(query.ScoresSince) {
			continue
		}
		events = append(events, models.ScoreEvent{
			StudentID:  row.StudentID,
			CohortKey:  records[i].CohortKey,
			Kind:       kind,
			Score:      pair,
			RecordedAt: row.RecordedAt,
		})
	}

	if activity == nil {
		activity = []models.ActivityEvent{}
	}
	return &models.FactSnapshot{
		TenantID: query.TenantID,
		Records:  records,
		Activity: activity,
		Scores:   events,
		ReadAt:   time.Now().UTC(),
	}
}
