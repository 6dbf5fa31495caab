package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/smsup/results-engine/internal/models"
)

// ScoreRepository persists raw per-subject score records and answers the
// historical/cohort queries report generation depends on.
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository constructs repository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Upsert writes one score record, replacing any previous entry for the
// same student, subject, term and session.
func (r *ScoreRepository) Upsert(ctx context.Context, record *models.SubjectScoreRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	const query = `INSERT INTO subject_scores (id, student_id, subject_id, subject_name, term, session, first_ca, second_ca, exam, entered_by, created_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :subject_name, :term, :session, :first_ca, :second_ca, :exam, :entered_by, :created_at, :updated_at)
        ON CONFLICT (student_id, subject_id, term, session)
        DO UPDATE SET first_ca = EXCLUDED.first_ca, second_ca = EXCLUDED.second_ca, exam = EXCLUDED.exam, entered_by = EXCLUDED.entered_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

// BulkUpsert writes a batch of score records in one transaction.
func (r *ScoreRepository) BulkUpsert(ctx context.Context, records []models.SubjectScoreRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const query = `INSERT INTO subject_scores (id, student_id, subject_id, subject_name, term, session, first_ca, second_ca, exam, entered_by, created_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :subject_name, :term, :session, :first_ca, :second_ca, :exam, :entered_by, :created_at, :updated_at)
        ON CONFLICT (student_id, subject_id, term, session)
        DO UPDATE SET first_ca = EXCLUDED.first_ca, second_ca = EXCLUDED.second_ca, exam = EXCLUDED.exam, entered_by = EXCLUDED.entered_by, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		if records[i].CreatedAt.IsZero() {
			records[i].CreatedAt = now
		}
		records[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, records[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("bulk upsert score: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scores: %w", err)
	}
	return nil
}

// List returns score records matching the filter.
func (r *ScoreRepository) List(ctx context.Context, filter models.ScoreFilter) ([]models.SubjectScoreRecord, error) {
	query := `SELECT id, student_id, subject_id, subject_name, term, session, first_ca, second_ca, exam, entered_by, created_at, updated_at
        FROM subject_scores WHERE 1=1`
	args := []interface{}{}
	idx := 1
	if filter.StudentID != "" {
		query += fmt.Sprintf(" AND student_id = $%d", idx)
		args = append(args, filter.StudentID)
		idx++
	}
	if filter.SubjectID != "" {
		query += fmt.Sprintf(" AND subject_id = $%d", idx)
		args = append(args, filter.SubjectID)
		idx++
	}
	if filter.Term != 0 {
		query += fmt.Sprintf(" AND term = $%d", idx)
		args = append(args, filter.Term)
		idx++
	}
	if filter.Session != "" {
		query += fmt.Sprintf(" AND session = $%d", idx)
		args = append(args, filter.Session)
		idx++
	}
	query += " ORDER BY subject_name"
	var records []models.SubjectScoreRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return records, nil
}

// HistoricalScore returns the recorded term total for a prior term. The
// boolean reports whether a record exists.
func (r *ScoreRepository) HistoricalScore(ctx context.Context, studentID, subjectID string, term models.Term, session string) (float64, bool, error) {
	const query = `SELECT first_ca + second_ca + exam FROM subject_scores
        WHERE student_id = $1 AND subject_id = $2 AND term = $3 AND session = $4`
	var total float64
	err := r.db.GetContext(ctx, &total, query, studentID, subjectID, term, session)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("historical score: %w", err)
	}
	return total, true, nil
}

// CohortScores returns every classmate's term total for one subject,
// keyed by student ID.
func (r *ScoreRepository) CohortScores(ctx context.Context, classID, subjectID string, term models.Term, session string) (map[string]float64, error) {
	const query = `SELECT sc.student_id, sc.first_ca + sc.second_ca + sc.exam AS total
        FROM subject_scores sc
        JOIN students st ON st.id = sc.student_id
        WHERE st.class_id = $1 AND sc.subject_id = $2 AND sc.term = $3 AND sc.session = $4`
	rows, err := r.db.QueryxContext(ctx, query, classID, subjectID, term, session)
	if err != nil {
		return nil, fmt.Errorf("cohort scores: %w", err)
	}
	defer rows.Close()
	result := make(map[string]float64)
	for rows.Next() {
		var studentID string
		var total float64
		if err := rows.Scan(&studentID, &total); err != nil {
			return nil, fmt.Errorf("scan cohort score: %w", err)
		}
		result[studentID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cohort scores: %w", err)
	}
	return result, nil
}

// CohortOverallAverages returns each classmate's mean term total across
// all subjects, keyed by student ID.
func (r *ScoreRepository) CohortOverallAverages(ctx context.Context, classID string, term models.Term, session string) (map[string]float64, error) {
	const query = `SELECT sc.student_id, AVG(sc.first_ca + sc.second_ca + sc.exam) AS average
        FROM subject_scores sc
        JOIN students st ON st.id = sc.student_id
        WHERE st.class_id = $1 AND sc.term = $2 AND sc.session = $3
        GROUP BY sc.student_id`
	rows, err := r.db.QueryxContext(ctx, query, classID, term, session)
	if err != nil {
		return nil, fmt.Errorf("cohort averages: %w", err)
	}
	defer rows.Close()
	result := make(map[string]float64)
	for rows.Next() {
		var studentID string
		var average float64
		if err := rows.Scan(&studentID, &average); err != nil {
			return nil, fmt.Errorf("scan cohort average: %w", err)
		}
		result[studentID] = average
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cohort averages: %w", err)
	}
	return result, nil
}
