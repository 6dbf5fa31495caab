package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/smsup/results-engine/internal/models"
)

// ReportRepository stores assembled report cards. The engine itself
// never persists anything; the service hands the finished record here.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

type reportRow struct {
	ID          string    `db:"id"`
	StudentID   string    `db:"student_id"`
	Term        int       `db:"term"`
	Session     string    `db:"session"`
	Payload     []byte    `db:"payload"`
	GeneratedAt time.Time `db:"generated_at"`
}

// Save upserts the generated report for a student/term/session scope.
func (r *ReportRepository) Save(ctx context.Context, report *models.ReportCardData, term models.Term) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	row := reportRow{
		ID:          report.ID,
		StudentID:   report.PersonalData.StudentID,
		Term:        int(term),
		Session:     report.Session,
		Payload:     payload,
		GeneratedAt: report.ReportDate,
	}
	const query = `INSERT INTO report_cards (id, student_id, term, session, payload, generated_at)
        VALUES (:id, :student_id, :term, :session, :payload, :generated_at)
        ON CONFLICT (student_id, term, session)
        DO UPDATE SET id = EXCLUDED.id, payload = EXCLUDED.payload, generated_at = EXCLUDED.generated_at`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// FindByStudent returns the stored report for a student/term/session.
func (r *ReportRepository) FindByStudent(ctx context.Context, studentID string, term models.Term, session string) (*models.ReportCardData, error) {
	const query = `SELECT id, student_id, term, session, payload, generated_at
        FROM report_cards WHERE student_id = $1 AND term = $2 AND session = $3`
	var row reportRow
	if err := r.db.GetContext(ctx, &row, query, studentID, term, session); err != nil {
		return nil, err
	}
	var report models.ReportCardData
	if err := json.Unmarshal(row.Payload, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &report, nil
}
