package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/smsup/results-engine/internal/models"
)

// StudentRepository reads student records and class membership.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns one student with class info.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT s.id, s.admission_no, s.full_name, s.gender, s.birth_date, s.class_id, c.name AS class_name, s.active, s.created_at, s.updated_at
        FROM students s JOIN classes c ON c.id = s.class_id WHERE s.id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// List returns students matching the filter with a total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := ` FROM students s JOIN classes c ON c.id = s.class_id WHERE 1=1`
	args := []interface{}{}
	idx := 1
	if filter.ClassID != "" {
		base += fmt.Sprintf(" AND s.class_id = $%d", idx)
		args = append(args, filter.ClassID)
		idx++
	}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND (s.full_name ILIKE $%d OR s.admission_no ILIKE $%d)", idx, idx)
		args = append(args, "%"+filter.Search+"%")
		idx++
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := `SELECT s.id, s.admission_no, s.full_name, s.gender, s.birth_date, s.class_id, c.name AS class_name, s.active, s.created_at, s.updated_at` +
		base + fmt.Sprintf(" ORDER BY s.full_name LIMIT %d OFFSET %d", pageSize, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := `SELECT COUNT(*)` + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}
