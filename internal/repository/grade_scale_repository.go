package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/smsup/results-engine/internal/models"
)

// GradeScaleRepository manages the school's grade scale bands.
type GradeScaleRepository struct {
	db *sqlx.DB
}

// NewGradeScaleRepository constructs repository.
func NewGradeScaleRepository(db *sqlx.DB) *GradeScaleRepository {
	return &GradeScaleRepository{db: db}
}

// List returns all bands ordered by descending range start, the order
// the resolver scans them in.
func (r *GradeScaleRepository) List(ctx context.Context) ([]models.GradeScaleEntry, error) {
	const query = `SELECT id, grade, range_start, range_end, remark, created_at, updated_at
        FROM grade_scale_entries ORDER BY range_start DESC`
	var entries []models.GradeScaleEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list grade scale: %w", err)
	}
	return entries, nil
}

// Replace swaps the configured scale atomically. The scale is small and
// edited as a whole in the settings screen, so a delete-and-insert inside
// one transaction is simpler than per-band diffing.
func (r *GradeScaleRepository) Replace(ctx context.Context, entries []models.GradeScaleEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM grade_scale_entries`); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("clear grade scale: %w", err)
	}
	const query = `INSERT INTO grade_scale_entries (id, grade, range_start, range_end, remark, created_at, updated_at)
        VALUES (:id, :grade, :range_start, :range_end, :remark, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		entries[i].CreatedAt = now
		entries[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, entries[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert grade band %s: %w", entries[i].Grade, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grade scale: %w", err)
	}
	return nil
}
