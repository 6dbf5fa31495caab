package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/smsup/results-engine/internal/engine"
	"github.com/smsup/results-engine/internal/models"
	appErrors "github.com/smsup/results-engine/pkg/errors"
)

type scoreRepository interface {
	Upsert(ctx context.Context, record *models.SubjectScoreRecord) error
	BulkUpsert(ctx context.Context, records []models.SubjectScoreRecord) error
	List(ctx context.Context, filter models.ScoreFilter) ([]models.SubjectScoreRecord, error)
}

// UpsertScoreRequest captures one subject score entry.
type UpsertScoreRequest struct {
	StudentID   string      `json:"student_id" validate:"required"`
	SubjectID   string      `json:"subject_id" validate:"required"`
	SubjectName string      `json:"subject_name" validate:"required"`
	Term        models.Term `json:"term" validate:"required,min=1,max=3"`
	Session     string      `json:"session" validate:"required"`
	FirstCA     float64     `json:"first_ca" validate:"min=0,max=20"`
	SecondCA    float64     `json:"second_ca" validate:"min=0,max=20"`
	Exam        float64     `json:"exam" validate:"min=0,max=60"`
	EnteredBy   string      `json:"entered_by"`
}

// BulkUpsertScoresRequest writes a batch of score entries atomically.
type BulkUpsertScoresRequest struct {
	Scores []UpsertScoreRequest `json:"scores" validate:"required,min=1,dive"`
}

// ScoreService manages raw score entry. Writing a score invalidates any
// cached report for the student so stale report cards are never served.
type ScoreService struct {
	repo      scoreRepository
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScoreService constructs service.
func NewScoreService(repo scoreRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ScoreService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Upsert writes one score record after component range checks.
func (s *ScoreService) Upsert(ctx context.Context, req UpsertScoreRequest) (*models.SubjectScoreRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score payload")
	}
	record, err := s.toRecord(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store score")
	}
	s.invalidateReports(ctx, record.StudentID)
	return record, nil
}

// BulkUpsert stores a batch of score records in one transaction. The
// whole batch is range-checked up front so a partial write never happens.
func (s *ScoreService) BulkUpsert(ctx context.Context, req BulkUpsertScoresRequest) ([]models.SubjectScoreRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk score payload")
	}
	records := make([]models.SubjectScoreRecord, len(req.Scores))
	for i, entry := range req.Scores {
		record, err := s.toRecord(entry)
		if err != nil {
			appErr := appErrors.FromError(err)
			return nil, appErrors.Wrap(err, appErr.Code, appErr.Status, fmt.Sprintf("entry %d: %s", i, appErr.Message))
		}
		records[i] = *record
	}
	if err := s.repo.BulkUpsert(ctx, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store scores")
	}
	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		if _, ok := seen[record.StudentID]; ok {
			continue
		}
		seen[record.StudentID] = struct{}{}
		s.invalidateReports(ctx, record.StudentID)
	}
	return records, nil
}

// List returns stored score records matching the filter.
func (s *ScoreService) List(ctx context.Context, filter models.ScoreFilter) ([]models.SubjectScoreRecord, error) {
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scores")
	}
	return records, nil
}

func (s *ScoreService) invalidateReports(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("report:%s:*", studentID)); err != nil {
		s.logger.Warn("failed to invalidate cached reports after score write", zap.String("student_id", studentID), zap.Error(err))
	}
}

func (s *ScoreService) toRecord(req UpsertScoreRequest) (*models.SubjectScoreRecord, error) {
	if _, err := engine.TermTotal(req.FirstCA, req.SecondCA, req.Exam); err != nil {
		return nil, err
	}
	return &models.SubjectScoreRecord{
		StudentID:   req.StudentID,
		SubjectID:   req.SubjectID,
		SubjectName: req.SubjectName,
		Term:        req.Term,
		Session:     req.Session,
		FirstCA:     req.FirstCA,
		SecondCA:    req.SecondCA,
		Exam:        req.Exam,
		EnteredBy:   req.EnteredBy,
	}, nil
}
