package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/smsup/results-engine/internal/engine"
	"github.com/smsup/results-engine/internal/models"
	appErrors "github.com/smsup/results-engine/pkg/errors"
)

type scaleRepository interface {
	List(ctx context.Context) ([]models.GradeScaleEntry, error)
	Replace(ctx context.Context, entries []models.GradeScaleEntry) error
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// GradeScaleEntryRequest captures one band of a scale update payload.
type GradeScaleEntryRequest struct {
	Grade      string  `json:"grade" validate:"required"`
	RangeStart float64 `json:"range_start" validate:"min=0,max=100"`
	RangeEnd   float64 `json:"range_end" validate:"min=0,max=100"`
	Remark     string  `json:"remark" validate:"required"`
}

// UpdateGradeScaleRequest replaces the whole scale atomically. Bands are
// validated as a set before any write happens.
type UpdateGradeScaleRequest struct {
	Entries []GradeScaleEntryRequest `json:"entries" validate:"required,min=1,dive"`
}

// ScaleService manages the school grading scale.
type ScaleService struct {
	repo      scaleRepository
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScaleService constructs service.
func NewScaleService(repo scaleRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ScaleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScaleService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Get returns the configured scale, falling back to the seed scale when
// no school-specific scale has been stored yet.
func (s *ScaleService) Get(ctx context.Context) ([]models.GradeScaleEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade scale")
	}
	if len(entries) == 0 {
		return models.DefaultGradeScale(), nil
	}
	return entries, nil
}

// Update replaces the grading scale. The candidate set must pass full
// scale validation before the stored scale is touched.
func (s *ScaleService) Update(ctx context.Context, req UpdateGradeScaleRequest) ([]models.GradeScaleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade scale payload")
	}
	entries := make([]models.GradeScaleEntry, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = models.GradeScaleEntry{Grade: e.Grade, RangeStart: e.RangeStart, RangeEnd: e.RangeEnd, Remark: e.Remark}
	}
	if err := engine.ValidateScale(entries); err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, entries); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace grade scale")
	}
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "report:*"); err != nil {
			s.logger.Warn("failed to invalidate cached reports after scale update", zap.Error(err))
		}
	}
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade scale")
	}
	return stored, nil
}

// Resolve maps a single score to its band on the current scale.
func (s *ScaleService) Resolve(ctx context.Context, score float64) (models.GradeScaleEntry, error) {
	if score < 0 || score > models.MaxTermTotal {
		return models.GradeScaleEntry{}, appErrors.Clone(appErrors.ErrScoreOutOfRange, "score must lie in [0,100]")
	}
	scale, err := s.Get(ctx)
	if err != nil {
		return models.GradeScaleEntry{}, err
	}
	return engine.ResolveGrade(score, scale)
}
