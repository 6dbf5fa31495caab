package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smsup/results-engine/internal/engine"
	"github.com/smsup/results-engine/internal/models"
	"github.com/smsup/results-engine/pkg/config"
	appErrors "github.com/smsup/results-engine/pkg/errors"
)

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type scaleProvider interface {
	Get(ctx context.Context) ([]models.GradeScaleEntry, error)
}

type resultScoreStore interface {
	List(ctx context.Context, filter models.ScoreFilter) ([]models.SubjectScoreRecord, error)
	HistoricalScore(ctx context.Context, studentID, subjectID string, term models.Term, session string) (float64, bool, error)
	CohortScores(ctx context.Context, classID, subjectID string, term models.Term, session string) (map[string]float64, error)
	CohortOverallAverages(ctx context.Context, classID string, term models.Term, session string) (map[string]float64, error)
}

type reportStore interface {
	Save(ctx context.Context, report *models.ReportCardData, term models.Term) error
	FindByStudent(ctx context.Context, studentID string, term models.Term, session string) (*models.ReportCardData, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type resultMetrics interface {
	RecordCacheOperation(hit bool, duration time.Duration)
	ObserveDBQuery(label string, duration time.Duration)
}

// GenerateReportRequest captures the inputs a class teacher supplies
// when generating a session report. Identity and computed blocks come
// from stored data; the pass-through blocks arrive here.
type GenerateReportRequest struct {
	StudentID         string                   `json:"student_id" validate:"required"`
	Session           string                   `json:"session" validate:"required"`
	School            models.SchoolInfo        `json:"school"`
	Attendance        models.Attendance        `json:"attendance"`
	AffectiveRatings  []models.AffectiveRating `json:"affective_ratings"`
	PsychomotorSkills []models.AffectiveRating `json:"psychomotor_skills"`
	TeacherRemark     string                   `json:"teacher_remark"`
	HeadRemark        string                   `json:"head_remark"`
}

// ClassRankingEntry is one row of a class ranking listing.
type ClassRankingEntry struct {
	StudentID string  `json:"student_id"`
	Score     float64 `json:"score"`
	Position  string  `json:"position"`
}

// ResultService orchestrates report generation: it gathers stored
// scores, the grading scale and student identity, runs the assembler
// and persists the outcome. Reports are session artifacts generated at
// the end of the third term.
type ResultService struct {
	students          studentReader
	scales            scaleProvider
	scores            resultScoreStore
	reports           reportStore
	cache             reportCache
	metrics           resultMetrics
	policy            engine.PromotionPolicy
	nextSessionBegins string
	cacheTTL          time.Duration
	validator         *validator.Validate
	logger            *zap.Logger
	now               func() time.Time
}

// NewResultService constructs service. The promotion policy and report
// calendar come from configuration.
func NewResultService(students studentReader, scales scaleProvider, scores resultScoreStore, reports reportStore, cache reportCache, metrics resultMetrics, cfg config.ResultsConfig, validate *validator.Validate, logger *zap.Logger) *ResultService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{
		students: students,
		scales:   scales,
		scores:   scores,
		reports:  reports,
		cache:    cache,
		metrics:  metrics,
		policy: engine.PromotionPolicy{
			CoreSubjects: cfg.CoreSubjects,
			PassMark:     cfg.PassMark,
			PassRatio:    cfg.PassRatio,
		},
		nextSessionBegins: cfg.NextSessionBegins,
		cacheTTL:          cfg.CacheTTL,
		validator:         validate,
		logger:            logger,
		now:               time.Now,
	}
}

// GenerateReport assembles, persists and caches the session report for
// one student. Third-term score records are the current-term inputs;
// first and second term history feeds the session averages.
func (s *ResultService) GenerateReport(ctx context.Context, req GenerateReportRequest) (*models.ReportCardData, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report request")
	}

	start := time.Now()
	student, err := s.students.FindByID(ctx, req.StudentID)
	s.observeQuery("student_find", start)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	scale, err := s.scales.Get(ctx)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	raw, err := s.scores.List(ctx, models.ScoreFilter{StudentID: student.ID, Term: models.ThirdTerm, Session: req.Session})
	s.observeQuery("scores_list", start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load score records")
	}
	if len(raw) == 0 {
		return nil, appErrors.Clone(appErrors.ErrMissingScore,
			fmt.Sprintf("no third term scores recorded for student %s in session %s", student.ID, req.Session))
	}

	template := models.ReportTemplate{
		School: req.School,
		PersonalData: models.PersonalData{
			StudentID:   student.ID,
			FullName:    student.FullName,
			AdmissionNo: student.AdmissionNo,
			Gender:      student.Gender,
			ClassName:   student.ClassName,
		},
		Attendance:        req.Attendance,
		AffectiveRatings:  req.AffectiveRatings,
		PsychomotorSkills: req.PsychomotorSkills,
		GradeScale:        scale,
		TeacherRemark:     req.TeacherRemark,
		HeadRemark:        req.HeadRemark,
		Session:           req.Session,
		TermLabel:         termLabel(models.ThirdTerm),
	}

	source := sessionScoreSource{store: s.scores, session: req.Session}
	assembler := engine.NewAssembler(source, s.policy, s.nextSessionBegins, s.now)
	report, err := assembler.Generate(ctx, student.ClassID, template, raw)
	if err != nil {
		return nil, err
	}
	report.ID = uuid.NewString()

	if err := s.reports.Save(ctx, report, models.ThirdTerm); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist report")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, reportCacheKey(student.ID, req.Session), report, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache report", zap.String("student_id", student.ID), zap.Error(err))
		}
	}

	s.logger.Info("report generated",
		zap.String("student_id", student.ID),
		zap.String("session", req.Session),
		zap.String("promotion_status", string(report.PromotionStatus)))
	return report, nil
}

// GetReport returns the stored session report, cache first.
func (s *ResultService) GetReport(ctx context.Context, studentID, session string) (*models.ReportCardData, error) {
	if studentID == "" || session == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id and session are required")
	}

	key := reportCacheKey(studentID, session)
	if s.cache != nil {
		var cached models.ReportCardData
		lookupStart := time.Now()
		err := s.cache.Get(ctx, key, &cached)
		s.recordCacheOp(err == nil, lookupStart)
		if err == nil {
			return &cached, nil
		}
		if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("report cache lookup failed", zap.String("key", key), zap.Error(err))
		}
	}

	start := time.Now()
	report, err := s.reports.FindByStudent(ctx, studentID, models.ThirdTerm, session)
	s.observeQuery("report_find", start)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache report", zap.String("key", key), zap.Error(err))
		}
	}
	return report, nil
}

// ClassRanking returns the ranked score distribution for a class. With a
// subject ID it ranks that subject's term totals; without one it ranks
// each student's mean term total across subjects.
func (s *ResultService) ClassRanking(ctx context.Context, classID, subjectID string, term models.Term, session string) ([]ClassRankingEntry, error) {
	if classID == "" || session == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class id and session are required")
	}
	if term < models.FirstTerm || term > models.ThirdTerm {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term must be 1, 2 or 3")
	}

	var cohort map[string]float64
	var err error
	start := time.Now()
	if subjectID != "" {
		cohort, err = s.scores.CohortScores(ctx, classID, subjectID, term, session)
		s.observeQuery("cohort_scores", start)
	} else {
		cohort, err = s.scores.CohortOverallAverages(ctx, classID, term, session)
		s.observeQuery("cohort_averages", start)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cohort scores")
	}
	if len(cohort) == 0 {
		return nil, appErrors.Clone(appErrors.ErrRanking, "no scores recorded for class")
	}

	scores := make([]float64, 0, len(cohort))
	for _, v := range cohort {
		scores = append(scores, v)
	}

	entries := make([]ClassRankingEntry, 0, len(cohort))
	for studentID, score := range cohort {
		position, err := engine.RankStudent(scores, score)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ClassRankingEntry{StudentID: studentID, Score: score, Position: position})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].StudentID < entries[j].StudentID
	})
	return entries, nil
}

// sessionScoreSource scopes the score store to one academic session so
// the assembler stays session-agnostic.
type sessionScoreSource struct {
	store   resultScoreStore
	session string
}

func (s sessionScoreSource) HistoricalScore(ctx context.Context, studentID, subjectID string, term models.Term) (float64, bool, error) {
	return s.store.HistoricalScore(ctx, studentID, subjectID, term, s.session)
}

func (s sessionScoreSource) CohortScores(ctx context.Context, classID, subjectID string, term models.Term) (map[string]float64, error) {
	return s.store.CohortScores(ctx, classID, subjectID, term, s.session)
}

func (s sessionScoreSource) CohortOverallAverages(ctx context.Context, classID string, term models.Term) (map[string]float64, error) {
	return s.store.CohortOverallAverages(ctx, classID, term, s.session)
}

func (s *ResultService) recordCacheOp(hit bool, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordCacheOperation(hit, time.Since(start))
}

func (s *ResultService) observeQuery(label string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDBQuery(label, time.Since(start))
}

func reportCacheKey(studentID, session string) string {
	return fmt.Sprintf("report:%s:%s", studentID, session)
}

func termLabel(term models.Term) string {
	switch term {
	case models.FirstTerm:
		return "FIRST TERM"
	case models.SecondTerm:
		return "SECOND TERM"
	case models.ThirdTerm:
		return "THIRD TERM"
	default:
		return ""
	}
}
