package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smsup/results-engine/internal/models"
	"github.com/smsup/results-engine/internal/service"
	"github.com/smsup/results-engine/pkg/config"
	"github.com/smsup/results-engine/pkg/response"
)

type reportStudentStub struct {
	students map[string]*models.Student
}

func (s *reportStudentStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if st, ok := s.students[id]; ok {
		return st, nil
	}
	return nil, sql.ErrNoRows
}

type reportScaleStub struct{}

func (s *reportScaleStub) Get(ctx context.Context) ([]models.GradeScaleEntry, error) {
	return models.DefaultGradeScale(), nil
}

type reportScoreStub struct {
	records  []models.SubjectScoreRecord
	cohorts  map[string]map[string]float64
	averages map[string]float64
}

func (s *reportScoreStub) List(ctx context.Context, filter models.ScoreFilter) ([]models.SubjectScoreRecord, error) {
	out := make([]models.SubjectScoreRecord, 0)
	for _, r := range s.records {
		if filter.StudentID != "" && r.StudentID != filter.StudentID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *reportScoreStub) HistoricalScore(ctx context.Context, studentID, subjectID string, term models.Term, session string) (float64, bool, error) {
	return 0, false, nil
}

func (s *reportScoreStub) CohortScores(ctx context.Context, classID, subjectID string, term models.Term, session string) (map[string]float64, error) {
	return s.cohorts[subjectID], nil
}

func (s *reportScoreStub) CohortOverallAverages(ctx context.Context, classID string, term models.Term, session string) (map[string]float64, error) {
	return s.averages, nil
}

type reportStoreStub struct {
	saved map[string]*models.ReportCardData
}

func (s *reportStoreStub) Save(ctx context.Context, report *models.ReportCardData, term models.Term) error {
	if s.saved == nil {
		s.saved = make(map[string]*models.ReportCardData)
	}
	s.saved[report.PersonalData.StudentID] = report
	return nil
}

func (s *reportStoreStub) FindByStudent(ctx context.Context, studentID string, term models.Term, session string) (*models.ReportCardData, error) {
	if report, ok := s.saved[studentID]; ok {
		return report, nil
	}
	return nil, sql.ErrNoRows
}

func newReportHandler() (*ReportHandler, *reportScoreStub, *reportStoreStub) {
	students := &reportStudentStub{students: map[string]*models.Student{
		"stu-1": {ID: "stu-1", AdmissionNo: "ADM-001", FullName: "Aisha Bello", Gender: "F", ClassID: "class-1", ClassName: "JSS 3A"},
	}}
	scores := &reportScoreStub{
		records: []models.SubjectScoreRecord{
			{StudentID: "stu-1", SubjectID: "math", SubjectName: "Mathematics", Term: models.ThirdTerm, Session: "2024/2025", FirstCA: 18, SecondCA: 17, Exam: 50},
			{StudentID: "stu-1", SubjectID: "eng", SubjectName: "English Language", Term: models.ThirdTerm, Session: "2024/2025", FirstCA: 15, SecondCA: 15, Exam: 40},
		},
		cohorts: map[string]map[string]float64{
			"math": {"stu-1": 85, "stu-2": 70},
			"eng":  {"stu-1": 70, "stu-2": 75},
		},
		averages: map[string]float64{"stu-1": 77.5, "stu-2": 72.5},
	}
	reports := &reportStoreStub{}
	cfg := config.ResultsConfig{
		CoreSubjects:      []string{"MATHEMATICS", "ENGLISH LANGUAGE"},
		PassMark:          50,
		PassRatio:         0.5,
		NextSessionBegins: "2025-09-08",
		CacheTTL:          time.Minute,
	}
	resultSvc := service.NewResultService(students, &reportScaleStub{}, scores, reports, nil, nil, cfg, validator.New(), zap.NewNop())
	return NewReportHandler(resultSvc, nil, service.NewMetricsService()), scores, reports
}

func TestReportHandlerGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, reports := newReportHandler()

	payload, _ := json.Marshal(service.GenerateReportRequest{StudentID: "stu-1", Session: "2024/2025"})
	c, w := newGinContext(http.MethodPost, "/reports", payload)
	handler.Generate(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	report, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, report["id"])
	assert.Contains(t, reports.saved, "stu-1")
}

func TestReportHandlerGenerateNoScores(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, scores, _ := newReportHandler()
	scores.records = nil

	payload, _ := json.Marshal(service.GenerateReportRequest{StudentID: "stu-1", Session: "2024/2025"})
	c, w := newGinContext(http.MethodPost, "/reports", payload)
	handler.Generate(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "MISSING_SCORE", envelope.Error.Code)
}

func TestReportHandlerGenerateRejectsBadPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _ := newReportHandler()

	c, w := newGinContext(http.MethodPost, "/reports", []byte("{not json"))
	handler.Generate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}

func TestReportHandlerRanking(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _ := newReportHandler()

	c, w := newGinContext(http.MethodGet, "/rankings/class-1?subjectId=math&term=3&session=2024/2025", nil)
	c.Params = gin.Params{{Key: "classId", Value: "class-1"}}
	handler.Ranking(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	entries, ok := envelope.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, entries, 2)
	first, ok := entries[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "stu-1", first["student_id"])
	assert.Equal(t, "1st", first["position"])
}

func TestReportHandlerRankingEmptyCohort(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, scores, _ := newReportHandler()
	scores.cohorts = map[string]map[string]float64{}

	c, w := newGinContext(http.MethodGet, "/rankings/class-1?subjectId=math&term=3&session=2024/2025", nil)
	c.Params = gin.Params{{Key: "classId", Value: "class-1"}}
	handler.Ranking(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "RANKING_ERROR", envelope.Error.Code)
}

func TestReportHandlerRankingRejectsNonNumericTerm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _ := newReportHandler()

	c, w := newGinContext(http.MethodGet, "/rankings/class-1?subjectId=math&term=third&session=2024/2025", nil)
	c.Params = gin.Params{{Key: "classId", Value: "class-1"}}
	handler.Ranking(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
