package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smsup/results-engine/internal/models"
	appErrors "github.com/smsup/results-engine/pkg/errors"
)

type historicalKey struct {
	studentID string
	subjectID string
	term      models.Term
}

type stubScoreSource struct {
	historical map[historicalKey]float64
	cohorts    map[string]map[string]float64
	averages   map[string]float64
}

func (s *stubScoreSource) HistoricalScore(ctx context.Context, studentID, subjectID string, term models.Term) (float64, bool, error) {
	score, ok := s.historical[historicalKey{studentID, subjectID, term}]
	return score, ok, nil
}

func (s *stubScoreSource) CohortScores(ctx context.Context, classID, subjectID string, term models.Term) (map[string]float64, error) {
	return s.cohorts[subjectID], nil
}

func (s *stubScoreSource) CohortOverallAverages(ctx context.Context, classID string, term models.Term) (map[string]float64, error) {
	return s.averages, nil
}

func fixedNow() time.Time {
	return time.Date(2025, 7, 18, 9, 0, 0, 0, time.UTC)
}

func baseTemplate(studentID string) models.ReportTemplate {
	return models.ReportTemplate{
		School:       models.SchoolInfo{Name: "Sunrise College", Motto: "Knowledge and Light"},
		PersonalData: models.PersonalData{StudentID: studentID, FullName: "Aisha Bello", ClassName: "JSS 2A"},
		Attendance:   models.Attendance{TimesSchoolOpened: 120, TimesPresent: 115, TimesAbsent: 5},
		AffectiveRatings: []models.AffectiveRating{
			{Trait: "Punctuality", Rating: 5},
		},
		GradeScale: models.DefaultGradeScale(),
		Session:    "2024/2025",
		TermLabel:  "THIRD TERM",
	}
}

func TestAssemblerGenerateSingleSubject(t *testing.T) {
	source := &stubScoreSource{
		cohorts: map[string]map[string]float64{
			"math": {"stu-1": 85, "stu-2": 70},
		},
		averages: map[string]float64{"stu-1": 85, "stu-2": 70},
	}
	asm := NewAssembler(source, DefaultPromotionPolicy(), "2025-09-08", fixedNow)

	raw := []models.SubjectScoreRecord{
		{StudentID: "stu-1", SubjectID: "math", SubjectName: "Mathematics", FirstCA: 18, SecondCA: 17, Exam: 50},
	}
	report, err := asm.Generate(context.Background(), "class-1", baseTemplate("stu-1"), raw)
	require.NoError(t, err)

	require.Len(t, report.CognitiveRows, 1)
	rw := report.CognitiveRows[0]
	assert.Equal(t, 85.0, rw.ThirdTerm)
	// No history recorded: prior terms fall back to the current total.
	assert.Equal(t, 85.0, rw.FirstTerm)
	assert.Equal(t, 85.0, rw.SecondTerm)
	assert.Equal(t, 85.0, rw.SessionAverage)
	assert.Equal(t, "A-", rw.Grade)
	assert.Equal(t, "EXCELLENT", rw.Remarks)
	assert.Equal(t, "1st", rw.SubjPosition)

	assert.Equal(t, 100.0, report.Performance.TotalScoreObtainable)
	assert.Equal(t, 85.0, report.Performance.TotalScoreObtained)
	assert.Equal(t, 85.0, report.Performance.Percentage)
	assert.Equal(t, "A-", report.Performance.Grade)
	assert.Equal(t, "1st", report.Performance.Position)
	assert.Equal(t, 2, report.Performance.ClassSize)

	// English is a core subject and has no row, so the gate fails.
	assert.Equal(t, models.NotPromoted, report.PromotionStatus)
	assert.Equal(t, fixedNow(), report.ReportDate)
	assert.Equal(t, "2025-09-08", report.NextSessionBegins)
}

func TestAssemblerUsesHistoricalScores(t *testing.T) {
	source := &stubScoreSource{
		historical: map[historicalKey]float64{
			{"stu-1", "math", models.FirstTerm}:  70,
			{"stu-1", "math", models.SecondTerm}: 80,
		},
		cohorts:  map[string]map[string]float64{"math": {"stu-1": 90}},
		averages: map[string]float64{"stu-1": 90},
	}
	asm := NewAssembler(source, DefaultPromotionPolicy(), "", fixedNow)

	raw := []models.SubjectScoreRecord{
		{StudentID: "stu-1", SubjectID: "math", SubjectName: "Mathematics", FirstCA: 20, SecondCA: 18, Exam: 52},
	}
	report, err := asm.Generate(context.Background(), "class-1", baseTemplate("stu-1"), raw)
	require.NoError(t, err)

	rw := report.CognitiveRows[0]
	assert.Equal(t, 70.0, rw.FirstTerm)
	assert.Equal(t, 80.0, rw.SecondTerm)
	assert.Equal(t, 90.0, rw.ThirdTerm)
	assert.Equal(t, 80.0, rw.SessionAverage)
	assert.Equal(t, "B+", rw.Grade)
}

func TestAssemblerDeterministic(t *testing.T) {
	source := &stubScoreSource{
		cohorts:  map[string]map[string]float64{"math": {"stu-1": 85}},
		averages: map[string]float64{"stu-1": 85},
	}
	asm := NewAssembler(source, DefaultPromotionPolicy(), "2025-09-08", fixedNow)
	raw := []models.SubjectScoreRecord{
		{StudentID: "stu-1", SubjectID: "math", SubjectName: "Mathematics", FirstCA: 18, SecondCA: 17, Exam: 50},
	}

	first, err := asm.Generate(context.Background(), "class-1", baseTemplate("stu-1"), raw)
	require.NoError(t, err)
	second, err := asm.Generate(context.Background(), "class-1", baseTemplate("stu-1"), raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAssemblerDoesNotMutateTemplate(t *testing.T) {
	source := &stubScoreSource{
		cohorts:  map[string]map[string]float64{"math": {"stu-1": 85}},
		averages: map[string]float64{"stu-1": 85},
	}
	asm := NewAssembler(source, DefaultPromotionPolicy(), "", fixedNow)
	template := baseTemplate("stu-1")
	raw := []models.SubjectScoreRecord{
		{StudentID: "stu-1", SubjectID: "math", SubjectName: "Mathematics", FirstCA: 18, SecondCA: 17, Exam: 50},
	}

	report, err := asm.Generate(context.Background(), "class-1", template, raw)
	require.NoError(t, err)

	report.GradeScale[0].Grade = "Z"
	report.AffectiveRatings[0].Rating = 1
	assert.Equal(t, "A+", template.GradeScale[0].Grade)
	assert.Equal(t, 5, template.AffectiveRatings[0].Rating)
}

func TestAssemblerErrors(t *testing.T) {
	source := &stubScoreSource{
		cohorts:  map[string]map[string]float64{"math": {"stu-2": 70}},
		averages: map[string]float64{"stu-2": 70},
	}
	asm := NewAssembler(source, DefaultPromotionPolicy(), "", fixedNow)
	template := baseTemplate("stu-1")

	_, err := asm.Generate(context.Background(), "class-1", template, nil)
	assert.True(t, appErrors.Is(err, appErrors.ErrMissingScore))

	raw := []models.SubjectScoreRecord{
		{StudentID: "stu-1", SubjectID: "math", SubjectName: "Mathematics", FirstCA: 18, SecondCA: 17, Exam: 50},
	}
	_, err = asm.Generate(context.Background(), "class-1", template, raw)
	assert.True(t, appErrors.Is(err, appErrors.ErrRanking))

	badTemplate := template
	badTemplate.GradeScale = nil
	_, err = asm.Generate(context.Background(), "class-1", badTemplate, raw)
	assert.True(t, appErrors.Is(err, appErrors.ErrScaleMisconfigured))

	outOfRange := []models.SubjectScoreRecord{
		{StudentID: "stu-1", SubjectID: "math", SubjectName: "Mathematics", FirstCA: 25, SecondCA: 17, Exam: 50},
	}
	_, err = asm.Generate(context.Background(), "class-1", template, outOfRange)
	assert.True(t, appErrors.Is(err, appErrors.ErrScoreOutOfRange))
}
