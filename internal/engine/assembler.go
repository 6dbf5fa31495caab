package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/smsup/results-engine/internal/models"
	appErrors "github.com/smsup/results-engine/pkg/errors"
)

// ScoreSource supplies the historical and cohort data the assembler
// needs. The legacy system synthesised both with random placeholders;
// injecting them keeps the assembler deterministic and testable while
// real stores are swapped in behind the interface.
type ScoreSource interface {
	// HistoricalScore returns a student's recorded term total for a prior
	// term. The boolean reports whether a record exists.
	HistoricalScore(ctx context.Context, studentID, subjectID string, term models.Term) (float64, bool, error)
	// CohortScores returns current-term totals for every student in the
	// class taking the subject, keyed by student ID.
	CohortScores(ctx context.Context, classID, subjectID string, term models.Term) (map[string]float64, error)
	// CohortOverallAverages returns each student's mean current-term
	// total across all subjects, keyed by student ID.
	CohortOverallAverages(ctx context.Context, classID string, term models.Term) (map[string]float64, error)
}

// Assembler builds fully populated report cards from a template, raw
// score records and injected score sources. It never mutates its inputs
// and produces identical output for identical input.
type Assembler struct {
	scores            ScoreSource
	policy            PromotionPolicy
	nextSessionBegins string
	now               func() time.Time
}

// NewAssembler constructs an assembler. A zero policy falls back to the
// default promotion rules; now defaults to time.Now.
func NewAssembler(scores ScoreSource, policy PromotionPolicy, nextSessionBegins string, now func() time.Time) *Assembler {
	if len(policy.CoreSubjects) == 0 && policy.PassMark == 0 && policy.PassRatio == 0 {
		policy = DefaultPromotionPolicy()
	}
	if now == nil {
		now = time.Now
	}
	return &Assembler{scores: scores, policy: policy, nextSessionBegins: nextSessionBegins, now: now}
}

// Generate assembles the report card for one student. Missing score
// records, a misconfigured scale or a cohort that does not contain the
// student all fail loudly; nothing is defaulted silently.
func (a *Assembler) Generate(ctx context.Context, classID string, template models.ReportTemplate, raw []models.SubjectScoreRecord) (*models.ReportCardData, error) {
	if len(raw) == 0 {
		return nil, appErrors.Clone(appErrors.ErrMissingScore, "no score records supplied for report generation")
	}
	if err := ValidateScale(template.GradeScale); err != nil {
		return nil, err
	}

	studentID := template.PersonalData.StudentID
	rows := make([]models.CognitiveRow, 0, len(raw))
	sessionSum := 0.0

	for _, record := range raw {
		row, err := a.buildRow(ctx, classID, studentID, template.GradeScale, record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
		sessionSum += row.SessionAverage
	}

	summary, err := a.buildSummary(ctx, classID, studentID, template.GradeScale, rows, sessionSum)
	if err != nil {
		return nil, err
	}

	report := &models.ReportCardData{
		School:            template.School,
		PersonalData:      template.PersonalData,
		Attendance:        template.Attendance,
		Performance:       summary,
		CognitiveRows:     rows,
		AffectiveRatings:  copyRatings(template.AffectiveRatings),
		PsychomotorSkills: copyRatings(template.PsychomotorSkills),
		GradeScale:        copyScale(template.GradeScale),
		TeacherRemark:     template.TeacherRemark,
		HeadRemark:        template.HeadRemark,
		PromotionStatus:   DecidePromotion(rows, a.policy),
		Session:           template.Session,
		TermLabel:         template.TermLabel,
		ReportDate:        a.now().UTC(),
		NextSessionBegins: a.nextSessionBegins,
	}
	return report, nil
}

func (a *Assembler) buildRow(ctx context.Context, classID, studentID string, scale []models.GradeScaleEntry, record models.SubjectScoreRecord) (models.CognitiveRow, error) {
	termTotal, err := TermTotal(record.FirstCA, record.SecondCA, record.Exam)
	if err != nil {
		return models.CognitiveRow{}, appErrors.Wrap(err, appErrors.ErrScoreOutOfRange.Code, appErrors.ErrScoreOutOfRange.Status,
			fmt.Sprintf("invalid score components for subject %s", record.SubjectName))
	}

	firstTerm, err := a.priorTerm(ctx, studentID, record.SubjectID, models.FirstTerm, termTotal)
	if err != nil {
		return models.CognitiveRow{}, err
	}
	secondTerm, err := a.priorTerm(ctx, studentID, record.SubjectID, models.SecondTerm, termTotal)
	if err != nil {
		return models.CognitiveRow{}, err
	}
	sessionAverage := SessionAverage(firstTerm, secondTerm, termTotal)

	band, err := ResolveGrade(sessionAverage, scale)
	if err != nil {
		return models.CognitiveRow{}, err
	}

	cohort, err := a.scores.CohortScores(ctx, classID, record.SubjectID, models.ThirdTerm)
	if err != nil {
		return models.CognitiveRow{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			fmt.Sprintf("failed to load cohort scores for subject %s", record.SubjectName))
	}
	own, ok := cohort[studentID]
	if !ok {
		return models.CognitiveRow{}, appErrors.Clone(appErrors.ErrRanking,
			fmt.Sprintf("student %s missing from cohort for subject %s", studentID, record.SubjectName))
	}
	position, err := RankStudent(mapValues(cohort), own)
	if err != nil {
		return models.CognitiveRow{}, err
	}

	return models.CognitiveRow{
		SubjectID:      record.SubjectID,
		SubjectName:    record.SubjectName,
		FirstCA:        record.FirstCA,
		SecondCA:       record.SecondCA,
		Exam:           record.Exam,
		FirstTerm:      firstTerm,
		SecondTerm:     secondTerm,
		ThirdTerm:      termTotal,
		SessionAverage: sessionAverage,
		Grade:          band.Grade,
		Remarks:        band.Remark,
		SubjPosition:   position,
	}, nil
}

// priorTerm fetches a recorded prior-term total, falling back to the
// current-term total when no history exists (new admissions have no
// earlier terms to average over). Store failures are surfaced, never
// papered over with a synthetic score.
func (a *Assembler) priorTerm(ctx context.Context, studentID, subjectID string, term models.Term, currentTotal float64) (float64, error) {
	score, found, err := a.scores.HistoricalScore(ctx, studentID, subjectID, term)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load historical score")
	}
	if !found {
		return currentTotal, nil
	}
	if score < 0 || score > models.MaxTermTotal {
		return 0, appErrors.Clone(appErrors.ErrScoreOutOfRange,
			fmt.Sprintf("historical term total %.1f outside [0,%.0f]", score, models.MaxTermTotal))
	}
	return score, nil
}

// buildSummary aggregates rows into the performance block. The obtained
// total sums per-subject session averages, so the obtainable total is
// always 100 per subject.
func (a *Assembler) buildSummary(ctx context.Context, classID, studentID string, scale []models.GradeScaleEntry, rows []models.CognitiveRow, sessionSum float64) (models.PerformanceSummary, error) {
	obtainable := models.MaxTermTotal * float64(len(rows))
	percentage := sessionSum / obtainable * 100

	band, err := ResolveGrade(percentage, scale)
	if err != nil {
		return models.PerformanceSummary{}, err
	}

	cohort, err := a.scores.CohortOverallAverages(ctx, classID, models.ThirdTerm)
	if err != nil {
		return models.PerformanceSummary{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cohort averages")
	}
	own, ok := cohort[studentID]
	if !ok {
		return models.PerformanceSummary{}, appErrors.Clone(appErrors.ErrRanking,
			fmt.Sprintf("student %s missing from class average distribution", studentID))
	}
	position, err := RankStudent(mapValues(cohort), own)
	if err != nil {
		return models.PerformanceSummary{}, err
	}

	classAverage := 0.0
	for _, avg := range cohort {
		classAverage += avg
	}
	classAverage /= float64(len(cohort))

	return models.PerformanceSummary{
		TotalScoreObtainable: obtainable,
		TotalScoreObtained:   sessionSum,
		Percentage:           percentage,
		Grade:                band.Grade,
		Position:             position,
		ClassSize:            len(cohort),
		ClassAverage:         classAverage,
	}, nil
}

func mapValues(m map[string]float64) []float64 {
	values := make([]float64, 0, len(m))
	for _, v := range m {
		values = append(values, v)
	}
	return values
}

func copyRatings(ratings []models.AffectiveRating) []models.AffectiveRating {
	if ratings == nil {
		return nil
	}
	out := make([]models.AffectiveRating, len(ratings))
	copy(out, ratings)
	return out
}

func copyScale(scale []models.GradeScaleEntry) []models.GradeScaleEntry {
	out := make([]models.GradeScaleEntry, len(scale))
	copy(out, scale)
	return out
}
