package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smsup/results-engine/internal/models"
	appErrors "github.com/smsup/results-engine/pkg/errors"
	"github.com/smsup/results-engine/pkg/export"
)

type mockReportProvider struct {
	report *models.ReportCardData
}

func (m *mockReportProvider) GetReport(ctx context.Context, studentID, session string) (*models.ReportCardData, error) {
	if m.report == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	return m.report, nil
}

func sampleReport() *models.ReportCardData {
	return &models.ReportCardData{
		ID:     "rep-1",
		School: models.SchoolInfo{Name: "Sunrise Model College"},
		PersonalData: models.PersonalData{
			StudentID:   "stu-1",
			FullName:    "Aisha Bello",
			AdmissionNo: "ADM-001",
			ClassName:   "JSS 3A",
		},
		Performance: models.PerformanceSummary{Position: "1st", ClassSize: 24, Percentage: 85.0},
		CognitiveRows: []models.CognitiveRow{
			{SubjectName: "Mathematics", FirstCA: 18, SecondCA: 17, Exam: 50, FirstTerm: 85, SecondTerm: 85, ThirdTerm: 85, SessionAverage: 85, Grade: "A-", Remarks: "EXCELLENT", SubjPosition: "1st"},
		},
		PromotionStatus: models.Promoted,
		Session:         "2024/2025",
		TermLabel:       "THIRD TERM",
	}
}

func TestExportServiceCSV(t *testing.T) {
	svc := NewExportService(&mockReportProvider{report: sampleReport()}, export.NewCSVExporter(), export.NewPDFExporter(), zap.NewNop())

	result, err := svc.ExportReportCSV(context.Background(), "stu-1", "2024/2025")
	require.NoError(t, err)
	assert.Equal(t, "report_ADM-001_2024-2025.csv", result.FileName)
	assert.Equal(t, "text/csv", result.ContentType)

	content := string(result.Content)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Subject")
	assert.Contains(t, lines[1], "Mathematics")
	assert.Contains(t, lines[1], "A-")
	assert.Contains(t, lines[1], "85.0")
}

func TestExportServicePDF(t *testing.T) {
	svc := NewExportService(&mockReportProvider{report: sampleReport()}, export.NewCSVExporter(), export.NewPDFExporter(), zap.NewNop())

	result, err := svc.ExportReportPDF(context.Background(), "stu-1", "2024/2025")
	require.NoError(t, err)
	assert.Equal(t, "report_ADM-001_2024-2025.pdf", result.FileName)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportServiceReportMissing(t *testing.T) {
	svc := NewExportService(&mockReportProvider{}, export.NewCSVExporter(), export.NewPDFExporter(), zap.NewNop())

	_, err := svc.ExportReportCSV(context.Background(), "stu-1", "2024/2025")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
