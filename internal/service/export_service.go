package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/smsup/results-engine/internal/models"
	appErrors "github.com/smsup/results-engine/pkg/errors"
	"github.com/smsup/results-engine/pkg/export"
)

type reportProvider interface {
	GetReport(ctx context.Context, studentID, session string) (*models.ReportCardData, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, subtitles ...string) ([]byte, error)
}

// ExportResult carries a rendered document ready for download.
type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ExportService renders stored report cards as downloadable documents.
type ExportService struct {
	reports reportProvider
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewExportService constructs service.
func NewExportService(reports reportProvider, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{reports: reports, csv: csv, pdf: pdf, logger: logger}
}

// ExportReportCSV renders the cognitive table of a stored report as CSV.
func (s *ExportService) ExportReportCSV(ctx context.Context, studentID, session string) (*ExportResult, error) {
	report, err := s.reports.GetReport(ctx, studentID, session)
	if err != nil {
		return nil, err
	}
	content, err := s.csv.Render(cognitiveDataset(report))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return &ExportResult{
		FileName:    exportFileName(report, "csv"),
		ContentType: "text/csv",
		Content:     content,
	}, nil
}

// ExportReportPDF renders a stored report as a printable PDF card.
func (s *ExportService) ExportReportPDF(ctx context.Context, studentID, session string) (*ExportResult, error) {
	report, err := s.reports.GetReport(ctx, studentID, session)
	if err != nil {
		return nil, err
	}
	subtitles := []string{
		fmt.Sprintf("%s (%s) - %s", report.PersonalData.FullName, report.PersonalData.AdmissionNo, report.PersonalData.ClassName),
		fmt.Sprintf("%s, %s session", report.TermLabel, report.Session),
		fmt.Sprintf("Position: %s of %d | Average: %.1f%% | %s",
			report.Performance.Position, report.Performance.ClassSize, report.Performance.Percentage, report.PromotionStatus),
	}
	content, err := s.pdf.Render(cognitiveDataset(report), report.School.Name, subtitles...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return &ExportResult{
		FileName:    exportFileName(report, "pdf"),
		ContentType: "application/pdf",
		Content:     content,
	}, nil
}

func cognitiveDataset(report *models.ReportCardData) export.Dataset {
	headers := []string{"Subject", "1st CA", "2nd CA", "Exam", "1st Term", "2nd Term", "3rd Term", "Avg", "Grade", "Remark", "Position"}
	rows := make([]map[string]string, 0, len(report.CognitiveRows))
	for _, row := range report.CognitiveRows {
		rows = append(rows, map[string]string{
			"Subject":  row.SubjectName,
			"1st CA":   formatScore(row.FirstCA),
			"2nd CA":   formatScore(row.SecondCA),
			"Exam":     formatScore(row.Exam),
			"1st Term": formatScore(row.FirstTerm),
			"2nd Term": formatScore(row.SecondTerm),
			"3rd Term": formatScore(row.ThirdTerm),
			"Avg":      formatScore(row.SessionAverage),
			"Grade":    row.Grade,
			"Remark":   row.Remarks,
			"Position": row.SubjPosition,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func exportFileName(report *models.ReportCardData, ext string) string {
	return fmt.Sprintf("report_%s_%s.%s", report.PersonalData.AdmissionNo, sanitizeSession(report.Session), ext)
}

func sanitizeSession(session string) string {
	out := make([]rune, 0, len(session))
	for _, r := range session {
		if r == '/' || r == '\\' || r == ' ' {
			out = append(out, '-')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
