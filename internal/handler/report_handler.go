package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smsup/results-engine/internal/models"
	"github.com/smsup/results-engine/internal/service"
	appErrors "github.com/smsup/results-engine/pkg/errors"
	"github.com/smsup/results-engine/pkg/response"
)

// ReportHandler exposes report generation, retrieval and export endpoints.
type ReportHandler struct {
	results *service.ResultService
	exports *service.ExportService
	metrics *service.MetricsService
}

// NewReportHandler constructs handler.
func NewReportHandler(results *service.ResultService, exports *service.ExportService, metrics *service.MetricsService) *ReportHandler {
	return &ReportHandler{results: results, exports: exports, metrics: metrics}
}

// Generate godoc
// @Summary Generate a session report card
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body service.GenerateReportRequest true "Report payload"
// @Success 201 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Generate(c *gin.Context) {
	var req service.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	report, err := h.results.GenerateReport(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordReportGenerated(string(report.PromotionStatus))
	response.Created(c, report)
}

// Get godoc
// @Summary Get a stored session report card
// @Tags Reports
// @Produce json
// @Param studentId path string true "Student ID"
// @Param session query string true "Academic session, e.g. 2024/2025"
// @Success 200 {object} response.Envelope
// @Router /reports/{studentId} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.results.GetReport(c.Request.Context(), c.Param("studentId"), c.Query("session"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Ranking godoc
// @Summary Rank a class by subject or overall average
// @Tags Reports
// @Produce json
// @Param classId path string true "Class ID"
// @Param subjectId query string false "Subject ID; omit for overall averages"
// @Param term query int true "Term (1-3)"
// @Param session query string true "Academic session"
// @Success 200 {object} response.Envelope
// @Router /rankings/{classId} [get]
func (h *ReportHandler) Ranking(c *gin.Context) {
	term, err := strconv.Atoi(c.Query("term"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term query parameter must be an integer"))
		return
	}
	entries, err := h.results.ClassRanking(c.Request.Context(), c.Param("classId"), c.Query("subjectId"), models.Term(term), c.Query("session"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// ExportCSV godoc
// @Summary Download a report card as CSV
// @Tags Reports
// @Produce text/csv
// @Param studentId path string true "Student ID"
// @Param session query string true "Academic session"
// @Success 200 {file} file
// @Router /reports/{studentId}/export/csv [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	result, err := h.exports.ExportReportCSV(c.Request.Context(), c.Param("studentId"), c.Query("session"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, result)
}

// ExportPDF godoc
// @Summary Download a report card as PDF
// @Tags Reports
// @Produce application/pdf
// @Param studentId path string true "Student ID"
// @Param session query string true "Academic session"
// @Success 200 {file} file
// @Router /reports/{studentId}/export/pdf [get]
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	result, err := h.exports.ExportReportPDF(c.Request.Context(), c.Param("studentId"), c.Query("session"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, result)
}

func serveDownload(c *gin.Context, result *service.ExportResult) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
