package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smsup/results-engine/internal/models"
	"github.com/smsup/results-engine/internal/service"
	appErrors "github.com/smsup/results-engine/pkg/errors"
	"github.com/smsup/results-engine/pkg/response"
)

// ScoreHandler exposes score entry endpoints.
type ScoreHandler struct {
	scores *service.ScoreService
}

// NewScoreHandler constructs handler.
func NewScoreHandler(scores *service.ScoreService) *ScoreHandler {
	return &ScoreHandler{scores: scores}
}

// Upsert godoc
// @Summary Record one subject score
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body service.UpsertScoreRequest true "Score payload"
// @Success 201 {object} response.Envelope
// @Router /scores [post]
func (h *ScoreHandler) Upsert(c *gin.Context) {
	var req service.UpsertScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.scores.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// BulkUpsert godoc
// @Summary Record a batch of subject scores
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body service.BulkUpsertScoresRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Router /scores/bulk [post]
func (h *ScoreHandler) BulkUpsert(c *gin.Context) {
	var req service.BulkUpsertScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	records, err := h.scores.BulkUpsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, records)
}

// List godoc
// @Summary List recorded scores
// @Tags Scores
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param subjectId query string false "Filter by subject"
// @Param term query int false "Filter by term (1-3)"
// @Param session query string false "Filter by session"
// @Success 200 {object} response.Envelope
// @Router /scores [get]
func (h *ScoreHandler) List(c *gin.Context) {
	filter := models.ScoreFilter{
		StudentID: c.Query("studentId"),
		SubjectID: c.Query("subjectId"),
		Session:   c.Query("session"),
	}
	if raw := c.Query("term"); raw != "" {
		term, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term query parameter must be an integer"))
			return
		}
		filter.Term = models.Term(term)
	}
	records, err := h.scores.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
