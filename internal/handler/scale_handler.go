package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smsup/results-engine/internal/service"
	appErrors "github.com/smsup/results-engine/pkg/errors"
	"github.com/smsup/results-engine/pkg/response"
)

// ScaleHandler exposes grading scale endpoints.
type ScaleHandler struct {
	scales *service.ScaleService
}

// NewScaleHandler constructs handler.
func NewScaleHandler(scales *service.ScaleService) *ScaleHandler {
	return &ScaleHandler{scales: scales}
}

// Get godoc
// @Summary Get the grading scale
// @Tags Grade Scale
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grade-scale [get]
func (h *ScaleHandler) Get(c *gin.Context) {
	scale, err := h.scales.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scale, nil)
}

// Update godoc
// @Summary Replace the grading scale
// @Tags Grade Scale
// @Accept json
// @Produce json
// @Param payload body service.UpdateGradeScaleRequest true "Scale payload"
// @Success 200 {object} response.Envelope
// @Router /grade-scale [put]
func (h *ScaleHandler) Update(c *gin.Context) {
	var req service.UpdateGradeScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	scale, err := h.scales.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scale, nil)
}

// Resolve godoc
// @Summary Resolve a score to its grade band
// @Tags Grade Scale
// @Produce json
// @Param score query number true "Score in [0,100]"
// @Success 200 {object} response.Envelope
// @Router /grade-scale/resolve [get]
func (h *ScaleHandler) Resolve(c *gin.Context) {
	score, err := strconv.ParseFloat(c.Query("score"), 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "score query parameter must be a number"))
		return
	}
	band, err := h.scales.Resolve(c.Request.Context(), score)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, band, nil)
}
