package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smsup/results-engine/internal/models"
	"github.com/smsup/results-engine/internal/service"
	"github.com/smsup/results-engine/pkg/response"
)

type scaleRepoStub struct {
	entries []models.GradeScaleEntry
}

func (s *scaleRepoStub) List(ctx context.Context) ([]models.GradeScaleEntry, error) {
	return s.entries, nil
}

func (s *scaleRepoStub) Replace(ctx context.Context, entries []models.GradeScaleEntry) error {
	s.entries = entries
	return nil
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func newScaleHandler() (*ScaleHandler, *scaleRepoStub) {
	repo := &scaleRepoStub{}
	svc := service.NewScaleService(repo, nil, validator.New(), zap.NewNop())
	return NewScaleHandler(svc), repo
}

func TestScaleHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newScaleHandler()

	c, w := newGinContext(http.MethodGet, "/grade-scale", nil)
	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	bands, ok := envelope.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, bands, 8)
}

func TestScaleHandlerUpdateRejectsBrokenScale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newScaleHandler()

	payload, _ := json.Marshal(service.UpdateGradeScaleRequest{Entries: []service.GradeScaleEntryRequest{
		{Grade: "A", RangeStart: 50, RangeEnd: 100, Remark: "GOOD"},
	}})
	c, w := newGinContext(http.MethodPut, "/grade-scale", payload)
	handler.Update(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "SCALE_MISCONFIGURED", envelope.Error.Code)
	assert.Empty(t, repo.entries)
}

func TestScaleHandlerResolve(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newScaleHandler()

	c, w := newGinContext(http.MethodGet, "/grade-scale/resolve?score=85", nil)
	handler.Resolve(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	band, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "A-", band["grade"])
}

func TestScaleHandlerResolveRejectsNonNumeric(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newScaleHandler()

	c, w := newGinContext(http.MethodGet, "/grade-scale/resolve?score=ninety", nil)
	handler.Resolve(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
