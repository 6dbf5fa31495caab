package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smsup/results-engine/internal/models"
	appErrors "github.com/smsup/results-engine/pkg/errors"
)

func TestResolveGradeBoundaries(t *testing.T) {
	scale := models.DefaultGradeScale()

	cases := []struct {
		score float64
		grade string
	}{
		{95, "A+"},
		{90, "A"},
		{89, "A-"},
		{85, "A-"},
		{80, "B+"},
		{70, "B"},
		{60, "C"},
		{50, "D"},
		{49, "F"},
		{0, "F"},
		{100, "A+"},
	}
	for _, tc := range cases {
		band, err := ResolveGrade(tc.score, scale)
		require.NoError(t, err, "score %.1f", tc.score)
		assert.Equal(t, tc.grade, band.Grade, "score %.1f", tc.score)
	}
}

func TestResolveGradeRemark(t *testing.T) {
	band, err := ResolveGrade(85, models.DefaultGradeScale())
	require.NoError(t, err)
	assert.Equal(t, "A-", band.Grade)
	assert.Equal(t, "EXCELLENT", band.Remark)
}

func TestResolveGradeRoundsScore(t *testing.T) {
	scale := models.DefaultGradeScale()

	band, err := ResolveGrade(89.6, scale)
	require.NoError(t, err)
	assert.Equal(t, "A", band.Grade)

	band, err = ResolveGrade(89.4, scale)
	require.NoError(t, err)
	assert.Equal(t, "A-", band.Grade)
}

func TestResolveGradeMonotonic(t *testing.T) {
	scale := models.DefaultGradeScale()

	prevStart := -1.0
	for score := 0.0; score <= 100; score++ {
		band, err := ResolveGrade(score, scale)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, band.RangeStart, prevStart, "score %.0f", score)
		prevStart = band.RangeStart
	}
}

func TestResolveGradeMisconfiguredScale(t *testing.T) {
	_, err := ResolveGrade(50, nil)
	assert.True(t, appErrors.Is(err, appErrors.ErrScaleMisconfigured))

	// Negative scores fall outside every band; that is a loud error, not
	// a defaulted fail grade.
	_, err = ResolveGrade(-10, models.DefaultGradeScale())
	assert.True(t, appErrors.Is(err, appErrors.ErrScaleMisconfigured))
}

func TestValidateScale(t *testing.T) {
	require.NoError(t, ValidateScale(models.DefaultGradeScale()))

	assert.True(t, appErrors.Is(ValidateScale(nil), appErrors.ErrScaleMisconfigured))

	overlapping := []models.GradeScaleEntry{
		{Grade: "A", RangeStart: 50, RangeEnd: 100},
		{Grade: "F", RangeStart: 0, RangeEnd: 55},
	}
	assert.True(t, appErrors.Is(ValidateScale(overlapping), appErrors.ErrScaleMisconfigured))

	gapped := []models.GradeScaleEntry{
		{Grade: "A", RangeStart: 60, RangeEnd: 100},
		{Grade: "F", RangeStart: 0, RangeEnd: 40},
	}
	assert.True(t, appErrors.Is(ValidateScale(gapped), appErrors.ErrScaleMisconfigured))

	uncovered := []models.GradeScaleEntry{
		{Grade: "A", RangeStart: 50, RangeEnd: 90},
		{Grade: "F", RangeStart: 0, RangeEnd: 49.9},
	}
	assert.True(t, appErrors.Is(ValidateScale(uncovered), appErrors.ErrScaleMisconfigured))
}
