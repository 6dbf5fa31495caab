package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/smsup/results-engine/pkg/errors"
)

func TestTermTotal(t *testing.T) {
	total, err := TermTotal(18, 17, 50)
	require.NoError(t, err)
	assert.Equal(t, 85.0, total)

	// Unentered components stay at zero and contribute nothing.
	total, err = TermTotal(0, 0, 60)
	require.NoError(t, err)
	assert.Equal(t, 60.0, total)
}

func TestTermTotalRejectsOutOfRangeComponents(t *testing.T) {
	_, err := TermTotal(25, 10, 40)
	assert.True(t, appErrors.Is(err, appErrors.ErrScoreOutOfRange))

	_, err = TermTotal(10, -1, 40)
	assert.True(t, appErrors.Is(err, appErrors.ErrScoreOutOfRange))

	_, err = TermTotal(10, 10, 65)
	assert.True(t, appErrors.Is(err, appErrors.ErrScoreOutOfRange))
}

func TestSessionAverage(t *testing.T) {
	assert.Equal(t, 85.0, SessionAverage(85, 85, 85))
	assert.InDelta(t, 80.0, SessionAverage(75, 80, 85), 1e-9)
}
