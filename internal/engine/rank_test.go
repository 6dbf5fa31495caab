package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/smsup/results-engine/pkg/errors"
)

func TestRankStudentDistinctScores(t *testing.T) {
	scores := []float64{72, 91, 55, 88, 63}

	ranks := make(map[string]int)
	for _, score := range scores {
		rank, err := RankStudent(scores, score)
		require.NoError(t, err)
		ranks[rank]++
	}

	// Distinct scores occupy each rank exactly once.
	assert.Equal(t, map[string]int{"1st": 1, "2nd": 1, "3rd": 1, "4th": 1, "5th": 1}, ranks)

	top, err := RankStudent(scores, 91)
	require.NoError(t, err)
	assert.Equal(t, "1st", top)
}

func TestRankStudentTiesShareRank(t *testing.T) {
	scores := []float64{90, 90, 80}

	first, err := RankStudent(scores, 90)
	require.NoError(t, err)
	assert.Equal(t, "1st", first)

	third, err := RankStudent(scores, 80)
	require.NoError(t, err)
	assert.Equal(t, "3rd", third)
}

func TestRankStudentScoreAbsent(t *testing.T) {
	_, err := RankStudent([]float64{90, 80}, 70)
	assert.True(t, appErrors.Is(err, appErrors.ErrRanking))

	_, err = RankStudent(nil, 70)
	assert.True(t, appErrors.Is(err, appErrors.ErrRanking))
}

func TestOrdinal(t *testing.T) {
	cases := map[int]string{
		1:   "1st",
		2:   "2nd",
		3:   "3rd",
		4:   "4th",
		11:  "11th",
		12:  "12th",
		13:  "13th",
		21:  "21st",
		22:  "22nd",
		33:  "33rd",
		111: "111th",
		112: "112th",
		121: "121st",
	}
	for n, want := range cases {
		assert.Equal(t, want, Ordinal(n))
	}
}
