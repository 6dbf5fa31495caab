package engine

import (
	"fmt"
	"math"

	appErrors "github.com/smsup/results-engine/pkg/errors"
)

// scoreEpsilon absorbs float noise when matching a student's score
// against the cohort distribution.
const scoreEpsilon = 1e-9

// RankStudent returns the student's ordinal position ("1st", "2nd", ...)
// within the cohort score distribution. Standard competition ranking:
// equal scores share the same rank and the next distinct score is offset
// by the tie count. The cohort must contain the student's own score;
// a missing score is an error, never a silent last place.
func RankStudent(allScores []float64, studentScore float64) (string, error) {
	rank, err := CompetitionRank(allScores, studentScore)
	if err != nil {
		return "", err
	}
	return Ordinal(rank), nil
}

// CompetitionRank returns the 1-based competition rank of studentScore
// within allScores.
func CompetitionRank(allScores []float64, studentScore float64) (int, error) {
	if len(allScores) == 0 {
		return 0, appErrors.Clone(appErrors.ErrRanking, "cohort score distribution is empty")
	}

	found := false
	higher := 0
	for _, score := range allScores {
		if math.Abs(score-studentScore) <= scoreEpsilon {
			found = true
			continue
		}
		if score > studentScore {
			higher++
		}
	}
	if !found {
		return 0, appErrors.Clone(appErrors.ErrRanking,
			fmt.Sprintf("student score %.2f not present in cohort of %d", studentScore, len(allScores)))
	}

	return higher + 1, nil
}

// Ordinal renders a 1-based rank with its English suffix, honouring the
// 11th/12th/13th exception.
func Ordinal(n int) string {
	if v := n % 100; v >= 11 && v <= 13 {
		return fmt.Sprintf("%dth", n)
	}
	switch n % 10 {
	case 1:
		return fmt.Sprintf("%dst", n)
	case 2:
		return fmt.Sprintf("%dnd", n)
	case 3:
		return fmt.Sprintf("%drd", n)
	default:
		return fmt.Sprintf("%dth", n)
	}
}
