package engine

import (
	"fmt"

	"github.com/smsup/results-engine/internal/models"
	appErrors "github.com/smsup/results-engine/pkg/errors"
)

// TermTotal sums the two continuous-assessment components and the exam
// component into a term total. Components left at zero simply contribute
// nothing; components outside their declared sub-range are rejected
// rather than clamped.
func TermTotal(firstCA, secondCA, exam float64) (float64, error) {
	if err := checkComponent("first CA", firstCA, models.MaxCAScore); err != nil {
		return 0, err
	}
	if err := checkComponent("second CA", secondCA, models.MaxCAScore); err != nil {
		return 0, err
	}
	if err := checkComponent("exam", exam, models.MaxExamScore); err != nil {
		return 0, err
	}
	return firstCA + secondCA + exam, nil
}

// SessionAverage is the arithmetic mean of the three term totals of an
// academic session.
func SessionAverage(firstTerm, secondTerm, thirdTerm float64) float64 {
	return (firstTerm + secondTerm + thirdTerm) / 3
}

func checkComponent(name string, value, max float64) error {
	if value < 0 || value > max {
		return appErrors.Clone(appErrors.ErrScoreOutOfRange,
			fmt.Sprintf("%s score %.1f outside [0,%.0f]", name, value, max))
	}
	return nil
}
