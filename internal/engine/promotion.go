package engine

import (
	"strings"

	"github.com/smsup/results-engine/internal/models"
)

// PromotionPolicy is the school-configurable promotion rule set. The
// legacy system hardcoded the core subjects and both thresholds; here
// they arrive from configuration with the same values as defaults.
type PromotionPolicy struct {
	CoreSubjects []string
	PassMark     float64
	PassRatio    float64
}

// DefaultPromotionPolicy mirrors the legacy rule: mathematics and
// english are gating subjects, 50 is the pass mark, and at least half of
// all subjects must be passed.
func DefaultPromotionPolicy() PromotionPolicy {
	return PromotionPolicy{
		CoreSubjects: []string{"MATHEMATICS", "ENGLISH LANGUAGE"},
		PassMark:     50,
		PassRatio:    0.5,
	}
}

// DecidePromotion applies the policy to a student's cognitive rows.
// Every core subject must be present and passed on the current-term
// total; a core subject missing from the row list counts as failed.
// Past the core gate, the share of passed subjects must reach the pass
// ratio. AdvisedToWithdraw is never produced here: the condition that
// should trigger it has no agreed definition.
func DecidePromotion(rows []models.CognitiveRow, policy PromotionPolicy) models.PromotionStatus {
	if len(rows) == 0 {
		return models.NotPromoted
	}

	for _, core := range policy.CoreSubjects {
		row, ok := findSubject(rows, core)
		if !ok || row.ThirdTerm < policy.PassMark {
			return models.NotPromoted
		}
	}

	passed := 0
	for _, row := range rows {
		if row.ThirdTerm >= policy.PassMark {
			passed++
		}
	}
	if float64(passed)/float64(len(rows)) >= policy.PassRatio {
		return models.Promoted
	}
	return models.NotPromoted
}

func findSubject(rows []models.CognitiveRow, name string) (models.CognitiveRow, bool) {
	for _, row := range rows {
		if strings.EqualFold(strings.TrimSpace(row.SubjectName), strings.TrimSpace(name)) {
			return row, true
		}
	}
	return models.CognitiveRow{}, false
}
