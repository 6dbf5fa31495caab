// Package engine implements the academic results computations: grade
// resolution against a configurable scale, cohort ranking, term and
// session aggregation, promotion decisions and report assembly. Every
// function is pure and deterministic; data access is injected by the
// caller.
package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/smsup/results-engine/internal/models"
	appErrors "github.com/smsup/results-engine/pkg/errors"
)

// ResolveGrade maps a score to the scale band containing it. The score is
// rounded to the nearest integer and bands are scanned in descending
// RangeStart order with inclusive bounds. A score that no band covers is
// a configuration problem, not an "F": callers get a typed error and can
// tell a computed fail grade from a broken scale.
func ResolveGrade(score float64, scale []models.GradeScaleEntry) (models.GradeScaleEntry, error) {
	if len(scale) == 0 {
		return models.GradeScaleEntry{}, appErrors.Clone(appErrors.ErrScaleMisconfigured, "grade scale is empty")
	}

	rounded := math.Round(score)

	sorted := make([]models.GradeScaleEntry, len(scale))
	copy(sorted, scale)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RangeStart > sorted[j].RangeStart })

	for _, entry := range sorted {
		if rounded >= entry.RangeStart && rounded <= entry.RangeEnd {
			return entry, nil
		}
	}

	return models.GradeScaleEntry{}, appErrors.Clone(appErrors.ErrScaleMisconfigured,
		fmt.Sprintf("no grade band covers score %.1f", score))
}

// ValidateScale checks that a scale is non-empty, that every band is
// well-formed, that bands do not overlap, and that rounded scores over
// [0,100] are all covered. Seams narrower than one point (e.g. 49.9 to
// 50) are fine because resolution happens on rounded integers.
func ValidateScale(scale []models.GradeScaleEntry) error {
	if len(scale) == 0 {
		return appErrors.Clone(appErrors.ErrScaleMisconfigured, "grade scale is empty")
	}

	sorted := make([]models.GradeScaleEntry, len(scale))
	copy(sorted, scale)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RangeStart < sorted[j].RangeStart })

	for _, entry := range sorted {
		if entry.Grade == "" {
			return appErrors.Clone(appErrors.ErrScaleMisconfigured, "grade band missing grade label")
		}
		if entry.RangeEnd < entry.RangeStart {
			return appErrors.Clone(appErrors.ErrScaleMisconfigured,
				fmt.Sprintf("band %s has range end %.1f below range start %.1f", entry.Grade, entry.RangeEnd, entry.RangeStart))
		}
	}

	if sorted[0].RangeStart > 0 {
		return appErrors.Clone(appErrors.ErrScaleMisconfigured, "grade scale does not cover score 0")
	}
	if sorted[len(sorted)-1].RangeEnd < 100 {
		return appErrors.Clone(appErrors.ErrScaleMisconfigured, "grade scale does not cover score 100")
	}

	for i := 1; i < len(sorted); i++ {
		prev, next := sorted[i-1], sorted[i]
		if next.RangeStart <= prev.RangeEnd {
			return appErrors.Clone(appErrors.ErrScaleMisconfigured,
				fmt.Sprintf("bands %s and %s overlap", prev.Grade, next.Grade))
		}
		if next.RangeStart-prev.RangeEnd > 1 {
			return appErrors.Clone(appErrors.ErrScaleMisconfigured,
				fmt.Sprintf("gap between bands %s and %s", prev.Grade, next.Grade))
		}
	}

	return nil
}
