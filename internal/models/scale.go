package models

import "time"

// GradeScaleEntry is one band of the school-configurable grading scale.
// Bands are expected to be non-overlapping and to cover [0,100]; the
// engine validates this before resolving any grade.
type GradeScaleEntry struct {
	ID         string    `db:"id" json:"id"`
	Grade      string    `db:"grade" json:"grade"`
	RangeStart float64   `db:"range_start" json:"range_start"`
	RangeEnd   float64   `db:"range_end" json:"range_end"`
	Remark     string    `db:"remark" json:"remark"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultGradeScale is the 8-band scale seeded for new schools.
func DefaultGradeScale() []GradeScaleEntry {
	return []GradeScaleEntry{
		{Grade: "A+", RangeStart: 95, RangeEnd: 100, Remark: "DISTINCTION"},
		{Grade: "A", RangeStart: 90, RangeEnd: 94.9, Remark: "EXCELLENT"},
		{Grade: "A-", RangeStart: 85, RangeEnd: 89.9, Remark: "EXCELLENT"},
		{Grade: "B+", RangeStart: 80, RangeEnd: 84.9, Remark: "VERY GOOD"},
		{Grade: "B", RangeStart: 70, RangeEnd: 79.9, Remark: "GOOD"},
		{Grade: "C", RangeStart: 60, RangeEnd: 69.9, Remark: "CREDIT"},
		{Grade: "D", RangeStart: 50, RangeEnd: 59.9, Remark: "PASS"},
		{Grade: "F", RangeStart: 0, RangeEnd: 49.9, Remark: "FAIL"},
	}
}
