package models

import "time"

// Score component bounds. Two continuous-assessment components capped at
// 20 each plus one exam component capped at 60 form a term total of at
// most 100.
const (
	MaxCAScore   = 20.0
	MaxExamScore = 60.0
	MaxTermTotal = 100.0
)

// Term identifies one of the three terms of an academic session.
type Term int

const (
	FirstTerm Term = iota + 1
	SecondTerm
	ThirdTerm
)

// SubjectScoreRecord holds one student's raw score components for one
// subject in one term, as entered by the subject teacher.
type SubjectScoreRecord struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	SubjectName string    `db:"subject_name" json:"subject_name"`
	Term        Term      `db:"term" json:"term"`
	Session     string    `db:"session" json:"session"`
	FirstCA     float64   `db:"first_ca" json:"first_ca"`
	SecondCA    float64   `db:"second_ca" json:"second_ca"`
	Exam        float64   `db:"exam" json:"exam"`
	EnteredBy   string    `db:"entered_by" json:"entered_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ScoreFilter narrows score queries.
type ScoreFilter struct {
	StudentID string
	SubjectID string
	ClassID   string
	Term      Term
	Session   string
}
