package models

import "time"

// PromotionStatus is the advancement verdict stamped on a session report.
type PromotionStatus string

const (
	Promoted    PromotionStatus = "PROMOTED"
	NotPromoted PromotionStatus = "NOT PROMOTED"
	// AdvisedToWithdraw is part of the published report vocabulary but no
	// decider rule produces it yet; the triggering condition was never
	// defined by the school board.
	AdvisedToWithdraw PromotionStatus = "ADVISED TO WITHDRAW"
)

// CognitiveRow is the per-subject computed row of a report card. The
// current-term total always equals FirstCA + SecondCA + Exam and lies in
// [0,100].
type CognitiveRow struct {
	SubjectID      string  `db:"subject_id" json:"subject_id"`
	SubjectName    string  `db:"subject_name" json:"subject_name"`
	FirstCA        float64 `db:"first_ca" json:"first_ca"`
	SecondCA       float64 `db:"second_ca" json:"second_ca"`
	Exam           float64 `db:"exam" json:"exam"`
	FirstTerm      float64 `db:"first_term" json:"first_term"`
	SecondTerm     float64 `db:"second_term" json:"second_term"`
	ThirdTerm      float64 `db:"third_term" json:"third_term"`
	SessionAverage float64 `db:"session_average" json:"session_average"`
	Grade          string  `db:"grade" json:"grade"`
	Remarks        string  `db:"remarks" json:"remarks"`
	SubjPosition   string  `db:"subj_position" json:"subj_position"`
}

// PerformanceSummary aggregates all cognitive rows for one student.
// TotalScoreObtainable is always 100 times the subject count; the
// obtained total sums per-subject session averages.
type PerformanceSummary struct {
	TotalScoreObtainable float64 `json:"total_score_obtainable"`
	TotalScoreObtained   float64 `json:"total_score_obtained"`
	Percentage           float64 `json:"percentage"`
	Grade                string  `json:"grade"`
	Position             string  `json:"position"`
	ClassSize            int     `json:"class_size"`
	ClassAverage         float64 `json:"class_average"`
}

// PersonalData is the student identity block printed on the report head.
type PersonalData struct {
	StudentID   string `json:"student_id"`
	FullName    string `json:"full_name"`
	AdmissionNo string `json:"admission_no"`
	Gender      string `json:"gender"`
	ClassName   string `json:"class_name"`
}

// Attendance is the attendance block supplied by the class teacher.
type Attendance struct {
	TimesSchoolOpened int `json:"times_school_opened"`
	TimesPresent      int `json:"times_present"`
	TimesAbsent       int `json:"times_absent"`
}

// AffectiveRating is a behavioural or psychomotor rating passed through
// to the report unchanged; the engine does not compute these.
type AffectiveRating struct {
	Trait  string `json:"trait"`
	Rating int    `json:"rating"`
}

// SchoolInfo is the school branding block of a report template.
type SchoolInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Motto   string `json:"motto"`
	LogoURL string `json:"logo_url"`
}

// ReportTemplate supplies the static portions of a report card: branding,
// the grading scale in force, the student identity skeleton, attendance
// and the affective/psychomotor ratings. All of it passes through the
// assembler unchanged.
type ReportTemplate struct {
	School            SchoolInfo        `json:"school"`
	PersonalData      PersonalData      `json:"personal_data"`
	Attendance        Attendance        `json:"attendance"`
	AffectiveRatings  []AffectiveRating `json:"affective_ratings"`
	PsychomotorSkills []AffectiveRating `json:"psychomotor_skills"`
	GradeScale        []GradeScaleEntry `json:"grade_scale"`
	TeacherRemark     string            `json:"teacher_remark"`
	HeadRemark        string            `json:"head_remark"`
	Session           string            `json:"session"`
	TermLabel         string            `json:"term_label"`
}

// ReportCardData is the fully assembled report record, built fresh per
// generation call. Persistence and rendering belong to the caller.
type ReportCardData struct {
	ID                string             `json:"id"`
	School            SchoolInfo         `json:"school"`
	PersonalData      PersonalData       `json:"personal_data"`
	Attendance        Attendance         `json:"attendance"`
	Performance       PerformanceSummary `json:"performance"`
	CognitiveRows     []CognitiveRow     `json:"cognitive_rows"`
	AffectiveRatings  []AffectiveRating  `json:"affective_ratings"`
	PsychomotorSkills []AffectiveRating  `json:"psychomotor_skills"`
	GradeScale        []GradeScaleEntry  `json:"grade_scale"`
	TeacherRemark     string             `json:"teacher_remark"`
	HeadRemark        string             `json:"head_remark"`
	PromotionStatus   PromotionStatus    `json:"promotion_status"`
	Session           string             `json:"session"`
	TermLabel         string             `json:"term_label"`
	ReportDate        time.Time          `json:"report_date"`
	NextSessionBegins string             `json:"next_session_begins"`
}
