package models

import "time"

// Assignment is a global coursework item; it becomes visible to a section
// through a section_assignments link.
type Assignment struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	DueDate     time.Time `db:"due_date" json:"due_date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SectionAssignment links an assignment to the section whose students must
// complete it.
type SectionAssignment struct {
	SectionID    int64 `db:"section_id" json:"section_id"`
	AssignmentID int64 `db:"assignment_id" json:"assignment_id"`
}

// Submission is a student's answer to an assignment. At most one row exists
// per (assignment_id, student_id); resubmission updates link and date.
type Submission struct {
	ID             int64     `db:"id" json:"id"`
	AssignmentID   int64     `db:"assignment_id" json:"assignment_id"`
	StudentID      int64     `db:"student_id" json:"student_id"`
	SubmissionLink string    `db:"submission_link" json:"submission_link"`
	SubmissionDate time.Time `db:"submission_date" json:"submission_date"`
	Grade          *float64  `db:"grade" json:"grade,omitempty"`
}

// GradeStatus tags the outcome of a grading call.
type GradeStatus string

const (
	GradeStatusGraded       GradeStatus = "GRADED"
	GradeStatusNoSubmission GradeStatus = "NO_SUBMISSION"
)

// GradeOutcome reports the result of updating a grade. A missing submission
// is an expected flow, not an error, so it travels in the success payload.
type GradeOutcome struct {
	Status     GradeStatus `json:"status"`
	Submission *Submission `json:"submission,omitempty"`
}
