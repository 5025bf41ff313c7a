package models

import "time"

// CourseMapRow is one course+section+instructor line of the admin course map.
type CourseMapRow struct {
	CourseID        int64  `db:"course_id" json:"course_id"`
	CourseCode      string `db:"course_code" json:"course_code"`
	CourseName      string `db:"course_name" json:"course_name"`
	SectionID       int64  `db:"section_id" json:"section_id"`
	SectionLabel    string `db:"section_label" json:"section_label"`
	InstructorID    int64  `db:"instructor_id" json:"instructor_id"`
	InstructorName  string `db:"instructor_name" json:"instructor_name"`
	InstructorEmail string `db:"instructor_email" json:"instructor_email"`
}

// DashboardAssignment is the nested assignment summary of a dashboard course.
type DashboardAssignment struct {
	AssignmentID int64     `json:"assignment_id"`
	Name         string    `json:"name"`
	DueDate      time.Time `json:"due_date"`
}

// DashboardCourse groups a student's enrolled course+section with its
// assignments. Courses without assignments carry an empty list.
type DashboardCourse struct {
	CourseID        int64                 `json:"course_id"`
	CourseCode      string                `json:"course_code"`
	CourseName      string                `json:"course_name"`
	Description     string                `json:"description"`
	SectionID       int64                 `json:"section_id"`
	SectionLabel    string                `json:"section_label"`
	InstructorName  string                `json:"instructor_name"`
	InstructorEmail string                `json:"instructor_email"`
	Assignments     []DashboardAssignment `json:"assignments"`
}

// DashboardRow is the flat left-join row the dashboard is grouped from.
type DashboardRow struct {
	CourseID        int64      `db:"course_id"`
	CourseCode      string     `db:"course_code"`
	CourseName      string     `db:"course_name"`
	Description     string     `db:"description"`
	SectionID       int64      `db:"section_id"`
	SectionLabel    string     `db:"section_label"`
	InstructorName  string     `db:"instructor_name"`
	InstructorEmail string     `db:"instructor_email"`
	AssignmentID    *int64     `db:"assignment_id"`
	AssignmentName  *string    `db:"assignment_name"`
	AssignmentDue   *time.Time `db:"assignment_due"`
}

// GradebookRow pairs an enrolled student with their submission for one
// assignment of a section. Submission fields stay NULL when the student has
// not submitted, so "missing" is representable.
type GradebookRow struct {
	AssignmentID   int64      `db:"assignment_id" json:"assignment_id"`
	AssignmentName string     `db:"assignment_name" json:"assignment_name"`
	StudentID      int64      `db:"student_id" json:"student_id"`
	StudentName    string     `db:"student_name" json:"student_name"`
	SubmissionID   *int64     `db:"submission_id" json:"submission_id,omitempty"`
	SubmissionLink *string    `db:"submission_link" json:"submission_link,omitempty"`
	SubmissionDate *time.Time `db:"submission_date" json:"submission_date,omitempty"`
	Grade          *float64   `db:"grade" json:"grade,omitempty"`
}

// RosterStudent is one enrolled student on a section roster.
type RosterStudent struct {
	StudentID int64  `db:"student_id" json:"student_id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
}
