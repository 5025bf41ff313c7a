package models

import "time"

// Course is a catalog entry identified by a unique code.
type Course struct {
	ID          int64     `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Section is one scheduled offering of a course. InstructorID stays NULL
// until an instructor is assigned; (course_id, label) is unique.
type Section struct {
	ID           int64     `db:"id" json:"id"`
	CourseID     int64     `db:"course_id" json:"course_id"`
	Label        string    `db:"label" json:"label"`
	InstructorID *int64    `db:"instructor_id" json:"instructor_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SectionDetail extends Section with course and instructor context.
type SectionDetail struct {
	Section
	CourseCode      string  `db:"course_code" json:"course_code"`
	CourseName      string  `db:"course_name" json:"course_name"`
	InstructorName  *string `db:"instructor_name" json:"instructor_name,omitempty"`
	InstructorEmail *string `db:"instructor_email" json:"instructor_email,omitempty"`
}
