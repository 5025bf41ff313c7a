package models

import "time"

// Enrollment captures a student's membership in one section of one course.
// Both (student_id, section_id) and (student_id, course_id) are unique.
type Enrollment struct {
	ID        int64     `db:"id" json:"id"`
	StudentID int64     `db:"student_id" json:"student_id"`
	CourseID  int64     `db:"course_id" json:"course_id"`
	SectionID int64     `db:"section_id" json:"section_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// EnrollmentDetail enriches Enrollment with names for presentation.
type EnrollmentDetail struct {
	Enrollment
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
	CourseCode   string `db:"course_code" json:"course_code"`
	CourseName   string `db:"course_name" json:"course_name"`
	SectionLabel string `db:"section_label" json:"section_label"`
}
