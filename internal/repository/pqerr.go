package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Constraint names backing the uniqueness invariants. Checks in the service
// layer run first; these map the race window between check and write to the
// same conflict the check would have reported.
const (
	constraintAccountsUsername   = "accounts_username_key"
	constraintStudentsEmail      = "students_email_key"
	constraintInstructorsEmail   = "instructors_email_key"
	constraintCoursesCode        = "courses_code_key"
	constraintSectionsCourseLbl  = "sections_course_id_label_key"
	constraintEnrollStudentSect  = "enrollments_student_id_section_id_key"
	constraintEnrollStudentCrs   = "enrollments_student_id_course_id_key"
	constraintSubmissionsNatural = "submissions_assignment_id_student_id_key"
)

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
