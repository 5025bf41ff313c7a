package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/opencampus/academ-api/internal/models"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentDetailColumns = `e.id, e.student_id, e.course_id, e.section_id, e.created_at,
        st.first_name || ' ' || st.last_name AS student_name, st.email AS student_email,
        c.code AS course_code, c.name AS course_name, s.label AS section_label`

const enrollmentDetailJoins = `FROM enrollments e
        INNER JOIN students st ON st.id = e.student_id
        INNER JOIN courses c ON c.id = e.course_id
        INNER JOIN sections s ON s.id = e.section_id`

// FindByStudentAndSection returns the enrollment for a (student, section)
// pair.
func (r *EnrollmentRepository) FindByStudentAndSection(ctx context.Context, studentID, sectionID int64) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, section_id, created_at
        FROM enrollments WHERE student_id = $1 AND section_id = $2`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, sectionID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ExistsForCourse reports whether the student holds any enrollment in the
// course, regardless of section.
func (r *EnrollmentRepository) ExistsForCourse(ctx context.Context, studentID, courseID int64) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course enrollment: %w", err)
	}
	return true, nil
}

// Create persists a new enrollment. Unique constraints back the two
// duplicate checks; violations map to the matching conflict kind.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO enrollments (student_id, course_id, section_id, created_at)
        VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.GetContext(ctx, &enrollment.ID, query,
		enrollment.StudentID, enrollment.CourseID, enrollment.SectionID, enrollment.CreatedAt); err != nil {
		if isUniqueViolation(err, constraintEnrollStudentSect) {
			return appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
		}
		if isUniqueViolation(err, constraintEnrollStudentCrs) {
			return appErrors.Clone(appErrors.ErrCourseConflict, "")
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// DeleteByStudentAndSection removes the enrollment matching the natural key.
// Returns sql.ErrNoRows when nothing matched.
func (r *EnrollmentRepository) DeleteByStudentAndSection(ctx context.Context, studentID, sectionID int64) error {
	const query = `DELETE FROM enrollments WHERE student_id = $1 AND section_id = $2`
	result, err := r.db.ExecContext(ctx, query, studentID, sectionID)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByID removes an enrollment by surrogate id.
func (r *EnrollmentRepository) DeleteByID(ctx context.Context, id int64) error {
	const query = `DELETE FROM enrollments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete enrollment by id: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListForStudent returns the student's enrollments with joined names.
func (r *EnrollmentRepository) ListForStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE e.student_id = $1 ORDER BY c.code, s.label`,
		enrollmentDetailColumns, enrollmentDetailJoins)
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// ListForSection returns the section's enrollments with joined names.
func (r *EnrollmentRepository) ListForSection(ctx context.Context, sectionID int64) ([]models.EnrollmentDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE e.section_id = $1 ORDER BY st.last_name, st.first_name`,
		enrollmentDetailColumns, enrollmentDetailJoins)
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, sectionID); err != nil {
		return nil, fmt.Errorf("list section enrollments: %w", err)
	}
	return enrollments, nil
}

// ListAllJoined returns every enrollment with joined names for the admin
// overview.
func (r *EnrollmentRepository) ListAllJoined(ctx context.Context) ([]models.EnrollmentDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s ORDER BY c.code, s.label, st.last_name`,
		enrollmentDetailColumns, enrollmentDetailJoins)
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}
