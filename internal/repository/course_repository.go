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

// CourseRepository handles persistence of catalog courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	const query = `SELECT id, code, name, description, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByCode returns a course by its unique code.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	const query = `SELECT id, code, name, description, created_at, updated_at FROM courses WHERE code = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, code); err != nil {
		return nil, err
	}
	return &course, nil
}

// ExistsCode reports whether a course code is already in use.
func (r *CourseRepository) ExistsCode(ctx context.Context, code string) (bool, error) {
	const query = `SELECT 1 FROM courses WHERE code = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course code: %w", err)
	}
	return true, nil
}

// List returns the full catalog ordered by code.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, code, name, description, created_at, updated_at FROM courses ORDER BY code`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// Create persists a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	const query = `INSERT INTO courses (code, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.GetContext(ctx, &course.ID, query,
		course.Code, course.Name, course.Description, course.CreatedAt, course.UpdatedAt); err != nil {
		if isUniqueViolation(err, constraintCoursesCode) {
			return appErrors.Clone(appErrors.ErrDuplicateCourseCode, "")
		}
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

// Update overwrites all course fields. Returns sql.ErrNoRows when the course
// does not exist.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET code = $2, name = $3, description = $4, updated_at = $5 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		course.ID, course.Code, course.Name, course.Description, course.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, constraintCoursesCode) {
			return appErrors.Clone(appErrors.ErrDuplicateCourseCode, "")
		}
		return fmt.Errorf("update course: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
