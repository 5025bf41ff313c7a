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

// SectionRepository handles persistence of course sections.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs the repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// FindByID returns a section by its ID.
func (r *SectionRepository) FindByID(ctx context.Context, id int64) (*models.Section, error) {
	const query = `SELECT id, course_id, label, instructor_id, created_at, updated_at FROM sections WHERE id = $1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// FindByCourseAndLabel returns the section with the given label inside a
// course. (course_id, label) is unique.
func (r *SectionRepository) FindByCourseAndLabel(ctx context.Context, courseID int64, label string) (*models.Section, error) {
	const query = `SELECT id, course_id, label, instructor_id, created_at, updated_at
        FROM sections WHERE course_id = $1 AND label = $2`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, courseID, label); err != nil {
		return nil, err
	}
	return &section, nil
}

// FindByCodeAndLabel resolves a section from a course code and section label.
func (r *SectionRepository) FindByCodeAndLabel(ctx context.Context, courseCode, label string) (*models.Section, error) {
	const query = `SELECT s.id, s.course_id, s.label, s.instructor_id, s.created_at, s.updated_at
        FROM sections s
        INNER JOIN courses c ON c.id = s.course_id
        WHERE c.code = $1 AND s.label = $2`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, courseCode, label); err != nil {
		return nil, err
	}
	return &section, nil
}

// FindForInstructor resolves a section from the instructor, course code and
// label triple used by the coursework endpoints. The inner join on
// instructor_id means unassigned sections never resolve.
func (r *SectionRepository) FindForInstructor(ctx context.Context, instructorID int64, courseCode, label string) (*models.SectionDetail, error) {
	const query = `SELECT s.id, s.course_id, s.label, s.instructor_id, s.created_at, s.updated_at,
        c.code AS course_code, c.name AS course_name,
        i.first_name || ' ' || i.last_name AS instructor_name, i.email AS instructor_email
        FROM sections s
        INNER JOIN courses c ON c.id = s.course_id
        INNER JOIN instructors i ON i.id = s.instructor_id
        WHERE i.id = $1 AND c.code = $2 AND s.label = $3`
	var detail models.SectionDetail
	if err := r.db.GetContext(ctx, &detail, query, instructorID, courseCode, label); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByCourse returns all sections of a course ordered by label.
func (r *SectionRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Section, error) {
	const query = `SELECT id, course_id, label, instructor_id, created_at, updated_at
        FROM sections WHERE course_id = $1 ORDER BY label`
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, courseID); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// Create persists a new section.
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	now := time.Now().UTC()
	section.CreatedAt = now
	section.UpdatedAt = now
	const query = `INSERT INTO sections (course_id, label, instructor_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.GetContext(ctx, &section.ID, query,
		section.CourseID, section.Label, section.InstructorID, section.CreatedAt, section.UpdatedAt); err != nil {
		if isUniqueViolation(err, constraintSectionsCourseLbl) {
			return appErrors.Clone(appErrors.ErrSectionAssigned, "")
		}
		return fmt.Errorf("insert section: %w", err)
	}
	return nil
}

// SetInstructor assigns an instructor to a section only while the slot is
// still empty. The instructor_id IS NULL guard keeps a concurrent assignment
// from being overwritten.
func (r *SectionRepository) SetInstructor(ctx context.Context, id, instructorID int64) error {
	const query = `UPDATE sections SET instructor_id = $2, updated_at = $3
        WHERE id = $1 AND instructor_id IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, instructorID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set section instructor: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrSectionAssigned, "")
	}
	return nil
}

// Update unconditionally overwrites the section. Administrative override
// path; the occupied-instructor rule is not rechecked here.
func (r *SectionRepository) Update(ctx context.Context, section *models.Section) error {
	section.UpdatedAt = time.Now().UTC()
	const query = `UPDATE sections SET course_id = $2, label = $3, instructor_id = $4, updated_at = $5 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		section.ID, section.CourseID, section.Label, section.InstructorID, section.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
