package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/opencampus/academ-api/internal/models"
)

// RosterRepository serves the read-only join views consumed by the
// presentation layer.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs the repository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// CourseMap returns every assigned course+section+instructor line.
func (r *RosterRepository) CourseMap(ctx context.Context) ([]models.CourseMapRow, error) {
	const query = `SELECT c.id AS course_id, c.code AS course_code, c.name AS course_name,
        s.id AS section_id, s.label AS section_label,
        i.id AS instructor_id, i.first_name || ' ' || i.last_name AS instructor_name, i.email AS instructor_email
        FROM courses c
        INNER JOIN sections s ON s.course_id = c.id
        INNER JOIN instructors i ON i.id = s.instructor_id
        ORDER BY c.id, s.id`
	var rows []models.CourseMapRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load course map: %w", err)
	}
	return rows, nil
}

// DashboardRows returns the flat rows behind a student's dashboard: each
// enrolled course+section left-joined against its linked assignments so
// courses without coursework still appear.
func (r *RosterRepository) DashboardRows(ctx context.Context, studentID int64) ([]models.DashboardRow, error) {
	const query = `SELECT c.id AS course_id, c.code AS course_code, c.name AS course_name, c.description,
        s.id AS section_id, s.label AS section_label,
        i.first_name || ' ' || i.last_name AS instructor_name, i.email AS instructor_email,
        a.id AS assignment_id, a.name AS assignment_name, a.due_date AS assignment_due
        FROM enrollments e
        INNER JOIN sections s ON s.id = e.section_id
        INNER JOIN courses c ON c.id = s.course_id
        INNER JOIN instructors i ON i.id = s.instructor_id
        LEFT JOIN section_assignments sa ON sa.section_id = s.id
        LEFT JOIN assignments a ON a.id = sa.assignment_id
        WHERE e.student_id = $1
        ORDER BY c.name, a.due_date`
	var rows []models.DashboardRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("load dashboard rows: %w", err)
	}
	return rows, nil
}

// GradebookRows pairs every enrolled student of the section with their
// submission per linked assignment. The left join keeps students without a
// submission row visible with NULL submission fields.
func (r *RosterRepository) GradebookRows(ctx context.Context, sectionID int64) ([]models.GradebookRow, error) {
	const query = `SELECT a.id AS assignment_id, a.name AS assignment_name,
        st.id AS student_id, st.first_name || ' ' || st.last_name AS student_name,
        sub.id AS submission_id, sub.submission_link, sub.submission_date, sub.grade
        FROM section_assignments sa
        INNER JOIN assignments a ON a.id = sa.assignment_id
        INNER JOIN enrollments e ON e.section_id = sa.section_id
        INNER JOIN students st ON st.id = e.student_id
        LEFT JOIN submissions sub ON sub.assignment_id = a.id AND sub.student_id = st.id
        WHERE sa.section_id = $1
        ORDER BY a.due_date, a.id, st.last_name, st.first_name`
	var rows []models.GradebookRow
	if err := r.db.SelectContext(ctx, &rows, query, sectionID); err != nil {
		return nil, fmt.Errorf("load gradebook rows: %w", err)
	}
	return rows, nil
}

// RosterStudents returns the students enrolled in a section ordered by name.
func (r *RosterRepository) RosterStudents(ctx context.Context, courseID, sectionID int64) ([]models.RosterStudent, error) {
	const query = `SELECT st.id AS student_id, st.first_name, st.last_name, st.email
        FROM enrollments e
        INNER JOIN students st ON st.id = e.student_id
        WHERE e.course_id = $1 AND e.section_id = $2
        ORDER BY st.last_name, st.first_name`
	var students []models.RosterStudent
	if err := r.db.SelectContext(ctx, &students, query, courseID, sectionID); err != nil {
		return nil, fmt.Errorf("load section roster: %w", err)
	}
	return students, nil
}
