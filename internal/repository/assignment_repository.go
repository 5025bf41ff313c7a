package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/opencampus/academ-api/internal/models"
)

// AssignmentRepository handles persistence of assignments and their section
// links.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByID returns an assignment by its ID.
func (r *AssignmentRepository) FindByID(ctx context.Context, id int64) (*models.Assignment, error) {
	const query = `SELECT id, name, description, due_date, created_at, updated_at FROM assignments WHERE id = $1`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListBySection returns the assignments linked to a section, due first.
func (r *AssignmentRepository) ListBySection(ctx context.Context, sectionID int64) ([]models.Assignment, error) {
	const query = `SELECT a.id, a.name, a.description, a.due_date, a.created_at, a.updated_at
        FROM assignments a
        INNER JOIN section_assignments sa ON sa.assignment_id = a.id
        WHERE sa.section_id = $1
        ORDER BY a.due_date, a.id`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, sectionID); err != nil {
		return nil, fmt.Errorf("list section assignments: %w", err)
	}
	return assignments, nil
}

// SectionIDForAssignment returns the section an assignment is linked to.
func (r *AssignmentRepository) SectionIDForAssignment(ctx context.Context, assignmentID int64) (int64, error) {
	const query = `SELECT section_id FROM section_assignments WHERE assignment_id = $1`
	var sectionID int64
	if err := r.db.GetContext(ctx, &sectionID, query, assignmentID); err != nil {
		return 0, err
	}
	return sectionID, nil
}

// CreateWithLink inserts the assignment and its section link in one
// transaction so the assignment is never observable without a section.
func (r *AssignmentRepository) CreateWithLink(ctx context.Context, sectionID int64, assignment *models.Assignment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create assignment: %w", err)
	}

	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	const assignmentQuery = `INSERT INTO assignments (name, description, due_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := tx.GetContext(ctx, &assignment.ID, assignmentQuery,
		assignment.Name, assignment.Description, assignment.DueDate, assignment.CreatedAt, assignment.UpdatedAt); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert assignment: %w", err)
	}

	const linkQuery = `INSERT INTO section_assignments (section_id, assignment_id) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, linkQuery, sectionID, assignment.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert section assignment link: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create assignment: %w", err)
	}
	return nil
}

// Update overwrites the assignment fields; section links stay untouched.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	assignment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assignments SET name = $2, description = $3, due_date = $4, updated_at = $5 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		assignment.ID, assignment.Name, assignment.Description, assignment.DueDate, assignment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteWithLink removes the section link and the assignment row in one
// transaction, link first, so an interrupted delete never leaves a dangling
// link. Returns sql.ErrNoRows when the link does not exist.
func (r *AssignmentRepository) DeleteWithLink(ctx context.Context, sectionID, assignmentID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete assignment: %w", err)
	}

	const linkQuery = `DELETE FROM section_assignments WHERE section_id = $1 AND assignment_id = $2`
	result, err := tx.ExecContext(ctx, linkQuery, sectionID, assignmentID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete section assignment link: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		_ = tx.Rollback()
		return sql.ErrNoRows
	}

	const assignmentQuery = `DELETE FROM assignments WHERE id = $1`
	if _, err := tx.ExecContext(ctx, assignmentQuery, assignmentID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete assignment: %w", err)
	}
	return nil
}
