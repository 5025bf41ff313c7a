package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/opencampus/academ-api/internal/models"
)

// SubmissionRepository handles persistence of assignment submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// FindByAssignmentAndStudent returns the submission for the natural key.
func (r *SubmissionRepository) FindByAssignmentAndStudent(ctx context.Context, assignmentID, studentID int64) (*models.Submission, error) {
	const query = `SELECT id, assignment_id, student_id, submission_link, submission_date, grade
        FROM submissions WHERE assignment_id = $1 AND student_id = $2`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, assignmentID, studentID); err != nil {
		return nil, err
	}
	return &submission, nil
}

// Upsert inserts the submission or, when the (assignment_id, student_id)
// pair already exists, rewrites link and date in place. The grade column is
// deliberately left out of the update so resubmission never clears a grade.
func (r *SubmissionRepository) Upsert(ctx context.Context, submission *models.Submission) error {
	submission.SubmissionDate = time.Now().UTC()
	const query = `INSERT INTO submissions (assignment_id, student_id, submission_link, submission_date)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (assignment_id, student_id)
        DO UPDATE SET submission_link = EXCLUDED.submission_link, submission_date = EXCLUDED.submission_date
        RETURNING id`
	if err := r.db.GetContext(ctx, &submission.ID, query,
		submission.AssignmentID, submission.StudentID, submission.SubmissionLink, submission.SubmissionDate); err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}
	return nil
}

// UpdateGrade sets the grade on an existing submission. Returns
// sql.ErrNoRows when no submission exists for the pair.
func (r *SubmissionRepository) UpdateGrade(ctx context.Context, assignmentID, studentID int64, grade float64) error {
	const query = `UPDATE submissions SET grade = $3 WHERE assignment_id = $1 AND student_id = $2`
	result, err := r.db.ExecContext(ctx, query, assignmentID, studentID, grade)
	if err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByStudentAndSection returns the student's submissions for every
// assignment linked to the section.
func (r *SubmissionRepository) ListByStudentAndSection(ctx context.Context, studentID, sectionID int64) ([]models.Submission, error) {
	const query = `SELECT s.id, s.assignment_id, s.student_id, s.submission_link, s.submission_date, s.grade
        FROM submissions s
        INNER JOIN section_assignments sa ON sa.assignment_id = s.assignment_id
        WHERE s.student_id = $1 AND sa.section_id = $2
        ORDER BY s.submission_date`
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, studentID, sectionID); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}
