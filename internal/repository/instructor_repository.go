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

// InstructorRepository handles persistence of instructor profiles and their
// paired login accounts.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs the repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// FindByID returns an instructor by its ID.
func (r *InstructorRepository) FindByID(ctx context.Context, id int64) (*models.Instructor, error) {
	const query = `SELECT id, first_name, last_name, email, created_at, updated_at
        FROM instructors WHERE id = $1`
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, id); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// FindByEmail returns an instructor by its unique email.
func (r *InstructorRepository) FindByEmail(ctx context.Context, email string) (*models.Instructor, error) {
	const query = `SELECT id, first_name, last_name, email, created_at, updated_at
        FROM instructors WHERE email = $1`
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, email); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// ExistsEmail reports whether an instructor with the email already exists.
func (r *InstructorRepository) ExistsEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT 1 FROM instructors WHERE email = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check instructor email: %w", err)
	}
	return true, nil
}

// List returns all instructors ordered by name.
func (r *InstructorRepository) List(ctx context.Context) ([]models.Instructor, error) {
	const query = `SELECT id, first_name, last_name, email, created_at, updated_at
        FROM instructors ORDER BY last_name, first_name`
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query); err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	return instructors, nil
}

// CreateWithAccount inserts the account and the instructor profile in one
// transaction.
func (r *InstructorRepository) CreateWithAccount(ctx context.Context, instructor *models.Instructor, account *models.Account) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create instructor: %w", err)
	}

	now := time.Now().UTC()
	account.Role = models.RoleInstructor
	account.Identifier = instructor.Email
	account.CreatedAt = now
	account.UpdatedAt = now

	const accountQuery = `INSERT INTO accounts (identifier, username, password_hash, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := tx.GetContext(ctx, &account.ID, accountQuery,
		account.Identifier, account.Username, account.PasswordHash, account.Role, account.CreatedAt, account.UpdatedAt); err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err, constraintAccountsUsername) {
			return appErrors.Clone(appErrors.ErrDuplicateUsername, "")
		}
		return fmt.Errorf("insert account: %w", err)
	}

	instructor.CreatedAt = now
	instructor.UpdatedAt = now
	const instructorQuery = `INSERT INTO instructors (first_name, last_name, email, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := tx.GetContext(ctx, &instructor.ID, instructorQuery,
		instructor.FirstName, instructor.LastName, instructor.Email, instructor.CreatedAt, instructor.UpdatedAt); err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err, constraintInstructorsEmail) {
			return appErrors.Clone(appErrors.ErrDuplicateEmail, "")
		}
		return fmt.Errorf("insert instructor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create instructor: %w", err)
	}
	return nil
}
