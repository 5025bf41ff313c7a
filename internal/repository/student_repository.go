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

// StudentRepository handles persistence of student profiles and their
// paired login accounts.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a student by its ID.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	const query = `SELECT id, first_name, last_name, email, bio, birthday, created_at, updated_at
        FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByEmail returns a student by its unique email.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	const query = `SELECT id, first_name, last_name, email, bio, birthday, created_at, updated_at
        FROM students WHERE email = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, email); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsEmail reports whether a student with the email already exists.
func (r *StudentRepository) ExistsEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT 1 FROM students WHERE email = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student email: %w", err)
	}
	return true, nil
}

// List returns all students ordered by name.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT id, first_name, last_name, email, bio, birthday, created_at, updated_at
        FROM students ORDER BY last_name, first_name`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// CreateWithAccount inserts the account and the student profile in one
// transaction; either both rows commit or neither does.
func (r *StudentRepository) CreateWithAccount(ctx context.Context, student *models.Student, account *models.Account) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create student: %w", err)
	}

	now := time.Now().UTC()
	account.Role = models.RoleStudent
	account.Identifier = student.Email
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

	student.CreatedAt = now
	student.UpdatedAt = now
	const studentQuery = `INSERT INTO students (first_name, last_name, email, bio, birthday, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := tx.GetContext(ctx, &student.ID, studentQuery,
		student.FirstName, student.LastName, student.Email, student.Bio, student.Birthday, student.CreatedAt, student.UpdatedAt); err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err, constraintStudentsEmail) {
			return appErrors.Clone(appErrors.ErrDuplicateEmail, "")
		}
		return fmt.Errorf("insert student: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create student: %w", err)
	}
	return nil
}

// UpdateWithAccount rewrites the student profile and its account row in one
// transaction. The account is matched by the student's previously stored
// email, which is the login identifier.
func (r *StudentRepository) UpdateWithAccount(ctx context.Context, previousEmail string, student *models.Student, account *models.Account) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update student: %w", err)
	}

	now := time.Now().UTC()
	const accountQuery = `UPDATE accounts SET identifier = $2, username = $3, password_hash = $4, updated_at = $5
        WHERE identifier = $1`
	if _, err := tx.ExecContext(ctx, accountQuery,
		previousEmail, student.Email, account.Username, account.PasswordHash, now); err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err, constraintAccountsUsername) {
			return appErrors.Clone(appErrors.ErrDuplicateUsername, "")
		}
		return fmt.Errorf("update account: %w", err)
	}

	const studentQuery = `UPDATE students SET first_name = $2, last_name = $3, email = $4, bio = $5, birthday = $6, updated_at = $7
        WHERE id = $1`
	result, err := tx.ExecContext(ctx, studentQuery,
		student.ID, student.FirstName, student.LastName, student.Email, student.Bio, student.Birthday, now)
	if err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err, constraintStudentsEmail) {
			return appErrors.Clone(appErrors.ErrDuplicateEmail, "")
		}
		return fmt.Errorf("update student: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		_ = tx.Rollback()
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update student: %w", err)
	}
	return nil
}
