package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/opencampus/academ-api/internal/models"
)

// AccountRepository handles persistence of login accounts.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository constructs the repository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByIdentifier returns the account matching the login identifier.
func (r *AccountRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	const query = `SELECT id, identifier, username, password_hash, role, created_at, updated_at
        FROM accounts WHERE identifier = $1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, identifier); err != nil {
		return nil, err
	}
	return &account, nil
}

// ExistsUsername reports whether a username is already taken.
func (r *AccountRepository) ExistsUsername(ctx context.Context, username string) (bool, error) {
	const query = `SELECT 1 FROM accounts WHERE username = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check username: %w", err)
	}
	return true, nil
}
