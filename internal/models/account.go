package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccountRole represents the available roles for the RBAC system.
type AccountRole string

const (
	RoleAdmin      AccountRole = "ADMIN"
	RoleInstructor AccountRole = "INSTRUCTOR"
	RoleStudent    AccountRole = "STUDENT"
)

// Account represents login credentials stored in the accounts table.
// The identifier is the owning profile's email; it ties the account 1:1
// to a Student or Instructor row.
type Account struct {
	ID           int64       `db:"id" json:"id"`
	Identifier   string      `db:"identifier" json:"identifier"`
	Username     string      `db:"username" json:"username"`
	PasswordHash string      `db:"password_hash" json:"-"`
	Role         AccountRole `db:"role" json:"role"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// JWTClaims carries the identity embedded in access tokens.
type JWTClaims struct {
	AccountID int64       `json:"account_id"`
	ProfileID int64       `json:"profile_id"`
	Role      AccountRole `json:"role"`
	jwt.RegisteredClaims
}

// LoginResponse is returned after a successful credential check.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   int64       `json:"expires_in"`
	AccountID   int64       `json:"account_id"`
	ProfileID   int64       `json:"profile_id"`
	Role        AccountRole `json:"role"`
}
