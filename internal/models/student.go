package models

import "time"

// Student represents a learner profile.
type Student struct {
	ID        int64      `db:"id" json:"id"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	Email     string     `db:"email" json:"email"`
	Bio       string     `db:"bio" json:"bio"`
	Birthday  *time.Time `db:"birthday" json:"birthday,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
