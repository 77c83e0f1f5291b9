package models

import "time"

// User represents a registered account. Credentials live here but are only
// touched by the auth handlers.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	FullName       *string   `db:"full_name" json:"full_name"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
