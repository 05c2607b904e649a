package models

import "time"

// Organizer is an account that owns events. It authenticates with a session
// established at login.
type Organizer struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Organization *string   `db:"organization" json:"organization,omitempty"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SignupRequest holds the organizer signup form.
type SignupRequest struct {
	Username     string `form:"username" json:"username" validate:"required,max=30"`
	Organization string `form:"organization" json:"organization" validate:"max=100"`
	Email        string `form:"email" json:"email" validate:"required,email"`
	Password     string `form:"password" json:"password" validate:"required"`
}

// LoginRequest holds the organizer login form.
type LoginRequest struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}
