package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Username is the display name shown to other members.
	Username string

	// Email is the login address (unique).
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	// Only the auth package reads it.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewUser builds a user with a fresh ID and creation time.
func NewUser(email, username, passwordHash string) *User {
	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}
