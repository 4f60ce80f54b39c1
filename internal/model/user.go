package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account identified by its email address.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// MagicLink is a pending one-time sign-in token. Only the token hash is stored.
type MagicLink struct {
	TokenHash string
	Email     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Session is the result of a successful sign-in.
type Session struct {
	User      User
	Token     string
	ExpiresAt time.Time
}
