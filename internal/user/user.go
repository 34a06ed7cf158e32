package user

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a user is not found.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyExists is returned when the email is already registered.
	ErrAlreadyExists = errors.New("user already exists")
	// ErrUnauthorized is returned when the requester may not act on the target account.
	ErrUnauthorized = errors.New("not allowed to act on this account")
)

// User represents a library member or administrator.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}
