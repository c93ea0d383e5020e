package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrNoEmail      = errors.New("user has no email address")
)

// User represents the owner of events. Email may be empty.
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasEmail reports whether the user has a non-blank email address to notify.
func (u *User) HasEmail() bool {
	return u != nil && strings.TrimSpace(u.Email) != ""
}

// NotifyAddress returns the address reminders are sent to, or ErrNoEmail.
func (u *User) NotifyAddress() (string, error) {
	if !u.HasEmail() {
		return "", ErrNoEmail
	}
	return strings.TrimSpace(u.Email), nil
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}
