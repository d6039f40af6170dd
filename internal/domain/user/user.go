package user

import (
	"context"
	"fmt"
	"time"
)

// Sentinel errors for identity lookups and credential checks.
var (
	ErrNotFound           = fmt.Errorf("user not found")
	ErrPhoneTaken         = fmt.Errorf("phone number already registered")
	ErrInvalidCredentials = fmt.Errorf("invalid username or password")
)

// User is an authenticated customer account. The password is stored only as
// a bcrypt hash.
type User struct {
	ID           string
	Username     string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}

// Repository defines persistence operations for user accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	// GetByUsername returns the most recently created account with the given
	// username. Usernames are not unique in the legacy schema; phone is the
	// unique key.
	GetByUsername(ctx context.Context, username string) (*User, error)
	Count(ctx context.Context) (int64, error)
}
