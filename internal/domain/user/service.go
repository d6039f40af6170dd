package user

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MissingFieldError indicates a required signup field was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// Service handles account signup and credential verification.
type Service struct {
	users Repository
	now   func() time.Time
}

// NewService creates a user Service backed by the given repository.
func NewService(users Repository) *Service {
	return &Service{users: users, now: time.Now}
}

// Register creates a new account with a bcrypt-hashed password. A duplicate
// phone number fails with ErrPhoneTaken.
func (s *Service) Register(ctx context.Context, username, phone, password string) (*User, error) {
	if username == "" {
		return nil, &MissingFieldError{Field: "username"}
	}
	if phone == "" {
		return nil, &MissingFieldError{Field: "phone"}
	}
	if password == "" {
		return nil, &MissingFieldError{Field: "password"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &User{
		ID:           uuid.New().String(),
		Username:     username,
		Phone:        phone,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, ErrPhoneTaken) {
			return nil, ErrPhoneTaken
		}
		return nil, errors.Wrap(err, "create user")
	}

	return u, nil
}

// Login verifies the username/password pair. Both an unknown username and a
// wrong password fail with ErrInvalidCredentials so callers cannot probe for
// registered usernames.
func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "lookup user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}
