// Package member holds the shop-member registration list. Members are a
// marketing registry, separate from authenticated user accounts.
package member

import (
	"context"
	"time"
)

// Member is a registered shop contact.
type Member struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Phone     string
	ShopName  string
	CreatedAt time.Time
}

// Repository defines persistence operations for members.
type Repository interface {
	Create(ctx context.Context, m *Member) error
	List(ctx context.Context) ([]Member, error)
	// Recent returns the newest members first, at most limit entries.
	Recent(ctx context.Context, limit int) ([]Member, error)
}
