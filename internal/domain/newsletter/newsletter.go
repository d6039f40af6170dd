package newsletter

import (
	"context"
	"fmt"
	"time"
)

var ErrAlreadySubscribed = fmt.Errorf("already subscribed")

// Subscriber is a newsletter list entry, keyed by email.
type Subscriber struct {
	Email     string
	CreatedAt time.Time
}

// Repository defines persistence operations for the subscriber list.
type Repository interface {
	// Subscribe adds an email to the list. A duplicate email fails with
	// ErrAlreadySubscribed.
	Subscribe(ctx context.Context, email string) error
	List(ctx context.Context) ([]Subscriber, error)
}
