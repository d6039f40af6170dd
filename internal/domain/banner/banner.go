package banner

import (
	"context"
	"time"
)

// KeepLatest is how many banners the store retains; adding a banner beyond
// this cap evicts the oldest ones.
const KeepLatest = 5

// Banner is a promotional image reference.
type Banner struct {
	ID        string
	ImageURL  string
	CreatedAt time.Time
}

// Repository defines persistence operations for banners.
type Repository interface {
	// Add stores a banner and prunes the list down to the KeepLatest newest.
	Add(ctx context.Context, b *Banner) error
	// List returns banners oldest first.
	List(ctx context.Context) ([]Banner, error)
}
