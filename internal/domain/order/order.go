package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order. The only legal transition is
// StatusPending -> StatusAccepted.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusAccepted Status = "Accepted"
)

// CartItem is a single client-submitted cart entry awaiting pricing.
type CartItem struct {
	Name     string
	Quantity int
	BoxPrice decimal.Decimal
}

// LineItem is one priced entry within an order. LineTotal is fixed at
// order-creation time; prices are never re-read later.
type LineItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Order is a persisted price snapshot of a validated cart.
type Order struct {
	ID           string
	UserID       string // empty for anonymous orders
	CustomerName string
	Address      string
	Phone        string
	Items        []LineItem
	TotalAmount  decimal.Decimal
	Status       Status
	PlacedAt     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Filter narrows a List query. Zero values mean "no constraint".
// Since is boundary-inclusive: orders placed exactly at Since are returned.
type Filter struct {
	UserID string
	Since  time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	List(ctx context.Context, f Filter) ([]Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	// Accept atomically transitions an order from Pending to Accepted and
	// returns the updated row. Returns ErrNotFound for an unknown id and
	// ErrAlreadyAccepted when the transition was already performed.
	Accept(ctx context.Context, id string) (*Order, error)
	Count(ctx context.Context) (int64, error)
	SumTotals(ctx context.Context) (decimal.Decimal, error)
}
