// Package report derives dashboard summaries from the order ledger and the
// sibling user and product stores.
package report

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/freshbasket/orderd/internal/domain/order"
	"github.com/freshbasket/orderd/internal/domain/user"
)

// RecentWindow is the trailing interval covered by a user dashboard,
// recomputed relative to "now" on every call.
const RecentWindow = 30 * 24 * time.Hour

// OrderSource is the slice of the order ledger the reporter reads.
type OrderSource interface {
	List(ctx context.Context, f order.Filter) ([]order.Order, error)
	Count(ctx context.Context) (int64, error)
	SumTotals(ctx context.Context) (decimal.Decimal, error)
}

// UserSource is the slice of the identity store the reporter reads.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	Count(ctx context.Context) (int64, error)
}

// ProductSource is the slice of the catalog the reporter reads.
type ProductSource interface {
	Count(ctx context.Context) (int64, error)
}

// Summary holds store-wide dashboard totals. TotalIncome is aggregated from
// the ledger on every call, never cached.
type Summary struct {
	TotalOrders int64
	TotalUsers  int64
	TotalItems  int64
	TotalIncome decimal.Decimal
}

// Profile is the public slice of a user account shown on their dashboard.
type Profile struct {
	Username string
	Phone    string
}

// UserDashboard is a user's profile plus their orders from the trailing
// 30-day window.
type UserDashboard struct {
	Profile      Profile
	RecentOrders []order.Order
}

// Service computes aggregate views over the ledger and sibling stores.
type Service struct {
	orders   OrderSource
	users    UserSource
	products ProductSource
	now      func() time.Time
}

// NewService creates a reporter over the given sources.
func NewService(orders OrderSource, users UserSource, products ProductSource) *Service {
	return &Service{orders: orders, users: users, products: products, now: time.Now}
}

// DashboardSummary returns current counts and the exact income sum over all
// persisted orders. An empty ledger yields a zero income, not an error.
func (s *Service) DashboardSummary(ctx context.Context) (*Summary, error) {
	totalOrders, err := s.orders.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "count orders")
	}

	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "count users")
	}

	totalItems, err := s.products.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "count products")
	}

	totalIncome, err := s.orders.SumTotals(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "sum order totals")
	}

	return &Summary{
		TotalOrders: totalOrders,
		TotalUsers:  totalUsers,
		TotalItems:  totalItems,
		TotalIncome: totalIncome,
	}, nil
}

// UserDashboard returns the user's profile and their orders placed within
// the trailing 30 days. The window boundary is inclusive. An unknown userID
// fails with user.ErrNotFound.
func (s *Service) UserDashboard(ctx context.Context, userID string) (*UserDashboard, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, errors.Wrap(err, "get user")
	}

	since := s.now().Add(-RecentWindow)
	recent, err := s.orders.List(ctx, order.Filter{UserID: userID, Since: since})
	if err != nil {
		return nil, errors.Wrap(err, "list recent orders")
	}

	return &UserDashboard{
		Profile:      Profile{Username: u.Username, Phone: u.Phone},
		RecentOrders: recent,
	}, nil
}
