package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Customer holds the contact details attached to an order.
type Customer struct {
	Name    string
	Address string
	Phone   string
}

// Identity attributes an order to an authenticated account. Name and Phone
// come from the verified token, never from the request body.
type Identity struct {
	UserID   string
	Username string
	Phone    string
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	Customer Customer
	Identity *Identity // nil for anonymous orders
	Cart     []CartItem
}

// Service encapsulates the order lifecycle: placement, listing, and the
// Pending -> Accepted status transition.
type Service struct {
	orders Repository
	now    func() time.Time
}

// NewService creates an order Service backed by the given repository.
func NewService(orders Repository) *Service {
	return &Service{orders: orders, now: time.Now}
}

// PlaceOrder validates the customer fields, prices the cart, and persists a
// new Pending order. When an authenticated identity is present, the customer
// name and phone are taken from it and the body values are ignored.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	cust := req.Customer
	if req.Identity != nil {
		cust.Name = req.Identity.Username
		cust.Phone = req.Identity.Phone
	}

	if cust.Name == "" {
		return nil, &MissingFieldError{Field: "name"}
	}
	if cust.Address == "" {
		return nil, &MissingFieldError{Field: "address"}
	}
	if cust.Phone == "" {
		return nil, &MissingFieldError{Field: "phone"}
	}

	items, total, err := PriceCart(req.Cart)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:           uuid.New().String(),
		CustomerName: cust.Name,
		Address:      cust.Address,
		Phone:        cust.Phone,
		Items:        items,
		TotalAmount:  total,
		Status:       StatusPending,
		PlacedAt:     s.now().UTC(),
	}
	if req.Identity != nil {
		o.UserID = req.Identity.UserID
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return o, nil
}

// ListOrders returns orders matching the filter. The unfiltered listing is
// sorted by placement time, newest first.
func (s *Service) ListOrders(ctx context.Context, f Filter) ([]Order, error) {
	orders, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// AdvanceStatus transitions the order from Pending to Accepted. Accepting an
// already-accepted order fails with ErrAlreadyAccepted; the reverse transition
// does not exist.
func (s *Service) AdvanceStatus(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.Accept(ctx, id)
	if err != nil {
		return nil, err
	}
	return o, nil
}
