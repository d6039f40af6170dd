package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock repository ---

type mockOrderRepo struct {
	lastOrder  *Order
	byID       map[string]*Order
	listed     []Order
	lastFilter Filter
	createErr  error
	listErr    error
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.lastOrder = o
	return nil
}

func (m *mockOrderRepo) List(_ context.Context, f Filter) ([]Order, error) {
	m.lastFilter = f
	return m.listed, m.listErr
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) Accept(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if o.Status == StatusAccepted {
		return nil, ErrAlreadyAccepted
	}
	o.Status = StatusAccepted
	return o, nil
}

func (m *mockOrderRepo) Count(_ context.Context) (int64, error) { return int64(len(m.byID)), nil }

func (m *mockOrderRepo) SumTotals(_ context.Context) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func validCart() []CartItem {
	return []CartItem{
		{Name: "Apple", Quantity: 2, BoxPrice: decimal.NewFromInt(50)},
		{Name: "Mango", Quantity: 1, BoxPrice: decimal.NewFromInt(120)},
	}
}

// --- Tests ---

func TestPlaceOrder_Anonymous(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(repo)

	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Customer: Customer{Name: "Alice", Address: "12 Orchard Rd", Phone: "555-0101"},
		Cart:     validCart(),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, o.ID)
	assert.Empty(t, o.UserID)
	assert.Equal(t, StatusPending, o.Status)
	assert.True(t, decimal.NewFromInt(220).Equal(o.TotalAmount))
	assert.False(t, o.PlacedAt.IsZero())
	require.NotNil(t, repo.lastOrder)
	assert.Equal(t, o.ID, repo.lastOrder.ID)
}

func TestPlaceOrder_AttributionOverridesBody(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(repo)

	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Customer: Customer{Name: "Spoofed", Address: "12 Orchard Rd", Phone: "000"},
		Identity: &Identity{UserID: "u1", Username: "alice", Phone: "555-0101"},
		Cart:     validCart(),
	})
	require.NoError(t, err)

	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, "alice", o.CustomerName)
	assert.Equal(t, "555-0101", o.Phone)
}

func TestPlaceOrder_AttributedWithoutBodyContact(t *testing.T) {
	svc := NewService(&mockOrderRepo{})

	// Name and phone come from the token; only address is required in the body.
	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Customer: Customer{Address: "12 Orchard Rd"},
		Identity: &Identity{UserID: "u1", Username: "alice", Phone: "555-0101"},
		Cart:     validCart(),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", o.CustomerName)
}

func TestPlaceOrder_MissingFields(t *testing.T) {
	svc := NewService(&mockOrderRepo{})

	tests := []struct {
		name     string
		customer Customer
		field    string
	}{
		{"no name", Customer{Address: "a", Phone: "p"}, "name"},
		{"no address", Customer{Name: "n", Phone: "p"}, "address"},
		{"no phone", Customer{Name: "n", Address: "a"}, "phone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
				Customer: tt.customer,
				Cart:     validCart(),
			})

			var mfErr *MissingFieldError
			require.ErrorAs(t, err, &mfErr)
			assert.Equal(t, tt.field, mfErr.Field)
		})
	}
}

func TestPlaceOrder_EmptyCartNotPersisted(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(repo)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Customer: Customer{Name: "Alice", Address: "a", Phone: "p"},
	})
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, repo.lastOrder)
}

func TestPlaceOrder_CreateError(t *testing.T) {
	repo := &mockOrderRepo{createErr: errors.New("db write failed")}
	svc := NewService(repo)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Customer: Customer{Name: "Alice", Address: "a", Phone: "p"},
		Cart:     validCart(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
}

func TestAdvanceStatus(t *testing.T) {
	pending := &Order{ID: "o1", Status: StatusPending}
	repo := &mockOrderRepo{byID: map[string]*Order{"o1": pending}}
	svc := NewService(repo)

	o, err := svc.AdvanceStatus(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, o.Status)

	// Second accept is rejected; the order never reverts to Pending.
	_, err = svc.AdvanceStatus(context.Background(), "o1")
	require.ErrorIs(t, err, ErrAlreadyAccepted)
	assert.Equal(t, StatusAccepted, pending.Status)
}

func TestAdvanceStatus_NotFound(t *testing.T) {
	svc := NewService(&mockOrderRepo{})

	_, err := svc.AdvanceStatus(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListOrders_PassesFilter(t *testing.T) {
	since := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockOrderRepo{listed: []Order{{ID: "o1"}}}
	svc := NewService(repo)

	orders, err := svc.ListOrders(context.Background(), Filter{UserID: "u1", Since: since})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, "u1", repo.lastFilter.UserID)
	assert.True(t, repo.lastFilter.Since.Equal(since))
}
