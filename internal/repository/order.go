package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/freshbasket/orderd/internal/domain/order"
)

const (
	orderColumns = `id, user_id, customer_name, address, phone, items, total_amount, status, placed_at, created_at, updated_at`

	createOrderSQL = `INSERT INTO orders (id, user_id, customer_name, address, phone, items, total_amount, status, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY placed_at DESC`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY placed_at DESC`

	listOrdersByUserSinceSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 AND placed_at >= $2 ORDER BY placed_at DESC`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	acceptOrderSQL = `UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING ` + orderColumns

	countOrdersSQL = `SELECT COUNT(*) FROM orders`

	sumOrderTotalsSQL = `SELECT COALESCE(SUM(total_amount), 0) FROM orders`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. The line items are serialized to JSON for
// storage in the JSONB column; the row is written atomically.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	var userID any
	if o.UserID != "" {
		userID = o.UserID
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, userID, o.CustomerName, o.Address, o.Phone,
		itemsJSON, o.TotalAmount, string(o.Status), o.PlacedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	return nil
}

// List returns orders matching the filter, newest placement first. The Since
// boundary is inclusive.
func (r *OrderRepository) List(ctx context.Context, f order.Filter) ([]order.Order, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	var (
		rows pgx.Rows
		err  error
	)
	switch {
	case f.UserID != "" && !f.Since.IsZero():
		rows, err = r.pool.Query(ctx, listOrdersByUserSinceSQL, f.UserID, f.Since)
	case f.UserID != "":
		rows, err = r.pool.Query(ctx, listOrdersByUserSQL, f.UserID)
	default:
		rows, err = r.pool.Query(ctx, listOrdersSQL)
	}
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	return pgx.CollectRows(rows, scanOrder)
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// Accept transitions a Pending order to Accepted in a single conditional
// UPDATE. When no row matches, the current row is fetched to distinguish an
// unknown id from an already-accepted order.
func (r *OrderRepository) Accept(ctx context.Context, id string) (*order.Order, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, acceptOrderSQL, id, string(order.StatusAccepted), string(order.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("accepting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err == nil {
		return &o, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("accepting order %q: %w", id, err)
	}

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == order.StatusAccepted {
		return nil, order.ErrAlreadyAccepted
	}
	return nil, fmt.Errorf("accepting order %q: unexpected status %q", id, existing.Status)
}

// Count returns the number of persisted orders.
func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	var n int64
	if err := r.pool.QueryRow(ctx, countOrdersSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting orders: %w", err)
	}
	return n, nil
}

// SumTotals returns the exact sum of total_amount across all orders, zero
// for an empty ledger.
func (r *OrderRepository) SumTotals(ctx context.Context) (decimal.Decimal, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, sumOrderTotalsSQL).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("summing order totals: %w", err)
	}
	return sum, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o         order.Order
		userID    *string
		itemsJSON []byte
		status    string
	)
	err := row.Scan(
		&o.ID, &userID, &o.CustomerName, &o.Address, &o.Phone,
		&itemsJSON, &o.TotalAmount, &status, &o.PlacedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return order.Order{}, err
	}

	if userID != nil {
		o.UserID = *userID
	}
	o.Status = order.Status(status)
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return order.Order{}, fmt.Errorf("unmarshaling order items: %w", err)
	}
	return o, nil
}
