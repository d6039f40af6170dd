package product

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = fmt.Errorf("product not found")

// Product is a catalog entry. Weight, pieces, box weight, and quantity are
// free-form display strings ("1kg", "4-6 pcs"); only the box price is money.
type Product struct {
	ID        string
	Name      string
	Weight    string
	Pieces    string
	BoxWeight string
	BoxPrice  decimal.Decimal
	Rating    decimal.Decimal
	Quantity  string
	Image     string
	CreatedAt time.Time
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	List(ctx context.Context) ([]Product, error)
	Count(ctx context.Context) (int64, error)
}
