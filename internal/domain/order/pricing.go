package order

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors for cart validation.
var (
	ErrEmptyCart       = fmt.Errorf("cart items required")
	ErrNotFound        = fmt.Errorf("order not found")
	ErrAlreadyAccepted = fmt.Errorf("order already accepted")
)

// MissingFieldError indicates a required request field was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// InvalidQuantityError indicates a cart entry has a non-positive quantity.
type InvalidQuantityError struct {
	Name string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for item %q", e.Name)
}

// InvalidPriceError indicates a cart entry carries a negative unit price.
type InvalidPriceError struct {
	Name string
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("price must not be negative for item %q", e.Name)
}

// PriceCart converts a cart into priced line items plus the order total.
// Each line total is the exact decimal product of quantity and unit price;
// the order total is the sum of line totals in cart order. PriceCart has no
// side effects and is deterministic for identical input.
func PriceCart(cart []CartItem) ([]LineItem, decimal.Decimal, error) {
	if len(cart) == 0 {
		return nil, decimal.Zero, ErrEmptyCart
	}

	items := make([]LineItem, len(cart))
	total := decimal.Zero
	for i, entry := range cart {
		if entry.Name == "" {
			return nil, decimal.Zero, &MissingFieldError{Field: "name"}
		}
		if entry.Quantity <= 0 {
			return nil, decimal.Zero, &InvalidQuantityError{Name: entry.Name}
		}
		if entry.BoxPrice.IsNegative() {
			return nil, decimal.Zero, &InvalidPriceError{Name: entry.Name}
		}

		lineTotal := entry.BoxPrice.Mul(decimal.NewFromInt(int64(entry.Quantity)))
		items[i] = LineItem{
			Name:      entry.Name,
			Quantity:  entry.Quantity,
			UnitPrice: entry.BoxPrice,
			LineTotal: lineTotal,
		}
		total = total.Add(lineTotal)
	}

	return items, total, nil
}
