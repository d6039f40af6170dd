package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceCart_EmptyCart(t *testing.T) {
	_, _, err := PriceCart(nil)
	require.ErrorIs(t, err, ErrEmptyCart)

	_, _, err = PriceCart([]CartItem{})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestPriceCart_InvalidQuantity(t *testing.T) {
	for _, qty := range []int{0, -1} {
		_, _, err := PriceCart([]CartItem{
			{Name: "Apple", Quantity: qty, BoxPrice: decimal.NewFromInt(50)},
		})

		var iqErr *InvalidQuantityError
		require.ErrorAs(t, err, &iqErr)
		assert.Equal(t, "Apple", iqErr.Name)
	}
}

func TestPriceCart_NegativePrice(t *testing.T) {
	_, _, err := PriceCart([]CartItem{
		{Name: "Apple", Quantity: 1, BoxPrice: decimal.NewFromInt(-1)},
	})

	var ipErr *InvalidPriceError
	require.ErrorAs(t, err, &ipErr)
	assert.Equal(t, "Apple", ipErr.Name)
}

func TestPriceCart_MissingName(t *testing.T) {
	_, _, err := PriceCart([]CartItem{
		{Quantity: 1, BoxPrice: decimal.NewFromInt(50)},
	})

	var mfErr *MissingFieldError
	require.ErrorAs(t, err, &mfErr)
	assert.Equal(t, "name", mfErr.Field)
}

func TestPriceCart_AppleMango(t *testing.T) {
	items, total, err := PriceCart([]CartItem{
		{Name: "Apple", Quantity: 2, BoxPrice: decimal.NewFromInt(50)},
		{Name: "Mango", Quantity: 1, BoxPrice: decimal.NewFromInt(120)},
	})
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "Apple", items[0].Name)
	assert.True(t, decimal.NewFromInt(100).Equal(items[0].LineTotal))
	assert.Equal(t, "Mango", items[1].Name)
	assert.True(t, decimal.NewFromInt(120).Equal(items[1].LineTotal))
	assert.True(t, decimal.NewFromInt(220).Equal(total))
}

func TestPriceCart_TotalIsSumOfLineTotals(t *testing.T) {
	cart := []CartItem{
		{Name: "Apple", Quantity: 3, BoxPrice: decimal.RequireFromString("19.99")},
		{Name: "Banana", Quantity: 7, BoxPrice: decimal.RequireFromString("0.35")},
		{Name: "Cherry", Quantity: 1, BoxPrice: decimal.RequireFromString("120.50")},
		{Name: "Free sample", Quantity: 2, BoxPrice: decimal.Zero},
	}

	items, total, err := PriceCart(cart)
	require.NoError(t, err)

	sum := decimal.Zero
	for i, it := range items {
		expected := cart[i].BoxPrice.Mul(decimal.NewFromInt(int64(cart[i].Quantity)))
		assert.True(t, expected.Equal(it.LineTotal), "line %d: want %s got %s", i, expected, it.LineTotal)
		sum = sum.Add(it.LineTotal)
	}
	assert.True(t, sum.Equal(total))
	// 3*19.99 + 7*0.35 + 120.50 = 182.92
	assert.True(t, decimal.RequireFromString("182.92").Equal(total))
}

func TestPriceCart_PreservesOrder(t *testing.T) {
	items, _, err := PriceCart([]CartItem{
		{Name: "Mango", Quantity: 1, BoxPrice: decimal.NewFromInt(120)},
		{Name: "Apple", Quantity: 1, BoxPrice: decimal.NewFromInt(50)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mango", items[0].Name)
	assert.Equal(t, "Apple", items[1].Name)
}
