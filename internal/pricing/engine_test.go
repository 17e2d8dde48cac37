package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/checkout-api/internal/pricing"
)

func TestComputeEmptyCart(t *testing.T) {
	got := pricing.Compute(nil, 0, 800)
	require.Equal(t, pricing.Breakdown{}, got)
}

func TestComputeWorkedExample(t *testing.T) {
	items := []pricing.Item{
		{Qty: 1, UnitPrice: 119900},
		{Qty: 1, UnitPrice: 24900},
	}
	got := pricing.Compute(items, 0, 800)
	require.Equal(t, pricing.Money(144800), got.Subtotal)
	require.Equal(t, pricing.Money(0), got.Shipping)
	require.Equal(t, pricing.Money(11584), got.Tax)
	require.Equal(t, pricing.Money(156384), got.Total)
}

func TestComputeRoundsTaxHalfUp(t *testing.T) {
	// 1234 * 8% = 98.72 -> 99 minor units.
	got := pricing.Compute([]pricing.Item{{Qty: 1, UnitPrice: 1234}}, 0, 800)
	require.Equal(t, pricing.Money(99), got.Tax)

	// 56 * 8% = 4.48 -> 4; 57 * 8% = 4.56 -> 5.
	require.Equal(t, pricing.Money(4), pricing.Compute([]pricing.Item{{Qty: 1, UnitPrice: 56}}, 0, 800).Tax)
	require.Equal(t, pricing.Money(5), pricing.Compute([]pricing.Item{{Qty: 1, UnitPrice: 57}}, 0, 800).Tax)

	// 1869 * 8% = 149.52 -> 150 while 1868 * 8% = 149.44 -> 149.
	require.Equal(t, pricing.Money(149), pricing.Compute([]pricing.Item{{Qty: 1, UnitPrice: 1868}}, 0, 800).Tax)
	require.Equal(t, pricing.Money(150), pricing.Compute([]pricing.Item{{Qty: 1, UnitPrice: 1869}}, 0, 800).Tax)
}

func TestComputeTotalReconciles(t *testing.T) {
	carts := [][]pricing.Item{
		{{Qty: 2, UnitPrice: 4999}},
		{{Qty: 1, UnitPrice: 119900}, {Qty: 3, UnitPrice: 2450}},
		{{Qty: 5, UnitPrice: 1}, {Qty: 1, UnitPrice: 0}},
		{{Qty: 7, UnitPrice: 333}, {Qty: 2, UnitPrice: 12345}, {Qty: 1, UnitPrice: 99}},
	}
	shippings := []pricing.Money{0, 1299, 2499}
	for _, items := range carts {
		for _, ship := range shippings {
			got := pricing.Compute(items, ship, 800)
			require.Equal(t, got.Subtotal+got.Shipping+got.Tax, got.Total)
			require.Equal(t, ship, got.Shipping)
		}
	}
}

func TestComputeShippingWithoutSelection(t *testing.T) {
	got := pricing.Compute([]pricing.Item{{Qty: 1, UnitPrice: 1000}}, 0, 800)
	require.Equal(t, pricing.Money(0), got.Shipping)
	require.Equal(t, pricing.Money(1080), got.Total)
}

func TestComputeDeterministic(t *testing.T) {
	items := []pricing.Item{{Qty: 2, UnitPrice: 7777}, {Qty: 1, UnitPrice: 101}}
	first := pricing.Compute(items, 1299, 800)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, pricing.Compute(items, 1299, 800))
	}
}
