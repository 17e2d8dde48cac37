package pricing

// Money represents a monetary value stored in minor units.
type Money = int64

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// Breakdown aggregates the derived pricing components for a checkout session.
// Total always equals Subtotal + Shipping + Tax.
type Breakdown struct {
	Subtotal Money `json:"subtotal"`
	Shipping Money `json:"shipping"`
	Tax      Money `json:"tax"`
	Total    Money `json:"total"`
}

// Compute derives the pricing breakdown for the given line items, selected
// shipping price and tax rate in basis points. Tax is rounded half-up to the
// minor unit, so 800 bps reproduces an exact 8% rate at 2-decimal precision.
// Negative quantities and prices are precondition violations owned by the
// caller; the engine itself has no error paths.
func Compute(items []Item, shipping Money, taxBps int) Breakdown {
	var subtotal Money
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		subtotal += Money(it.Qty) * it.UnitPrice
	}
	if shipping < 0 {
		shipping = 0
	}
	if taxBps < 0 {
		taxBps = 0
	}
	tax := (subtotal*Money(taxBps) + 5000) / 10000
	return Breakdown{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}
