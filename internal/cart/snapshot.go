package cart

import (
	"errors"
	"fmt"

	"github.com/noah-isme/checkout-api/internal/pricing"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart: not found")

// ErrInvalidSnapshot is returned when a snapshot violates cart invariants.
var ErrInvalidSnapshot = errors.New("cart: invalid snapshot")

// Variant captures the optional colour/size selection on a line item.
type Variant struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
}

// Item is a single read-only cart line.
type Item struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	UnitPrice pricing.Money `json:"unitPrice"`
	Qty       int           `json:"qty"`
	Variant   *Variant      `json:"variant,omitempty"`
}

// Snapshot is the frozen cart contents a checkout session is opened against.
// It is taken once at session start and never mutated afterwards.
type Snapshot struct {
	ID       string `json:"id"`
	Currency string `json:"currency,omitempty"`
	Items    []Item `json:"items"`
}

// Validate enforces the cart invariants at the collaborator boundary:
// every line needs an id, a quantity of at least one and a non-negative price.
func (s Snapshot) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("missing cart id: %w", ErrInvalidSnapshot)
	}
	for i, it := range s.Items {
		if it.ID == "" {
			return fmt.Errorf("item %d missing id: %w", i, ErrInvalidSnapshot)
		}
		if it.Qty < 1 {
			return fmt.Errorf("item %q qty must be at least 1: %w", it.ID, ErrInvalidSnapshot)
		}
		if it.UnitPrice < 0 {
			return fmt.Errorf("item %q has negative unit price: %w", it.ID, ErrInvalidSnapshot)
		}
	}
	return nil
}

// PricingItems converts the snapshot lines into pricing engine input.
func (s Snapshot) PricingItems() []pricing.Item {
	out := make([]pricing.Item, 0, len(s.Items))
	for _, it := range s.Items {
		out = append(out, pricing.Item{Qty: it.Qty, UnitPrice: it.UnitPrice})
	}
	return out
}
