package shipping

import (
	"errors"

	"github.com/noah-isme/checkout-api/internal/pricing"
)

// ErrUnknownMethod indicates the requested shipping method is not in the catalog.
var ErrUnknownMethod = errors.New("shipping: unknown method")

// Method is an immutable catalog entry describing one way to ship an order.
type Method struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       pricing.Money `json:"price"`
	ETD         string        `json:"estimatedDelivery"`
}

// Catalog is a static lookup of the shipping methods offered at checkout.
type Catalog struct {
	methods []Method
	byID    map[string]Method
}

// NewCatalog builds a catalog from the provided methods. Later entries with a
// duplicate id replace earlier ones.
func NewCatalog(methods []Method) *Catalog {
	c := &Catalog{
		methods: make([]Method, 0, len(methods)),
		byID:    make(map[string]Method, len(methods)),
	}
	pos := make(map[string]int, len(methods))
	for _, m := range methods {
		if m.ID == "" {
			continue
		}
		if i, seen := pos[m.ID]; seen {
			c.methods[i] = m
		} else {
			pos[m.ID] = len(c.methods)
			c.methods = append(c.methods, m)
		}
		c.byID[m.ID] = m
	}
	return c
}

// Default returns the built-in catalog used when no external rate source is
// configured.
func Default() *Catalog {
	return NewCatalog([]Method{
		{ID: "standard", Name: "Standard Shipping", Description: "Delivered by ground carrier", Price: 0, ETD: "5-7 business days"},
		{ID: "express", Name: "Express Shipping", Description: "Priority air service", Price: 1299, ETD: "2-3 business days"},
		{ID: "overnight", Name: "Overnight Shipping", Description: "Next-day courier", Price: 2499, ETD: "1 business day"},
	})
}

// Lookup resolves a method by id.
func (c *Catalog) Lookup(id string) (Method, error) {
	if c == nil {
		return Method{}, ErrUnknownMethod
	}
	m, ok := c.byID[id]
	if !ok {
		return Method{}, ErrUnknownMethod
	}
	return m, nil
}

// List returns the catalog entries in declaration order.
func (c *Catalog) List() []Method {
	if c == nil {
		return nil
	}
	out := make([]Method, len(c.methods))
	copy(out, c.methods)
	return out
}
