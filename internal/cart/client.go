package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client fetches read-only cart snapshots from the external cart collaborator.
type Client interface {
	Snapshot(ctx context.Context, cartID string) (Snapshot, error)
}

// HTTPClient talks to a remote cart service over its JSON API.
type HTTPClient struct {
	BaseURL string
	Client  *http.Client
}

// Snapshot fetches the current contents of the identified cart.
func (c HTTPClient) Snapshot(ctx context.Context, cartID string) (Snapshot, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return Snapshot{}, fmt.Errorf("cart: base url not configured")
	}
	if cartID == "" {
		return Snapshot{}, ErrNotFound
	}
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	url := strings.TrimRight(c.BaseURL, "/") + "/carts/" + cartID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("cart: fetch snapshot: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode == http.StatusNotFound {
		return Snapshot{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("cart: unexpected status %s", resp.Status)
	}
	var body struct {
		Data Snapshot `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Snapshot{}, fmt.Errorf("cart: decode snapshot: %w", err)
	}
	if body.Data.ID == "" {
		body.Data.ID = cartID
	}
	return body.Data, nil
}

// StaticClient serves canned snapshots and is useful for development and tests.
type StaticClient struct {
	Carts map[string]Snapshot
}

// Snapshot returns the stored snapshot for the cart id.
func (c StaticClient) Snapshot(_ context.Context, cartID string) (Snapshot, error) {
	snap, ok := c.Carts[cartID]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return snap, nil
}

// DemoClient seeds a single demo cart matching the storefront sample data.
func DemoClient() StaticClient {
	return StaticClient{Carts: map[string]Snapshot{
		"demo": {
			ID:       "demo",
			Currency: "USD",
			Items: []Item{
				{ID: "sku-laptop-14", Name: "Aurora Laptop 14", UnitPrice: 119900, Qty: 1},
				{ID: "sku-headset", Name: "Drift Wireless Headset", UnitPrice: 24900, Qty: 1, Variant: &Variant{Color: "black"}},
			},
		},
	}}
}
