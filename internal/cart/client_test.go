package cart_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/checkout-api/internal/cart"
)

func TestHTTPClientSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/carts/c-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"c-1","currency":"USD","items":[{"id":"sku-1","name":"Mug","unitPrice":1200,"qty":2}]}}`))
	}))
	defer srv.Close()

	client := cart.HTTPClient{BaseURL: srv.URL}
	snap, err := client.Snapshot(context.Background(), "c-1")
	require.NoError(t, err)
	require.Equal(t, "c-1", snap.ID)
	require.Len(t, snap.Items, 1)
	require.EqualValues(t, 1200, snap.Items[0].UnitPrice)
	require.Equal(t, 2, snap.Items[0].Qty)
}

func TestHTTPClientSnapshotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := cart.HTTPClient{BaseURL: srv.URL}
	_, err := client.Snapshot(context.Background(), "missing")
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestStaticClient(t *testing.T) {
	client := cart.DemoClient()
	snap, err := client.Snapshot(context.Background(), "demo")
	require.NoError(t, err)
	require.Len(t, snap.Items, 2)

	_, err = client.Snapshot(context.Background(), "other")
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestSnapshotValidate(t *testing.T) {
	valid := cart.Snapshot{ID: "c", Items: []cart.Item{{ID: "a", UnitPrice: 0, Qty: 1}}}
	require.NoError(t, valid.Validate())

	cases := map[string]cart.Snapshot{
		"missing cart id":  {Items: []cart.Item{{ID: "a", Qty: 1}}},
		"zero qty":         {ID: "c", Items: []cart.Item{{ID: "a", Qty: 0}}},
		"negative qty":     {ID: "c", Items: []cart.Item{{ID: "a", Qty: -2}}},
		"negative price":   {ID: "c", Items: []cart.Item{{ID: "a", Qty: 1, UnitPrice: -1}}},
		"missing line id":  {ID: "c", Items: []cart.Item{{Qty: 1}}},
	}
	for name, snap := range cases {
		require.ErrorIs(t, snap.Validate(), cart.ErrInvalidSnapshot, name)
	}
}

func TestSnapshotPricingItems(t *testing.T) {
	snap := cart.Snapshot{ID: "c", Items: []cart.Item{
		{ID: "a", UnitPrice: 119900, Qty: 1},
		{ID: "b", UnitPrice: 24900, Qty: 1},
	}}
	items := snap.PricingItems()
	require.Len(t, items, 2)
	require.EqualValues(t, 119900, items[0].UnitPrice)
}
