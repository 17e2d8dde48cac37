package order_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/checkout-api/internal/order"
	"github.com/noah-isme/checkout-api/internal/pricing"
	"github.com/noah-isme/checkout-api/internal/resilience"
)

func sampleRequest() order.Request {
	return order.Request{
		SessionID:        "sess-1",
		Currency:         "USD",
		Customer:         order.Contact{Email: "jo@example.com", FirstName: "Jo", LastName: "Doe"},
		PaymentMethod:    "card",
		ShippingMethodID: "standard",
		Lines:            []order.Line{{ItemID: "sku-1", Name: "Mug", Qty: 2, UnitPrice: 1200}},
		Pricing:          pricing.Breakdown{Subtotal: 2400, Tax: 192, Total: 2592},
	}
}

func TestHTTPSubmitterSuccess(t *testing.T) {
	var received order.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"orderId":"ord-42"}}`))
	}))
	defer srv.Close()

	sub := order.NewHTTPSubmitter(srv.URL, nil)
	res, err := sub.Submit(context.Background(), sampleRequest())
	require.NoError(t, err)
	require.Equal(t, "ord-42", res.OrderID)
	require.Equal(t, "sess-1", received.SessionID)
	require.EqualValues(t, 2592, received.Pricing.Total)
}

func TestHTTPSubmitterFailureCarriesReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"code":"OUT_OF_STOCK","message":"item sku-1 is out of stock"}}`))
	}))
	defer srv.Close()

	sub := order.NewHTTPSubmitter(srv.URL, nil)
	_, err := sub.Submit(context.Background(), sampleRequest())
	var subErr *order.SubmissionError
	require.ErrorAs(t, err, &subErr)
	require.Equal(t, "item sku-1 is out of stock", subErr.Reason)
}

func TestHTTPSubmitterTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		// drain the body so the server notices the client going away
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	sub := order.NewHTTPSubmitter(srv.URL, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := sub.Submit(ctx, sampleRequest())
	var subErr *order.SubmissionError
	require.ErrorAs(t, err, &subErr)
	require.Equal(t, "timeout", subErr.Reason)
}

func TestHTTPSubmitterOpenBreakerFailsFast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	breaker := resilience.NewBreaker(1, 0.5, time.Minute)
	sub := order.NewHTTPSubmitter(srv.URL, breaker)

	_, err := sub.Submit(context.Background(), sampleRequest())
	require.Error(t, err)

	_, err = sub.Submit(context.Background(), sampleRequest())
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
}

func TestMockCountsCallsAndFails(t *testing.T) {
	mock := &order.Mock{Fail: order.Failure("card declined", nil)}
	_, err := mock.Submit(context.Background(), sampleRequest())
	var subErr *order.SubmissionError
	require.ErrorAs(t, err, &subErr)
	require.Equal(t, "card declined", subErr.Reason)
	require.EqualValues(t, 1, mock.Calls())
}

func TestMockTimesOutDuringDelay(t *testing.T) {
	mock := &order.Mock{Delay: 200 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := mock.Submit(ctx, sampleRequest())
	var subErr *order.SubmissionError
	require.ErrorAs(t, err, &subErr)
	require.Equal(t, "timeout", subErr.Reason)
}
