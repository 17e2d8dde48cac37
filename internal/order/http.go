package order

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/checkout-api/internal/resilience"
)

// HTTPSubmitter posts finalized orders to the external order service. The
// breaker trips when the collaborator keeps failing; the caller bounds each
// call with its own deadline. Submissions are never retried here.
type HTTPSubmitter struct {
	BaseURL string
	Client  *http.Client
	Breaker *resilience.Breaker
}

// NewHTTPSubmitter wires an instrumented client against the given base URL.
func NewHTTPSubmitter(baseURL string, breaker *resilience.Breaker) HTTPSubmitter {
	return HTTPSubmitter{
		BaseURL: baseURL,
		Client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
		Breaker: breaker,
	}
}

// Submit issues a single order-creation call.
func (s HTTPSubmitter) Submit(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(s.BaseURL) == "" {
		return Result{}, Failure("order service not configured", nil)
	}
	if s.Breaker != nil && !s.Breaker.Allow(ctx) {
		return Result{}, Failure("order service unavailable", resilience.ErrOpenCircuit)
	}

	res, err := s.post(ctx, req)
	if s.Breaker != nil {
		s.Breaker.Report(ctx, err == nil)
	}
	return res, err
}

func (s HTTPSubmitter) post(ctx context.Context, req Request) (Result, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Result{}, Failure("encode order", err)
	}
	url := strings.TrimRight(s.BaseURL, "/") + "/orders"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Result{}, Failure("build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{}, Failure("timeout", err)
		}
		return Result{}, Failure("order service unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := fmt.Sprintf("order service returned %d", resp.StatusCode)
		var body struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr == nil && body.Error.Message != "" {
			reason = body.Error.Message
		}
		return Result{}, Failure(reason, nil)
	}

	var body struct {
		Data Result `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, Failure("decode order response", err)
	}
	if body.Data.OrderID == "" {
		return Result{}, Failure("order service returned no order id", nil)
	}
	return body.Data, nil
}
