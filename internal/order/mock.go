package order

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Mock simulates the order collaborator with an injectable delay and failure
// so the submit flow can be driven deterministically in development and tests.
type Mock struct {
	Delay    time.Duration
	Fail     *SubmissionError
	OrderIDs func() string

	calls atomic.Int64
}

// Submit waits out the configured delay, then succeeds with a generated order
// id or fails with the configured error. Deadline expiry during the delay maps
// to a timeout failure, mirroring the HTTP submitter.
func (m *Mock) Submit(ctx context.Context, _ Request) (Result, error) {
	m.calls.Add(1)
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			if ctx.Err() == context.DeadlineExceeded {
				return Result{}, Failure("timeout", ctx.Err())
			}
			return Result{}, Failure("cancelled", ctx.Err())
		case <-timer.C:
		}
	}
	if m.Fail != nil {
		return Result{}, m.Fail
	}
	gen := m.OrderIDs
	if gen == nil {
		gen = uuid.NewString
	}
	return Result{OrderID: gen()}, nil
}

// Calls reports how many times Submit was invoked.
func (m *Mock) Calls() int64 {
	return m.calls.Load()
}
