package order

import (
	"context"
	"fmt"

	"github.com/noah-isme/checkout-api/internal/pricing"
)

// Contact identifies the customer placing the order.
type Contact struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

// Address is a postal address as accepted by the order collaborator.
type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company,omitempty"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone,omitempty"`
}

// Line is a priced order line derived from the cart snapshot.
type Line struct {
	ItemID    string        `json:"itemId"`
	Name      string        `json:"name"`
	Qty       int           `json:"qty"`
	UnitPrice pricing.Money `json:"unitPrice"`
}

// Request carries the finalized checkout form and pricing breakdown handed to
// the external order-persistence collaborator.
type Request struct {
	SessionID        string            `json:"sessionId"`
	Currency         string            `json:"currency"`
	Customer         Contact           `json:"customer"`
	ShippingAddress  Address           `json:"shippingAddress"`
	BillingAddress   Address           `json:"billingAddress"`
	PaymentMethod    string            `json:"paymentMethod"`
	ShippingMethodID string            `json:"shippingMethodId"`
	Instructions     string            `json:"specialInstructions,omitempty"`
	Newsletter       bool              `json:"acceptsNewsletter"`
	Lines            []Line            `json:"lines"`
	Pricing          pricing.Breakdown `json:"pricing"`
}

// Result is returned on successful order creation.
type Result struct {
	OrderID string `json:"orderId"`
}

// SubmissionError describes a failed order submission. The checkout session
// stays at review and the reason is surfaced to the user; there is no
// automatic retry.
type SubmissionError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *SubmissionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("order: submission failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("order: submission failed (%s)", e.Reason)
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *SubmissionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Failure constructs a SubmissionError.
func Failure(reason string, err error) *SubmissionError {
	return &SubmissionError{Reason: reason, Err: err}
}

// Submitter abstracts the order-creation collaborator. Implementations issue
// exactly one order-creation call per invocation.
type Submitter interface {
	Submit(ctx context.Context, req Request) (Result, error)
}
