package checkout

import (
	"errors"
	"time"

	"github.com/noah-isme/checkout-api/internal/cart"
	"github.com/noah-isme/checkout-api/internal/pricing"
)

// Step identifies a stage of the checkout flow.
type Step string

const (
	// StepInformation collects the customer contact details.
	StepInformation Step = "information"
	// StepShipping collects the shipping address and method.
	StepShipping Step = "shipping"
	// StepPayment collects the payment instrument and billing address.
	StepPayment Step = "payment"
	// StepReview shows the order summary and accepts the final confirmation.
	StepReview Step = "review"
	// StepSubmitted is terminal, reached only through a successful order call.
	StepSubmitted Step = "submitted"
)

// stepOrder is the linear forward path through the flow.
var stepOrder = []Step{StepInformation, StepShipping, StepPayment, StepReview, StepSubmitted}

// transitions lists the valid target steps per current step. Submitted is
// absent from every forward edge except review, and review reaches it only
// via a successful submission.
var transitions = map[Step][]Step{
	StepInformation: {StepShipping},
	StepShipping:    {StepInformation, StepPayment},
	StepPayment:     {StepShipping, StepReview},
	StepReview:      {StepPayment, StepSubmitted},
	StepSubmitted:   {},
}

// ErrNotFound indicates the requested checkout session does not exist or has
// expired.
var ErrNotFound = errors.New("checkout: session not found")

// ErrSubmitInFlight indicates a submission is already outstanding for the
// session.
var ErrSubmitInFlight = errors.New("checkout: submission in flight")

// ErrSessionComplete indicates the session already reached the terminal step.
var ErrSessionComplete = errors.New("checkout: session already submitted")

// ErrAtFirstStep indicates retreat was called on the initial step.
var ErrAtFirstStep = errors.New("checkout: already at first step")

// ErrSubmitRequired indicates advance was called at review, which only a
// successful submission may leave.
var ErrSubmitRequired = errors.New("checkout: review step requires submit")

// ErrNotAtReview indicates submit was called outside the review step.
var ErrNotAtReview = errors.New("checkout: submit only allowed at review")

// ErrTermsNotAccepted indicates submit was called without the terms consent.
var ErrTermsNotAccepted = errors.New("checkout: terms must be accepted")

// ErrAbandoned indicates the session was abandoned while its submission was
// outstanding; the result has been discarded.
var ErrAbandoned = errors.New("checkout: session abandoned during submission")

func canTransition(from, to Step) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func nextStep(s Step) (Step, bool) {
	for i, step := range stepOrder {
		if step == s && i+1 < len(stepOrder) {
			return stepOrder[i+1], true
		}
	}
	return s, false
}

func prevStep(s Step) (Step, bool) {
	for i, step := range stepOrder {
		if step == s && i > 0 {
			return stepOrder[i-1], true
		}
	}
	return s, false
}

// Session is the exclusive state of one checkout attempt: the current step,
// the accumulating form, the frozen cart snapshot and the cached pricing
// breakdown. A nil Pricing means the cache was invalidated and must be
// recomputed.
type Session struct {
	ID         string             `json:"id"`
	Step       Step               `json:"step"`
	Submitting bool               `json:"submitting"`
	Form       Form               `json:"form"`
	Cart       cart.Snapshot      `json:"cart"`
	Currency   string             `json:"currency"`
	Pricing    *pricing.Breakdown `json:"pricing,omitempty"`
	OrderID    string             `json:"orderId,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}
