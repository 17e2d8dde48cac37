package checkout

// Event is a single mutation of a checkout session. Events are applied through
// Apply, which enforces the gates shared by every mutation: a session with a
// submission in flight is frozen, and a submitted session is immutable.
type Event interface {
	apply(Session) (Session, error)
}

// Apply runs one event against a session and returns the updated copy. The
// input session is never modified.
func Apply(s Session, ev Event) (Session, error) {
	if s.Submitting {
		return s, ErrSubmitInFlight
	}
	if s.Step == StepSubmitted {
		return s, ErrSessionComplete
	}
	return ev.apply(s)
}

// UpdateCustomer replaces the customer contact details.
type UpdateCustomer struct {
	Customer Customer
}

func (e UpdateCustomer) apply(s Session) (Session, error) {
	s.Form.Customer = e.Customer
	return s, nil
}

// UpdateShippingAddress replaces the shipping address. While sameAsShipping is
// set the billing address follows it.
type UpdateShippingAddress struct {
	Address Address
}

func (e UpdateShippingAddress) apply(s Session) (Session, error) {
	s.Form.ShippingAddress = e.Address
	if s.Form.Billing.SameAsShipping {
		s.Form.Billing.Address = e.Address
	}
	return s, nil
}

// UpdateBillingAddress replaces the billing address block. Nil fields leave
// the current value in place. Turning sameAsShipping on copies the current
// shipping address over the billing one; turning it off keeps the last
// mirrored value as the starting point for editing.
type UpdateBillingAddress struct {
	SameAsShipping *bool
	Address        *Address
}

func (e UpdateBillingAddress) apply(s Session) (Session, error) {
	if e.SameAsShipping != nil {
		s.Form.Billing.SameAsShipping = *e.SameAsShipping
	}
	if s.Form.Billing.SameAsShipping {
		s.Form.Billing.Address = s.Form.ShippingAddress
		return s, nil
	}
	if e.Address != nil {
		s.Form.Billing.Address = *e.Address
	}
	return s, nil
}

// UpdatePayment replaces the payment instrument.
type UpdatePayment struct {
	Payment Payment
}

func (e UpdatePayment) apply(s Session) (Session, error) {
	s.Form.Payment = e.Payment
	return s, nil
}

// UpdateConsents flips the newsletter and terms checkboxes. Nil fields are
// left unchanged.
type UpdateConsents struct {
	Newsletter   *bool
	AcceptsTerms *bool
}

func (e UpdateConsents) apply(s Session) (Session, error) {
	if e.Newsletter != nil {
		s.Form.Newsletter = *e.Newsletter
	}
	if e.AcceptsTerms != nil {
		s.Form.AcceptsTerms = *e.AcceptsTerms
	}
	return s, nil
}

// UpdateInstructions replaces the special delivery instructions.
type UpdateInstructions struct {
	Instructions string
}

func (e UpdateInstructions) apply(s Session) (Session, error) {
	s.Form.Instructions = e.Instructions
	return s, nil
}

// SelectShippingMethod records the chosen method and invalidates the cached
// pricing, since the shipping cost feeds the totals.
type SelectShippingMethod struct {
	MethodID string
}

func (e SelectShippingMethod) apply(s Session) (Session, error) {
	s.Form.ShippingMethodID = e.MethodID
	s.Pricing = nil
	return s, nil
}

// Advance moves the session to the next step after the current step's
// validation gate passes. Review cannot be advanced past; only a successful
// submission leaves it.
type Advance struct{}

func (Advance) apply(s Session) (Session, error) {
	if s.Step == StepReview {
		return s, ErrSubmitRequired
	}
	if missing := missingFields(s.Step, s.Form); len(missing) > 0 {
		return s, &ValidationError{Step: s.Step, MissingFields: missing}
	}
	next, ok := nextStep(s.Step)
	if !ok || !canTransition(s.Step, next) {
		return s, ErrSubmitRequired
	}
	s.Step = next
	return s, nil
}

// Retreat moves the session back one step. Collected fields are kept so the
// customer can return forward without re-entering them.
type Retreat struct{}

func (Retreat) apply(s Session) (Session, error) {
	prev, ok := prevStep(s.Step)
	if !ok {
		return s, ErrAtFirstStep
	}
	if !canTransition(s.Step, prev) {
		return s, ErrAtFirstStep
	}
	s.Step = prev
	return s, nil
}
