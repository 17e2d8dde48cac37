package checkout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/checkout-api/internal/pricing"
)

func validCustomer() Customer {
	return Customer{Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"}
}

func validAddress() Address {
	return Address{
		FirstName: "Jane", LastName: "Doe",
		Line1: "1 Main St", City: "Springfield", State: "IL", Zip: "62704", Country: "US",
	}
}

func validPayment() Payment {
	return Payment{Method: MethodCard, CardNumber: "4242424242424242", Expiry: "12/30", CVV: "123", NameOnCard: "Jane Doe"}
}

func sessionAt(step Step) Session {
	return Session{
		ID:   "sess-1",
		Step: step,
		Form: Form{
			Customer:         validCustomer(),
			ShippingAddress:  validAddress(),
			Billing:          BillingAddress{SameAsShipping: true, Address: validAddress()},
			Payment:          validPayment(),
			ShippingMethodID: "standard",
		},
	}
}

func TestApplyRejectsWhileSubmitting(t *testing.T) {
	s := sessionAt(StepReview)
	s.Submitting = true
	_, err := Apply(s, UpdateInstructions{Instructions: "leave at door"})
	require.ErrorIs(t, err, ErrSubmitInFlight)
}

func TestApplyRejectsAfterSubmission(t *testing.T) {
	s := sessionAt(StepSubmitted)
	_, err := Apply(s, Advance{})
	require.ErrorIs(t, err, ErrSessionComplete)
}

func TestAdvanceRequiresStepFields(t *testing.T) {
	s := Session{ID: "sess-1", Step: StepInformation}
	_, err := Apply(s, Advance{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, StepInformation, verr.Step)
	require.Contains(t, verr.MissingFields, "customer.email")
	require.Contains(t, verr.MissingFields, "customer.firstName")
}

func TestAdvanceWalksTheStepOrder(t *testing.T) {
	s := sessionAt(StepInformation)
	for _, want := range []Step{StepShipping, StepPayment, StepReview} {
		next, err := Apply(s, Advance{})
		require.NoError(t, err)
		require.Equal(t, want, next.Step)
		s = next
	}
	_, err := Apply(s, Advance{})
	require.ErrorIs(t, err, ErrSubmitRequired, "review only leaves through submit")
}

func TestAdvanceShippingRequiresMethod(t *testing.T) {
	s := sessionAt(StepShipping)
	s.Form.ShippingMethodID = ""
	_, err := Apply(s, Advance{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{"shippingMethodId"}, verr.MissingFields)
}

func TestAdvancePaymentRequiresBillingUnlessMirrored(t *testing.T) {
	s := sessionAt(StepPayment)
	s.Form.Billing = BillingAddress{SameAsShipping: false}
	_, err := Apply(s, Advance{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.MissingFields, "billingAddress.line1")

	s.Form.Billing.SameAsShipping = true
	next, err := Apply(s, Advance{})
	require.NoError(t, err)
	require.Equal(t, StepReview, next.Step)
}

func TestAdvanceCardFieldsOnlyForCardMethod(t *testing.T) {
	s := sessionAt(StepPayment)
	s.Form.Payment = Payment{Method: MethodPaypal}
	next, err := Apply(s, Advance{})
	require.NoError(t, err)
	require.Equal(t, StepReview, next.Step)

	s.Form.Payment = Payment{Method: MethodCard}
	_, err = Apply(s, Advance{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.MissingFields, "payment.cardNumber")
	require.Contains(t, verr.MissingFields, "payment.cvv")
}

func TestRetreatKeepsCollectedFields(t *testing.T) {
	s := sessionAt(StepPayment)
	back, err := Apply(s, Retreat{})
	require.NoError(t, err)
	require.Equal(t, StepShipping, back.Step)
	require.Equal(t, s.Form, back.Form, "retreat never discards form data")

	first := sessionAt(StepInformation)
	_, err = Apply(first, Retreat{})
	require.ErrorIs(t, err, ErrAtFirstStep)
}

func TestShippingAddressMirrorsToBilling(t *testing.T) {
	s := sessionAt(StepShipping)
	updated := validAddress()
	updated.City = "Portland"
	next, err := Apply(s, UpdateShippingAddress{Address: updated})
	require.NoError(t, err)
	require.Equal(t, "Portland", next.Form.Billing.Address.City)

	off := false
	next, err = Apply(next, UpdateBillingAddress{SameAsShipping: &off})
	require.NoError(t, err)
	require.False(t, next.Form.Billing.SameAsShipping)
	require.Equal(t, "Portland", next.Form.Billing.Address.City, "last mirrored value kept for editing")

	elsewhere := validAddress()
	elsewhere.City = "Denver"
	next, err = Apply(next, UpdateShippingAddress{Address: elsewhere})
	require.NoError(t, err)
	require.Equal(t, "Portland", next.Form.Billing.Address.City, "independent billing no longer follows shipping")
}

func TestTurningMirrorOnCopiesShipping(t *testing.T) {
	s := sessionAt(StepPayment)
	s.Form.Billing = BillingAddress{SameAsShipping: false, Address: Address{City: "Elsewhere"}}
	on := true
	next, err := Apply(s, UpdateBillingAddress{SameAsShipping: &on})
	require.NoError(t, err)
	require.Equal(t, s.Form.ShippingAddress, next.Form.Billing.Address)
}

func TestSelectShippingMethodInvalidatesPricing(t *testing.T) {
	s := sessionAt(StepShipping)
	s.Pricing = &pricing.Breakdown{Subtotal: 1000, Total: 1080}
	next, err := Apply(s, SelectShippingMethod{MethodID: "express"})
	require.NoError(t, err)
	require.Nil(t, next.Pricing)
	require.Equal(t, "express", next.Form.ShippingMethodID)
}
