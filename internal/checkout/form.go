package checkout

// Customer holds the contact details collected at the information step.
type Customer struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone,omitempty"`
}

// Address is a postal address. The validate tags mark the fields that must be
// non-empty before the owning step can advance.
type Address struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Company   string `json:"company,omitempty"`
	Line1     string `json:"line1" validate:"required"`
	Line2     string `json:"line2,omitempty"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Zip       string `json:"zip" validate:"required"`
	Country   string `json:"country" validate:"required"`
	Phone     string `json:"phone,omitempty"`
}

// Payment method identifiers accepted at checkout.
const (
	MethodCard      = "card"
	MethodPaypal    = "paypal"
	MethodApplePay  = "apple_pay"
	MethodGooglePay = "google_pay"
)

// Payment is the payment instrument. Card subfields are required only when
// the card method is selected.
type Payment struct {
	Method     string `json:"method" validate:"required,oneof=card paypal apple_pay google_pay"`
	CardNumber string `json:"cardNumber,omitempty" validate:"required_if=Method card"`
	Expiry     string `json:"expiry,omitempty" validate:"required_if=Method card"`
	CVV        string `json:"cvv,omitempty" validate:"required_if=Method card"`
	NameOnCard string `json:"nameOnCard,omitempty" validate:"required_if=Method card"`
}

// BillingAddress wraps an address with the same-as-shipping flag. While the
// flag is set the address mirrors the shipping address on every update.
type BillingAddress struct {
	SameAsShipping bool    `json:"sameAsShipping"`
	Address        Address `json:"address"`
}

// Form is the aggregate a checkout session accumulates field by field. It is
// created empty at session start and discarded on successful submission or
// abandonment.
type Form struct {
	Customer         Customer       `json:"customer"`
	ShippingAddress  Address        `json:"shippingAddress"`
	Billing          BillingAddress `json:"billingAddress"`
	Payment          Payment        `json:"payment"`
	ShippingMethodID string         `json:"shippingMethodId"`
	Instructions     string         `json:"specialInstructions,omitempty"`
	Newsletter       bool           `json:"acceptsNewsletter"`
	AcceptsTerms     bool           `json:"acceptsTerms"`
}

// EffectiveBilling resolves the billing address used for submission: a copy
// of the shipping address when sameAsShipping is set.
func (f Form) EffectiveBilling() Address {
	if f.Billing.SameAsShipping {
		return f.ShippingAddress
	}
	return f.Billing.Address
}
