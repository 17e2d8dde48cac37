package checkout

import (
	"fmt"
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError reports which fields block an advance from the given step.
// It never propagates past the state machine: the caller surfaces the missing
// fields inline and the session is left untouched.
type ValidationError struct {
	Step          Step
	MissingFields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout: step %s invalid, missing %s", e.Step, strings.Join(e.MissingFields, ", "))
}

// missingFields evaluates the gate for the given step. The information step
// requires the customer contact, the shipping step its address plus a chosen
// method, and the payment step the instrument and (unless mirrored) the
// billing address. Review has no advance gate; its gate is the terms consent
// checked at submit.
func missingFields(step Step, f Form) []string {
	var fields []string
	switch step {
	case StepInformation:
		fields = append(fields, structFields("customer", f.Customer)...)
	case StepShipping:
		fields = append(fields, structFields("shippingAddress", f.ShippingAddress)...)
		if strings.TrimSpace(f.ShippingMethodID) == "" {
			fields = append(fields, "shippingMethodId")
		}
	case StepPayment:
		fields = append(fields, structFields("payment", f.Payment)...)
		if !f.Billing.SameAsShipping {
			fields = append(fields, structFields("billingAddress", f.Billing.Address)...)
		}
	}
	return fields
}

func structFields(prefix string, v any) []string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{prefix}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, prefix+"."+fe.Field())
	}
	return out
}
