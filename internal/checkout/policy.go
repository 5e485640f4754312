package checkout

import "froid-storefront/internal/model"

// Policy applies the storefront feature flags to a submission.
type Policy struct {
	GuestCheckout          bool
	MultiplePaymentMethods bool
}

// Check rejects guests when guest checkout is off, and any payment
// method other than cash on delivery when only one method is offered.
func (p Policy) Check(actor model.Actor, form Form) error {
	if !actor.IsCustomer() && !p.GuestCheckout {
		return model.ErrGuestCheckoutDisabled
	}
	if !p.MultiplePaymentMethods && form.PaymentMethod != model.PaymentCashOnDelivery {
		return &ValidationError{Fields: map[string]string{
			"paymentMethod": "only cash on delivery is available",
		}}
	}
	return nil
}

// PaymentMethods lists the methods a view may offer.
func (p Policy) PaymentMethods() []model.PaymentMethod {
	if !p.MultiplePaymentMethods {
		return []model.PaymentMethod{model.PaymentCashOnDelivery}
	}
	return []model.PaymentMethod{
		model.PaymentMobileWalletA,
		model.PaymentMobileWalletB,
		model.PaymentCashOnDelivery,
		model.PaymentBankTransfer,
	}
}

// DefaultForm is the blank form adjusted to the offered payment methods.
func (p Policy) DefaultForm() Form {
	f := DefaultForm()
	f.PaymentMethod = p.PaymentMethods()[0]
	return f
}
