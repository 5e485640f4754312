package checkout

import (
	"testing"

	"froid-storefront/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() Form {
	return Form{
		FirstName:     "Awa",
		LastName:      "Diop",
		Email:         "awa@example.sn",
		Phone:         "+221 77 123 45 67",
		Line1:         "Cité Keur Gorgui, Villa 12",
		City:          "Dakar",
		DeliveryMode:  model.DeliveryHome,
		PaymentMethod: model.PaymentMobileWalletA,
	}
}

func someLines() []model.CartLine {
	return []model.CartLine{
		{Product: model.Product{ID: 1, Price: 150000, Stock: 5, Available: true}, Quantity: 1},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		lines      []model.CartLine
		mutate     func(f *Form)
		wantFields []string
		wantCart   bool
	}{
		{name: "valid", lines: someLines()},
		{name: "empty cart", lines: nil, wantCart: true},
		{
			name:       "short names",
			lines:      someLines(),
			mutate:     func(f *Form) { f.FirstName = "A"; f.LastName = " B " },
			wantFields: []string{"firstName", "lastName"},
		},
		{
			name:       "bad email",
			lines:      someLines(),
			mutate:     func(f *Form) { f.Email = "awa-at-example" },
			wantFields: []string{"email"},
		},
		{
			name:  "missing address and phone",
			lines: someLines(),
			mutate: func(f *Form) {
				f.Line1 = "   "
				f.City = ""
				f.Phone = ""
			},
			wantFields: []string{"line1", "city", "phone"},
		},
		{
			name:       "unknown delivery mode and payment",
			lines:      someLines(),
			mutate:     func(f *Form) { f.DeliveryMode = "DRONE"; f.PaymentMethod = "" },
			wantFields: []string{"deliveryMode", "paymentMethod"},
		},
		{
			name:       "empty cart and invalid form",
			lines:      []model.CartLine{},
			mutate:     func(f *Form) { f.Email = "" },
			wantFields: []string{"email"},
			wantCart:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			if tt.mutate != nil {
				tt.mutate(&form)
			}

			err := Validate(tt.lines, form)

			if len(tt.wantFields) == 0 && !tt.wantCart {
				require.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Len(t, verr.Fields, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, verr.Fields, f)
			}
			if tt.wantCart {
				assert.Equal(t, "Your cart is empty", verr.Cart)
				assert.ErrorIs(t, err, model.ErrEmptyCart)
			} else {
				assert.Empty(t, verr.Cart)
				assert.NotErrorIs(t, err, model.ErrEmptyCart)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Cart:   "Your cart is empty",
		Fields: map[string]string{"email": "is required", "city": "is required"},
	}

	assert.Equal(t, "validation failed: Your cart is empty; city is required; email is required", err.Error())
}

func TestPolicy_Check(t *testing.T) {
	customer := model.Actor{Kind: model.ActorCustomer, CustomerID: "12"}

	tests := []struct {
		name    string
		policy  Policy
		actor   model.Actor
		payment model.PaymentMethod
		wantErr error
		field   bool
	}{
		{name: "all enabled", policy: Policy{GuestCheckout: true, MultiplePaymentMethods: true}, actor: model.Guest(), payment: model.PaymentMobileWalletB},
		{name: "guest checkout disabled", policy: Policy{MultiplePaymentMethods: true}, actor: model.Guest(), payment: model.PaymentMobileWalletA, wantErr: model.ErrGuestCheckoutDisabled},
		{name: "customer when guest checkout disabled", policy: Policy{MultiplePaymentMethods: true}, actor: customer, payment: model.PaymentMobileWalletA},
		{name: "single method accepts cash", policy: Policy{GuestCheckout: true}, actor: model.Guest(), payment: model.PaymentCashOnDelivery},
		{name: "single method rejects wallet", policy: Policy{GuestCheckout: true}, actor: customer, payment: model.PaymentMobileWalletA, field: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			form.PaymentMethod = tt.payment

			err := tt.policy.Check(tt.actor, form)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.field:
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.Fields, "paymentMethod")
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestPolicy_DefaultForm(t *testing.T) {
	assert.Equal(t, model.PaymentMobileWalletA, Policy{MultiplePaymentMethods: true}.DefaultForm().PaymentMethod)
	assert.Equal(t, model.PaymentCashOnDelivery, Policy{}.DefaultForm().PaymentMethod)
	assert.Len(t, Policy{MultiplePaymentMethods: true}.PaymentMethods(), 4)
}

func TestPrefill(t *testing.T) {
	f := Prefill(&model.Profile{ID: 3, FirstName: "Awa", LastName: "Diop", Email: "awa@example.sn", Phone: "771234567"})

	assert.Equal(t, "Awa", f.FirstName)
	assert.Equal(t, "Diop", f.LastName)
	assert.Equal(t, "awa@example.sn", f.Email)
	assert.Equal(t, "771234567", f.Phone)
	assert.Equal(t, model.DeliveryHome, f.DeliveryMode)
	assert.Equal(t, model.PaymentMobileWalletA, f.PaymentMethod)

	assert.Equal(t, DefaultForm(), Prefill(nil))
}
