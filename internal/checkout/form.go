package checkout

import (
	"strings"

	"froid-storefront/internal/model"
)

// Form is the checkout form as submitted by the view.
type Form struct {
	FirstName     string              `json:"firstName" validate:"required,min=2"`
	LastName      string              `json:"lastName" validate:"required,min=2"`
	Email         string              `json:"email" validate:"required,email"`
	Phone         string              `json:"phone" validate:"required"`
	Line1         string              `json:"line1" validate:"required"`
	Line2         string              `json:"line2"`
	City          string              `json:"city" validate:"required"`
	PostalCode    string              `json:"postalCode"`
	DeliveryMode  model.DeliveryMode  `json:"deliveryMode" validate:"required,delivery_mode"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod" validate:"required,payment_method"`
	Comment       string              `json:"comment" validate:"max=500"`
}

// DefaultForm is the blank form a view starts from.
func DefaultForm() Form {
	return Form{
		DeliveryMode:  model.DeliveryHome,
		PaymentMethod: model.PaymentMobileWalletA,
	}
}

// Prefill returns the default form with the customer's contact details.
func Prefill(profile *model.Profile) Form {
	f := DefaultForm()
	if profile == nil {
		return f
	}
	f.FirstName = profile.FirstName
	f.LastName = profile.LastName
	f.Email = profile.Email
	f.Phone = profile.Phone
	return f
}

// Normalize trims surrounding whitespace from every text field.
func (f Form) Normalize() Form {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Line1 = strings.TrimSpace(f.Line1)
	f.Line2 = strings.TrimSpace(f.Line2)
	f.City = strings.TrimSpace(f.City)
	f.PostalCode = strings.TrimSpace(f.PostalCode)
	f.Comment = strings.TrimSpace(f.Comment)
	return f
}

// Address extracts the delivery address.
func (f Form) Address() model.Address {
	return model.Address{
		FirstName:  f.FirstName,
		LastName:   f.LastName,
		Line1:      f.Line1,
		Line2:      f.Line2,
		City:       f.City,
		PostalCode: f.PostalCode,
		Phone:      f.Phone,
	}
}

// GuestContact extracts the inline contact of a guest order.
func (f Form) GuestContact() *model.GuestContact {
	return &model.GuestContact{
		Email:     f.Email,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Phone:     f.Phone,
	}
}
