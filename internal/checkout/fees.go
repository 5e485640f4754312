// Package checkout derives delivery fees, totals and order drafts from a
// cart and the checkout form, and checks submission preconditions.
package checkout

import "froid-storefront/internal/model"

// DefaultExpressFee is the express delivery surcharge in XOF.
const DefaultExpressFee int64 = 5000

// FeeSchedule prices delivery modes.
type FeeSchedule struct {
	ExpressFee int64
}

// DefaultFees is the schedule used by the package-level helpers.
var DefaultFees = FeeSchedule{ExpressFee: DefaultExpressFee}

// Quote is the amount breakdown shown before submission.
type Quote struct {
	DeliveryMode model.DeliveryMode `json:"deliveryMode"`
	TotalItems   int                `json:"totalItems"`
	Subtotal     int64              `json:"subtotal"`
	DeliveryFee  int64              `json:"deliveryFee"`
	TotalDue     int64              `json:"totalDue"`
	// Submitting is set while an order for the same cart is in flight.
	Submitting bool `json:"submitting"`
}

// DeliveryFee returns the fee for mode. Home delivery and store pickup
// are free; unknown modes cost nothing and are rejected by Validate.
func (s FeeSchedule) DeliveryFee(mode model.DeliveryMode) int64 {
	if mode == model.DeliveryExpress {
		return s.ExpressFee
	}
	return 0
}

// TotalDue is the cart total plus the delivery fee for mode.
func (s FeeSchedule) TotalDue(totals model.CartTotals, mode model.DeliveryMode) int64 {
	return totals.TotalPrice + s.DeliveryFee(mode)
}

// Quote builds the amount breakdown for mode.
func (s FeeSchedule) Quote(totals model.CartTotals, mode model.DeliveryMode) Quote {
	return Quote{
		DeliveryMode: mode,
		TotalItems:   totals.TotalItems,
		Subtotal:     totals.TotalPrice,
		DeliveryFee:  s.DeliveryFee(mode),
		TotalDue:     s.TotalDue(totals, mode),
	}
}

// DeliveryFee prices mode with DefaultFees.
func DeliveryFee(mode model.DeliveryMode) int64 {
	return DefaultFees.DeliveryFee(mode)
}

// TotalDue prices the cart with DefaultFees.
func TotalDue(totals model.CartTotals, mode model.DeliveryMode) int64 {
	return DefaultFees.TotalDue(totals, mode)
}
