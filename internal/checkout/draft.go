package checkout

import "froid-storefront/internal/model"

// BuildOrderDraft assembles the order payload from the cart lines, the
// form and the acting user. Customers are referenced by id; guests carry
// their contact fields inline.
func (s FeeSchedule) BuildOrderDraft(lines []model.CartLine, form Form, actor model.Actor) *model.OrderDraft {
	form = form.Normalize()

	orderLines := make([]model.OrderLine, len(lines))
	for i, l := range lines {
		orderLines[i] = model.OrderLine{
			ProductID:    l.Product.ID,
			Quantity:     l.Quantity,
			UnitPrice:    l.Product.Price,
			LineSubtotal: l.Subtotal(),
		}
	}

	totals := model.ComputeTotals(lines)
	draft := &model.OrderDraft{
		Lines:         orderLines,
		Address:       form.Address(),
		DeliveryMode:  form.DeliveryMode,
		PaymentMethod: form.PaymentMethod,
		Comment:       form.Comment,
		Subtotal:      totals.TotalPrice,
		DeliveryFee:   s.DeliveryFee(form.DeliveryMode),
		TotalDue:      s.TotalDue(totals, form.DeliveryMode),
	}

	if actor.IsCustomer() {
		draft.CustomerRef = actor.CustomerID
	} else {
		draft.Guest = form.GuestContact()
	}

	return draft
}

// BuildOrderDraft builds a draft priced with DefaultFees.
func BuildOrderDraft(lines []model.CartLine, form Form, actor model.Actor) *model.OrderDraft {
	return DefaultFees.BuildOrderDraft(lines, form, actor)
}
