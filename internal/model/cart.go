package model

// CartLine is one product and quantity entry in the shopping cart.
// Product is captured when the line is created and refreshed on re-add.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns quantity × unit price.
func (l CartLine) Subtotal() int64 {
	return int64(l.Quantity) * l.Product.Price
}

// CartTotals holds the derived cart aggregates.
type CartTotals struct {
	TotalItems int   `json:"totalItems"`
	TotalPrice int64 `json:"totalPrice"`
}

// ComputeTotals recomputes totals from scratch.
func ComputeTotals(lines []CartLine) CartTotals {
	var t CartTotals
	for _, l := range lines {
		t.TotalItems += l.Quantity
		t.TotalPrice += l.Subtotal()
	}
	return t
}

// CartLineView is the serialised form of a line returned to views.
type CartLineView struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Subtotal int64   `json:"subtotal"`
}

// CartView is the JSON representation of a cart snapshot.
type CartView struct {
	Items      []CartLineView `json:"items"`
	TotalItems int            `json:"totalItems"`
	TotalPrice int64          `json:"totalPrice"`
	Warnings   []string       `json:"warnings,omitempty"`
}
