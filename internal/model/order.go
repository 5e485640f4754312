package model

import "time"

// DeliveryMode is the fulfilment method chosen at checkout.
type DeliveryMode string

const (
	DeliveryHome    DeliveryMode = "HOME_DELIVERY"
	DeliveryExpress DeliveryMode = "EXPRESS_DELIVERY"
	DeliveryPickup  DeliveryMode = "STORE_PICKUP"
)

// Valid reports whether m is a known delivery mode.
func (m DeliveryMode) Valid() bool {
	switch m {
	case DeliveryHome, DeliveryExpress, DeliveryPickup:
		return true
	}
	return false
}

// PaymentMethod is an opaque tag forwarded to the backend.
type PaymentMethod string

const (
	PaymentMobileWalletA  PaymentMethod = "MOBILE_WALLET_A"
	PaymentMobileWalletB  PaymentMethod = "MOBILE_WALLET_B"
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentBankTransfer   PaymentMethod = "BANK_TRANSFER"
)

// Valid reports whether p is a known payment method.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentMobileWalletA, PaymentMobileWalletB, PaymentCashOnDelivery, PaymentBankTransfer:
		return true
	}
	return false
}

// ActorKind distinguishes signed-in customers from guests.
type ActorKind string

const (
	ActorGuest    ActorKind = "guest"
	ActorCustomer ActorKind = "customer"
)

// Actor is whoever is driving the current request.
type Actor struct {
	Kind       ActorKind
	CustomerID string
	Email      string
	Token      string
}

// IsCustomer reports whether the actor is an authenticated customer.
func (a Actor) IsCustomer() bool {
	return a.Kind == ActorCustomer
}

// Guest returns the anonymous actor.
func Guest() Actor {
	return Actor{Kind: ActorGuest}
}

// Address is a delivery address.
type Address struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode,omitempty"`
	Phone      string `json:"phone"`
}

// GuestContact carries the inline contact fields of a guest order.
type GuestContact struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// OrderLine is one line of an order draft.
type OrderLine struct {
	ProductID    int64 `json:"productId"`
	Quantity     int   `json:"quantity"`
	UnitPrice    int64 `json:"unitPrice"`
	LineSubtotal int64 `json:"lineSubtotal"`
}

// OrderDraft is assembled at submission time and never persisted.
// Exactly one of CustomerRef and Guest is set.
type OrderDraft struct {
	Lines         []OrderLine   `json:"lines"`
	Address       Address       `json:"address"`
	DeliveryMode  DeliveryMode  `json:"deliveryMode"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Comment       string        `json:"comment,omitempty"`
	Subtotal      int64         `json:"subtotal"`
	DeliveryFee   int64         `json:"deliveryFee"`
	TotalDue      int64         `json:"totalDue"`
	CustomerRef   string        `json:"customerRef,omitempty"`
	Guest         *GuestContact `json:"guest,omitempty"`
}

// OrderConfirmation is returned by the backend after an order is created.
type OrderConfirmation struct {
	OrderID     int64     `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Status      string    `json:"status,omitempty"`
	TotalDue    int64     `json:"totalDue"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Profile is the signed-in customer's profile.
type Profile struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}
