package service

import (
	"context"

	"froid-storefront/internal/cart"
	"froid-storefront/internal/checkout"
	"froid-storefront/internal/listing"
	"froid-storefront/internal/model"
)

// CatalogService defines the read-only catalogue operations.
type CatalogService interface {
	// Categories returns every category, served from a short-lived cache.
	Categories(ctx context.Context) ([]model.Category, error)

	// Brands returns the brands that currently have products.
	Brands(ctx context.Context) ([]model.Brand, error)

	// Products fetches one listing page with image URLs resolved.
	Products(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error)

	// Listing fetches the page for f together with its heading.
	Listing(ctx context.Context, f listing.Filters) (*Listing, error)

	// Product returns a single product or model.ErrProductNotFound.
	Product(ctx context.Context, id int64) (*model.Product, error)

	// ProductDetail returns a product with its breadcrumb trail and up
	// to eight other products of the same category.
	ProductDetail(ctx context.Context, id int64) (*ProductDetail, error)

	// Latest returns the n most recently added products.
	Latest(ctx context.Context, n int) ([]model.Product, error)
}

// CartService defines the operations on a session's cart.
type CartService interface {
	Get(ctx context.Context, sessionKey string) (cart.Snapshot, error)
	AddItem(ctx context.Context, sessionKey string, productID int64, qty int) (cart.Result, error)
	UpdateQuantity(ctx context.Context, sessionKey string, productID int64, qty int) (cart.Result, error)
	RemoveItem(ctx context.Context, sessionKey string, productID int64) (cart.Result, error)
	Clear(ctx context.Context, sessionKey string) (cart.Result, error)

	// Subscribe registers fn for every change of the session's cart.
	Subscribe(ctx context.Context, sessionKey string, fn cart.Observer) (unsubscribe func(), err error)
}

// ListingService manages the live listing view of each session.
type ListingService interface {
	// Open replaces the session's view with a new one over f and starts
	// loading it.
	Open(ctx context.Context, sessionKey string, f listing.Filters) (*listing.View, error)

	// Update applies a debounced filter change to the session's view.
	Update(sessionKey string, f listing.Filters) (listing.Snapshot, error)

	// SetPage moves the session's view to page immediately.
	SetPage(sessionKey string, page int) (listing.Snapshot, error)

	// Close tears down the session's view.
	Close(sessionKey string, view *listing.View)
}

// CheckoutService defines the order submission flow.
type CheckoutService interface {
	// Prefill returns the initial form for actor.
	Prefill(ctx context.Context, actor model.Actor) (checkout.Form, error)

	// Quote prices the session's cart for a delivery mode.
	Quote(ctx context.Context, sessionKey string, mode model.DeliveryMode) (checkout.Quote, error)

	// Submit validates the cart and form, places the order and clears
	// the cart on success.
	Submit(ctx context.Context, sessionKey string, actor model.Actor, form checkout.Form) (*model.OrderConfirmation, error)

	// PaymentMethods lists the methods currently offered.
	PaymentMethods() []model.PaymentMethod
}

// WishlistService defines wishlist operations for signed-in customers.
type WishlistService interface {
	List(ctx context.Context, actor model.Actor) ([]int64, error)
	Contains(ctx context.Context, actor model.Actor, productID int64) (bool, error)
	Add(ctx context.Context, actor model.Actor, productID int64) error
	Remove(ctx context.Context, actor model.Actor, productID int64) error
}

// ProductDetail is the product page payload.
type ProductDetail struct {
	Product     *model.Product     `json:"product"`
	Breadcrumbs []model.Breadcrumb `json:"breadcrumbs"`
	Related     []model.Product    `json:"related"`
}

// Listing is one rendered listing page.
type Listing struct {
	Filters listing.Filters    `json:"filters"`
	Heading listing.Heading    `json:"heading"`
	Page    *model.ProductPage `json:"page"`
}
