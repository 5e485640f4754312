package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	"froid-storefront/internal/cart"
	"froid-storefront/internal/checkout"
	"froid-storefront/internal/listing"
	"froid-storefront/internal/middleware"
	"froid-storefront/internal/model"
	"froid-storefront/internal/service"

	"github.com/stretchr/testify/mock"
)

const testSession = "0f8fad5b-d9cb-469f-a165-70867728950e"

// newRequest builds a request carrying the test cart session.
func newRequest(method, target string, body any) *http.Request {
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		r = bytes.NewBuffer(data)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithSession(req.Context(), testSession))
}

func decodeError(body *bytes.Buffer) model.ErrorResponse {
	var resp model.ErrorResponse
	_ = json.Unmarshal(body.Bytes(), &resp)
	return resp
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, sessionKey string) (cart.Snapshot, error) {
	args := m.Called(ctx, sessionKey)
	return args.Get(0).(cart.Snapshot), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, sessionKey string, productID int64, qty int) (cart.Result, error) {
	args := m.Called(ctx, sessionKey, productID, qty)
	return args.Get(0).(cart.Result), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, sessionKey string, productID int64, qty int) (cart.Result, error) {
	args := m.Called(ctx, sessionKey, productID, qty)
	return args.Get(0).(cart.Result), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, sessionKey string, productID int64) (cart.Result, error) {
	args := m.Called(ctx, sessionKey, productID)
	return args.Get(0).(cart.Result), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, sessionKey string) (cart.Result, error) {
	args := m.Called(ctx, sessionKey)
	return args.Get(0).(cart.Result), args.Error(1)
}

func (m *MockCartService) Subscribe(ctx context.Context, sessionKey string, fn cart.Observer) (func(), error) {
	args := m.Called(ctx, sessionKey, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

// MockCatalogService is a mock implementation of CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Categories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCatalogService) Brands(ctx context.Context) ([]model.Brand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Brand), args.Error(1)
}

func (m *MockCatalogService) Products(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductPage), args.Error(1)
}

func (m *MockCatalogService) Listing(ctx context.Context, f listing.Filters) (*service.Listing, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Listing), args.Error(1)
}

func (m *MockCatalogService) Product(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) ProductDetail(ctx context.Context, id int64) (*service.ProductDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProductDetail), args.Error(1)
}

func (m *MockCatalogService) Latest(ctx context.Context, n int) ([]model.Product, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Prefill(ctx context.Context, actor model.Actor) (checkout.Form, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(checkout.Form), args.Error(1)
}

func (m *MockCheckoutService) Quote(ctx context.Context, sessionKey string, mode model.DeliveryMode) (checkout.Quote, error) {
	args := m.Called(ctx, sessionKey, mode)
	return args.Get(0).(checkout.Quote), args.Error(1)
}

func (m *MockCheckoutService) Submit(ctx context.Context, sessionKey string, actor model.Actor, form checkout.Form) (*model.OrderConfirmation, error) {
	args := m.Called(ctx, sessionKey, actor, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderConfirmation), args.Error(1)
}

func (m *MockCheckoutService) PaymentMethods() []model.PaymentMethod {
	return m.Called().Get(0).([]model.PaymentMethod)
}

// MockWishlistService is a mock implementation of WishlistService.
type MockWishlistService struct {
	mock.Mock
}

func (m *MockWishlistService) List(ctx context.Context, actor model.Actor) ([]int64, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockWishlistService) Contains(ctx context.Context, actor model.Actor, productID int64) (bool, error) {
	args := m.Called(ctx, actor, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWishlistService) Add(ctx context.Context, actor model.Actor, productID int64) error {
	return m.Called(ctx, actor, productID).Error(0)
}

func (m *MockWishlistService) Remove(ctx context.Context, actor model.Actor, productID int64) error {
	return m.Called(ctx, actor, productID).Error(0)
}

// MockListingService is a mock implementation of ListingService.
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Open(ctx context.Context, sessionKey string, f listing.Filters) (*listing.View, error) {
	args := m.Called(ctx, sessionKey, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.View), args.Error(1)
}

func (m *MockListingService) Update(sessionKey string, f listing.Filters) (listing.Snapshot, error) {
	args := m.Called(sessionKey, f)
	return args.Get(0).(listing.Snapshot), args.Error(1)
}

func (m *MockListingService) SetPage(sessionKey string, page int) (listing.Snapshot, error) {
	args := m.Called(sessionKey, page)
	return args.Get(0).(listing.Snapshot), args.Error(1)
}

func (m *MockListingService) Close(sessionKey string, view *listing.View) {
	m.Called(sessionKey, view)
}
