package service

import (
	"context"

	"froid-storefront/internal/events"
	"froid-storefront/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of backend.Client.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Categories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockBackend) AvailableBrands(ctx context.Context) ([]model.Brand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Brand), args.Error(1)
}

func (m *MockBackend) Products(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductPage), args.Error(1)
}

func (m *MockBackend) Product(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Copy so callers mutating the result do not touch the fixture.
	p := *args.Get(0).(*model.Product)
	return &p, args.Error(1)
}

func (m *MockBackend) Profile(ctx context.Context, token string) (*model.Profile, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockBackend) Wishlist(ctx context.Context, token string) ([]int64, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockBackend) AddToWishlist(ctx context.Context, token string, productID int64) error {
	return m.Called(ctx, token, productID).Error(0)
}

func (m *MockBackend) RemoveFromWishlist(ctx context.Context, token string, productID int64) error {
	return m.Called(ctx, token, productID).Error(0)
}

func (m *MockBackend) CreateGuestOrder(ctx context.Context, draft *model.OrderDraft) (*model.OrderConfirmation, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderConfirmation), args.Error(1)
}

func (m *MockBackend) CreateCustomerOrder(ctx context.Context, token string, draft *model.OrderDraft) (*model.OrderConfirmation, error) {
	args := m.Called(ctx, token, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderConfirmation), args.Error(1)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderSubmitted(ctx context.Context, event events.OrderSubmitted) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

// MockRecorder is a mock implementation of SubmissionRecorder.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) IncSubmission(actor, outcome string) {
	m.Called(actor, outcome)
}
