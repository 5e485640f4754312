package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"froid-storefront/internal/cart"
	"froid-storefront/internal/middleware"
	"froid-storefront/internal/model"
	"froid-storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func cartRoutes(h *CartHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/cart", h.Get)
	r.Delete("/api/cart", h.Clear)
	r.Get("/api/cart/events", h.Events)
	r.Post("/api/cart/items", h.AddItem)
	r.Put("/api/cart/items/{productId}", h.UpdateQuantity)
	r.Delete("/api/cart/items/{productId}", h.RemoveItem)
	return r
}

func cartResult(qty int, warnings ...string) cart.Result {
	lines := []model.CartLine{{Product: model.Product{ID: 1, Name: "Split", Price: 150000}, Quantity: qty}}
	return cart.Result{
		Snapshot: cart.Snapshot{Lines: lines, Totals: model.ComputeTotals(lines)},
		Warnings: warnings,
	}
}

func TestCartHandler_AddItem(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		mockQty        int
		mockReturn     cart.Result
		mockError      error
		expectedStatus int
		expectedCode   string
		expectService  bool
	}{
		{
			name:           "Success",
			body:           AddItemRequest{ProductID: 1, Quantity: 2},
			mockQty:        2,
			mockReturn:     cartResult(2),
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Quantity defaults to one",
			body:           map[string]any{"productId": 1},
			mockQty:        1,
			mockReturn:     cartResult(1),
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Clamped with warning",
			body:           AddItemRequest{ProductID: 1, Quantity: 10},
			mockQty:        10,
			mockReturn:     cartResult(3, "Only 3 unit(s) of Split can be added to the cart"),
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Product not found",
			body:           AddItemRequest{ProductID: 1, Quantity: 1},
			mockQty:        1,
			mockError:      model.ErrProductNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeProductNotFound,
			expectService:  true,
		},
		{
			name:           "Out of stock",
			body:           AddItemRequest{ProductID: 1, Quantity: 1},
			mockQty:        1,
			mockError:      model.ErrProductUnavailable,
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeProductUnavailable,
			expectService:  true,
		},
		{
			name:           "Invalid quantity",
			body:           AddItemRequest{ProductID: 1, Quantity: -2},
			mockQty:        -2,
			mockError:      model.ErrInvalidQuantity,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidQuantity,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			body:           "invalid json",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCartService)
			if tt.expectService {
				svc.On("AddItem", mock.Anything, testSession, int64(1), tt.mockQty).Return(tt.mockReturn, tt.mockError)
			}
			h := NewCartHandler(svc, zerolog.Nop())

			w := httptest.NewRecorder()
			cartRoutes(h).ServeHTTP(w, newRequest(http.MethodPost, "/api/cart/items", tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(w.Body).Error)
			} else {
				var view model.CartView
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
				assert.Equal(t, tt.mockReturn.Snapshot.Totals.TotalItems, view.TotalItems)
				assert.Equal(t, tt.mockReturn.Warnings, view.Warnings)
			}
			if tt.expectService {
				svc.AssertExpectations(t)
			} else {
				svc.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCartHandler_Get(t *testing.T) {
	svc := new(MockCartService)
	svc.On("Get", mock.Anything, testSession).Return(cartResult(2).Snapshot, nil)
	h := NewCartHandler(svc, zerolog.Nop())

	w := httptest.NewRecorder()
	cartRoutes(h).ServeHTTP(w, newRequest(http.MethodGet, "/api/cart", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var view model.CartView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 2, view.TotalItems)
	assert.Equal(t, int64(300000), view.TotalPrice)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(300000), view.Items[0].Subtotal)
}

func TestCartHandler_UpdateQuantity(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{name: "Success", path: "/api/cart/items/1", expectedStatus: http.StatusOK, expectService: true},
		{name: "Line not found", path: "/api/cart/items/1", mockError: model.ErrLineNotFound, expectedStatus: http.StatusNotFound, expectService: true},
		{name: "Invalid product id", path: "/api/cart/items/abc", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCartService)
			if tt.expectService {
				svc.On("UpdateQuantity", mock.Anything, testSession, int64(1), 4).Return(cartResult(4), tt.mockError)
			}
			h := NewCartHandler(svc, zerolog.Nop())

			w := httptest.NewRecorder()
			cartRoutes(h).ServeHTTP(w, newRequest(http.MethodPut, tt.path, UpdateQuantityRequest{Quantity: 4}))

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestCartHandler_RemoveAndClear(t *testing.T) {
	svc := new(MockCartService)
	svc.On("RemoveItem", mock.Anything, testSession, int64(1)).Return(cart.Result{}, nil)
	svc.On("Clear", mock.Anything, testSession).Return(cart.Result{}, nil)
	h := NewCartHandler(svc, zerolog.Nop())
	routes := cartRoutes(h)

	w := httptest.NewRecorder()
	routes.ServeHTTP(w, newRequest(http.MethodDelete, "/api/cart/items/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	routes.ServeHTTP(w, newRequest(http.MethodDelete, "/api/cart", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)

	svc.AssertExpectations(t)
}

// readEvent reads one Server-Sent Event, skipping comments.
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "" && event != "":
			return event, data
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestCartHandler_Events(t *testing.T) {
	ctx := context.Background()
	catalog := new(MockCatalogService)
	catalog.On("Product", mock.Anything, int64(1)).Return(&model.Product{ID: 1, Name: "Split", Price: 1000, Stock: 9, Available: true}, nil)
	carts := cart.NewRegistry(cart.NewMemoryStorage(), 99, zerolog.Nop())
	svc := service.NewCartService(carts, catalog, zerolog.Nop())
	h := NewCartHandler(svc, zerolog.Nop())

	srv := httptest.NewServer(middleware.CartSession(time.Hour, false)(cartRoutes(h)))
	defer srv.Close()

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, srv.URL+"/api/cart/events", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.SessionHeader, testSession)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	event, data := readEvent(t, reader)
	assert.Equal(t, "cart", event)
	assert.Contains(t, data, `"totalItems":0`)

	_, err = svc.AddItem(ctx, testSession, 1, 3)
	require.NoError(t, err)

	event, data = readEvent(t, reader)
	assert.Equal(t, "cart", event)
	assert.Contains(t, data, `"totalItems":3`)
}
