package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"froid-storefront/internal/asset"
	"froid-storefront/internal/auth"
	"froid-storefront/internal/backend"
	"froid-storefront/internal/cart"
	"froid-storefront/internal/checkout"
	"froid-storefront/internal/config"
	"froid-storefront/internal/handler"
	"froid-storefront/internal/listing"
	"froid-storefront/internal/middleware"
	"froid-storefront/internal/model"
	"froid-storefront/internal/repository"
	"froid-storefront/internal/router"
	"froid-storefront/internal/service"
	"froid-storefront/internal/wishlist"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T, testDB *TestDB, fb *FakeBackend) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	client := backend.New(fb.URL, 5*time.Second, logger)
	resolver := asset.NewResolver("https://cdn.froid.sn/uploads", "/img/placeholder.png", nil, logger)
	carts := cart.NewRegistry(repository.NewCartRepository(testDB.Pool, logger), 99, logger)
	views := listing.NewRegistry()
	t.Cleanup(views.CloseAll)

	catalogService := service.NewCatalogService(client, resolver, logger)
	cartService := service.NewCartService(carts, catalogService, logger)
	checkoutService := service.NewCheckoutService(carts, client, checkout.DefaultFees,
		checkout.Policy{GuestCheckout: true, MultiplePaymentMethods: true}, nil, nil, logger)
	wishlistService := service.NewWishlistService(wishlist.NewCache(client, time.Minute, logger), false, logger)
	listingService := service.NewListingService(catalogService, views, service.ListingOptions{Settings: listing.DefaultSettings}, logger)

	return router.New(router.Handlers{
		Catalog:  handler.NewCatalogHandler(catalogService, listing.DefaultSettings, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Wishlist: handler.NewWishlistHandler(wishlistService, logger),
		Listing:  handler.NewListingHandler(listingService, listing.DefaultSettings, logger),
	}, router.Options{
		AllowedOrigin: "http://localhost:4200",
		SessionTTL:    time.Hour,
		Verifier:      auth.NewVerifier(config.AuthConfig{JWTSecret: "integration-secret"}),
	}, logger)
}

func doJSON(t *testing.T, h http.Handler, method, path, session string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionHeader, session)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCheckoutAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	fb := StartFakeBackend(t,
		FakeProduct{ID: 1, Name: "Split 12000 BTU", Price: 150000, Stock: 5},
		FakeProduct{ID: 2, Name: "Réfrigérateur", Price: 25000, Stock: 10},
		FakeProduct{ID: 3, Name: "Congélateur", Price: 90000, Stock: 0},
	)
	srv := setupTestServer(t, testDB, fb)

	form := checkout.Form{
		FirstName:     "Awa",
		LastName:      "Diop",
		Email:         "awa@example.sn",
		Phone:         "+221770000000",
		Line1:         "12 Rue Carnot",
		City:          "Dakar",
		DeliveryMode:  model.DeliveryExpress,
		PaymentMethod: model.PaymentCashOnDelivery,
	}

	t.Run("Guest places an order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		session := uuid.NewString()

		w := doJSON(t, srv, http.MethodPost, "/api/cart/items", session, handler.AddItemRequest{ProductID: 1, Quantity: 1})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		w = doJSON(t, srv, http.MethodPost, "/api/cart/items", session, handler.AddItemRequest{ProductID: 2, Quantity: 2})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, srv, http.MethodPost, "/api/checkout/quote", session, handler.QuoteRequest{DeliveryMode: model.DeliveryExpress})
		require.Equal(t, http.StatusOK, w.Code)
		var quote checkout.Quote
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
		assert.Equal(t, int64(205000), quote.TotalDue)

		w = doJSON(t, srv, http.MethodPost, "/api/checkout", session, form)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var conf model.OrderConfirmation
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conf))
		assert.Equal(t, "CMD-0001", conf.OrderNumber)

		orders := fb.Orders()
		require.Len(t, orders, 1)
		assert.Equal(t, "LIVRAISON_EXPRESS", orders[0]["modeLivraison"])
		assert.Equal(t, "awa@example.sn", orders[0]["emailInvite"])
		assert.Len(t, orders[0]["lignesCommande"], 2)

		// The cart is emptied, in storage as well.
		w = doJSON(t, srv, http.MethodGet, "/api/cart", session, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var view model.CartView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		assert.Zero(t, view.TotalItems)

		var rows int
		require.NoError(t, testDB.Pool.QueryRow(t.Context(),
			"SELECT count(*) FROM cart_snapshots WHERE session_key = $1 AND lines <> '[]'::jsonb", session).Scan(&rows))
		assert.Zero(t, rows)
	})

	t.Run("Empty cart cannot be submitted", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		w := doJSON(t, srv, http.MethodPost, "/api/checkout", uuid.NewString(), form)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp model.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Your cart is empty", resp.Fields["cart"])
	})

	t.Run("Out of stock product is rejected", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		w := doJSON(t, srv, http.MethodPost, "/api/cart/items", uuid.NewString(), handler.AddItemRequest{ProductID: 3, Quantity: 1})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Unknown product", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		w := doJSON(t, srv, http.MethodPost, "/api/cart/items", uuid.NewString(), handler.AddItemRequest{ProductID: 42, Quantity: 1})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Wishlist disabled", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodGet, "/api/wishlist", uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
