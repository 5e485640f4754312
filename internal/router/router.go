package router

import (
	"net/http"
	"time"

	"froid-storefront/internal/handler"
	"froid-storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Catalog  *handler.CatalogHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Wishlist *handler.WishlistHandler
	Listing  *handler.ListingHandler
	Config   http.Handler
	Metrics  http.Handler
}

// Options configures the middleware chain.
type Options struct {
	AllowedOrigin string
	MetricsAPIKey string
	SessionTTL    time.Duration
	SecureCookies bool
	Verifier      middleware.TokenVerifier
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Applied in order: Recovery -> Logging -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(opts.AllowedOrigin))

	// Health check and metrics carry no session.
	r.Get("/health", handler.Health)
	if h.Metrics != nil {
		r.With(middleware.APIKeyAuth(opts.MetricsAPIKey, logger)).Handle("/metrics", h.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CartSession(opts.SessionTTL, opts.SecureCookies))
		r.Use(middleware.Authenticate(opts.Verifier, logger))

		if h.Config != nil {
			r.Method(http.MethodGet, "/config", h.Config)
		}

		r.Get("/categories", h.Catalog.Categories)
		r.Get("/categories/{id}/products", h.Catalog.Products)
		r.Get("/brands", h.Catalog.Brands)
		r.Get("/brands/{id}/products", h.Catalog.Products)
		r.Get("/products", h.Catalog.Products)
		r.Get("/products/latest", h.Catalog.Latest)
		r.Get("/products/{id}", h.Catalog.Product)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Delete("/", h.Cart.Clear)
			r.Get("/events", h.Cart.Events)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{productId}", h.Cart.UpdateQuantity)
			r.Delete("/items/{productId}", h.Cart.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", h.Checkout.Submit)
			r.Get("/prefill", h.Checkout.Prefill)
			r.Post("/quote", h.Checkout.Quote)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", h.Wishlist.List)
			r.Get("/{productId}", h.Wishlist.Contains)
			r.Post("/{productId}", h.Wishlist.Add)
			r.Delete("/{productId}", h.Wishlist.Remove)
		})

		r.Route("/listing", func(r chi.Router) {
			r.Get("/events", h.Listing.Events)
			r.Post("/filters", h.Listing.UpdateFilters)
			r.Post("/page", h.Listing.SetPage)
		})
	})

	return r
}
