package handler

import (
	"net/http"

	"froid-storefront/internal/middleware"
	"froid-storefront/internal/service"

	"github.com/rs/zerolog"
)

// WishlistHandler handles wishlist HTTP requests.
type WishlistHandler struct {
	service service.WishlistService
	logger  zerolog.Logger
}

// NewWishlistHandler creates a new wishlist handler.
func NewWishlistHandler(service service.WishlistService, logger zerolog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: service,
		logger:  logger.With().Str("handler", "wishlist").Logger(),
	}
}

// WishlistResponse lists the product ids on the wishlist.
type WishlistResponse struct {
	ProductIDs []int64 `json:"productIds"`
}

// MembershipResponse reports whether a product is on the wishlist.
type MembershipResponse struct {
	ProductID  int64 `json:"productId"`
	InWishlist bool  `json:"inWishlist"`
}

// List handles GET /api/wishlist requests.
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.List(r.Context(), middleware.ActorFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, WishlistResponse{ProductIDs: ids}, h.logger)
}

// Contains handles GET /api/wishlist/{productId} requests.
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId", h.logger)
	if !ok {
		return
	}

	in, err := h.service.Contains(r.Context(), middleware.ActorFrom(r.Context()), productID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, MembershipResponse{ProductID: productID, InWishlist: in}, h.logger)
}

// Add handles POST /api/wishlist/{productId} requests.
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId", h.logger)
	if !ok {
		return
	}

	if err := h.service.Add(r.Context(), middleware.ActorFrom(r.Context()), productID); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, MembershipResponse{ProductID: productID, InWishlist: true}, h.logger)
}

// Remove handles DELETE /api/wishlist/{productId} requests.
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId", h.logger)
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), middleware.ActorFrom(r.Context()), productID); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, MembershipResponse{ProductID: productID, InWishlist: false}, h.logger)
}
