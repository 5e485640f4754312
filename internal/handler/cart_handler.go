package handler

import (
	"net/http"
	"time"

	"froid-storefront/internal/cart"
	"froid-storefront/internal/middleware"
	"froid-storefront/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// AddItemRequest is the body of POST /api/cart/items.
type AddItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// UpdateQuantityRequest is the body of PUT /api/cart/items/{productId}.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Get(r.Context(), middleware.SessionFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, snap.View(), h.logger)
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	res, err := h.service.AddItem(r.Context(), middleware.SessionFrom(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, res.View(), h.logger)
}

// UpdateQuantity handles PUT /api/cart/items/{productId} requests.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId", h.logger)
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	res, err := h.service.UpdateQuantity(r.Context(), middleware.SessionFrom(r.Context()), productID, req.Quantity)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, res.View(), h.logger)
}

// RemoveItem handles DELETE /api/cart/items/{productId} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId", h.logger)
	if !ok {
		return
	}

	res, err := h.service.RemoveItem(r.Context(), middleware.SessionFrom(r.Context()), productID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, res.View(), h.logger)
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Clear(r.Context(), middleware.SessionFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, res.View(), h.logger)
}

// Events handles GET /api/cart/events: the current cart, then every
// change, until the client disconnects.
func (h *CartHandler) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := middleware.SessionFrom(ctx)

	updates := newLatest[cart.Snapshot]()
	unsubscribe, err := h.service.Subscribe(ctx, session, updates.put)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	defer unsubscribe()

	snap, err := h.service.Get(ctx, session)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	stream := newEventStream(w)
	if err := stream.send("cart", snap.View()); err != nil {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug().Str("cart", session).Msg("cart stream closed")
			return
		case <-updates.ready:
			if err := stream.send("cart", updates.get().View()); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := stream.ping(); err != nil {
				return
			}
		}
	}
}
