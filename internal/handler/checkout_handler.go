package handler

import (
	"net/http"

	"froid-storefront/internal/checkout"
	"froid-storefront/internal/middleware"
	"froid-storefront/internal/model"
	"froid-storefront/internal/service"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout HTTP requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// PrefillResponse is the initial state of the checkout form.
type PrefillResponse struct {
	Form           checkout.Form         `json:"form"`
	PaymentMethods []model.PaymentMethod `json:"paymentMethods"`
	SignedIn       bool                  `json:"signedIn"`
}

// QuoteRequest is the body of POST /api/checkout/quote.
type QuoteRequest struct {
	DeliveryMode model.DeliveryMode `json:"deliveryMode"`
}

// Prefill handles GET /api/checkout/prefill requests.
func (h *CheckoutHandler) Prefill(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFrom(r.Context())

	form, err := h.service.Prefill(r.Context(), actor)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, PrefillResponse{
		Form:           form,
		PaymentMethods: h.service.PaymentMethods(),
		SignedIn:       actor.IsCustomer(),
	}, h.logger)
}

// Quote handles POST /api/checkout/quote requests.
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	quote, err := h.service.Quote(r.Context(), middleware.SessionFrom(r.Context()), req.DeliveryMode)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, quote, h.logger)
}

// Submit handles POST /api/checkout requests.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if !decodeJSON(w, r, &form, h.logger) {
		return
	}

	ctx := r.Context()
	conf, err := h.service.Submit(ctx, middleware.SessionFrom(ctx), middleware.ActorFrom(ctx), form)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, conf, h.logger)
}
