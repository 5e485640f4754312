package handler

import (
	"net/http"
	"slices"
	"strconv"

	"froid-storefront/internal/listing"
	"froid-storefront/internal/model"
	"froid-storefront/internal/service"

	"github.com/rs/zerolog"
)

// CatalogHandler handles catalogue HTTP requests.
type CatalogHandler struct {
	service  service.CatalogService
	settings listing.Settings
	logger   zerolog.Logger
}

// NewCatalogHandler creates a new catalogue handler.
func NewCatalogHandler(service service.CatalogService, settings listing.Settings, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		settings: settings,
		logger:   logger.With().Str("handler", "catalog").Logger(),
	}
}

// Categories handles GET /api/categories requests.
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, categories, h.logger)
}

// Brands handles GET /api/brands requests.
func (h *CatalogHandler) Brands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.service.Brands(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, brands, h.logger)
}

// Products handles GET /api/products, /api/categories/{id}/products and
// /api/brands/{id}/products requests.
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	filters := listing.FromRequest(r.URL.Path, r.URL.Query(), h.settings)

	result, err := h.service.Listing(r.Context(), filters)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, result, h.logger)
}

// Product handles GET /api/products/{id} requests.
func (h *CatalogHandler) Product(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	detail, err := h.service.ProductDetail(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, detail, h.logger)
}

// defaultLatest is the size of the home page's newest products row.
const defaultLatest = 8

// Latest handles GET /api/products/latest requests. The optional size
// parameter is capped at the largest listing page size.
func (h *CatalogHandler) Latest(w http.ResponseWriter, r *http.Request) {
	size := defaultLatest
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "size must be a positive integer", h.logger)
			return
		}
		size = min(n, slices.Max(append([]int{defaultLatest}, h.settings.PageSizes...)))
	}

	products, err := h.service.Latest(r.Context(), size)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, products, h.logger)
}
