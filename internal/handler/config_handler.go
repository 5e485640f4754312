package handler

import (
	"net/http"

	"froid-storefront/internal/config"
	"froid-storefront/internal/model"

	"github.com/rs/zerolog"
)

// StorefrontConfig is the public configuration views start from.
type StorefrontConfig struct {
	DefaultPageSize int                   `json:"defaultPageSize"`
	PageSizeOptions []int                 `json:"pageSizeOptions"`
	MaxCartQuantity int                   `json:"maxCartQuantity"`
	ExpressFee      int64                 `json:"expressFee"`
	DeliveryModes   []model.DeliveryMode  `json:"deliveryModes"`
	PaymentMethods  []model.PaymentMethod `json:"paymentMethods"`
	Features        config.FeatureFlags   `json:"features"`
	Placeholder     string                `json:"imagePlaceholder"`
}

// Config returns a handler serving the public storefront configuration.
func Config(cfg StorefrontConfig, logger zerolog.Logger) http.HandlerFunc {
	logger = logger.With().Str("handler", "config").Logger()
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cfg, logger)
	}
}

// Health handles GET /health requests.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"}, *zerolog.Ctx(r.Context()))
}
