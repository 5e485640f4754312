package handler

import (
	"net/http"
	"time"

	"froid-storefront/internal/listing"
	"froid-storefront/internal/middleware"
	"froid-storefront/internal/service"

	"github.com/rs/zerolog"
)

// ListingHandler drives the live product listing of a session.
type ListingHandler struct {
	service  service.ListingService
	settings listing.Settings
	logger   zerolog.Logger
}

// NewListingHandler creates a new listing handler.
func NewListingHandler(service service.ListingService, settings listing.Settings, logger zerolog.Logger) *ListingHandler {
	return &ListingHandler{
		service:  service,
		settings: settings,
		logger:   logger.With().Str("handler", "listing").Logger(),
	}
}

// PageRequest is the body of POST /api/listing/page.
type PageRequest struct {
	Page int `json:"page"`
}

// Events handles GET /api/listing/events. It opens a listing view over
// the filters in the query string and streams its state until the
// client disconnects, at which point the view is closed.
func (h *ListingHandler) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := middleware.SessionFrom(ctx)
	filters := listing.FromRequest(r.URL.Query().Get("route"), r.URL.Query(), h.settings)

	view, err := h.service.Open(ctx, session, filters)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	defer h.service.Close(session, view)

	updates := newLatest[listing.Snapshot]()
	unsubscribe := view.Subscribe(updates.put)
	defer unsubscribe()

	stream := newEventStream(w)
	if err := stream.send("listing", view.Snapshot()); err != nil {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug().Str("session", session).Msg("listing stream closed")
			return
		case <-view.Done():
			// Replaced by a newer stream for the same session.
			_ = stream.send("closed", view.Snapshot())
			return
		case <-updates.ready:
			if err := stream.send("listing", updates.get()); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := stream.ping(); err != nil {
				return
			}
		}
	}
}

// UpdateFilters handles POST /api/listing/filters requests.
func (h *ListingHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var filters listing.Filters
	if !decodeJSON(w, r, &filters, h.logger) {
		return
	}

	snap, err := h.service.Update(middleware.SessionFrom(r.Context()), filters)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusAccepted, snap, h.logger)
}

// SetPage handles POST /api/listing/page requests.
func (h *ListingHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	var req PageRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	snap, err := h.service.SetPage(middleware.SessionFrom(r.Context()), req.Page)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusAccepted, snap, h.logger)
}
