package service

import (
	"context"
	"time"

	"froid-storefront/internal/listing"

	"github.com/rs/zerolog"
)

// ListingOptions configures the views opened by the listing service.
type ListingOptions struct {
	Settings listing.Settings
	Debounce time.Duration
	OnStale  func()
}

// listingService implements ListingService.
type listingService struct {
	catalog CatalogService
	views   *listing.Registry
	opts    ListingOptions
	logger  zerolog.Logger
}

// NewListingService creates a new listing service.
func NewListingService(catalog CatalogService, views *listing.Registry, opts ListingOptions, logger zerolog.Logger) ListingService {
	return &listingService{
		catalog: catalog,
		views:   views,
		opts:    opts,
		logger:  logger.With().Str("service", "listing").Logger(),
	}
}

func (s *listingService) Open(ctx context.Context, sessionKey string, f listing.Filters) (*listing.View, error) {
	view := listing.NewView(s.catalog.Products, f, listing.ViewOptions{
		Settings: s.opts.Settings,
		Debounce: s.opts.Debounce,
		OnStale:  s.opts.OnStale,
	}, s.logger.With().Str("session", sessionKey).Logger())

	s.views.Attach(sessionKey, view)
	view.Reload()

	s.logger.Debug().Str("session", sessionKey).Msg("listing view opened")
	return view, nil
}

func (s *listingService) Update(sessionKey string, f listing.Filters) (listing.Snapshot, error) {
	view, err := s.views.Get(sessionKey)
	if err != nil {
		return listing.Snapshot{}, err
	}
	view.Update(f)
	return view.Snapshot(), nil
}

func (s *listingService) SetPage(sessionKey string, page int) (listing.Snapshot, error) {
	view, err := s.views.Get(sessionKey)
	if err != nil {
		return listing.Snapshot{}, err
	}
	view.SetPage(page)
	return view.Snapshot(), nil
}

func (s *listingService) Close(sessionKey string, view *listing.View) {
	s.views.Release(sessionKey, view)
}
