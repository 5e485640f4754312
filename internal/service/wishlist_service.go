package service

import (
	"context"

	"froid-storefront/internal/backend"
	"froid-storefront/internal/model"
	"froid-storefront/internal/wishlist"

	"github.com/rs/zerolog"
)

// wishlistService implements WishlistService.
type wishlistService struct {
	cache   *wishlist.Cache
	enabled bool
	logger  zerolog.Logger
}

// NewWishlistService creates a new wishlist service. When enabled is
// false every call fails with model.ErrWishlistDisabled.
func NewWishlistService(cache *wishlist.Cache, enabled bool, logger zerolog.Logger) WishlistService {
	return &wishlistService{
		cache:   cache,
		enabled: enabled,
		logger:  logger.With().Str("service", "wishlist").Logger(),
	}
}

func (s *wishlistService) List(ctx context.Context, actor model.Actor) ([]int64, error) {
	if err := s.check(actor); err != nil {
		return nil, err
	}
	ids, err := s.cache.List(ctx, actor.CustomerID, actor.Token)
	if err != nil {
		s.dropOnUnauthorized(actor, err)
		return nil, err
	}
	return ids, nil
}

func (s *wishlistService) Contains(ctx context.Context, actor model.Actor, productID int64) (bool, error) {
	if err := s.check(actor); err != nil {
		return false, err
	}
	in, err := s.cache.Contains(ctx, actor.CustomerID, actor.Token, productID)
	if err != nil {
		s.dropOnUnauthorized(actor, err)
		return false, err
	}
	return in, nil
}

func (s *wishlistService) Add(ctx context.Context, actor model.Actor, productID int64) error {
	if err := s.check(actor); err != nil {
		return err
	}
	if err := s.cache.Add(ctx, actor.CustomerID, actor.Token, productID); err != nil {
		s.dropOnUnauthorized(actor, err)
		s.logger.Error().Err(err).Str("customer_id", actor.CustomerID).Int64("product_id", productID).Msg("wishlist add failed")
		return err
	}
	return nil
}

func (s *wishlistService) Remove(ctx context.Context, actor model.Actor, productID int64) error {
	if err := s.check(actor); err != nil {
		return err
	}
	if err := s.cache.Remove(ctx, actor.CustomerID, actor.Token, productID); err != nil {
		s.dropOnUnauthorized(actor, err)
		s.logger.Error().Err(err).Str("customer_id", actor.CustomerID).Int64("product_id", productID).Msg("wishlist remove failed")
		return err
	}
	return nil
}

func (s *wishlistService) check(actor model.Actor) error {
	if !s.enabled {
		return model.ErrWishlistDisabled
	}
	if !actor.IsCustomer() {
		return model.ErrSignInRequired
	}
	return nil
}

// dropOnUnauthorized forgets the cached wishlist once the backend no
// longer accepts the customer's token, so a revoked session cannot keep
// reading it from the cache.
func (s *wishlistService) dropOnUnauthorized(actor model.Actor, err error) {
	if !backend.IsUnauthorized(err) {
		return
	}
	s.cache.Invalidate(actor.CustomerID)
	s.logger.Info().Str("customer_id", actor.CustomerID).Msg("backend rejected token, wishlist cache dropped")
}
