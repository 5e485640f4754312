package service

import (
	"context"
	"errors"

	"froid-storefront/internal/cart"
	"froid-storefront/internal/model"

	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	carts   *cart.Registry
	catalog CatalogService
	logger  zerolog.Logger
}

// NewCartService creates a new cart service. Products are looked up
// through catalog so added lines capture current price and stock.
func NewCartService(carts *cart.Registry, catalog CatalogService, logger zerolog.Logger) CartService {
	return &cartService{
		carts:   carts,
		catalog: catalog,
		logger:  logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) Get(ctx context.Context, sessionKey string) (cart.Snapshot, error) {
	store, err := s.carts.Get(ctx, sessionKey)
	if err != nil {
		return cart.Snapshot{}, err
	}
	return store.Snapshot(), nil
}

func (s *cartService) AddItem(ctx context.Context, sessionKey string, productID int64, qty int) (cart.Result, error) {
	if qty <= 0 {
		return cart.Result{}, model.ErrInvalidQuantity
	}

	store, err := s.carts.Get(ctx, sessionKey)
	if err != nil {
		return cart.Result{}, err
	}

	product, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return cart.Result{}, err
	}

	res, err := store.AddItem(ctx, *product, qty)
	if err != nil {
		s.logWarn(err, sessionKey, productID, "add to cart rejected")
		return cart.Result{}, err
	}
	if len(res.Warnings) > 0 {
		s.logger.Info().
			Str("cart", sessionKey).
			Int64("product_id", productID).
			Int("requested", qty).
			Msg("cart quantity clamped")
	}
	return res, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, sessionKey string, productID int64, qty int) (cart.Result, error) {
	store, err := s.carts.Get(ctx, sessionKey)
	if err != nil {
		return cart.Result{}, err
	}

	res, err := store.UpdateQuantity(ctx, productID, qty)
	if err != nil {
		s.logWarn(err, sessionKey, productID, "cart update rejected")
		return cart.Result{}, err
	}
	return res, nil
}

func (s *cartService) RemoveItem(ctx context.Context, sessionKey string, productID int64) (cart.Result, error) {
	store, err := s.carts.Get(ctx, sessionKey)
	if err != nil {
		return cart.Result{}, err
	}
	return store.RemoveItem(ctx, productID)
}

func (s *cartService) Clear(ctx context.Context, sessionKey string) (cart.Result, error) {
	store, err := s.carts.Get(ctx, sessionKey)
	if err != nil {
		return cart.Result{}, err
	}
	return store.Clear(ctx)
}

func (s *cartService) Subscribe(ctx context.Context, sessionKey string, fn cart.Observer) (func(), error) {
	store, err := s.carts.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	return store.Subscribe(fn), nil
}

func (s *cartService) logWarn(err error, sessionKey string, productID int64, msg string) {
	var de *model.DomainError
	if errors.As(err, &de) {
		s.logger.Debug().Str("cart", sessionKey).Int64("product_id", productID).Str("code", de.Code).Msg(msg)
		return
	}
	s.logger.Error().Err(err).Str("cart", sessionKey).Int64("product_id", productID).Msg(msg)
}
