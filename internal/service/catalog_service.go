package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"froid-storefront/internal/asset"
	"froid-storefront/internal/backend"
	"froid-storefront/internal/listing"
	"froid-storefront/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	referenceDataTTL = 5 * time.Minute
	relatedProducts  = 8
)

// catalogService implements CatalogService.
type catalogService struct {
	backend backend.Client
	assets  *asset.Resolver
	logger  zerolog.Logger
	now     func() time.Time

	group      singleflight.Group
	mu         sync.RWMutex
	categories []model.Category
	brands     []model.Brand
	loadedCat  time.Time
	loadedBr   time.Time
}

// NewCatalogService creates a new catalogue service.
func NewCatalogService(client backend.Client, assets *asset.Resolver, logger zerolog.Logger) CatalogService {
	return &catalogService{
		backend: client,
		assets:  assets,
		logger:  logger.With().Str("service", "catalog").Logger(),
		now:     time.Now,
	}
}

func (s *catalogService) Categories(ctx context.Context) ([]model.Category, error) {
	s.mu.RLock()
	if s.categories != nil && s.now().Sub(s.loadedCat) < referenceDataTTL {
		defer s.mu.RUnlock()
		return s.categories, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.group.Do("categories", func() (any, error) {
		categories, err := s.backend.Categories(ctx)
		if err != nil {
			return nil, err
		}
		for i := range categories {
			categories[i].Image = s.assets.URL(categories[i].Image)
		}
		s.mu.Lock()
		s.categories, s.loadedCat = categories, s.now()
		s.mu.Unlock()
		return categories, nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load categories")
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return v.([]model.Category), nil
}

func (s *catalogService) Brands(ctx context.Context) ([]model.Brand, error) {
	s.mu.RLock()
	if s.brands != nil && s.now().Sub(s.loadedBr) < referenceDataTTL {
		defer s.mu.RUnlock()
		return s.brands, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.group.Do("brands", func() (any, error) {
		brands, err := s.backend.AvailableBrands(ctx)
		if err != nil {
			return nil, err
		}
		for i := range brands {
			brands[i].Logo = s.assets.URL(brands[i].Logo)
		}
		s.mu.Lock()
		s.brands, s.loadedBr = brands, s.now()
		s.mu.Unlock()
		return brands, nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load brands")
		return nil, fmt.Errorf("failed to get brands: %w", err)
	}
	return v.([]model.Brand), nil
}

func (s *catalogService) Products(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error) {
	page, err := s.backend.Products(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	s.assets.ResolveProducts(ctx, page.Products)
	return page, nil
}

func (s *catalogService) Listing(ctx context.Context, f listing.Filters) (*Listing, error) {
	page, err := s.Products(ctx, f.ProductQuery())
	if err != nil {
		s.logger.Error().Err(err).Str("params", f.Params().Encode()).Msg("failed to load listing")
		return nil, err
	}

	return &Listing{
		Filters: f,
		Heading: s.heading(ctx, f),
		Page:    page,
	}, nil
}

// heading degrades to the generic title when reference data is
// unavailable; the page itself is still served.
func (s *catalogService) heading(ctx context.Context, f listing.Filters) listing.Heading {
	var categories []model.Category
	var brands []model.Brand
	if f.CategoryID != nil {
		if c, err := s.Categories(ctx); err == nil {
			categories = c
		}
	}
	if f.BrandID != nil {
		if b, err := s.Brands(ctx); err == nil {
			brands = b
		}
	}
	return listing.NewHeading(f, categories, brands)
}

func (s *catalogService) Product(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.backend.Product(ctx, id)
	if err != nil {
		if backend.IsNotFound(err) {
			s.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, model.ErrProductNotFound
		}
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	s.assets.ResolveProduct(ctx, product)
	return product, nil
}

// ProductDetail serves the product without related products when the
// category listing fails.
func (s *catalogService) ProductDetail(ctx context.Context, id int64) (*ProductDetail, error) {
	product, err := s.Product(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ProductDetail{
		Product:     product,
		Breadcrumbs: listing.ProductTrail(*product),
		Related:     []model.Product{},
	}
	if product.Category == nil {
		return detail, nil
	}

	f := listing.Filters{CategoryID: &product.Category.ID, Sort: listing.DefaultSort, Size: relatedProducts}
	page, err := s.Products(ctx, f.ProductQuery())
	if err != nil {
		s.logger.Warn().Err(err).Int64("product_id", id).Msg("failed to load related products")
		return detail, nil
	}
	for _, p := range page.Products {
		if p.ID != product.ID {
			detail.Related = append(detail.Related, p)
		}
	}
	return detail, nil
}

func (s *catalogService) Latest(ctx context.Context, n int) ([]model.Product, error) {
	f := listing.Filters{Sort: listing.DefaultSort, Size: n}
	page, err := s.Products(ctx, f.ProductQuery())
	if err != nil {
		s.logger.Error().Err(err).Int("size", n).Msg("failed to load latest products")
		return nil, err
	}
	return page.Products, nil
}
