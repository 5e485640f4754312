// Package asset turns stored image paths into URLs views can load.
package asset

import (
	"context"
	"strings"
	"sync"
	"time"

	"froid-storefront/internal/model"

	"github.com/rs/zerolog"
)

// missingTTL is how long a missing asset resolves to the placeholder
// before it is checked again. Uploads made after a miss show up once it
// expires.
const missingTTL = 5 * time.Minute

// Checker reports whether an uploaded asset exists.
type Checker interface {
	Exists(ctx context.Context, path string) (bool, error)
}

// Resolver builds absolute image URLs from stored paths.
type Resolver struct {
	baseURL     string
	placeholder string
	checker     Checker
	now         func() time.Time
	logger      zerolog.Logger

	// found holds paths known to exist; missing maps a path to when it
	// was last found absent.
	found   sync.Map
	missing sync.Map
}

// NewResolver creates a resolver. checker may be nil, in which case
// every relative path is assumed to exist.
func NewResolver(baseURL, placeholder string, checker Checker, logger zerolog.Logger) *Resolver {
	return &Resolver{
		baseURL:     strings.TrimRight(baseURL, "/"),
		placeholder: placeholder,
		checker:     checker,
		now:         time.Now,
		logger:      logger.With().Str("component", "asset-resolver").Logger(),
	}
}

// URL maps path to its public URL without checking existence.
// Absolute http(s) URLs are returned unchanged and an empty path yields
// the placeholder.
func (r *Resolver) URL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return r.placeholder
	}
	if isAbsolute(path) {
		return path
	}
	return r.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Resolve is URL plus an existence check through the configured Checker.
// Missing objects resolve to the placeholder; a failing check falls back
// to the unchecked URL.
func (r *Resolver) Resolve(ctx context.Context, path string) string {
	path = strings.TrimSpace(path)
	if r.checker == nil || path == "" || isAbsolute(path) {
		return r.URL(path)
	}

	if _, ok := r.found.Load(path); ok {
		return r.URL(path)
	}
	if v, ok := r.missing.Load(path); ok && r.now().Sub(v.(time.Time)) < missingTTL {
		return r.placeholder
	}

	exists, err := r.checker.Exists(ctx, strings.TrimLeft(path, "/"))
	if err != nil {
		r.logger.Warn().Err(err).Str("path", path).Msg("asset check failed, using unchecked URL")
		return r.URL(path)
	}

	if !exists {
		r.missing.Store(path, r.now())
		r.logger.Debug().Str("path", path).Msg("asset missing, using placeholder")
		return r.placeholder
	}
	r.found.Store(path, struct{}{})
	r.missing.Delete(path)
	return r.URL(path)
}

// ResolveProduct fills p.ImageURLs from p.Images. A product without
// images gets the placeholder as its only URL.
func (r *Resolver) ResolveProduct(ctx context.Context, p *model.Product) {
	if len(p.Images) == 0 {
		p.ImageURLs = []string{r.placeholder}
		return
	}
	urls := make([]string, len(p.Images))
	for i, img := range p.Images {
		urls[i] = r.Resolve(ctx, img)
	}
	p.ImageURLs = urls
}

// ResolveProducts applies ResolveProduct to every element.
func (r *Resolver) ResolveProducts(ctx context.Context, products []model.Product) {
	for i := range products {
		r.ResolveProduct(ctx, &products[i])
	}
}

func isAbsolute(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
