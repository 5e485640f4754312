package repository

import (
	"context"
	"time"

	"froid-storefront/internal/model"
)

// CartRepository persists serialised carts keyed by cart session.
// It satisfies cart.Storage.
type CartRepository interface {
	// Load retrieves the persisted lines for a session.
	// Returns nil, nil when nothing is stored.
	Load(ctx context.Context, key string) ([]model.CartLine, error)

	// Save replaces the persisted lines for a session.
	Save(ctx context.Context, key string, lines []model.CartLine) error

	// Delete removes the persisted cart for a session.
	Delete(ctx context.Context, key string) error
}

// ExpiringCartRepository is a CartRepository that needs explicit purging
// of carts not touched within the retention window.
type ExpiringCartRepository interface {
	CartRepository

	// PurgeStale deletes carts last updated before cutoff and returns
	// how many were removed.
	PurgeStale(ctx context.Context, cutoff time.Time) (int64, error)
}
