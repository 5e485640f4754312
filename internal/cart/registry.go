package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultIdleTimeout is used when no idle timeout is configured.
const DefaultIdleTimeout = 30 * time.Minute

// Registry owns one Store per cart session so that every request and
// every event stream of a session shares the same cart.
//
// Stores are evicted by Sweep once idle, and a store whose in-memory
// state has not been synced with storage for longer than the idle
// timeout is reloaded on the next Get. Storage stays authoritative, so
// a cart expired or deleted there is not served from memory for long.
type Registry struct {
	storage     Storage
	maxQuantity int
	idleTimeout time.Duration
	onMutation  func(op string)
	now         func() time.Time
	logger      zerolog.Logger

	mu     sync.Mutex
	stores map[string]*entry
}

type entry struct {
	store    *Store
	lastUsed time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithMutationHook registers fn to be called with the operation name
// after every successful cart mutation.
func WithMutationHook(fn func(op string)) RegistryOption {
	return func(r *Registry) {
		r.onMutation = fn
	}
}

// WithIdleTimeout sets how long a store may go unused before Sweep
// evicts it. Non-positive values keep DefaultIdleTimeout.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.idleTimeout = d
		}
	}
}

func withClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates a registry backed by storage.
func NewRegistry(storage Storage, maxQuantity int, logger zerolog.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		storage:     storage,
		maxQuantity: maxQuantity,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		logger:      logger.With().Str("component", "cart").Logger(),
		stores:      make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IdleTimeout returns the configured idle timeout.
func (r *Registry) IdleTimeout() time.Duration {
	return r.idleTimeout
}

// Get returns the Store for key, loading persisted state on first use.
func (r *Registry) Get(ctx context.Context, key string) (*Store, error) {
	now := r.now()

	r.mu.Lock()
	e, ok := r.stores[key]
	if ok {
		e.lastUsed = now
	}
	r.mu.Unlock()

	if ok {
		if e.store.syncedBefore(now.Add(-r.idleTimeout)) {
			if err := e.store.reload(ctx); err != nil {
				return nil, fmt.Errorf("failed to reload cart: %w", err)
			}
		}
		return e.store, nil
	}

	lines, err := r.storage.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another request may have loaded the same session meanwhile.
	if e, ok := r.stores[key]; ok {
		e.lastUsed = now
		return e.store, nil
	}

	s := newStore(key, lines, r.maxQuantity, r.storage, r.onMutation, r.now, r.logger.With().Str("cart", key).Logger())
	r.stores[key] = &entry{store: s, lastUsed: now}
	return s, nil
}

// Sweep evicts every store that has not been fetched within the idle
// timeout and has no subscribers. Evicted empty carts are also deleted
// from storage. It returns the number of evicted stores.
func (r *Registry) Sweep(ctx context.Context) int {
	cutoff := r.now().Add(-r.idleTimeout)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for key, e := range r.stores {
		if e.lastUsed.After(cutoff) || e.store.observed() {
			continue
		}
		// Held under r.mu so no Get can reload the key before the
		// delete lands.
		if err := e.store.release(ctx); err != nil {
			r.logger.Warn().Err(err).Str("cart", key).Msg("failed to delete empty cart")
		}
		delete(r.stores, key)
		evicted++
	}

	if evicted > 0 {
		r.logger.Debug().
			Int("evicted", evicted).
			Int("remaining", len(r.stores)).
			Msg("evicted idle carts")
	}
	return evicted
}

// Len returns the number of sessions currently held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
