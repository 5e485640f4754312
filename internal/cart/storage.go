package cart

import (
	"context"
	"slices"
	"sync"

	"froid-storefront/internal/model"
)

// Storage persists serialised carts by session key.
type Storage interface {
	// Load returns the persisted lines for key, or nil when nothing is stored.
	Load(ctx context.Context, key string) ([]model.CartLine, error)

	// Save replaces the persisted lines for key.
	Save(ctx context.Context, key string, lines []model.CartLine) error

	// Delete removes anything persisted for key.
	Delete(ctx context.Context, key string) error
}

// memoryStorage keeps carts in process memory.
type memoryStorage struct {
	mu    sync.RWMutex
	carts map[string][]model.CartLine
}

// NewMemoryStorage returns a Storage that does not survive restarts.
func NewMemoryStorage() Storage {
	return &memoryStorage{carts: make(map[string][]model.CartLine)}
}

func (m *memoryStorage) Load(_ context.Context, key string) ([]model.CartLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lines, ok := m.carts[key]
	if !ok {
		return nil, nil
	}
	return slices.Clone(lines), nil
}

func (m *memoryStorage) Save(_ context.Context, key string, lines []model.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[key] = slices.Clone(lines)
	return nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, key)
	return nil
}
