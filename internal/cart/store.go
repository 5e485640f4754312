// Package cart holds the per-session shopping cart state.
//
// A Store is the single source of truth for one cart: every mutation goes
// through its methods, is persisted before it becomes visible, and is then
// broadcast to subscribers as a full snapshot.
package cart

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"froid-storefront/internal/model"

	"github.com/rs/zerolog"
)

// Snapshot is an immutable copy of a cart.
type Snapshot struct {
	Lines  []model.CartLine
	Totals model.CartTotals
}

// IsEmpty reports whether the snapshot has no lines.
func (s Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

// View converts the snapshot to its JSON representation.
func (s Snapshot) View(warnings ...string) model.CartView {
	items := make([]model.CartLineView, len(s.Lines))
	for i, l := range s.Lines {
		items[i] = model.CartLineView{
			Product:  l.Product,
			Quantity: l.Quantity,
			Subtotal: l.Subtotal(),
		}
	}
	return model.CartView{
		Items:      items,
		TotalItems: s.Totals.TotalItems,
		TotalPrice: s.Totals.TotalPrice,
		Warnings:   warnings,
	}
}

// Result is the outcome of a mutation. Warnings are non-fatal notices,
// such as a requested quantity that had to be clamped.
type Result struct {
	Snapshot Snapshot
	Warnings []string
}

// View converts the result to its JSON representation.
func (r Result) View() model.CartView {
	return r.Snapshot.View(r.Warnings...)
}

// Observer receives the full cart snapshot after every mutation.
type Observer func(Snapshot)

// Store owns the lines of one cart.
type Store struct {
	key         string
	maxQuantity int
	storage     Storage
	onMutation  func(op string)
	now         func() time.Time
	logger      zerolog.Logger

	mu    sync.Mutex
	lines []model.CartLine
	// synced is when lines last matched storage.
	synced time.Time

	// notifyMu is taken before mu is released so observers see
	// snapshots in mutation order.
	notifyMu  sync.Mutex
	observers map[uint64]Observer
	nextObs   uint64
}

func newStore(
	key string,
	lines []model.CartLine,
	maxQuantity int,
	storage Storage,
	onMutation func(string),
	now func() time.Time,
	logger zerolog.Logger,
) *Store {
	return &Store{
		key:         key,
		maxQuantity: maxQuantity,
		storage:     storage,
		onMutation:  onMutation,
		now:         now,
		logger:      logger,
		lines:       lines,
		synced:      now(),
		observers:   make(map[uint64]Observer),
	}
}

// Key returns the session key the store is persisted under.
func (s *Store) Key() string {
	return s.key
}

// AddItem adds qty units of product. An existing line is incremented
// instead of duplicated and its captured product is refreshed.
// The resulting quantity is clamped to min(stock, max quantity).
func (s *Store) AddItem(ctx context.Context, product model.Product, qty int) (Result, error) {
	if qty <= 0 {
		return Result{}, model.ErrInvalidQuantity
	}
	bound := s.bound(product)
	if !product.Available || bound <= 0 {
		return Result{}, model.ErrProductUnavailable
	}

	return s.mutate(ctx, "add", func(lines []model.CartLine) ([]model.CartLine, []string, error) {
		want := qty
		idx := indexOf(lines, product.ID)
		if idx >= 0 {
			want += lines[idx].Quantity
		}
		got, warnings := clamp(product, want, bound)
		if idx >= 0 {
			lines[idx] = model.CartLine{Product: product, Quantity: got}
			return lines, warnings, nil
		}
		return append(lines, model.CartLine{Product: product, Quantity: got}), warnings, nil
	})
}

// RemoveItem removes the line for productID. Removing an absent product
// is a no-op and neither persists nor notifies.
func (s *Store) RemoveItem(ctx context.Context, productID int64) (Result, error) {
	if !s.IsInCart(productID) {
		return Result{Snapshot: s.Snapshot()}, nil
	}
	return s.mutate(ctx, "remove", func(lines []model.CartLine) ([]model.CartLine, []string, error) {
		idx := indexOf(lines, productID)
		if idx < 0 {
			return lines, nil, nil
		}
		return slices.Delete(lines, idx, idx+1), nil, nil
	})
}

// UpdateQuantity sets the quantity of an existing line. A quantity of
// zero or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, qty int) (Result, error) {
	if qty <= 0 {
		return s.RemoveItem(ctx, productID)
	}
	return s.mutate(ctx, "update", func(lines []model.CartLine) ([]model.CartLine, []string, error) {
		idx := indexOf(lines, productID)
		if idx < 0 {
			return nil, nil, model.ErrLineNotFound
		}
		bound := s.bound(lines[idx].Product)
		if bound <= 0 {
			return nil, nil, model.ErrProductUnavailable
		}
		got, warnings := clamp(lines[idx].Product, qty, bound)
		lines[idx].Quantity = got
		return lines, warnings, nil
	})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) (Result, error) {
	return s.mutate(ctx, "clear", func([]model.CartLine) ([]model.CartLine, []string, error) {
		return []model.CartLine{}, nil, nil
	})
}

// RemoveLines subtracts the quantities of ordered from the cart and
// drops lines that reach zero. Lines added or raised after ordered was
// taken are kept.
func (s *Store) RemoveLines(ctx context.Context, ordered []model.CartLine) (Result, error) {
	return s.mutate(ctx, "checkout", func(lines []model.CartLine) ([]model.CartLine, []string, error) {
		for _, o := range ordered {
			idx := indexOf(lines, o.Product.ID)
			if idx < 0 {
				continue
			}
			lines[idx].Quantity -= o.Quantity
			if lines[idx].Quantity <= 0 {
				lines = slices.Delete(lines, idx, idx+1)
			}
		}
		return lines, nil, nil
	})
}

// Totals recomputes the aggregates from the current lines.
func (s *Store) Totals() model.CartTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.ComputeTotals(s.lines)
}

// IsInCart reports whether productID has a line.
func (s *Store) IsInCart(productID int64) bool {
	_, ok := s.Line(productID)
	return ok
}

// Line returns the line for productID.
func (s *Store) Line(productID int64) (model.CartLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := indexOf(s.lines, productID)
	if idx < 0 {
		return model.CartLine{}, false
	}
	return s.lines[idx], true
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for future snapshots. The returned function
// unsubscribes; calling it more than once is safe.
func (s *Store) Subscribe(fn Observer) func() {
	s.notifyMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.notifyMu.Lock()
			delete(s.observers, id)
			s.notifyMu.Unlock()
		})
	}
}

func (s *Store) mutate(
	ctx context.Context,
	op string,
	fn func(lines []model.CartLine) ([]model.CartLine, []string, error),
) (Result, error) {
	s.mu.Lock()

	next, warnings, err := fn(slices.Clone(s.lines))
	if err != nil {
		s.mu.Unlock()
		return Result{}, err
	}

	if err := s.storage.Save(ctx, s.key, next); err != nil {
		s.mu.Unlock()
		s.logger.Error().Err(err).Str("op", op).Msg("failed to persist cart")
		return Result{}, fmt.Errorf("failed to persist cart: %w", err)
	}

	s.lines = next
	s.synced = s.now()
	snap := s.publishLocked()

	if s.onMutation != nil {
		s.onMutation(op)
	}

	s.logger.Debug().
		Str("op", op).
		Int("total_items", snap.Totals.TotalItems).
		Int64("total_price", snap.Totals.TotalPrice).
		Msg("cart updated")

	return Result{Snapshot: snap, Warnings: warnings}, nil
}

// publishLocked sends the current snapshot to every observer and
// releases s.mu.
func (s *Store) publishLocked() Snapshot {
	snap := s.snapshotLocked()

	s.notifyMu.Lock()
	s.mu.Unlock()
	for _, obs := range s.observers {
		obs(snap)
	}
	s.notifyMu.Unlock()
	return snap
}

// reload replaces the lines with the persisted state and notifies
// observers when it differs.
func (s *Store) reload(ctx context.Context) error {
	s.mu.Lock()

	lines, err := s.storage.Load(ctx, s.key)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.synced = s.now()

	if sameLines(s.lines, lines) {
		s.mu.Unlock()
		return nil
	}

	s.logger.Info().
		Int("lines_before", len(s.lines)).
		Int("lines_after", len(lines)).
		Msg("cart reloaded from storage")
	s.lines = lines
	s.publishLocked()
	return nil
}

func (s *Store) syncedBefore(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced.Before(t)
}

func (s *Store) observed() bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	return len(s.observers) > 0
}

// release drops persisted state for an empty cart before the store is
// evicted.
func (s *Store) release(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) > 0 {
		return nil
	}
	return s.storage.Delete(ctx, s.key)
}

func (s *Store) snapshotLocked() Snapshot {
	lines := slices.Clone(s.lines)
	if lines == nil {
		lines = []model.CartLine{}
	}
	return Snapshot{
		Lines:  lines,
		Totals: model.ComputeTotals(lines),
	}
}

func (s *Store) bound(p model.Product) int {
	return min(p.Stock, s.maxQuantity)
}

func clamp(p model.Product, want, bound int) (int, []string) {
	if want <= bound {
		return want, nil
	}
	return bound, []string{fmt.Sprintf("Only %d unit(s) of %s can be added to the cart", bound, p.Name)}
}

func sameLines(a, b []model.CartLine) bool {
	return slices.EqualFunc(a, b, func(x, y model.CartLine) bool {
		return x.Product.ID == y.Product.ID && x.Quantity == y.Quantity && x.Product.Price == y.Product.Price
	})
}

func indexOf(lines []model.CartLine, productID int64) int {
	return slices.IndexFunc(lines, func(l model.CartLine) bool {
		return l.Product.ID == productID
	})
}
