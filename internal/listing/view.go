package listing

import (
	"context"
	"errors"
	"sync"
	"time"

	"froid-storefront/internal/model"

	"github.com/rs/zerolog"
)

// State is the lifecycle stage of a listing view.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateErrored State = "errored"
)

// Fetcher loads one page of products.
type Fetcher func(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error)

// Snapshot is what a view renders.
type Snapshot struct {
	State   State              `json:"state"`
	Seq     uint64             `json:"seq"`
	Filters Filters            `json:"filters"`
	Page    *model.ProductPage `json:"page,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// ViewOptions tunes a View.
type ViewOptions struct {
	Settings Settings
	Debounce time.Duration
	// OnStale is called for every response discarded because a newer
	// request superseded it or the view was closed.
	OnStale func()
}

// View is one open product listing. Filter changes are debounced, page
// changes reload immediately, and only the response to the most recent
// request is ever applied.
type View struct {
	fetch   Fetcher
	opts    ViewOptions
	logger  zerolog.Logger
	base    context.Context
	cancelB context.CancelFunc

	mu          sync.Mutex
	filters     Filters
	state       State
	page        *model.ProductPage
	err         error
	seq         uint64
	cancel      context.CancelFunc
	timer       *time.Timer
	debounceGen uint64
	closed      bool

	notifyMu  sync.Mutex
	observers map[uint64]func(Snapshot)
	nextObs   uint64
}

// NewView creates an idle view over filters. Nothing is fetched until
// Reload, Update or SetPage is called.
func NewView(fetch Fetcher, filters Filters, opts ViewOptions, logger zerolog.Logger) *View {
	base, cancel := context.WithCancel(context.Background())
	return &View{
		fetch:     fetch,
		opts:      opts,
		logger:    logger.With().Str("component", "listing-view").Logger(),
		base:      base,
		cancelB:   cancel,
		filters:   filters.Normalize(opts.Settings),
		state:     StateIdle,
		observers: make(map[uint64]func(Snapshot)),
	}
}

// Reload fetches the current filters immediately.
func (v *View) Reload() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.stopTimerLocked()
	v.startLocked()
}

// Update applies a filter change, returns to the first page and
// schedules a reload once the debounce window has passed without
// further changes.
func (v *View) Update(next Filters) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}

	v.filters = v.filters.Change(next, v.opts.Settings)
	v.stopTimerLocked()
	v.debounceGen++
	gen := v.debounceGen
	v.timer = time.AfterFunc(v.opts.Debounce, func() {
		v.mu.Lock()
		if v.closed || gen != v.debounceGen {
			v.mu.Unlock()
			return
		}
		v.timer = nil
		v.startLocked()
	})

	v.publishLocked()
}

// SetPage moves to page and reloads without debouncing. A pending
// debounced reload is folded into this one.
func (v *View) SetPage(page int) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.filters = v.filters.WithPage(page)
	v.stopTimerLocked()
	v.startLocked()
}

// Snapshot returns the current render state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// Filters returns the active filters.
func (v *View) Filters() Filters {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters
}

// Subscribe registers fn for every state change.
func (v *View) Subscribe(fn func(Snapshot)) func() {
	v.notifyMu.Lock()
	id := v.nextObs
	v.nextObs++
	v.observers[id] = fn
	v.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.notifyMu.Lock()
			delete(v.observers, id)
			v.notifyMu.Unlock()
		})
	}
}

// Close cancels the in-flight request and the pending debounce. Late
// responses are dropped.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	v.stopTimerLocked()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.cancelB()
}

// Done is closed when the view is closed.
func (v *View) Done() <-chan struct{} {
	return v.base.Done()
}

// Closed reports whether Close has been called.
func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// startLocked issues a new request and releases v.mu.
func (v *View) startLocked() {
	if v.cancel != nil {
		v.cancel()
	}

	v.seq++
	seq := v.seq
	ctx, cancel := context.WithCancel(v.base)
	v.cancel = cancel
	v.state = StateLoading
	query := v.filters.ProductQuery()

	v.logger.Debug().Uint64("seq", seq).Str("params", query.Params.Encode()).Msg("loading products")

	go func() {
		page, err := v.fetch(ctx, query)
		v.apply(seq, page, err)
	}()

	v.publishLocked()
}

func (v *View) apply(seq uint64, page *model.ProductPage, err error) {
	v.mu.Lock()
	if v.closed || seq != v.seq {
		v.mu.Unlock()
		v.logger.Debug().Uint64("seq", seq).Msg("discarding stale listing response")
		if v.opts.OnStale != nil {
			v.opts.OnStale()
		}
		return
	}

	v.cancel = nil
	if err != nil {
		v.state = StateErrored
		v.err = err
		if !errors.Is(err, context.Canceled) {
			v.logger.Warn().Err(err).Uint64("seq", seq).Msg("failed to load products")
		}
	} else {
		v.state = StateLoaded
		v.page = page
		v.err = nil
	}

	v.publishLocked()
}

// publishLocked notifies observers in order and releases v.mu.
func (v *View) publishLocked() {
	snap := v.snapshotLocked()
	v.notifyMu.Lock()
	v.mu.Unlock()
	for _, obs := range v.observers {
		obs(snap)
	}
	v.notifyMu.Unlock()
}

func (v *View) stopTimerLocked() {
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.debounceGen++
}

func (v *View) snapshotLocked() Snapshot {
	s := Snapshot{
		State:   v.state,
		Seq:     v.seq,
		Filters: v.filters,
		Page:    v.page,
	}
	if v.err != nil {
		s.Error = errorMessage(v.err)
	}
	return s
}

func errorMessage(err error) string {
	var de *model.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return "Unable to load products. Please try again."
}
