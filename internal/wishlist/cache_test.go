package wishlist

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu    sync.Mutex
	ids   []int64
	loads atomic.Int32
	gate  chan struct{}
	err   error
}

// Wishlist reads the ids before waiting on gate, like a backend whose
// response was computed before a concurrent write landed.
func (f *fakeBackend) Wishlist(ctx context.Context, token string) ([]int64, error) {
	f.loads.Add(1)
	f.mu.Lock()
	ids := append([]int64(nil), f.ids...)
	f.mu.Unlock()

	if f.gate != nil {
		<-f.gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return ids, nil
}

func (f *fakeBackend) AddToWishlist(ctx context.Context, token string, productID int64) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, productID)
	return nil
}

func (f *fakeBackend) RemoveFromWishlist(ctx context.Context, token string, productID int64) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, id := range f.ids {
		if id == productID {
			f.ids = append(f.ids[:i], f.ids[i+1:]...)
			break
		}
	}
	return nil
}

func TestCache_ListIsCached(t *testing.T) {
	b := &fakeBackend{ids: []int64{1, 2}}
	c := NewCache(b, time.Minute, zerolog.Nop())
	ctx := context.Background()

	ids, err := c.List(ctx, "42", "token")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	_, err = c.List(ctx, "42", "token")
	require.NoError(t, err)
	assert.Equal(t, int32(1), b.loads.Load())
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	b := &fakeBackend{ids: []int64{1}}
	c := NewCache(b, time.Minute, zerolog.Nop())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := c.List(ctx, "42", "token")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = c.List(ctx, "42", "token")
	require.NoError(t, err)

	assert.Equal(t, int32(2), b.loads.Load())
}

func TestCache_ConcurrentMissesShareOneLoad(t *testing.T) {
	b := &fakeBackend{ids: []int64{7}, gate: make(chan struct{})}
	c := NewCache(b, time.Minute, zerolog.Nop())

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids, err := c.List(context.Background(), "42", "token")
			assert.NoError(t, err)
			assert.Equal(t, []int64{7}, ids)
		}()
	}

	require.Eventually(t, func() bool { return b.loads.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(b.gate)
	wg.Wait()

	assert.Equal(t, int32(1), b.loads.Load())
}

func TestCache_AddAndRemoveUpdateCachedCopy(t *testing.T) {
	b := &fakeBackend{ids: []int64{1}}
	c := NewCache(b, time.Minute, zerolog.Nop())
	ctx := context.Background()

	_, err := c.List(ctx, "42", "token")
	require.NoError(t, err)

	require.NoError(t, c.Add(ctx, "42", "token", 5))
	in, err := c.Contains(ctx, "42", "token", 5)
	require.NoError(t, err)
	assert.True(t, in)

	require.NoError(t, c.Remove(ctx, "42", "token", 1))
	ids, err := c.List(ctx, "42", "token")
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, ids)
	assert.Equal(t, int32(1), b.loads.Load())
}

func TestCache_BackendError(t *testing.T) {
	b := &fakeBackend{err: errors.New("bad gateway")}
	c := NewCache(b, time.Minute, zerolog.Nop())
	ctx := context.Background()

	_, err := c.List(ctx, "42", "token")
	assert.ErrorContains(t, err, "failed to load wishlist")

	err = c.Add(ctx, "42", "token", 3)
	assert.ErrorContains(t, err, "failed to add to wishlist")
}

func TestCache_Invalidate(t *testing.T) {
	b := &fakeBackend{ids: []int64{1}}
	c := NewCache(b, time.Minute, zerolog.Nop())
	ctx := context.Background()

	_, _ = c.List(ctx, "42", "token")
	c.Invalidate("42")
	_, _ = c.List(ctx, "42", "token")

	assert.Equal(t, int32(2), b.loads.Load())
}

func TestCache_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	b := &fakeBackend{ids: []int64{7}, gate: make(chan struct{})}
	c := NewCache(b, time.Minute, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := c.List(ctx, "42", "token")
		done <- err
	}()

	require.Eventually(t, func() bool { return b.loads.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	close(b.gate)

	require.NoError(t, <-done)
	ids, err := c.List(context.Background(), "42", "token")
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids)
	assert.Equal(t, int32(1), b.loads.Load(), "the shared load was cached")
}

func TestCache_WriteDuringLoadIsNotOverwritten(t *testing.T) {
	tests := []struct {
		name  string
		write func(c *Cache) error
		want  []int64
	}{
		{
			name:  "add",
			write: func(c *Cache) error { return c.Add(context.Background(), "42", "token", 9) },
			want:  []int64{1, 9},
		},
		{
			name:  "remove",
			write: func(c *Cache) error { return c.Remove(context.Background(), "42", "token", 1) },
			want:  []int64{},
		},
		{
			name:  "invalidate",
			write: func(c *Cache) error { c.Invalidate("42"); return nil },
			want:  []int64{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{ids: []int64{1}, gate: make(chan struct{})}
			c := NewCache(b, time.Minute, zerolog.Nop())

			done := make(chan []int64, 1)
			go func() {
				ids, err := c.List(context.Background(), "42", "token")
				assert.NoError(t, err)
				done <- ids
			}()

			require.Eventually(t, func() bool { return b.loads.Load() == 1 }, time.Second, time.Millisecond)
			require.NoError(t, tt.write(c))
			close(b.gate)
			assert.Equal(t, []int64{1}, <-done, "the in-flight load answers with what it read")

			b.gate = nil
			ids, err := c.List(context.Background(), "42", "token")
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, ids)
			assert.Equal(t, int32(2), b.loads.Load(), "the stale load was not cached")
		})
	}
}
