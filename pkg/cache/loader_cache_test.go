package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderCache_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("loads on miss and serves from cache afterwards", func(t *testing.T) {
		c, err := NewLoaderCache[string, int](8, func(k string) string { return k })
		require.NoError(t, err)

		loads := 0
		load := func(_ context.Context, _ string) (int, error) {
			loads++
			return 42, nil
		}

		v, hit, err := c.Get(ctx, "k", load)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.False(t, hit)

		v, hit, err = c.Get(ctx, "k", load)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.True(t, hit)
		assert.Equal(t, 1, loads)
	})

	t.Run("load errors are returned and not cached", func(t *testing.T) {
		c, err := NewLoaderCache[string, int](8, func(k string) string { return k })
		require.NoError(t, err)

		boom := errors.New("boom")
		_, _, err = c.Get(ctx, "k", func(_ context.Context, _ string) (int, error) { return 0, boom })
		assert.ErrorIs(t, err, boom)

		v, hit, err := c.Get(ctx, "k", func(_ context.Context, _ string) (int, error) { return 7, nil })
		require.NoError(t, err)
		assert.Equal(t, 7, v)
		assert.False(t, hit)
	})

	t.Run("concurrent misses for one key run a single load", func(t *testing.T) {
		c, err := NewLoaderCache[string, int](8, func(k string) string { return k })
		require.NoError(t, err)

		var loads atomic.Int32

		release := make(chan struct{})
		load := func(_ context.Context, _ string) (int, error) {
			loads.Add(1)
			<-release
			return 1, nil
		}

		const goroutines = 8

		var wg sync.WaitGroup
		started := make(chan struct{}, goroutines)

		for range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				started <- struct{}{}
				v, _, err := c.Get(ctx, "k", load)
				assert.NoError(t, err)
				assert.Equal(t, 1, v)
			}()
		}

		for range goroutines {
			<-started
		}
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), loads.Load())
	})

	t.Run("invalidate forces a reload", func(t *testing.T) {
		c, err := NewLoaderCache[string, int](8, func(k string) string { return k })
		require.NoError(t, err)

		counter := 0
		load := func(_ context.Context, _ string) (int, error) {
			counter++
			return counter, nil
		}

		v, _, _ := c.Get(ctx, "k", load)
		assert.Equal(t, 1, v)

		c.Invalidate("k")

		v, hit, _ := c.Get(ctx, "k", load)
		assert.Equal(t, 2, v)
		assert.False(t, hit)
	})
}
