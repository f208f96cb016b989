package ttl

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_ReadMissing(t *testing.T) {
	c := New[float64](time.Hour)

	v, ok := c.Read("819")
	assert.False(t, ok)
	assert.Zero(t, v)
	assert.True(t, c.NeedsRefresh("819"))
}

func TestCache_TTLExpiry(t *testing.T) {
	ttl := 30 * 24 * time.Hour
	c := New[float64](ttl)

	c.Restore(map[string]Record[float64]{
		"fresh": {Value: 42, UpdatedAt: time.Now().Add(-time.Hour)},
		"stale": {Value: 13, UpdatedAt: time.Now().Add(-31 * 24 * time.Hour)},
	})

	v, ok := c.Read("fresh")
	assert.True(t, ok)
	assert.Equal(t, 42.0, v)
	assert.False(t, c.NeedsRefresh("fresh"))

	_, ok = c.Read("stale")
	assert.False(t, ok, "a record older than the TTL reads as absent")
	assert.True(t, c.NeedsRefresh("stale"))
}

func TestCache_PreloadSkipsFresh(t *testing.T) {
	c := New[float64](time.Hour)
	c.Store("1", 5)

	var fetches atomic.Int32
	c.Preload(context.Background(), []string{"1", "2"}, 6, func(_ context.Context, id string) (float64, error) {
		fetches.Add(1)
		return 9, nil
	})

	assert.Equal(t, int32(1), fetches.Load(), "fresh ids are not refetched")
	v, ok := c.Read("2")
	assert.True(t, ok)
	assert.Equal(t, 9.0, v)
}

func TestCache_PreloadFailureStoresZeroAtNow(t *testing.T) {
	c := New[float64](time.Hour)

	c.Preload(context.Background(), []string{"bad"}, 6, func(context.Context, string) (float64, error) {
		return 0, fmt.Errorf("boom")
	})

	// The failure is cached so the id is not retried until the TTL
	// elapses again.
	assert.False(t, c.NeedsRefresh("bad"))
	v, ok := c.Read("bad")
	assert.True(t, ok)
	assert.Zero(t, v)
}

func TestCache_PreloadDeduplicatesInFlight(t *testing.T) {
	c := New[float64](time.Hour)

	started := make(chan struct{})
	release := make(chan struct{})
	var fetches atomic.Int32

	var wg sync.WaitGroup
	wg.Go(func() {
		c.Preload(context.Background(), []string{"1"}, 6, func(context.Context, string) (float64, error) {
			fetches.Add(1)
			close(started)
			<-release
			return 7, nil
		})
	})

	<-started
	// A second preload while the first fetch is outstanding must skip it.
	c.Preload(context.Background(), []string{"1"}, 6, func(context.Context, string) (float64, error) {
		fetches.Add(1)
		return 0, nil
	})
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), fetches.Load(), "at most one outstanding fetch per id")
}

func TestCache_PreloadBatches(t *testing.T) {
	c := New[float64](time.Hour)

	var concurrent, peak atomic.Int32
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = fmt.Sprintf("%d", i)
	}

	c.Preload(context.Background(), ids, 6, func(context.Context, string) (float64, error) {
		cur := concurrent.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		concurrent.Add(-1)
		return 1, nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(6), "fetch concurrency is bounded by the batch size")
	for _, id := range ids {
		_, ok := c.Read(id)
		assert.True(t, ok)
	}
}

func TestCache_SnapshotRestoreRoundTrip(t *testing.T) {
	c := New[float64](time.Hour)
	c.Store("819", 42)

	snap := c.Snapshot()
	require.Len(t, snap, 1)

	restored := New[float64](time.Hour)
	restored.Restore(snap)
	v, ok := restored.Read("819")
	assert.True(t, ok)
	assert.Equal(t, 42.0, v)
}
