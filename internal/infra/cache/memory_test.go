package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(ttl time.Duration) (*MemoryCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)}
	return NewMemoryCache(ttl).WithClock(clock.Now), clock
}

func TestMemoryCache_GetSetTTL(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	ctx := context.Background()
	key := Key{CompanyID: 1, Date: "2025-03-04", DurationMinutes: 60}

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	c.Set(ctx, key, []types.TimeString{"09:00", "10:00"})

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []types.TimeString{"09:00", "10:00"}, got)

	// Другая длительность - отдельная запись
	_, ok = c.Get(ctx, Key{CompanyID: 1, Date: "2025-03-04", DurationMinutes: 30})
	assert.False(t, ok)

	clock.Advance(time.Minute)
	_, ok = c.Get(ctx, key)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	ctx := context.Background()
	key := Key{CompanyID: 1, Date: "2025-03-04", DurationMinutes: 30}

	src := []types.TimeString{"09:00"}
	c.Set(ctx, key, src)
	src[0] = "23:00"

	got, _ := c.Get(ctx, key)
	got[0] = "22:00"

	again, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, types.TimeString("09:00"), again[0])
}

func TestMemoryCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	ctx := context.Background()

	c.Set(ctx, Key{CompanyID: 1, Date: "2025-03-04", DurationMinutes: 30}, []types.TimeString{"09:00"})
	c.Set(ctx, Key{CompanyID: 1, Date: "2025-03-04", DurationMinutes: 60}, []types.TimeString{"09:00"})
	c.Set(ctx, Key{CompanyID: 1, Date: "2025-03-05", DurationMinutes: 30}, []types.TimeString{"09:00"})
	c.Set(ctx, Key{CompanyID: 2, Date: "2025-03-04", DurationMinutes: 30}, []types.TimeString{"09:00"})

	c.Invalidate(ctx, 1, "2025-03-04")

	_, ok := c.Get(ctx, Key{CompanyID: 1, Date: "2025-03-04", DurationMinutes: 30})
	assert.False(t, ok)
	_, ok = c.Get(ctx, Key{CompanyID: 1, Date: "2025-03-04", DurationMinutes: 60})
	assert.False(t, ok)
	_, ok = c.Get(ctx, Key{CompanyID: 1, Date: "2025-03-05", DurationMinutes: 30})
	assert.True(t, ok)

	c.InvalidateCompany(ctx, 1)
	assert.Equal(t, 1, c.Len())
	_, ok = c.Get(ctx, Key{CompanyID: 2, Date: "2025-03-04", DurationMinutes: 30})
	assert.True(t, ok)
}

func TestMemoryCache_ZeroTTLDisablesCaching(t *testing.T) {
	c, _ := newTestCache(0)
	key := Key{CompanyID: 1, Date: "2025-03-04", DurationMinutes: 30}

	c.Set(context.Background(), key, []types.TimeString{"09:00"})
	_, ok := c.Get(context.Background(), key)
	assert.False(t, ok)
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := Key{CompanyID: int64(i % 3), Date: "2025-03-04", DurationMinutes: 30}
			c.Set(ctx, key, []types.TimeString{"09:00"})
			c.Get(ctx, key)
			if i%5 == 0 {
				c.Invalidate(ctx, key.CompanyID, key.Date)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 3)
}
