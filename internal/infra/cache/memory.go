package cache

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// sweepEvery после стольких записей удаляются просроченные элементы
const sweepEvery = 256

type dayKey struct {
	companyID int64
	date      string
}

type item struct {
	slots     []types.TimeString
	expiresAt time.Time
}

// MemoryCache in-process кеш слотов с TTL
type MemoryCache struct {
	mu     sync.RWMutex
	ttl    time.Duration
	now    func() time.Time
	days   map[dayKey]map[int]item
	writes int
}

// NewMemoryCache создает кеш с указанным TTL
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:  ttl,
		now:  time.Now,
		days: make(map[dayKey]map[int]item),
	}
}

// WithClock подменяет источник времени (для тестов)
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Get(_ context.Context, key Key) ([]types.TimeString, bool) {
	dk := dayKey{companyID: key.CompanyID, date: key.Date}

	c.mu.RLock()
	it, ok := c.days[dk][key.DurationMinutes]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if !c.now().Before(it.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.days[dk][key.DurationMinutes]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.days[dk], key.DurationMinutes)
			if len(c.days[dk]) == 0 {
				delete(c.days, dk)
			}
		}
		c.mu.Unlock()
		return nil, false
	}

	return cloneSlots(it.slots), true
}

func (c *MemoryCache) Set(_ context.Context, key Key, slots []types.TimeString) {
	if c.ttl <= 0 {
		return
	}

	dk := dayKey{companyID: key.CompanyID, date: key.Date}

	c.mu.Lock()
	defer c.mu.Unlock()

	byDuration, ok := c.days[dk]
	if !ok {
		byDuration = make(map[int]item)
		c.days[dk] = byDuration
	}
	byDuration[key.DurationMinutes] = item{
		slots:     cloneSlots(slots),
		expiresAt: c.now().Add(c.ttl),
	}

	c.writes++
	if c.writes >= sweepEvery {
		c.writes = 0
		c.sweepLocked()
	}
}

// Invalidate удаляет все записи (компания, дата) независимо от длительности
func (c *MemoryCache) Invalidate(_ context.Context, companyID int64, date string) {
	c.mu.Lock()
	delete(c.days, dayKey{companyID: companyID, date: date})
	c.mu.Unlock()
}

// InvalidateCompany удаляет все даты компании (после изменения расписания)
func (c *MemoryCache) InvalidateCompany(_ context.Context, companyID int64) {
	c.mu.Lock()
	for dk := range c.days {
		if dk.companyID == companyID {
			delete(c.days, dk)
		}
	}
	c.mu.Unlock()
}

// Len количество дат в кеше
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.days)
}

func (c *MemoryCache) sweepLocked() {
	now := c.now()
	for dk, byDuration := range c.days {
		for d, it := range byDuration {
			if !now.Before(it.expiresAt) {
				delete(byDuration, d)
			}
		}
		if len(byDuration) == 0 {
			delete(c.days, dk)
		}
	}
}
