package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// RedisCache кеш слотов, общий для нескольких инстансов сервиса.
// Одна дата компании хранится как hash: поле = длительность, значение = JSON.
// Ошибки Redis не пробрасываются: кеш деградирует в промах.
type RedisCache struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
	logger Logger
}

type redisItem struct {
	Slots     []types.TimeString `json:"slots"`
	ExpiresAt int64              `json:"expiresAt"` // unix ms
}

// NewRedisCache создает кеш поверх готового клиента
func NewRedisCache(rdb redis.UniversalClient, prefix string, ttl time.Duration, logger Logger) *RedisCache {
	return &RedisCache{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

func (c *RedisCache) dayKey(companyID int64, date string) string {
	return fmt.Sprintf("%sslots:%d:%s", c.prefix, companyID, date)
}

func (c *RedisCache) Get(ctx context.Context, key Key) ([]types.TimeString, bool) {
	raw, err := c.rdb.HGet(ctx, c.dayKey(key.CompanyID, key.Date), strconv.Itoa(key.DurationMinutes)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("RedisCache.Get: key=%s: %v", key, err)
		return nil, false
	}

	var it redisItem
	if err := json.Unmarshal(raw, &it); err != nil {
		c.logger.Warn("RedisCache.Get: corrupted entry key=%s: %v", key, err)
		return nil, false
	}

	// Поле может пережить свой TTL, если hash продлевался другими длительностями
	if c.now().UnixMilli() >= it.ExpiresAt {
		return nil, false
	}

	return it.Slots, true
}

func (c *RedisCache) Set(ctx context.Context, key Key, slots []types.TimeString) {
	if c.ttl <= 0 {
		return
	}

	payload, err := json.Marshal(redisItem{
		Slots:     slots,
		ExpiresAt: c.now().Add(c.ttl).UnixMilli(),
	})
	if err != nil {
		c.logger.Warn("RedisCache.Set: marshal key=%s: %v", key, err)
		return
	}

	dk := c.dayKey(key.CompanyID, key.Date)
	_, err = c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, dk, strconv.Itoa(key.DurationMinutes), payload)
		p.Expire(ctx, dk, c.ttl)
		return nil
	})
	if err != nil {
		c.logger.Warn("RedisCache.Set: key=%s: %v", key, err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, companyID int64, date string) {
	if err := c.rdb.Del(ctx, c.dayKey(companyID, date)).Err(); err != nil {
		// Запись остается до истечения TTL
		c.logger.Error("RedisCache.Invalidate: company=%d date=%s: %v", companyID, date, err)
	}
}

func (c *RedisCache) InvalidateCompany(ctx context.Context, companyID int64) {
	pattern := fmt.Sprintf("%sslots:%d:*", c.prefix, companyID)

	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Error("RedisCache.InvalidateCompany: scan company=%d: %v", companyID, err)
		return
	}

	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Error("RedisCache.InvalidateCompany: company=%d: %v", companyID, err)
	}
}

// NewRedisClient подключается к Redis и проверяет соединение
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return rdb, nil
}
