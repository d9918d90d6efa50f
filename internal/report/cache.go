package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// SeriesCache хранит посчитанные графики до прихода новых событий по заказам.
type SeriesCache interface {
	Get(ctx context.Context, key string) (Series, bool, error)
	Set(ctx context.Context, key string, series Series) error
	// Invalidate сбрасывает все закэшированные графики.
	Invalidate(ctx context.Context) error
}

// CacheKey строит ключ графика: область (platform или vendor:<id>), масштаб, неделя и начало окна.
func CacheKey(scope string, g Granularity, framing WeekFraming, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", scope, g, framing, windowStart.UTC().Format(time.RFC3339))
}

// NopCache ничего не хранит.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (Series, bool, error) { return Series{}, false, nil }
func (NopCache) Set(context.Context, string, Series) error         { return nil }
func (NopCache) Invalidate(context.Context) error                  { return nil }

const defaultCachePrefix = "fos:report:"

// RedisSeriesCache хранит графики в Redis как JSON с TTL.
type RedisSeriesCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSeriesCache создаёт кэш поверх готового клиента.
func NewRedisSeriesCache(client *redis.Client, ttl time.Duration) *RedisSeriesCache {
	return &RedisSeriesCache{client: client, prefix: defaultCachePrefix, ttl: ttl}
}

func (c *RedisSeriesCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisSeriesCache) Get(ctx context.Context, key string) (Series, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Series{}, false, nil
	}
	if err != nil {
		return Series{}, false, err
	}

	var series Series
	if err := json.Unmarshal(val, &series); err != nil {
		return Series{}, false, err
	}
	return series, true, nil
}

func (c *RedisSeriesCache) Set(ctx context.Context, key string, series Series) error {
	payload, err := json.Marshal(series)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, payload, c.ttl).Err()
}

// Invalidate удаляет все ключи кэша с префиксом, обходя их через SCAN.
func (c *RedisSeriesCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 200).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 200 {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}
	return nil
}
