package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "fos:cart:"
	defaultTTL       = 24 * time.Hour
	maxTxRetries     = 5
)

// RedisStore хранит корзину как hash: поле — product_id, значение — JSON позиции.
// Каждая запись продлевает TTL корзины.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore создаёт хранилище. ttl <= 0 означает 24 часа.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, prefix: defaultKeyPrefix, ttl: ttl}
}

// Ping проверяет доступность Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) redisKey(key Key) string {
	return s.prefix + key.UserID + ":" + key.VendorID
}

func (s *RedisStore) Add(ctx context.Context, key Key, line Line) (Cart, error) {
	if err := key.validate(); err != nil {
		return Cart{}, err
	}
	if err := line.validate(); err != nil {
		return Cart{}, err
	}
	rk := s.redisKey(key)

	err := s.update(ctx, rk, func(tx *redis.Tx) (func(redis.Pipeliner) error, error) {
		existing, found, err := readLine(ctx, tx, rk, line.ProductID)
		if err != nil {
			return nil, err
		}
		if found {
			line.Qty += existing.Qty
			if line.Name == "" {
				line.Name = existing.Name
			}
		}
		payload, err := json.Marshal(line)
		if err != nil {
			return nil, err
		}
		return func(p redis.Pipeliner) error {
			p.HSet(ctx, rk, line.ProductID, payload)
			p.Expire(ctx, rk, s.ttl)
			return nil
		}, nil
	})
	if err != nil {
		return Cart{}, err
	}
	return s.Get(ctx, key)
}

func (s *RedisStore) SetQty(ctx context.Context, key Key, productID string, qty int32) (Cart, error) {
	if err := key.validate(); err != nil {
		return Cart{}, err
	}
	rk := s.redisKey(key)

	err := s.update(ctx, rk, func(tx *redis.Tx) (func(redis.Pipeliner) error, error) {
		line, found, err := readLine(ctx, tx, rk, productID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrLineNotFound
		}
		if qty <= 0 {
			return func(p redis.Pipeliner) error {
				p.HDel(ctx, rk, productID)
				return nil
			}, nil
		}
		line.Qty = qty
		payload, err := json.Marshal(line)
		if err != nil {
			return nil, err
		}
		return func(p redis.Pipeliner) error {
			p.HSet(ctx, rk, productID, payload)
			p.Expire(ctx, rk, s.ttl)
			return nil
		}, nil
	})
	if err != nil {
		return Cart{}, err
	}
	return s.Get(ctx, key)
}

func (s *RedisStore) Remove(ctx context.Context, key Key, productID string) (Cart, error) {
	return s.SetQty(ctx, key, productID, 0)
}

func (s *RedisStore) Get(ctx context.Context, key Key) (Cart, error) {
	if err := key.validate(); err != nil {
		return Cart{}, err
	}
	raw, err := s.client.HGetAll(ctx, s.redisKey(key)).Result()
	if err != nil {
		return Cart{}, fmt.Errorf("read cart: %w", err)
	}
	lines := make([]Line, 0, len(raw))
	for productID, value := range raw {
		var line Line
		if err := json.Unmarshal([]byte(value), &line); err != nil {
			return Cart{}, fmt.Errorf("decode cart line %s: %w", productID, err)
		}
		lines = append(lines, line)
	}
	sortLines(lines)
	return Cart{Key: key, Lines: lines}, nil
}

func (s *RedisStore) Clear(ctx context.Context, key Key) error {
	if err := key.validate(); err != nil {
		return err
	}
	return s.client.Del(ctx, s.redisKey(key)).Err()
}

// update выполняет read-modify-write под WATCH и повторяет его при конкурентной записи.
func (s *RedisStore) update(ctx context.Context, rk string, prepare func(tx *redis.Tx) (func(redis.Pipeliner) error, error)) error {
	txf := func(tx *redis.Tx) error {
		write, err := prepare(tx)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, write)
		return err
	}
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, rk)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("cart %s: too many concurrent updates", rk)
}

func readLine(ctx context.Context, tx *redis.Tx, rk, productID string) (Line, bool, error) {
	value, err := tx.HGet(ctx, rk, productID).Result()
	if errors.Is(err, redis.Nil) {
		return Line{}, false, nil
	}
	if err != nil {
		return Line{}, false, err
	}
	var line Line
	if err := json.Unmarshal([]byte(value), &line); err != nil {
		return Line{}, false, fmt.Errorf("decode cart line %s: %w", productID, err)
	}
	return line, true, nil
}

var _ Store = (*RedisStore)(nil)
