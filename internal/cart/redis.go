package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cart:v1:"

// RedisStore keeps each cart in a Redis hash keyed by user, one field per
// product. The whole cart expires after the configured TTL of inactivity.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func cartKey(userID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, userID)
}

func (s *RedisStore) Add(ctx context.Context, userID int64, item Item) error {
	key := cartKey(userID)

	existing, err := s.client.HGet(ctx, key, item.ProductID).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	if err == nil {
		var cur Item
		if err := json.Unmarshal([]byte(existing), &cur); err != nil {
			return fmt.Errorf("decode cart item: %w", err)
		}
		cur.Quantity += item.Quantity
		item = cur
	}

	data, err := json.Marshal(item)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, item.ProductID, data)
	pipe.Expire(ctx, key, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Decrease(ctx context.Context, userID int64, productID string) error {
	key := cartKey(userID)

	raw, err := s.client.HGet(ctx, key, productID).Result()
	if err == redis.Nil {
		return ErrItemNotFound
	}
	if err != nil {
		return err
	}

	var item Item
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return fmt.Errorf("decode cart item: %w", err)
	}

	item.Quantity--
	if item.Quantity <= 0 {
		return s.client.HDel(ctx, key, productID).Err()
	}

	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, key, productID, data).Err()
}

func (s *RedisStore) Remove(ctx context.Context, userID int64, productID string) error {
	n, err := s.client.HDel(ctx, cartKey(userID), productID).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *RedisStore) Items(ctx context.Context, userID int64) ([]Item, error) {
	raw, err := s.client.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(raw))
	for _, v := range raw {
		var item Item
		if err := json.Unmarshal([]byte(v), &item); err != nil {
			return nil, fmt.Errorf("decode cart item: %w", err)
		}
		items = append(items, item)
	}
	// Redis hashes are unordered; sort for stable chat output.
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (s *RedisStore) Clear(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, cartKey(userID)).Err()
}
