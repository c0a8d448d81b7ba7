package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:checkout:v1:"

// RedisStore keeps sessions in Redis with a sliding TTL: every Put refreshes
// the expiry, so only truly idle sessions vanish.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, userID)
}

func (s *RedisStore) Get(ctx context.Context, userID int64) (Checkout, error) {
	raw, err := s.client.Get(ctx, sessionKey(userID)).Result()
	if err == redis.Nil {
		return Checkout{}, ErrNotFound
	}
	if err != nil {
		return Checkout{}, err
	}

	var c Checkout
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Checkout{}, fmt.Errorf("decode session: %w", err)
	}
	return c, nil
}

func (s *RedisStore) Put(ctx context.Context, userID int64, c Checkout) error {
	c.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(userID), data, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, sessionKey(userID)).Err()
}
