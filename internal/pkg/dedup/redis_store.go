package dedup

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix for idempotency records
	redisKeyPrefix = "webhook:dedup:"

	// Per-call budget for shared store round trips. The guard fails open on
	// timeout, so this must stay well below the provider's request timeout.
	redisCallTimeout = 2 * time.Second
)

// RedisStore coordinates deduplication across all running instances through
// a shared Redis server.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a shared dedup store on top of an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()

	_, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *RedisStore) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()

	// SET key NX EX: atomic across concurrent deliveries, the reply tells
	// us whether this call created the record.
	return s.client.SetNX(ctx, redisKeyPrefix+key, "1", ttl).Result()
}

func (s *RedisStore) Set(ctx context.Context, key string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()

	return s.client.Set(ctx, redisKeyPrefix+key, "1", ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()

	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}
