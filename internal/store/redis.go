package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Raw TTL replies for keys without expiry and missing keys.
const (
	ttlNoExpiry  = time.Duration(-1)
	ttlNoSuchKey = time.Duration(-2)
)

// RedisStore handles Redis operations for topic flags and link sets.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Client exposes the underlying client for the rate limiter.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	defer observe("ping", time.Now())
	return s.client.Ping(ctx).Err()
}

// Get returns the value at key. found is false when the key does not exist.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	defer observe("get", time.Now())

	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value at key. A zero ttl keeps the key forever.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	defer observe("set", time.Now())

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// TTL returns the remaining lifetime of key.
func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	defer observe("ttl", time.Now())

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("ttl %s: %w", key, err)
	}

	switch ttl {
	case ttlNoExpiry:
		return 0, nil
	case ttlNoSuchKey:
		return -1, nil
	}
	return ttl, nil
}

// SetAdd adds members to the set at key and returns how many were new.
func (s *RedisStore) SetAdd(ctx context.Context, key string, members ...string) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	defer observe("sadd", time.Now())

	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}

	added, err := s.client.SAdd(ctx, key, args...).Result()
	if err != nil {
		return 0, fmt.Errorf("sadd %s: %w", key, err)
	}
	return added, nil
}

// SetMembers returns the members of the set at key in no particular order.
func (s *RedisStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	defer observe("smembers", time.Now())

	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", key, err)
	}
	return members, nil
}
