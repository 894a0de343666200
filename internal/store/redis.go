package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GauthierNelkinsky/shipshipship-template-default/pkg/logger"
)

// RedisStore backs the Store interface with Redis so rate-limit state
// survives restarts and is shared across replicas.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis. A failed ping is logged but not
// fatal: the caller decides whether to fall back to memory.
func NewRedisStore(addr, password string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}

	logger.Info().Str("addr", addr).Msg("Connected to Redis")
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Ping reports connection health for the /health endpoint.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// CacheSet stores a JSON-encoded value with an expiration
func CacheSet(ctx context.Context, s Store, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, b, ttl)
}

// CacheGet loads a JSON-encoded value into dest
func CacheGet(ctx context.Context, s Store, key string, dest any) error {
	b, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}
