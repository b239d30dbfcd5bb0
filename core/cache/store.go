package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the byte-oriented cache used by services that may run against
// Redis or the in-process Cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error
	DeleteByTag(ctx context.Context, tag string) error
}

// NewStore returns a Redis-backed store when client is non-nil and the
// process-wide memory cache otherwise.
func NewStore(client *redis.Client) Store {
	if client != nil {
		return NewRedisStore(client, "vitastore:")
	}
	return NewMemoryStore(GetInstance())
}

type memoryStore struct {
	c *Cache
}

func NewMemoryStore(c *Cache) Store {
	return &memoryStore{c: c}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	s.c.Set(key, value, ttl, tags...)
	return nil
}

func (s *memoryStore) DeleteByTag(_ context.Context, tag string) error {
	s.c.DeleteByTag(tag)
	return nil
}

// RedisStore keeps values as plain keys and each tag as a set of keys.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) tagKey(tag string) string {
	return s.prefix + "tag:" + tag
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.prefix+key, value, ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, s.tagKey(tag), s.prefix+key)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) DeleteByTag(ctx context.Context, tag string) error {
	keys, err := s.client.SMembers(ctx, s.tagKey(tag)).Result()
	if err != nil {
		return err
	}
	keys = append(keys, s.tagKey(tag))
	return s.client.Del(ctx, keys...).Err()
}
