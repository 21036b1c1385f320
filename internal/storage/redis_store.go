package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultNamespace prefixes Redis keys when none is configured.
const DefaultNamespace = "mtgc"

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	MSet(context.Context, ...any) *redis.StatusCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// RedisStore keeps objects as Redis strings under "<namespace>:<key>".
type RedisStore struct {
	store     cmdable
	raw       *redis.Client
	namespace string
}

// NewRedisStore connects to the Redis server at url and verifies it answers.
func NewRedisStore(ctx context.Context, url, namespace string) (*RedisStore, error) {
	if url == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return newRedisStore(raw, raw, namespace), nil
}

func newRedisStore(store cmdable, raw *redis.Client, namespace string) *RedisStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &RedisStore{store: store, raw: raw, namespace: namespace}
}

func (s *RedisStore) key(key string) string {
	return s.namespace + ":" + key
}

// Load decodes the value at key into dst.
func (s *RedisStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	value, err := s.store.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, storeErr("load", key, err)
	}
	if err := decode(key, value, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Save replaces the value at key. Values never expire.
func (s *RedisStore) Save(ctx context.Context, key string, v any) error {
	data, err := encode(key, v)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, s.key(key), data, 0).Err(); err != nil {
		return storeErr("save", key, err)
	}
	return nil
}

// SaveAll writes every value with a single MSET, which Redis applies
// atomically.
func (s *RedisStore) SaveAll(ctx context.Context, values map[string]any) error {
	encoded, err := encodeAll(values)
	if err != nil {
		return err
	}
	if len(encoded) == 0 {
		return nil
	}

	pairs := make([]any, 0, 2*len(encoded))
	for _, key := range sortedKeys(encoded) {
		pairs = append(pairs, s.key(key), encoded[key])
	}
	if err := s.store.MSet(ctx, pairs...).Err(); err != nil {
		return fmt.Errorf("%w: save batch: %w", ErrStore, err)
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.store.Del(ctx, s.key(key)).Err(); err != nil {
		return storeErr("delete", key, err)
	}
	return nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx).Err()
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}
