package cache

import (
	"context"
	"errors"
	"time"

	"github.com/coocood/freecache"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/rohits-web03/codedrop/internal/config"
)

const keyPrefix = "codedrop:"

var ErrMiss = errors.New("cache miss")

type Cacher interface {
	Get(ctx context.Context, key string, value interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// NewCache picks redis when an address is configured and an in-process cache otherwise.
func NewCache(conf config.CacheConfig) Cacher {
	if conf.RedisAddr == "" {
		return NewMemoryCache(conf.MaxSize)
	}
	return NewRedisCache(redis.NewClient(&redis.Options{
		Addr:            conf.RedisAddr,
		Password:        conf.RedisPassword,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		PoolSize:        10,
		MinIdleConns:    2,
		ConnMaxIdleTime: 5 * time.Minute,
	}))
}

type MemoryCache struct {
	cache *freecache.Cache
}

func NewMemoryCache(size int) *MemoryCache {
	return &MemoryCache{cache: freecache.NewCache(size)}
}

func newMemoryCacheWithTimer(size int, timer freecache.Timer) *MemoryCache {
	return &MemoryCache{cache: freecache.NewCacheCustomTimer(size, timer)}
}

func (m *MemoryCache) Get(_ context.Context, key string, value interface{}) error {
	data, err := m.cache.Get([]byte(keyPrefix + key))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return ErrMiss
		}
		return err
	}
	return msgpack.Unmarshal(data, value)
}

func (m *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return err
	}
	return m.cache.Set([]byte(keyPrefix+key), data, expireSeconds(expiration))
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.cache.Del([]byte(keyPrefix + key))
	}
	return nil
}

// expireSeconds converts a TTL to freecache's whole seconds, where 0 means no
// expiry. Positive sub-second TTLs round up so they still expire.
func expireSeconds(expiration time.Duration) int {
	if expiration <= 0 {
		return 0
	}
	return int((expiration + time.Second - 1) / time.Second)
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Get(ctx context.Context, key string, value interface{}) error {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}
	return msgpack.Unmarshal(data, value)
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyPrefix+key, data, expiration).Err()
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = keyPrefix + key
	}
	return r.client.Del(ctx, prefixed...).Err()
}

// Noop never stores anything. Used when caching is disabled.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) error                { return ErrMiss }
func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error                       { return nil }

// Fetch returns the cached value for key or loads and stores it. A failing cache
// is treated as a miss.
func Fetch[T any](ctx context.Context, cache Cacher, key string, expiration time.Duration, fn func() (T, error)) (T, error) {
	var zero, value T
	if err := cache.Get(ctx, key, &value); err == nil {
		return value, nil
	}
	value, err := fn()
	if err != nil {
		return zero, err
	}
	_ = cache.Set(ctx, key, &value, expiration)
	return value, nil
}

func Key(parts ...string) string {
	key := ""
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += p
	}
	return key
}
