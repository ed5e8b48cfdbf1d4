package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"property-catalog/pkg/metrics"

	"github.com/go-redis/redis/v8"
)

func observe(operation string, start time.Time, err error) {
	metrics.RedisOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RedisErrorsTotal.WithLabelValues(operation).Inc()
	}
}

// RedisStore implements Store on any go-redis client.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	start := time.Now()
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		observe("get", start, nil)
		metrics.CacheMissesTotal.Inc()
		return false, nil
	}
	observe("get", start, err)
	if err != nil {
		return false, NewCacheError("get", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// A payload we can no longer decode is dropped and treated as a miss.
		s.client.Del(ctx, key)
		metrics.CacheMissesTotal.Inc()
		return false, NewCacheError("decode", key, err)
	}
	metrics.CacheHitsTotal.Inc()
	return true, nil
}

func (s *RedisStore) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return NewCacheError("encode", key, err)
	}
	start := time.Now()
	err = s.client.Set(ctx, key, raw, ttl).Err()
	observe("set", start, err)
	if err != nil {
		return NewCacheError("set", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	start := time.Now()
	err := s.client.Del(ctx, keys...).Err()
	observe("del", start, err)
	if err != nil {
		return NewCacheError("del", keys[0], err)
	}
	return nil
}

func (s *RedisStore) SetTracked(ctx context.Context, setKey, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return NewCacheError("encode", key, err)
	}
	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	start := time.Now()
	err = setTrackedScript.Run(ctx, s.client, []string{key, setKey}, raw, seconds).Err()
	observe("set_tracked", start, err)
	if err != nil {
		return NewCacheError("set_tracked", key, err)
	}
	return nil
}

func (s *RedisStore) InvalidateTracked(ctx context.Context, setKey string) (int64, error) {
	start := time.Now()
	n, err := invalidateTrackedScript.Run(ctx, s.client, []string{setKey}).Int64()
	observe("invalidate_tracked", start, err)
	if err != nil {
		return 0, NewCacheError("invalidate_tracked", setKey, err)
	}
	return n, nil
}

// NoopStore is used when Redis is disabled. Every read misses.
type NoopStore struct{}

func (NoopStore) GetJSON(context.Context, string, interface{}) (bool, error) { return false, nil }
func (NoopStore) SetJSON(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (NoopStore) Delete(context.Context, ...string) error { return nil }
func (NoopStore) SetTracked(context.Context, string, string, interface{}, time.Duration) error {
	return nil
}
func (NoopStore) InvalidateTracked(context.Context, string) (int64, error) { return 0, nil }

var (
	_ Store = (*RedisStore)(nil)
	_ Store = NoopStore{}
)
