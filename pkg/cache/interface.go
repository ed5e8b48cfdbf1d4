package cache

import (
	"context"
	"time"
)

// Store is the JSON key/value surface the repositories cache through.
type Store interface {
	// GetJSON decodes key into dest and reports whether the key existed.
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// SetTracked stores value under key and records key in setKey.
	SetTracked(ctx context.Context, setKey, key string, value interface{}, ttl time.Duration) error
	// InvalidateTracked deletes every key recorded in setKey.
	InvalidateTracked(ctx context.Context, setKey string) (int64, error)
}
