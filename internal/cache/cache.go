package cache

import (
	"context"
	"time"
)

// Cache is the JSON read-through cache in front of the interview list
// queries. A miss or a cache failure always falls back to the store.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
