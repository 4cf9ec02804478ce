package cache

import (
	"context"
	"time"

	"github.com/matzehuels/entitymap/pkg/observability"
)

// Instrumented reports hits, misses and writes of an inner cache to the
// registered observability.CacheHooks.
type Instrumented struct {
	Cache
}

// Instrument wraps c. Wrapping nil yields a NullCache.
func Instrument(c Cache) *Instrumented {
	if c == nil {
		c = NewNullCache()
	}
	return &Instrumented{Cache: c}
}

func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, KeyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, hit, err
}

func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	}
	return err
}

// Clear forwards to the inner cache when it supports clearing.
func (c *Instrumented) Clear(ctx context.Context) error {
	if cl, ok := c.Cache.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return nil
}

var _ Clearer = (*Instrumented)(nil)
