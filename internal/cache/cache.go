// Package cache provides a shared read cache keyed by query signature.
// Invalidation policy is time-to-live only: entries expire, nothing is
// explicitly evicted, and a miss simply refetches from the upstream
// source. The cache holds serialized responses, never live objects.
package cache

import (
	"context"
	"time"
)

// QueryCache stores serialized query results under a query-signature
// key with a TTL.
type QueryCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Noop is the cache used when no redis endpoint is configured: every
// lookup is a miss and writes are discarded.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
